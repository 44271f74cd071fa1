package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tng-poetry-backend/internal/models"
)

// newEmulatorClient connects to the Firestore emulator; tests are skipped without it.
func newEmulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set; skipping Firestore integration test")
	}
	client, err := firestore.NewClient(context.Background(), "demo-tng-poetry")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestFirestoreReviewRepository(t *testing.T) {
	client := newEmulatorClient(t)
	repo := NewFirestoreReviewRepository(client, nil)
	ctx := context.Background()

	poemID := "poem-" + uuid.NewString()
	base := time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)

	var ids []string
	for i, comment := range []string{"first", "second", "third"} {
		id, err := repo.Create(ctx, &models.Review{
			PoemID:    poemID,
			UserID:    "u1",
			UserName:  "Reader",
			Rating:    4,
			Comment:   comment,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err := repo.Create(ctx, &models.Review{PoemID: "other-" + poemID, UserID: "u1", UserName: "Reader", Rating: 1, Comment: "elsewhere", CreatedAt: base})
	require.NoError(t, err)

	t.Run("ListByPoemID newest first and scoped", func(t *testing.T) {
		reviews, err := repo.ListByPoemID(ctx, poemID)
		require.NoError(t, err)
		require.Len(t, reviews, 3)
		assert.Equal(t, "third", reviews[0].Comment)
		assert.Equal(t, "first", reviews[2].Comment)
		for _, r := range reviews {
			assert.Equal(t, poemID, r.PoemID)
			assert.NotEmpty(t, r.ID)
		}
	})

	t.Run("IncrementLikes", func(t *testing.T) {
		require.NoError(t, repo.IncrementLikes(ctx, ids[0], 1))
		require.NoError(t, repo.IncrementLikes(ctx, ids[0], 1))

		reviews, err := repo.ListByPoemID(ctx, poemID)
		require.NoError(t, err)
		assert.Equal(t, 2, reviews[2].Likes)
	})

	t.Run("IncrementLikes missing review", func(t *testing.T) {
		err := repo.IncrementLikes(ctx, "missing-"+uuid.NewString(), 1)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestFirestoreUserRepository(t *testing.T) {
	client := newEmulatorClient(t)
	repo := NewFirestoreUserRepository(client)
	ctx := context.Background()

	uid := "uid-" + uuid.NewString()

	_, err := repo.GetByID(ctx, uid)
	assert.True(t, errors.Is(err, ErrNotFound))

	joined := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.Create(ctx, &models.User{ID: uid, Name: "Kumar", Email: "k@example.com", JoinedDate: joined}))
	assert.Error(t, repo.Create(ctx, &models.User{ID: uid, Name: "Again"}))

	user, err := repo.GetByID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "Kumar", user.Name)
	assert.True(t, joined.Equal(user.JoinedDate))

	user.Name = "Kumar R"
	user.Avatar = "https://example.com/k.png"
	require.NoError(t, repo.Update(ctx, user))

	updated, err := repo.GetByID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "Kumar R", updated.Name)
	assert.Equal(t, "https://example.com/k.png", updated.Avatar)
	assert.True(t, joined.Equal(updated.JoinedDate))
}
