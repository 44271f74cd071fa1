package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tng-poetry-backend/internal/models"
	"tng-poetry-backend/internal/testutil"
)

type reviewFixture struct {
	users     *testutil.UserRepoStub
	reviews   *testutil.ReviewRepoStub
	publisher *testutil.PublisherStub
	svc       *reviewService
	clock     time.Time
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	f := &reviewFixture{
		users:     testutil.NewUserRepoStub(),
		reviews:   testutil.NewReviewRepoStub(),
		publisher: &testutil.PublisherStub{},
		clock:     fixedNow,
	}
	f.users.Seed(models.User{ID: "uid-42", Name: "Kumar"})
	f.users.Seed(models.User{ID: "uid-7", Name: "Meena"})

	us := NewUserService(f.users, nil, 0, nil)
	f.svc = NewReviewService(f.reviews, us, testutil.NewPoemSet("1", "2", "3"), f.publisher, nil).(*reviewService)
	var mu sync.Mutex
	f.svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	return f
}

func draft(poemID, userID string, rating int, comment string) models.ReviewDraft {
	return models.ReviewDraft{PoemID: poemID, UserID: userID, UserName: "Kumar", Rating: rating, Comment: comment}
}

func TestReviewService_AddReview(t *testing.T) {
	f := newReviewFixture(t)

	review, err := f.svc.AddReview(context.Background(), draft("1", "uid-42", 5, "Beautiful"))
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, "1", review.PoemID)
	assert.Equal(t, "uid-42", review.UserID)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "Beautiful", review.Comment)
	assert.Equal(t, 0, review.Likes)
	assert.False(t, review.IsLiked)
	assert.Equal(t, fixedNow.Add(time.Second), review.CreatedAt)

	listed, err := f.svc.GetReviewsByPoemID(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, review.ID, listed[0].ID)
	assert.Equal(t, "Beautiful", listed[0].Comment)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.ReviewEventCreated, events[0].Type)
	assert.Equal(t, "1", events[0].PoemID)
	assert.Equal(t, review.ID, events[0].ReviewID)
	assert.Equal(t, 5, events[0].Rating)
}

func TestReviewService_AddReview_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		draft  models.ReviewDraft
		target error
	}{
		{"rating zero", draft("1", "uid-42", 0, "ok"), ErrInvalidReview},
		{"rating six", draft("1", "uid-42", 6, "ok"), ErrInvalidReview},
		{"negative rating", draft("1", "uid-42", -1, "ok"), ErrInvalidReview},
		{"blank comment", draft("1", "uid-42", 3, "   "), ErrInvalidReview},
		{"markup only comment", draft("1", "uid-42", 3, "<script>alert(1)</script>"), ErrInvalidReview},
		{"comment too long", draft("1", "uid-42", 3, strings.Repeat("அ", 2001)), ErrInvalidReview},
		{"missing poem id", draft("", "uid-42", 3, "ok"), ErrInvalidReview},
		{"missing user id", draft("1", "", 3, "ok"), ErrInvalidReview},
		{"unknown poem", draft("404", "uid-42", 3, "ok"), ErrPoemNotFound},
		{"author without profile", draft("1", "uid-none", 3, "ok"), ErrInvalidReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture(t)
			_, err := f.svc.AddReview(context.Background(), tt.draft)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.Equal(t, 0, f.reviews.CreateCalls)
			assert.Empty(t, f.publisher.Events())
		})
	}
}

func TestReviewService_AddReview_SanitizesComment(t *testing.T) {
	f := newReviewFixture(t)

	tests := []struct {
		name    string
		comment string
		want    string
	}{
		{"tags stripped", "  <b>Lovely</b> & warm  ", "Lovely & warm"},
		{"apostrophe kept as text", "it's moving", "it's moving"},
		{"entity-encoded script", "&lt;script&gt;alert(1)&lt;/script&gt; nice", "nice"},
		{"double-encoded tag", "&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt;", "bold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review, err := f.svc.AddReview(context.Background(), draft("1", "uid-42", 4, tt.comment))
			require.NoError(t, err)
			assert.Equal(t, tt.want, review.Comment)
			assert.NotContains(t, review.Comment, "<")
		})
	}
}

func TestReviewService_AddReview_StoreFailure(t *testing.T) {
	f := newReviewFixture(t)
	f.reviews.CreateErr = errors.New("unavailable")

	_, err := f.svc.AddReview(context.Background(), draft("1", "uid-42", 4, "ok"))
	assert.True(t, errors.Is(err, ErrStoreWrite))
	assert.Empty(t, f.publisher.Events())
}

func TestReviewService_AddReview_PublishFailureDoesNotFail(t *testing.T) {
	f := newReviewFixture(t)
	f.publisher.Err = errors.New("broker down")

	review, err := f.svc.AddReview(context.Background(), draft("1", "uid-42", 4, "ok"))
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
}

func TestReviewService_GetReviewsByPoemID_ScopedAndOrdered(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	first, err := f.svc.AddReview(ctx, draft("1", "uid-42", 5, "first"))
	require.NoError(t, err)
	_, err = f.svc.AddReview(ctx, draft("2", "uid-42", 3, "other poem"))
	require.NoError(t, err)
	second, err := f.svc.AddReview(ctx, draft("1", "uid-7", 4, "second"))
	require.NoError(t, err)

	listed, err := f.svc.GetReviewsByPoemID(ctx, "1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)
	for _, r := range listed {
		assert.Equal(t, "1", r.PoemID)
	}

	empty, err := f.svc.GetReviewsByPoemID(ctx, "3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReviewService_GetReviewsByPoemID_Errors(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.svc.GetReviewsByPoemID(context.Background(), "404")
	assert.True(t, errors.Is(err, ErrPoemNotFound))

	f.reviews.ListErr = errors.New("unavailable")
	_, err = f.svc.GetReviewsByPoemID(context.Background(), "1")
	assert.True(t, errors.Is(err, ErrStoreRead))
}

func TestReviewService_LikeReview(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	review, err := f.svc.AddReview(ctx, draft("1", "uid-42", 5, "ok"))
	require.NoError(t, err)

	// Two different viewers each like once.
	require.NoError(t, f.svc.LikeReview(ctx, "1", review.ID))
	require.NoError(t, f.svc.LikeReview(ctx, "1", review.ID))
	assert.Equal(t, 2, f.reviews.Likes(review.ID))

	events := f.publisher.Events()
	require.Len(t, events, 3)
	assert.Equal(t, models.ReviewEventLiked, events[2].Type)
	assert.Equal(t, review.ID, events[2].ReviewID)
	assert.Equal(t, "1", events[2].PoemID)
}

func TestReviewService_LikeReview_Errors(t *testing.T) {
	f := newReviewFixture(t)

	err := f.svc.LikeReview(context.Background(), "1", "missing")
	assert.True(t, errors.Is(err, ErrReviewNotFound))

	err = f.svc.LikeReview(context.Background(), "1", "")
	assert.True(t, errors.Is(err, ErrReviewNotFound))

	f.reviews.LikeErr = errors.New("unavailable")
	err = f.svc.LikeReview(context.Background(), "1", "r1")
	assert.True(t, errors.Is(err, ErrStoreWrite))
	assert.Empty(t, f.publisher.Events())
}
