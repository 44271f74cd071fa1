package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tng-poetry-backend/internal/models"
	"tng-poetry-backend/internal/testutil"
	"tng-poetry-backend/pkg/cache"
)

var fixedNow = time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)

func newTestUserService(repo *testutil.UserRepoStub, c cache.Cache) *userService {
	svc := NewUserService(repo, c, time.Minute, nil).(*userService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestUserService_GetOrCreate_CreatesProfile(t *testing.T) {
	repo := testutil.NewUserRepoStub()
	svc := newTestUserService(repo, nil)

	user, created, err := svc.GetOrCreate(context.Background(), "uid-42", "kumar@example.com", "Kumar", "https://example.com/k.png")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "uid-42", user.ID)
	assert.Equal(t, "Kumar", user.Name)
	assert.Equal(t, "kumar@example.com", user.Email)
	assert.Equal(t, "https://example.com/k.png", user.Avatar)
	assert.Equal(t, fixedNow, user.JoinedDate)

	again, created, err := svc.GetOrCreate(context.Background(), "uid-42", "kumar@example.com", "Kumar", "https://example.com/k.png")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.JoinedDate, again.JoinedDate)
	assert.Equal(t, 1, repo.CreateCalls)
	assert.Equal(t, 0, repo.UpdateCalls)
}

func TestUserService_GetOrCreate_DefaultName(t *testing.T) {
	svc := newTestUserService(testutil.NewUserRepoStub(), nil)

	user, _, err := svc.GetOrCreate(context.Background(), "uid-7", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserName, user.Name)
	assert.Empty(t, user.Avatar)
}

func TestUserService_GetOrCreate_EmptyID(t *testing.T) {
	svc := newTestUserService(testutil.NewUserRepoStub(), nil)
	_, _, err := svc.GetOrCreate(context.Background(), "", "", "", "")
	assert.Error(t, err)
}

func TestUserService_GetOrCreate_ProviderDrift(t *testing.T) {
	repo := testutil.NewUserRepoStub()
	repo.Seed(models.User{ID: "uid-42", Name: "Kumar", Email: "k@example.com", JoinedDate: fixedNow.Add(-time.Hour)})
	svc := newTestUserService(repo, nil)

	user, created, err := svc.GetOrCreate(context.Background(), "uid-42", "k@example.com", "Kumar R", "https://example.com/new.png")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Kumar R", user.Name)
	assert.Equal(t, "https://example.com/new.png", user.Avatar)
	assert.Equal(t, 1, repo.UpdateCalls)

	stored, err := repo.GetByID(context.Background(), "uid-42")
	require.NoError(t, err)
	assert.Equal(t, "Kumar R", stored.Name)
}

func TestUserService_GetOrCreate_DriftUpdateFailureKeepsProfile(t *testing.T) {
	repo := testutil.NewUserRepoStub()
	repo.Seed(models.User{ID: "uid-42", Name: "Kumar"})
	repo.UpdateErr = errors.New("deadline exceeded")
	svc := newTestUserService(repo, nil)

	user, created, err := svc.GetOrCreate(context.Background(), "uid-42", "", "Kumar R", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "uid-42", user.ID)
}

func TestUserService_GetByID_Errors(t *testing.T) {
	repo := testutil.NewUserRepoStub()
	svc := newTestUserService(repo, nil)

	_, err := svc.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrUserNotFound))

	repo.Err = errors.New("unavailable")
	_, err = svc.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrStoreRead))
	assert.False(t, errors.Is(err, ErrUserNotFound))
}

func TestUserService_ProfileCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(context.Background(), cache.NewRedisCacheConfig{Address: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	repo := testutil.NewUserRepoStub()
	svc := newTestUserService(repo, rc)

	_, _, err = svc.GetOrCreate(context.Background(), "uid-42", "k@example.com", "Kumar", "")
	require.NoError(t, err)
	assert.True(t, mr.Exists(userCacheKeyPrefix+"uid-42"))

	getsBefore := repo.GetCalls
	user, err := svc.GetByID(context.Background(), "uid-42")
	require.NoError(t, err)
	assert.Equal(t, "Kumar", user.Name)
	assert.Equal(t, getsBefore, repo.GetCalls, "cached profile should not hit the repository")

	mr.FastForward(2 * time.Minute)
	_, err = svc.GetByID(context.Background(), "uid-42")
	require.NoError(t, err)
	assert.Equal(t, getsBefore+1, repo.GetCalls)
}

func TestUserService_ProfileCache_CorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(context.Background(), cache.NewRedisCacheConfig{Address: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	repo := testutil.NewUserRepoStub()
	repo.Seed(models.User{ID: "uid-42", Name: "Kumar"})
	require.NoError(t, mr.Set(userCacheKeyPrefix+"uid-42", "{not json"))

	svc := newTestUserService(repo, rc)
	user, err := svc.GetByID(context.Background(), "uid-42")
	require.NoError(t, err)
	assert.Equal(t, "Kumar", user.Name)
	assert.Equal(t, 1, repo.GetCalls)
}
