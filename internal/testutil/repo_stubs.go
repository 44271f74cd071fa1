// Package testutil provides shared test doubles for backend tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tng-poetry-backend/internal/db"
	"tng-poetry-backend/internal/models"
)

// UserRepoStub is an in-memory user repository implementation for tests.
type UserRepoStub struct {
	mu    sync.Mutex
	items map[string]models.User

	// Err, when set, is returned by every call.
	Err error
	// UpdateErr, when set, is returned by Update only.
	UpdateErr error

	GetCalls    int
	CreateCalls int
	UpdateCalls int
}

// NewUserRepoStub creates an in-memory user repository stub.
func NewUserRepoStub() *UserRepoStub {
	return &UserRepoStub{items: make(map[string]models.User)}
}

// Seed stores a user without counting a Create call.
func (s *UserRepoStub) Seed(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[u.ID] = u
}

// GetByID returns a copy of the stored user or db.ErrNotFound.
func (s *UserRepoStub) GetByID(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetCalls++
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.items[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

// Create stores a user; an existing ID is an error like a Firestore Create.
func (s *UserRepoStub) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.items[user.ID]; ok {
		return fmt.Errorf("user %s already exists", user.ID)
	}
	s.items[user.ID] = *user
	return nil
}

// Update replaces a stored user.
func (s *UserRepoStub) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateCalls++
	if s.Err != nil {
		return s.Err
	}
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if _, ok := s.items[user.ID]; !ok {
		return db.ErrNotFound
	}
	s.items[user.ID] = *user
	return nil
}

// ReviewRepoStub is an in-memory review repository implementation for tests.
// IDs are assigned sequentially as "r1", "r2", ...
type ReviewRepoStub struct {
	mu     sync.Mutex
	items  []*models.Review
	nextID int

	// CreateErr, ListErr and LikeErr, when set, fail the matching call.
	CreateErr error
	ListErr   error
	LikeErr   error

	// Hook, when set, runs at the start of every call with the call's context.
	// Tests use it to block a call or observe cancellation.
	Hook func(ctx context.Context, op string) error

	CreateCalls int
	ListCalls   int
	LikeCalls   int
}

// NewReviewRepoStub creates an in-memory review repository stub.
func NewReviewRepoStub() *ReviewRepoStub {
	return &ReviewRepoStub{nextID: 1}
}

// Create stores a copy of the review and returns its new ID.
func (s *ReviewRepoStub) Create(ctx context.Context, review *models.Review) (string, error) {
	if err := s.hook(ctx, "create"); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++
	if s.CreateErr != nil {
		return "", s.CreateErr
	}
	stored := *review
	stored.ID = fmt.Sprintf("r%d", s.nextID)
	stored.IsLiked = false
	s.nextID++
	s.items = append(s.items, &stored)
	return stored.ID, nil
}

// ListByPoemID returns copies of a poem's reviews, newest first.
// Reviews with equal timestamps are returned in reverse insertion order.
func (s *ReviewRepoStub) ListByPoemID(ctx context.Context, poemID string) ([]*models.Review, error) {
	if err := s.hook(ctx, "list"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]*models.Review, 0)
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].PoemID == poemID {
			r := *s.items[i]
			out = append(out, &r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// IncrementLikes adds delta to the stored counter or returns db.ErrNotFound.
func (s *ReviewRepoStub) IncrementLikes(ctx context.Context, reviewID string, delta int) error {
	if err := s.hook(ctx, "like"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LikeCalls++
	if s.LikeErr != nil {
		return s.LikeErr
	}
	for _, r := range s.items {
		if r.ID == reviewID {
			r.Likes += delta
			return nil
		}
	}
	return db.ErrNotFound
}

// Likes returns the stored like count of a review, or -1 if it does not exist.
func (s *ReviewRepoStub) Likes(reviewID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.items {
		if r.ID == reviewID {
			return r.Likes
		}
	}
	return -1
}

func (s *ReviewRepoStub) hook(ctx context.Context, op string) error {
	s.mu.Lock()
	h := s.Hook
	s.mu.Unlock()
	if h == nil {
		return nil
	}
	return h(ctx, op)
}

// SetHook installs a hook under the stub's lock.
func (s *ReviewRepoStub) SetHook(h func(ctx context.Context, op string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Hook = h
}
