package core

import (
	"context"

	"tng-poetry-backend/internal/models"
)

// UserService defines the interface for user-profile operations.
type UserService interface {
	// GetOrCreate retrieves a user by provider UID. If the user doesn't exist, it creates one with default values.
	// The boolean reports whether the profile was created by this call.
	GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// ReviewService defines the review store operations scoped by poem.
type ReviewService interface {
	// AddReview persists a draft and returns it with its generated ID, timestamp and zero likes.
	AddReview(ctx context.Context, draft models.ReviewDraft) (*models.Review, error)
	// GetReviewsByPoemID returns the poem's reviews, most recent first.
	GetReviewsByPoemID(ctx context.Context, poemID string) ([]*models.Review, error)
	// LikeReview atomically increments the stored like counter by one.
	// poemID is the poem the review belongs to and is carried on the stats event.
	LikeReview(ctx context.Context, poemID, reviewID string) error
}

// PoemLookup reports whether a poem exists. *catalog.Catalog satisfies it.
type PoemLookup interface {
	Exists(poemID string) bool
}

// EventPublisher forwards review events to the content service that owns poem statistics.
type EventPublisher interface {
	PublishReviewEvent(ctx context.Context, event models.ReviewEvent) error
}
