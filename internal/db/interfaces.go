package db

import (
	"context"

	"tng-poetry-backend/internal/models"
)

// UserRepository defines the interface for user profile storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// ReviewRepository defines the interface for review storage operations.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) (string, error) // Returns new review ID
	ListByPoemID(ctx context.Context, poemID string) ([]*models.Review, error)
	IncrementLikes(ctx context.Context, reviewID string, delta int) error
}
