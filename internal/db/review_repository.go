package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tng-poetry-backend/internal/models"
)

const reviewsCollection = "reviews"

// firestoreReviewRepository implements the ReviewRepository interface using Firestore.
type firestoreReviewRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreReviewRepository creates a new instance of firestoreReviewRepository.
func NewFirestoreReviewRepository(client *firestore.Client, logger *zap.Logger) ReviewRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &firestoreReviewRepository{client: client, logger: logger}
}

// Create adds a new review document with an auto-generated ID.
// It sets review.ID with the new document ID before creation.
func (r *firestoreReviewRepository) Create(ctx context.Context, review *models.Review) (string, error) {
	docRef := r.client.Collection(reviewsCollection).NewDoc()
	review.ID = docRef.ID

	if _, err := docRef.Create(ctx, review); err != nil {
		return "", fmt.Errorf("failed to create review for poem '%s': %w", review.PoemID, err)
	}
	return docRef.ID, nil
}

// ListByPoemID returns every review of a poem, newest first.
// The query needs the composite index (poemId ASC, createdAt DESC).
func (r *firestoreReviewRepository) ListByPoemID(ctx context.Context, poemID string) ([]*models.Review, error) {
	if poemID == "" {
		return nil, errors.New("poemID cannot be empty for ListByPoemID operation")
	}

	iter := r.client.Collection(reviewsCollection).
		Where("poemId", "==", poemID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	reviews := make([]*models.Review, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate reviews for poem '%s': %w", poemID, err)
		}

		var review models.Review
		if err := doc.DataTo(&review); err != nil {
			r.logger.Warn("Skipping undecodable review document",
				zap.String("reviewId", doc.Ref.ID), zap.String("poemId", poemID), zap.Error(err))
			continue
		}
		review.ID = doc.Ref.ID
		reviews = append(reviews, &review)
	}

	return reviews, nil
}

// IncrementLikes atomically adds delta to the stored like counter.
func (r *firestoreReviewRepository) IncrementLikes(ctx context.Context, reviewID string, delta int) error {
	if reviewID == "" {
		return errors.New("reviewID cannot be empty for IncrementLikes operation")
	}
	_, err := r.client.Collection(reviewsCollection).Doc(reviewID).Update(ctx, []firestore.Update{
		{Path: "likes", Value: firestore.Increment(delta)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("review with ID '%s' not found: %w", reviewID, ErrNotFound)
		}
		return fmt.Errorf("failed to increment likes for review '%s': %w", reviewID, err)
	}
	return nil
}
