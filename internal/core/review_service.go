package core

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"tng-poetry-backend/internal/db"
	"tng-poetry-backend/internal/models"
)

// reviewService implements the ReviewService interface.
type reviewService struct {
	reviewRepo db.ReviewRepository
	users      UserService
	poems      PoemLookup
	events     EventPublisher
	validate   *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     *zap.Logger
	now        func() time.Time
}

// NewReviewService creates a new ReviewService instance.
// A nil publisher falls back to logging the events.
func NewReviewService(
	rr db.ReviewRepository,
	us UserService,
	poems PoemLookup,
	events EventPublisher,
	logger *zap.Logger,
) ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = NewLogEventPublisher(logger)
	}
	return &reviewService{
		reviewRepo: rr,
		users:      us,
		poems:      poems,
		events:     events,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// AddReview validates and persists a review draft.
// The rating must lie in [1,5]; out-of-range values are rejected, not clamped.
func (s *reviewService) AddReview(ctx context.Context, draft models.ReviewDraft) (*models.Review, error) {
	draft.Comment = s.cleanComment(draft.Comment)
	draft.UserName = strings.TrimSpace(draft.UserName)

	if err := s.validate.Struct(draft); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidReview, describeValidation(verrs))
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidReview, err)
	}

	if !s.poems.Exists(draft.PoemID) {
		return nil, fmt.Errorf("%w: id '%s'", ErrPoemNotFound, draft.PoemID)
	}

	if _, err := s.users.GetByID(ctx, draft.UserID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: author '%s' has no profile", ErrInvalidReview, draft.UserID)
		}
		return nil, fmt.Errorf("%w: verify author '%s': %w", ErrStoreWrite, draft.UserID, err)
	}

	review := &models.Review{
		PoemID:     draft.PoemID,
		UserID:     draft.UserID,
		UserName:   draft.UserName,
		UserAvatar: draft.UserAvatar,
		Rating:     draft.Rating,
		Comment:    draft.Comment,
		CreatedAt:  s.now(),
		Likes:      0,
		IsLiked:    false,
	}

	reviewID, err := s.reviewRepo.Create(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("%w: add review on poem '%s': %w", ErrStoreWrite, draft.PoemID, err)
	}
	review.ID = reviewID

	s.publish(ctx, models.ReviewEvent{
		Type:       models.ReviewEventCreated,
		PoemID:     review.PoemID,
		ReviewID:   review.ID,
		Rating:     review.Rating,
		OccurredAt: review.CreatedAt,
	})
	return review, nil
}

// GetReviewsByPoemID returns all reviews of a poem ordered by creation time, newest first.
func (s *reviewService) GetReviewsByPoemID(ctx context.Context, poemID string) ([]*models.Review, error) {
	if !s.poems.Exists(poemID) {
		return nil, fmt.Errorf("%w: id '%s'", ErrPoemNotFound, poemID)
	}
	reviews, err := s.reviewRepo.ListByPoemID(ctx, poemID)
	if err != nil {
		return nil, fmt.Errorf("%w: list reviews of poem '%s': %w", ErrStoreRead, poemID, err)
	}
	return reviews, nil
}

// LikeReview increments the stored like counter. There is no check against earlier likes;
// per-session suppression lives in ReviewBoard. poemID keys the published stats event.
func (s *reviewService) LikeReview(ctx context.Context, poemID, reviewID string) error {
	if reviewID == "" {
		return fmt.Errorf("%w: empty review id", ErrReviewNotFound)
	}
	if err := s.reviewRepo.IncrementLikes(ctx, reviewID, 1); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: id '%s'", ErrReviewNotFound, reviewID)
		}
		return fmt.Errorf("%w: like review '%s': %w", ErrStoreWrite, reviewID, err)
	}

	s.publish(ctx, models.ReviewEvent{
		Type:       models.ReviewEventLiked,
		PoemID:     poemID,
		ReviewID:   reviewID,
		OccurredAt: s.now(),
	})
	return nil
}

// maxSanitizeRounds bounds entity decoding of nested encodings such as "&amp;lt;".
const maxSanitizeRounds = 8

// cleanComment strips markup from the comment and returns plain text that clients escape
// on render. Entities are decoded and the result sanitised again until it is stable, so
// entity-encoded tags cannot survive the decode. If it does not settle the escaped
// sanitiser output is kept.
func (s *reviewService) cleanComment(comment string) string {
	text := comment
	for i := 0; i < maxSanitizeRounds; i++ {
		decoded := html.UnescapeString(s.sanitizer.Sanitize(text))
		if decoded == text {
			return strings.TrimSpace(decoded)
		}
		text = decoded
	}
	return strings.TrimSpace(s.sanitizer.Sanitize(text))
}

func (s *reviewService) publish(ctx context.Context, event models.ReviewEvent) {
	if err := s.events.PublishReviewEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish review event",
			zap.String("type", event.Type), zap.String("reviewId", event.ReviewID), zap.Error(err))
	}
}

func describeValidation(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "min", "max":
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
