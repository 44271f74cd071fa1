package models

import "time"

// Review is a star-rated comment left on a poem.
// IsLiked is a per-viewer flag and is never persisted.
type Review struct {
	ID         string    `json:"id" firestore:"-"` // Document ID, auto-generated
	PoemID     string    `json:"poemId" firestore:"poemId"`
	UserID     string    `json:"userId" firestore:"userId"`
	UserName   string    `json:"userName" firestore:"userName"`
	UserAvatar string    `json:"userAvatar,omitempty" firestore:"userAvatar,omitempty"`
	Rating     int       `json:"rating" firestore:"rating"`
	Comment    string    `json:"comment" firestore:"comment"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
	Likes      int       `json:"likes" firestore:"likes"`
	IsLiked    bool      `json:"isLiked" firestore:"-"`
}

// ReviewDraft is a review payload before the system assigns id, timestamp and likes.
type ReviewDraft struct {
	PoemID     string `json:"poemId" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
	UserName   string `json:"userName" validate:"required"`
	UserAvatar string `json:"userAvatar,omitempty"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	Comment    string `json:"comment" validate:"required,max=2000"`
}

// ReviewEvent is published after a review is written so that poem statistics
// can be recomputed by the content service.
type ReviewEvent struct {
	Type       string    `json:"type"` // "review.created" or "review.liked"
	PoemID     string    `json:"poemId,omitempty"`
	ReviewID   string    `json:"reviewId"`
	Rating     int       `json:"rating,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

const (
	ReviewEventCreated = "review.created"
	ReviewEventLiked   = "review.liked"
)
