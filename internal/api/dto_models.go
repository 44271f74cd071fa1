package api

import "tng-poetry-backend/internal/models"

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A short message safe to show to readers
	Details string `json:"details,omitempty"` // Validation details, when there are any
}

// PoemListResponse is returned by GET /poems.
type PoemListResponse struct {
	Poems []models.Poem `json:"poems"`
	Total int           `json:"total"`
}

// ReviewListResponse is returned by GET /poems/:poemId/reviews.
// When the store could not be read the list is empty and LoadError is set.
type ReviewListResponse struct {
	PoemID    string          `json:"poemId"`
	Reviews   []models.Review `json:"reviews"`
	Total     int             `json:"total"`
	LoadError string          `json:"loadError,omitempty"`
}

// LikeResponse is returned by POST /reviews/:reviewId/like.
type LikeResponse struct {
	ReviewID string `json:"reviewId"`
	Likes    int    `json:"likes"`
	Liked    bool   `json:"liked"`
}

// FeedbackResponse points readers at the external feedback form.
type FeedbackResponse struct {
	URL string `json:"url"`
}
