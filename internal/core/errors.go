package core

import "errors"

// Review store and profile errors. Callers match them with errors.Is.
var (
	ErrStoreRead      = errors.New("failed to read from the document store")
	ErrStoreWrite     = errors.New("failed to write to the document store")
	ErrInvalidReview  = errors.New("invalid review")
	ErrPoemNotFound   = errors.New("poem not found")
	ErrReviewNotFound = errors.New("review not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrAlreadyLiked   = errors.New("review already liked in this session")
	ErrBoardClosed    = errors.New("review board closed")
)
