package models

// CreateReviewRequest represents the request body for posting a review on a poem.
// The author fields come from the authenticated session, not the body.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

// LoginRequest carries the ID token the browser obtained from the Google sign-in popup.
type LoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// PoemFilter narrows the catalog listing. Empty or "all" values match everything.
type PoemFilter struct {
	Search   string `form:"search"`
	Theme    string `form:"theme"`
	Category string `form:"category"`
}
