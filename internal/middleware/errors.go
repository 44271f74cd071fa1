package middleware

// ErrorResponse mirrors api.ErrorResponse; it is defined here to avoid an import cycle with internal/api.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
