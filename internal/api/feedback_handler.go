package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler points readers at the external feedback form.
type FeedbackHandler struct {
	formURL string
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(formURL string) *FeedbackHandler {
	return &FeedbackHandler{formURL: formURL}
}

// GetFeedbackLink handles GET /feedback. With ?redirect=true the reader is sent to the form.
func (h *FeedbackHandler) GetFeedbackLink(c *gin.Context) {
	if h.formURL == "" {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Feedback form is not available"})
		return
	}
	if c.Query("redirect") == "true" {
		c.Redirect(http.StatusFound, h.formURL)
		return
	}
	c.JSON(http.StatusOK, FeedbackResponse{URL: h.formURL})
}
