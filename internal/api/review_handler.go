package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tng-poetry-backend/internal/auth"
	"tng-poetry-backend/internal/core"
	"tng-poetry-backend/internal/middleware"
	"tng-poetry-backend/internal/models"
)

// ReviewHandler serves the per-poem review boards of the caller's session.
type ReviewHandler struct {
	poems  core.PoemLookup
	logger *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(poems core.PoemLookup, logger *zap.Logger) *ReviewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewHandler{poems: poems, logger: logger}
}

// mapReviewErrorToStatus maps review store and board errors to HTTP status codes and ErrorResponse.
func mapReviewErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrInvalidReview):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Please check your review and try again.", Details: err.Error()}
	case errors.Is(err, core.ErrPoemNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Poem not found"}
	case errors.Is(err, core.ErrReviewNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Review not found"}
	case errors.Is(err, core.ErrAlreadyLiked):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "You already liked this review"}
	case errors.Is(err, core.ErrBoardClosed), errors.Is(err, auth.ErrSessionClosed):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "Your session changed. Please reload the page."}
	case errors.Is(err, core.ErrStoreRead), errors.Is(err, core.ErrStoreWrite):
		logger.Warn("Review store call failed", zap.Error(err))
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: "Could not reach the review store. Please try again."}
	default:
		logger.Error("Unexpected review error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "Something went wrong. Please try again."}
	}
	c.JSON(statusCode, errResponse)
}

// board resolves the session's board for poemID, answering the request itself on failure.
func (h *ReviewHandler) board(c *gin.Context, poemID string) (*core.ReviewBoard, bool) {
	if poemID == "" || !h.poems.Exists(poemID) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Poem not found"})
		return nil, false
	}
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		h.logger.Error("Review route reached without a session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Something went wrong. Please try again."})
		return nil, false
	}
	b, err := sess.Reviews(poemID)
	if err != nil {
		mapReviewErrorToStatus(c, h.logger, err)
		return nil, false
	}
	return b, true
}

// ListReviews handles GET /poems/:poemId/reviews. Every call re-reads the store.
// A read failure is not an error for the reader: the list is just empty.
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	poemID := c.Param("poemId")
	b, ok := h.board(c, poemID)
	if !ok {
		return
	}

	resp := ReviewListResponse{PoemID: poemID}
	if err := b.Load(c.Request.Context()); err != nil {
		if errors.Is(err, core.ErrBoardClosed) {
			mapReviewErrorToStatus(c, h.logger, err)
			return
		}
		resp.LoadError = "Reviews could not be loaded right now."
	}
	resp.Reviews = b.Snapshot()
	resp.Total = len(resp.Reviews)
	c.JSON(http.StatusOK, resp)
}

// CreateReview handles POST /poems/:poemId/reviews for the signed-in reader.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Please sign in to continue"})
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Rating (1-5) and comment are required", Details: err.Error()})
		return
	}

	poemID := c.Param("poemId")
	b, ok := h.board(c, poemID)
	if !ok {
		return
	}

	res := b.Submit(c.Request.Context(), models.ReviewDraft{
		PoemID:     poemID,
		UserID:     user.ID,
		UserName:   user.Name,
		UserAvatar: user.Avatar,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if !res.OK() {
		mapReviewErrorToStatus(c, h.logger, res.Err)
		return
	}
	c.JSON(http.StatusCreated, res.Review)
}

// LikeReview handles POST /reviews/:reviewId/like?poemId=
func (h *ReviewHandler) LikeReview(c *gin.Context) {
	poemID := c.Query("poemId")
	if poemID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "poemId query parameter is required"})
		return
	}
	b, ok := h.board(c, poemID)
	if !ok {
		return
	}

	res := b.Like(c.Request.Context(), c.Param("reviewId"))
	if !res.OK() {
		mapReviewErrorToStatus(c, h.logger, res.Err)
		return
	}
	c.JSON(http.StatusOK, LikeResponse{ReviewID: res.ReviewID, Likes: res.Likes, Liked: res.Liked})
}
