package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tng-poetry-backend/internal/core"
	"tng-poetry-backend/internal/middleware"
)

// UserHandler handles user-profile related API endpoints.
type UserHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{userService: us, logger: logger}
}

// GetCurrentUserProfile handles GET /users/me. The stored profile is read again so
// that provider changes picked up at sign-in are reflected.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Please sign in to continue"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
			return
		}
		h.logger.Error("Failed to retrieve user profile", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Could not load your profile. Please try again."})
		return
	}
	c.JSON(http.StatusOK, user)
}
