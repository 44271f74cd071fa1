package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tng-poetry-backend/internal/auth"
	"tng-poetry-backend/internal/middleware"
	"tng-poetry-backend/internal/models"
)

// AuthHandler exposes the session's auth state and its login/logout commands.
type AuthHandler struct {
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{logger: logger}
}

func (h *AuthHandler) session(c *gin.Context) (*auth.Session, bool) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		h.logger.Error("Auth route reached without a session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Something went wrong. Please try again."})
	}
	return sess, ok
}

// Login handles POST /auth/login with the ID token from the Google sign-in popup.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "idToken is required", Details: err.Error()})
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}

	if !sess.LoginWithGoogle(c.Request.Context(), req.IDToken) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Sign-in failed. Please try again."})
		return
	}

	state := sess.State()
	if !state.Authenticated() {
		// Signed in at the provider but the profile could not be loaded.
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Sign-in failed. Please try again.", Details: state.LastError})
		return
	}
	c.JSON(http.StatusOK, state)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Logout(c.Request.Context()); err != nil {
		h.logger.Error("Logout failed", zap.String("sessionId", sess.ID()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Sign-out failed. Please try again."})
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// State handles GET /auth/state.
func (h *AuthHandler) State(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.State())
}
