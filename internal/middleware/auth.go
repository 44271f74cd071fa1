package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tng-poetry-backend/internal/models"
)

// Context keys set for authenticated requests.
const (
	ContextKeyUserID          = "userID"
	ContextKeyUserEmail       = "userEmail"
	ContextKeyUserDisplayName = "userDisplayName"
	ContextKeyUserPhotoURL    = "userPhotoURL"
	ContextKeyUser            = "user"
)

// AuthMiddleware gates routes on the request's session being authenticated.
type AuthMiddleware struct {
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{logger: logger}
}

// RequireAuthenticated lets the request through only when its session has a signed-in user.
// A request carrying "Authorization: Bearer <idToken>" on an unauthenticated session signs
// the session in with that token first.
func (m *AuthMiddleware) RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFromContext(c)
		if !ok {
			m.logger.Error("RequireAuthenticated used without SessionMiddleware")
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Something went wrong. Please try again."})
			return
		}

		state := sess.State()
		if !state.Authenticated() {
			if authHeader := c.GetHeader("Authorization"); authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
					c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
					return
				}
				if !sess.LoginWithGoogle(c.Request.Context(), parts[1]) {
					c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
					return
				}
				state = sess.State()
			}
		}

		if !state.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Please sign in to continue"})
			return
		}

		setUser(c, state.User)
		c.Next()
	}
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(ContextKeyUser, user)
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUserEmail, user.Email)
	c.Set(ContextKeyUserDisplayName, user.Name)
	c.Set(ContextKeyUserPhotoURL, user.Avatar)
}

// UserFromContext returns the profile set by RequireAuthenticated.
func UserFromContext(c *gin.Context) (*models.User, bool) {
	raw, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := raw.(*models.User)
	return user, ok && user != nil
}
