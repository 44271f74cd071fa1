package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tng-poetry-backend/internal/auth"
)

const (
	// SessionCookieName is the name of the signed browser session cookie.
	SessionCookieName = "tng_session"

	sessionIDKey = "sid"

	// ContextKeySession holds the *auth.Session of the request.
	ContextKeySession = "authSession"
)

// NewCookieStore creates the signed cookie store that carries the session id.
func NewCookieStore(secret []byte, secure bool, maxAge int) sessions.Store {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// CookieSessions installs gin-contrib/sessions with store.
func CookieSessions(store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(SessionCookieName, store)
}

// SessionMiddleware attaches the browser's auth.Session to the request, starting a new one
// when the cookie is missing or its session has expired. It must run after CookieSessions.
func SessionMiddleware(registry *auth.Registry, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		cookieSession := sessions.Default(c)
		id, _ := cookieSession.Get(sessionIDKey).(string)

		sess, created, err := registry.GetOrCreate(id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Server is shutting down. Please try again."})
			return
		}
		if created {
			cookieSession.Set(sessionIDKey, sess.ID())
			if err := cookieSession.Save(); err != nil {
				logger.Error("Failed to save session cookie", zap.Error(err))
			}
		}

		c.Set(ContextKeySession, sess)
		c.Next()
	}
}

// SessionFromContext returns the session attached by SessionMiddleware.
func SessionFromContext(c *gin.Context) (*auth.Session, bool) {
	raw, exists := c.Get(ContextKeySession)
	if !exists {
		return nil, false
	}
	sess, ok := raw.(*auth.Session)
	return sess, ok && sess != nil
}
