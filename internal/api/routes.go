package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tng-poetry-backend/internal/auth"
	"tng-poetry-backend/internal/catalog"
	"tng-poetry-backend/internal/config"
	"tng-poetry-backend/internal/core"
	"tng-poetry-backend/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (Logging, Recovery, CORS) is expected on router already.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	registry *auth.Registry,
	poems *catalog.Catalog,
	userService core.UserService,
) {
	authMW := middleware.NewAuthMiddleware(logger)
	cookieStore := middleware.NewCookieStore(
		[]byte(appConfig.SessionSecret),
		appConfig.IsRelease(),
		int(appConfig.SessionIdleTimeout.Seconds()),
	)

	poemHandler := NewPoemHandler(poems)
	reviewHandler := NewReviewHandler(poems, logger)
	authHandler := NewAuthHandler(logger)
	userHandler := NewUserHandler(userService, logger)
	feedbackHandler := NewFeedbackHandler(appConfig.FeedbackFormURL)

	apiV1 := router.Group("/api/v1")
	// The catalog and feedback link need no session.
	{
		apiV1.GET("/poems", poemHandler.ListPoems)
		apiV1.GET("/poems/:poemId", poemHandler.GetPoem)
		apiV1.GET("/feedback", feedbackHandler.GetFeedbackLink)
	}

	sessionGroup := apiV1.Group("",
		middleware.CookieSessions(cookieStore),
		middleware.SessionMiddleware(registry, logger),
	)
	{
		// Reading reviews is public; the board still tracks the session's likes.
		sessionGroup.GET("/poems/:poemId/reviews", reviewHandler.ListReviews)
		sessionGroup.POST("/poems/:poemId/reviews", authMW.RequireAuthenticated(), reviewHandler.CreateReview)
		sessionGroup.POST("/reviews/:reviewId/like", authMW.RequireAuthenticated(), reviewHandler.LikeReview)

		authGroup := sessionGroup.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/state", authHandler.State)
		}

		sessionGroup.GET("/users/me", authMW.RequireAuthenticated(), userHandler.GetCurrentUserProfile)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "TNG poetry backend is healthy.", "poems": poems.Len()})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
