package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tng-poetry-backend/internal/api"
	"tng-poetry-backend/internal/auth"
	"tng-poetry-backend/internal/catalog"
	"tng-poetry-backend/internal/config"
	"tng-poetry-backend/internal/core"
	"tng-poetry-backend/internal/db"
	"tng-poetry-backend/internal/middleware"
	"tng-poetry-backend/pkg/cache"
	"tng-poetry-backend/pkg/messagequeue"
)

const maxSweepInterval = 5 * time.Minute

func main() {
	// In production the environment is set directly.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}

	// --- 1. Configuration and logger ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	var zapLogger *zap.Logger
	if appConfig.IsRelease() {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 2. Poem catalog ---
	var poems *catalog.Catalog
	if appConfig.PoemCatalogPath != "" {
		poems, err = catalog.Load(appConfig.PoemCatalogPath)
	} else {
		poems, err = catalog.LoadEmbedded()
	}
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load poem catalog", zap.Error(err))
	}
	zapLogger.Info("Poem catalog loaded", zap.Int("poems", poems.Len()), zap.Int("version", poems.Version()))

	// --- 3. Firebase Admin SDK (Firestore and Auth) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	clients, err := db.InitFirebase(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer func() {
		if err := clients.Close(); err != nil {
			zapLogger.Warn("Error closing Firebase clients", zap.Error(err))
		}
	}()

	// --- 4. Optional profile cache and stats queue ---
	var profileCache cache.Cache
	if appConfig.RedisAddr != "" {
		rc, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		}, zapLogger)
		if err != nil {
			zapLogger.Warn("Profile cache disabled: Redis unreachable", zap.Error(err))
		} else {
			profileCache = rc
			defer rc.Close()
		}
	}

	var events core.EventPublisher
	if appConfig.RabbitMQURL != "" {
		mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL}, zapLogger)
		if err != nil {
			zapLogger.Warn("Review events will only be logged: RabbitMQ unreachable", zap.Error(err))
		} else {
			events = core.NewQueueEventPublisher(mq, appConfig.StatsQueueName)
			defer mq.Close()
		}
	}

	// --- 5. Repositories and services ---
	userRepo := db.NewFirestoreUserRepository(clients.Firestore)
	reviewRepo := db.NewFirestoreReviewRepository(clients.Firestore, zapLogger)

	userService := core.NewUserService(userRepo, profileCache, appConfig.ProfileCacheTTL, zapLogger)
	reviewService := core.NewReviewService(reviewRepo, userService, poems, events, zapLogger)
	zapLogger.Info("Core services initialized successfully.")

	// --- 6. Browser sessions ---
	sweepInterval := appConfig.SessionIdleTimeout / 2
	if sweepInterval > maxSweepInterval {
		sweepInterval = maxSweepInterval
	}
	registry := auth.NewRegistry(func(id string) *auth.Session {
		provider := auth.NewFirebaseProvider(clients.Auth, appConfig.RevokeTokensOnLogout, zapLogger)
		return auth.NewSession(id, provider, userService, reviewService, auth.SessionOptions{
			Boards: core.BoardOptions{RefetchAfterWrite: appConfig.RefetchReviewsAfterWrite},
			Logger: zapLogger,
		})
	}, auth.RegistryOptions{
		IdleTimeout:   appConfig.SessionIdleTimeout,
		SweepInterval: sweepInterval,
		Logger:        zapLogger,
	})
	defer registry.Close()

	// --- 7. Gin engine and routes ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig.ClientURL, zapLogger))

	api.SetupRoutes(router, appConfig, zapLogger, registry, poems, userService)

	// --- 8. HTTP server with graceful shutdown ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}
