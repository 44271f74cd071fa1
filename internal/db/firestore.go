package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"tng-poetry-backend/internal/config"
)

// Clients bundles the Firebase Admin SDK clients the service needs.
type Clients struct {
	Firestore *firestore.Client
	Auth      *auth.Client
}

// Close releases the Firestore connection.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

// InitFirebase initializes the Firebase Admin SDK and returns the Firestore and Auth clients.
// Credentials come from a file, a Base64 service-account JSON, or Application Default Credentials.
func InitFirebase(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (*Clients, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("InitFirebase: appConfig cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("Credentials file specified in GOOGLE_APPLICATION_CREDENTIALS does not exist",
				zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		logger.Info("Initializing Firebase with Base64 encoded service account JSON")
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FirebaseServiceAccountJSONBase64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decodedJSON))
	default:
		logger.Info("Initializing Firebase using Application Default Credentials (ADC)")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: appConfig.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}
	logger.Info("Firestore client initialized successfully")

	authClient, err := app.Auth(ctx)
	if err != nil {
		fsClient.Close() // Best effort close
		return nil, fmt.Errorf("app.Auth: %w", err)
	}
	logger.Info("Firebase Auth client initialized successfully")

	return &Clients{Firestore: fsClient, Auth: authClient}, nil
}
