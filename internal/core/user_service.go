package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tng-poetry-backend/internal/db"
	"tng-poetry-backend/internal/models"
	"tng-poetry-backend/pkg/cache"
)

const userCacheKeyPrefix = "user:"

// userService implements the UserService interface.
// Profiles are read through an optional cache; a nil cache disables caching.
type userService struct {
	userRepo db.UserRepository
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, profileCache cache.Cache, cacheTTL time.Duration, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		userRepo: userRepo,
		cache:    profileCache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a new one
// named after the provider display name, or DefaultUserName when the provider has none.
// An existing profile picks up name and avatar changes made at the provider.
func (s *userService) GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error) {
	if userID == "" {
		return nil, false, errors.New("userID cannot be empty")
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, false, err
		}

		name := displayName
		if name == "" {
			name = models.DefaultUserName
		}
		newUser := &models.User{
			ID:         userID,
			Name:       name,
			Email:      email,
			Avatar:     photoURL,
			JoinedDate: s.now(),
		}
		if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
			return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, createErr)
		}
		s.storeCached(ctx, newUser)
		s.logger.Info("User profile created", zap.String("userId", userID))
		return newUser, true, nil
	}

	if drifted := applyProviderDrift(user, displayName, photoURL); drifted {
		if err := s.userRepo.Update(ctx, user); err != nil {
			// The stale profile is still usable; the next sign-in retries.
			s.logger.Warn("Failed to refresh user profile from provider", zap.String("userId", userID), zap.Error(err))
			s.dropCached(ctx, userID)
			return user, false, nil
		}
		s.storeCached(ctx, user)
	}
	return user, false, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if user, ok := s.loadCached(ctx, userID); ok {
		return user, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("%w: user with ID '%s': %w", ErrStoreRead, userID, err)
	}
	s.storeCached(ctx, user)
	return user, nil
}

func applyProviderDrift(user *models.User, displayName, photoURL string) bool {
	drifted := false
	if displayName != "" && displayName != user.Name {
		user.Name = displayName
		drifted = true
	}
	if photoURL != "" && photoURL != user.Avatar {
		user.Avatar = photoURL
		drifted = true
	}
	return drifted
}

func (s *userService) loadCached(ctx context.Context, userID string) (*models.User, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, userCacheKeyPrefix+userID)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Debug("Profile cache read failed", zap.String("userId", userID), zap.Error(err))
		}
		return nil, false
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.dropCached(ctx, userID)
		return nil, false
	}
	return &user, true
}

func (s *userService) storeCached(ctx context.Context, user *models.User) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, userCacheKeyPrefix+user.ID, string(raw), s.cacheTTL); err != nil {
		s.logger.Debug("Profile cache write failed", zap.String("userId", user.ID), zap.Error(err))
	}
}

func (s *userService) dropCached(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, userCacheKeyPrefix+userID)
}
