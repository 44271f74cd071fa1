package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string        `mapstructure:"PORT"`
	GinMode                          string        `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string        `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string        `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string        `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	ClientURL                        string        `mapstructure:"CLIENT_URL"`
	SessionSecret                    string        `mapstructure:"SESSION_SECRET"`
	SessionIdleTimeout               time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
	RedisAddr                        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword                    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB                          int           `mapstructure:"REDIS_DB"`
	ProfileCacheTTL                  time.Duration `mapstructure:"PROFILE_CACHE_TTL"`
	RabbitMQURL                      string        `mapstructure:"RABBITMQ_URL"`
	StatsQueueName                   string        `mapstructure:"STATS_QUEUE_NAME"`
	RefetchReviewsAfterWrite         bool          `mapstructure:"REVIEWS_REFETCH_AFTER_WRITE"`
	RevokeTokensOnLogout             bool          `mapstructure:"AUTH_REVOKE_ON_LOGOUT"`
	PoemCatalogPath                  string        `mapstructure:"POEM_CATALOG_PATH"`
	FeedbackFormURL                  string        `mapstructure:"FEEDBACK_FORM_URL"`
}

// MinSessionSecretLength is the shortest accepted cookie signing secret.
const MinSessionSecretLength = 32

var envKeys = []string{
	"PORT",
	"GIN_MODE",
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"CLIENT_URL",
	"SESSION_SECRET",
	"SESSION_IDLE_TIMEOUT",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"PROFILE_CACHE_TTL",
	"RABBITMQ_URL",
	"STATS_QUEUE_NAME",
	"REVIEWS_REFETCH_AFTER_WRITE",
	"AUTH_REVOKE_ON_LOGOUT",
	"POEM_CATALOG_PATH",
	"FEEDBACK_FORM_URL",
}

// LoadConfig loads configuration from environment variables using Viper.
// When PATH_CONFIG names a YAML file its keys (same names as the variables) are read first;
// the environment still wins.
func LoadConfig() (*Config, error) {
	v := viper.New()
	if path := os.Getenv("PATH_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.New("failed to read config file " + path + ": " + err.Error())
		}
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SESSION_IDLE_TIMEOUT", 30*time.Minute)
	v.SetDefault("PROFILE_CACHE_TTL", 10*time.Minute)
	v.SetDefault("STATS_QUEUE_NAME", "poem-stats")
	v.SetDefault("REVIEWS_REFETCH_AFTER_WRITE", false)
	v.SetDefault("AUTH_REVOKE_ON_LOGOUT", false)

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.New("failed to bind env " + key + ": " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(c.SessionSecret) < MinSessionSecretLength {
		return errors.New("SESSION_SECRET must be at least 32 bytes")
	}
	if c.SessionIdleTimeout <= 0 {
		return errors.New("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.RedisAddr != "" && c.ProfileCacheTTL <= 0 {
		return errors.New("PROFILE_CACHE_TTL must be positive when REDIS_ADDR is set")
	}
	if c.RabbitMQURL != "" && c.StatsQueueName == "" {
		return errors.New("STATS_QUEUE_NAME is required when RABBITMQ_URL is set")
	}
	return nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}
