// Package config loads application configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds every runtime setting of the server.
type AppConfig struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	DatabaseURL string `mapstructure:"PGSQL_URL"`

	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTIssuer      string        `mapstructure:"JWT_ISSUER"`
	JWTExpiry      time.Duration `mapstructure:"JWT_EXPIRY"`
	RateLimitRate  string        `mapstructure:"RATE_LIMIT_RATE"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`

	FirestoreProjectID string `mapstructure:"FIRESTORE_PROJECT_ID"`
	EncryptionSecret   string `mapstructure:"ENCRYPTION_SECRET"`
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// always win over file values.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("JWT_ISSUER", "expense-tracker-server")
	v.SetDefault("JWT_EXPIRY", "24h")
	v.SetDefault("RATE_LIMIT_RATE", "60-M")

	// AutomaticEnv alone does not populate Unmarshal; bind each key we read.
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "PGSQL_URL",
		"JWT_SECRET", "JWT_ISSUER", "JWT_EXPIRY", "RATE_LIMIT_RATE",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URL",
		"FIRESTORE_PROJECT_ID", "ENCRYPTION_SECRET",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("PGSQL_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.EncryptionSecret == "" {
		return nil, fmt.Errorf("ENCRYPTION_SECRET is required")
	}

	return &cfg, nil
}
