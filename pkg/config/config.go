package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds application configuration, loaded from the environment with
// an optional .env file for local development.
type AppConfig struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret string
	JWTExpiry time.Duration
	JWTIssuer string

	RedisAddr     string
	MongoURI      string
	MongoDatabase string

	// SweepCronSpec drives the hourly account lifecycle sweep.
	// ArchiveCronSpec drives the weekly archival enqueue.
	SweepCronSpec   string
	ArchiveCronSpec string

	// UnblockInsteadOfArchive selects which sweep the hourly schedule runs:
	// false archives expired blocked accounts, true reactivates expired blocked
	// savings accounts. Exactly one transition is live at a time.
	UnblockInsteadOfArchive bool

	// RateLimitSpec uses the limiter formatted syntax, e.g. "100-M".
	RateLimitSpec string

	CORSAllowedOrigins []string
}

// LoadConfig reads configuration from environment variables, falling back to
// a .env file when present.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("JWT_EXPIRY_MINUTES", 60)
	v.SetDefault("JWT_ISSUER", "jamila-bank")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "bank_archives")
	v.SetDefault("SWEEP_CRON_SPEC", "0 * * * *")
	v.SetDefault("ARCHIVE_CRON_SPEC", "0 2 * * 1")
	v.SetDefault("UNBLOCK_INSTEAD_OF_ARCHIVE", false)
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})

	cfg := &AppConfig{
		DatabaseURL:             v.GetString("DATABASE_URL"),
		Port:                    v.GetString("PORT"),
		IsProduction:            v.GetString("APP_ENV") == "production",
		JWTSecret:               v.GetString("JWT_SECRET"),
		JWTExpiry:               time.Duration(v.GetInt("JWT_EXPIRY_MINUTES")) * time.Minute,
		JWTIssuer:               v.GetString("JWT_ISSUER"),
		RedisAddr:               v.GetString("REDIS_ADDR"),
		MongoURI:                v.GetString("MONGO_URI"),
		MongoDatabase:           v.GetString("MONGO_DATABASE"),
		SweepCronSpec:           v.GetString("SWEEP_CRON_SPEC"),
		ArchiveCronSpec:         v.GetString("ARCHIVE_CRON_SPEC"),
		UnblockInsteadOfArchive: v.GetBool("UNBLOCK_INSTEAD_OF_ARCHIVE"),
		RateLimitSpec:           v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:      v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}
