package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// API client configuration
	API APIConfig

	// Local session persistence
	Session SessionConfig

	// Development backend configuration
	Server ServerConfig

	// Database Configuration (development backend)
	Database DatabaseConfig

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig holds settings for talking to the review backend
type APIConfig struct {
	URL     string // Overrides the server from foodcritic.yaml when set
	Timeout time.Duration
}

// SessionConfig selects where the token and profile are persisted
type SessionConfig struct {
	Store string // keyring, file
}

// ServerConfig holds development backend settings
type ServerConfig struct {
	Port        string
	JWTSecret   string
	JWTTTL      time.Duration
	UploadDir   string
	CORSOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
	File   string // Optional rotating log file
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	timeout, err := durationEnv("FOODCRITIC_HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	jwtTTL, err := durationEnv("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	sessionStore := strings.ToLower(envOr("FOODCRITIC_SESSION_STORE", "keyring"))
	if sessionStore != "keyring" && sessionStore != "file" {
		return nil, fmt.Errorf("invalid FOODCRITIC_SESSION_STORE %q, must be one of: keyring, file", sessionStore)
	}

	var origins []string
	for _, origin := range strings.Split(envOr("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return &Config{
		API: APIConfig{
			URL:     os.Getenv("FOODCRITIC_API_URL"),
			Timeout: timeout,
		},
		Session: SessionConfig{
			Store: sessionStore,
		},
		Server: ServerConfig{
			Port:        envOr("PORT", "8080"),
			JWTSecret:   os.Getenv("JWT_SECRET"),
			JWTTTL:      jwtTTL,
			UploadDir:   envOr("UPLOAD_DIR", "uploads"),
			CORSOrigins: origins,
		},
		Database: DatabaseConfig{
			URL: envOr("DATABASE_URL", "foodcritic.sqlite"),
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "console"),
			File:   os.Getenv("LOG_FILE"),
		},
	}, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
