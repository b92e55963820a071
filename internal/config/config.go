// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pocketcash-wallet/internal/storage"
	"pocketcash-wallet/pkg/db" // Import db package for its Config struct
)

// DevJWTSecret is used when JWT_SECRET is unset. It must never reach production.
const DevJWTSecret = "pocketcash-dev-secret-change-me"

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort     string
	RequestTimeout time.Duration
	AllowedOrigins []string

	DB        db.Config
	DBMigrate bool

	JWTSecret      string
	JWTTTL         time.Duration
	UsingDevSecret bool
	PinHashCost    int

	LogLevel  string
	LogFormat string

	S3 storage.S3Config
}

// LoadConfig loads configuration from environment variables.
// It returns an AppConfig instance or an error if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		ServerPort: valueOrDefault("SERVER_PORT", "8080"),
		DB: db.Config{
			Host:     valueOrDefault("DB_HOST", "localhost"),
			User:     valueOrDefault("DB_USER", "user"),
			Password: valueOrDefault("DB_PASSWORD", "password"),
			DBName:   valueOrDefault("DB_NAME", "walletdb"),
			SSLMode:  valueOrDefault("DB_SSLMODE", "disable"),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		LogLevel:  valueOrDefault("LOG_LEVEL", "info"),
		LogFormat: valueOrDefault("LOG_FORMAT", "json"),
		S3: storage.S3Config{
			Bucket:        os.Getenv("S3_BUCKET"),
			Region:        valueOrDefault("S3_REGION", "us-east-1"),
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		},
		AllowedOrigins: splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DevJWTSecret
		cfg.UsingDevSecret = true
	}

	var err error
	if cfg.DB.Port, err = parseInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.PinHashCost, err = parseInt("PIN_HASH_COST", 10); err != nil {
		return nil, err
	}
	if cfg.PinHashCost < 10 {
		return nil, fmt.Errorf("invalid PIN_HASH_COST: %d is below the minimum of 10", cfg.PinHashCost)
	}
	if cfg.DBMigrate, err = parseBool("DB_MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = parseDuration("JWT_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
