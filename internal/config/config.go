package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DBPath              string
	CatalogPath         string
	LogLevel            string
	LeaderboardTTL      time.Duration
	ExpiryWorkerCount   int
	ExpiryQueueSize     int
	ExpirySweepInterval time.Duration
	CORSAllowedOrigins  []string
	BcryptCost          int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:escaperoom.db"),
		CatalogPath:         envOr("CATALOG_PATH", "data/catalog.yaml"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		LeaderboardTTL:      envDurationOr("LEADERBOARD_TTL", 5*time.Minute),
		ExpiryWorkerCount:   envIntOr("EXPIRY_WORKER_COUNT", 2),
		ExpiryQueueSize:     envIntOr("EXPIRY_QUEUE_SIZE", 64),
		ExpirySweepInterval: envDurationOr("EXPIRY_SWEEP_INTERVAL", 30*time.Second),
		CORSAllowedOrigins:  envListOr("CORS_ALLOWED_ORIGINS", []string{"*"}),
		BcryptCost:          envIntOr("BCRYPT_COST", 10),
	}
}

// Validate reports every invalid setting at once, named by its env key.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if strings.TrimSpace(c.CatalogPath) == "" {
		errs = append(errs, errors.New("CATALOG_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	if c.LeaderboardTTL <= 0 {
		errs = append(errs, fmt.Errorf("LEADERBOARD_TTL must be positive, got %v", c.LeaderboardTTL))
	}
	if c.ExpiryWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("EXPIRY_WORKER_COUNT must be at least 1, got %d", c.ExpiryWorkerCount))
	}
	if c.ExpiryQueueSize < 1 {
		errs = append(errs, fmt.Errorf("EXPIRY_QUEUE_SIZE must be at least 1, got %d", c.ExpiryQueueSize))
	}
	if c.ExpirySweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("EXPIRY_SWEEP_INTERVAL must be positive, got %v", c.ExpirySweepInterval))
	}
	if len(c.CORSAllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS cannot be empty"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}

	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}

// envListOr splits a comma-separated value, dropping blanks.
func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
