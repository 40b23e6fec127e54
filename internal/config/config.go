package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds the dashboard and metrics listener configuration
type ServerConfig struct {
	HTTPPort    string
	MetricsPort string
	CORSOrigins []string
}

// BackendConfig holds analysis backend connection settings
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SyncConfig controls the championship sync sequence
type SyncConfig struct {
	Interval      time.Duration
	Championships []int
}

// Config holds all application configuration
type Config struct {
	Env     string
	Server  ServerConfig
	Backend BackendConfig
	Sync    SyncConfig

	// RedisURL and DatabaseDSN are optional; empty disables the component.
	RedisURL    string
	DatabaseDSN string

	ToastTTL time.Duration
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one is present
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := getDuration("BACKEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	interval, err := getDuration("SYNC_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	toastTTL, err := getDuration("TOAST_TTL", 5*time.Second)
	if err != nil {
		return nil, err
	}
	championships, err := parseIDs(getEnv("SYNC_CHAMPIONSHIPS", "2,6,10"))
	if err != nil {
		return nil, fmt.Errorf("SYNC_CHAMPIONSHIPS: %w", err)
	}

	return &Config{
		Env: getEnv("ENV", "local"),
		Server: ServerConfig{
			HTTPPort:    getEnv("HTTP_PORT", "8080"),
			MetricsPort: getEnv("METRICS_PORT", "9095"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:5000/api"),
			Timeout: timeout,
		},
		Sync: SyncConfig{
			Interval:      interval,
			Championships: championships,
		},
		RedisURL:    lookupEnv("REDIS_URL", "redis://localhost:6379"),
		DatabaseDSN: lookupEnv("DATABASE_DSN", ""),
		ToastTTL:    toastTTL,
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnv is like getEnv but honours an explicitly empty value
func lookupEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: duration must be positive, got %s", key, d)
	}
	return d, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIDs(raw string) ([]int, error) {
	parts := splitList(raw)
	if len(parts) == 0 {
		return nil, fmt.Errorf("at least one championship id is required")
	}
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid championship id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
