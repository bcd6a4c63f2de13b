package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	ServerHost string

	// Allowed origins for CORS and the websocket handshake ("*" allows all)
	AllowedOrigins []string

	// Rooms
	DefaultContent           string
	PermissiveContentUpdates bool
	LockSweepInterval        time.Duration

	// Per-connection outbound queue length
	SendBufferSize int

	// Observability; empty disables tracing export
	JaegerEndpoint string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "localhost"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		DefaultContent: os.Getenv("DEFAULT_CONTENT"),

		JaegerEndpoint: lookupEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
	}

	var err error
	if cfg.SendBufferSize, err = getEnvInt("SEND_BUFFER_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.SendBufferSize <= 0 {
		return nil, fmt.Errorf("SEND_BUFFER_SIZE must be positive, got %d", cfg.SendBufferSize)
	}
	if cfg.LockSweepInterval, err = getEnvDuration("LOCK_SWEEP_INTERVAL", 0); err != nil {
		return nil, err
	}
	if cfg.LockSweepInterval < 0 {
		return nil, fmt.Errorf("LOCK_SWEEP_INTERVAL cannot be negative, got %s", cfg.LockSweepInterval)
	}
	if cfg.PermissiveContentUpdates, err = getEnvBool("PERMISSIVE_CONTENT_UPDATES", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnv is like getEnv but keeps an explicitly empty value
func lookupEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
