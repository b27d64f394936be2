// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database driver names accepted in DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config carries every tunable the service reads at startup.
type Config struct {
	AppEnv           string
	LogLevel         string
	HTTPListenAddr   string
	PublicBasePath   string
	MetricsNamespace string

	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string
	DatabaseSchema string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisTLS       bool
	ClientCacheTTL time.Duration

	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	TwilioTimeout      time.Duration
}

// Load reads configuration from environment variables, applying defaults
// and validating the combination.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:           getenv("APP_ENV", "development"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		HTTPListenAddr:   getenv("HTTP_LISTEN_ADDR", ":3000"),
		PublicBasePath:   os.Getenv("PUBLIC_BASE_PATH"),
		MetricsNamespace: getenv("METRICS_NAMESPACE", "barber_bot"),

		DatabaseDriver: strings.ToLower(getenv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     getenv("SQLITE_PATH", "barber-bot.db"),
		DatabaseSchema: os.Getenv("DATABASE_SCHEMA"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),
	}

	var err error
	if cfg.RedisDB, err = getenvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RedisTLS, err = getenvBool("REDIS_TLS", false); err != nil {
		return nil, err
	}
	if cfg.ClientCacheTTL, err = getenvDuration("CLIENT_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.TwilioTimeout, err = getenvDuration("TWILIO_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	switch cfg.DatabaseDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER=%s", DriverPostgres)
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER: %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}
