package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Port        string
	Environment string
	SentryDSN   string
	LogLevel    string

	Database        Database
	PostRateLimit   int
	PostRateWindow  time.Duration
	TrustProxy      bool
	ShutdownTimeout time.Duration
}

type Database struct {
	Driver          string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type AuthConfig struct {
	JWTSecret    string
	JWTAlgorithm string
	TokenTTL     time.Duration
}

// Load reads the service configuration from the environment. Unset optional
// values take their defaults. Every missing required value and every value
// that does not parse is reported in the returned error, not just the first.
func Load() (Config, error) {
	var problems []string

	cfg := Config{
		Port:        EnvOrDefault("PORT", "8080"),
		Environment: EnvOrDefault("APP_ENV", "development"),
		SentryDSN:   strings.TrimSpace(os.Getenv("SENTRY_DSN")),
		LogLevel:    EnvOrDefault("LOG_LEVEL", "info"),
		Database: Database{
			Driver:          EnvOrDefault("DATABASE_DRIVER", DriverPostgres),
			URL:             requireEnv("DATABASE_URL", &problems),
			MaxOpenConns:    envPositiveInt("DB_MAX_OPEN_CONNS", 10, &problems),
			MaxIdleConns:    envPositiveInt("DB_MAX_IDLE_CONNS", 5, &problems),
			ConnMaxLifetime: envMinutes("DB_CONN_MAX_LIFETIME_MINUTES", 30, &problems),
			ConnMaxIdleTime: envMinutes("DB_CONN_MAX_IDLE_TIME_MINUTES", 10, &problems),
		},
		PostRateLimit:   envPositiveInt("POST_RATE_LIMIT_MAX", 30, &problems),
		PostRateWindow:  envSeconds("POST_RATE_LIMIT_WINDOW_SECONDS", 60, &problems),
		TrustProxy:      envBool("TRUST_PROXY", false, &problems),
		ShutdownTimeout: envSeconds("SHUTDOWN_TIMEOUT_SECONDS", 10, &problems),
	}

	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		problems = append(problems, fmt.Sprintf("unsupported DATABASE_DRIVER: %s", cfg.Database.Driver))
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// LoadAuth reads token signing settings. The secret and algorithm have no
// defaults and must come from the environment.
func LoadAuth() (AuthConfig, error) {
	var problems []string

	cfg := AuthConfig{
		JWTSecret:    requireEnv("JWT_SECRET", &problems),
		JWTAlgorithm: strings.ToUpper(requireEnv("JWT_ALGORITHM", &problems)),
		TokenTTL:     envMinutes("JWT_EXPIRES_MINUTES", 60, &problems),
	}

	if len(problems) > 0 {
		return AuthConfig{}, fmt.Errorf("invalid auth configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

func requireEnv(name string, problems *[]string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		*problems = append(*problems, fmt.Sprintf("missing required env: %s", name))
	}
	return value
}

func EnvOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envPositiveInt(name string, fallback int, problems *[]string) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		*problems = append(*problems, fmt.Sprintf("%s must be a positive integer, got %q", name, value))
		return fallback
	}
	return parsed
}

func envMinutes(name string, fallback int, problems *[]string) time.Duration {
	return time.Duration(envPositiveInt(name, fallback, problems)) * time.Minute
}

func envSeconds(name string, fallback int, problems *[]string) time.Duration {
	return time.Duration(envPositiveInt(name, fallback, problems)) * time.Second
}

func envBool(name string, fallback bool, problems *[]string) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if value == "" {
		return fallback
	}
	parsed, ok := parseBool(value)
	if !ok {
		*problems = append(*problems, fmt.Sprintf("%s must be a boolean, got %q", name, value))
		return fallback
	}
	return parsed
}

func EnvBoolOrDefault(name string, fallback bool) bool {
	parsed, ok := parseBool(strings.TrimSpace(strings.ToLower(os.Getenv(name))))
	if !ok {
		return fallback
	}
	return parsed
}

func parseBool(value string) (bool, bool) {
	switch value {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}
