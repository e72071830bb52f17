package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Catalog sources understood by CATALOG_SOURCE.
const (
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	LogFormat          string
	LogLevel           string
	DatabaseURL        string
	RedisURL           string
	CatalogSource      string
	CatalogFile        string
	CatalogMigrate     bool
	RulesFile          string
	CartTTL            time.Duration
	IdempotencyTTL     time.Duration
	SessionCookieName  string
	CORSAllowedOrigins []string
	CookieDomain       string
	CookieSecure       bool
	CookieSameSite     http.SameSite
	VINBaseURL         string
	VINTimeout         time.Duration
	VINCacheTTL        time.Duration
	VINRateLimitMax    int
	VINRateLimitWindow time.Duration
	RateLimit          string
	BodyLimitBytes     int64
	SecurityHeaders    bool
	CSRFEnabled        bool
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		LogFormat:          valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:           valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		DatabaseURL:        strings.TrimSpace(k.String("DATABASE_URL")),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CatalogSource:      strings.ToLower(valueOrDefault(k.String("CATALOG_SOURCE"), CatalogSourceFile)),
		CatalogFile:        strings.TrimSpace(k.String("CATALOG_FILE")),
		CatalogMigrate:     parseBool(k.String("CATALOG_MIGRATE")),
		RulesFile:          strings.TrimSpace(k.String("RULES_FILE")),
		CartTTL:            parseDuration(k.String("CART_TTL"), "720h"),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		SessionCookieName:  valueOrDefault(k.String("SESSION_COOKIE_NAME"), "hu_session"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		CookieDomain:       strings.TrimSpace(k.String("COOKIE_DOMAIN")),
		CookieSecure:       parseBool(k.String("COOKIE_SECURE")),
		CookieSameSite:     parseSameSite(k.String("COOKIE_SAMESITE")),
		VINBaseURL:         valueOrDefault(k.String("VIN_BASE_URL"), "https://vpic.nhtsa.dot.gov/api"),
		VINTimeout:         parseDuration(k.String("VIN_TIMEOUT"), "8s"),
		VINCacheTTL:        parseDuration(k.String("VIN_CACHE_TTL"), "24h"),
		VINRateLimitMax:    parseInt(k.String("VIN_RATE_LIMIT_MAX"), 10),
		VINRateLimitWindow: parseDuration(k.String("VIN_RATE_LIMIT_WINDOW"), "1m"),
		RateLimit:          valueOrDefault(k.String("RATE_LIMIT"), "300-M"),
		BodyLimitBytes:     int64(parseInt(k.String("BODY_LIMIT_BYTES"), 64<<10)),
		SecurityHeaders:    parseBoolDefault(k.String("SECURITY_HEADERS"), true),
		CSRFEnabled:        parseBool(k.String("CSRF_ENABLED")),
	}

	if cfg.CookieSameSite == http.SameSiteDefaultMode {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	switch cfg.CatalogSource {
	case CatalogSourceFile:
	case CatalogSourcePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when CATALOG_SOURCE=postgres")
		}
	default:
		return nil, fmt.Errorf("CATALOG_SOURCE must be %q or %q, got %q", CatalogSourceFile, CatalogSourcePostgres, cfg.CatalogSource)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// UsesPostgres reports whether the catalog is read from Postgres.
func (c *Config) UsesPostgres() bool {
	return c.CatalogSource == CatalogSourcePostgres
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return fallback
	case "0", "false", "no", "off":
		return false
	default:
		return parseBool(value)
	}
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteDefaultMode
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
