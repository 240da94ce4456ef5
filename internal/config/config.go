package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

const envPrefix = "APP_"

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string

	SessionSecret  string
	SessionTTL     time.Duration
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite

	CORSAllowedOrigins []string

	// DeliveryCharge is added to every order total. Zero means free delivery.
	DeliveryCharge decimal.Decimal

	EmailAPIURL      string
	EmailAPIKey      string
	EmailFrom        string
	AdminNotifyEmail string

	// EmailQueue routes email through asynq; when false emails are sent inline.
	EmailQueue bool

	CatalogCacheTTL   time.Duration
	CartTTL           time.Duration
	DashboardCacheTTL time.Duration

	RateLimit         string
	LoginMaxAttempts  int
	LoginWindow       time.Duration
	QuoteMaxPerWindow int
	QuoteWindow       time.Duration
	IdempotencyTTL    time.Duration
	MaxBodyBytes      int64
	LogFormat         string
	LogLevel          string
	OTelEndpoint      string
	MetricsEnabled    bool
	MigrateOnStart    bool
	WorkerConcurrency int
}

// Load reads APP_* variables from the environment and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	provider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("env"), "development"),
		Port:               valueOrDefault(k.String("port"), "8080"),
		DatabaseURL:        k.String("database_url"),
		RedisURL:           k.String("redis_url"),
		SessionSecret:      k.String("session_secret"),
		SessionTTL:         parseDuration(k.String("session_ttl"), "168h"),
		CookieDomain:       strings.TrimSpace(k.String("cookie_domain")),
		CookieSecure:       parseBool(k.String("cookie_secure")),
		CookieSameSite:     parseSameSite(k.String("cookie_samesite")),
		CORSAllowedOrigins: splitAndTrim(k.String("cors_allowed_origins")),
		EmailAPIURL:        strings.TrimSpace(k.String("email_api_url")),
		EmailAPIKey:        k.String("email_api_key"),
		EmailFrom:          valueOrDefault(k.String("email_from"), "orders@packklite.local"),
		AdminNotifyEmail:   strings.TrimSpace(k.String("admin_notify_email")),
		EmailQueue:         parseBoolDefault(k.String("email_queue"), true),
		CatalogCacheTTL:    parseDuration(k.String("catalog_cache_ttl"), "5m"),
		CartTTL:            parseDuration(k.String("cart_ttl"), "720h"),
		DashboardCacheTTL:  parseDuration(k.String("dashboard_cache_ttl"), "60s"),
		RateLimit:          valueOrDefault(k.String("rate_limit"), "300-M"),
		LoginMaxAttempts:   parseInt(k.String("login_max_attempts"), 5),
		LoginWindow:        parseDuration(k.String("login_window"), "15m"),
		QuoteMaxPerWindow:  parseInt(k.String("quote_max_per_window"), 5),
		QuoteWindow:        parseDuration(k.String("quote_window"), "1h"),
		IdempotencyTTL:     parseDuration(k.String("idempotency_ttl"), "24h"),
		MaxBodyBytes:       int64(parseInt(k.String("max_body_bytes"), 1<<20)),
		LogFormat:          valueOrDefault(k.String("log_format"), "json"),
		LogLevel:           valueOrDefault(k.String("log_level"), "info"),
		OTelEndpoint:       strings.TrimSpace(k.String("otel_endpoint")),
		MetricsEnabled:     parseBoolDefault(k.String("metrics_enabled"), true),
		MigrateOnStart:     parseBool(k.String("migrate_on_start")),
		WorkerConcurrency:  parseInt(k.String("worker_concurrency"), 5),
	}

	if cfg.CookieSameSite == http.SameSiteDefaultMode {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}

	charge, err := parseDecimal(k.String("delivery_charge"))
	if err != nil {
		return nil, fmt.Errorf("APP_DELIVERY_CHARGE: %w", err)
	}
	cfg.DeliveryCharge = charge

	if cfg.DatabaseURL == "" {
		return nil, errors.New("APP_DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("APP_REDIS_URL is required")
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, errors.New("APP_SESSION_SECRET must be at least 32 bytes")
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

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func parseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("must not be negative")
	}
	return d, nil
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
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d", &n); err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseBool(value string) bool {
	return parseBoolDefault(value, false)
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
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

// MustLoad behaves like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests sets the given variables, loads the config and restores the
// previous environment.
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
