package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/foodcart/internal/money"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv string
	Port   string

	RedisURL string

	CartKeyPrefix    string
	CartTTL          time.Duration
	CartDeliveryFee  money.Money
	CurrencyCode     string
	CartLockTTL      time.Duration
	LockRetryBackoff time.Duration
	IdempotencyTTL   time.Duration

	CORSAllowedOrigins     []string
	RateLimit              string
	BodyLimitBytes         int64
	SecurityHeadersEnabled bool
	HSTSEnabled            bool

	WhatsAppPhone        string
	HandoffWebhookURL    string
	HandoffWebhookSecret string
	HandoffQueue         string
	HandoffMaxRetry      int
	WorkerConcurrency    int
	WorkerMetricsAddr    string

	OutboundTimeout     time.Duration
	RetryBase           time.Duration
	RetryMaxAttempts    int
	RetryJitter         float64
	BreakerMinRequests  int
	BreakerFailureRatio float64
	BreakerOpenFor      time.Duration

	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	MetricsEnabled   bool
	MetricsBuckets   string
	TracingEnabled   bool
	TracingEndpoint  string
	TracingExporter  string
	TracingSampling  float64
	PprofEnabled     bool
	PprofUser        string
	PprofPass        string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	fee, err := money.Parse(valueOrDefault(k.String("CART_DELIVERY_FEE"), "5.00"))
	if err != nil {
		return nil, fmt.Errorf("CART_DELIVERY_FEE: %w", err)
	}

	cfg := &Config{
		AppEnv:   valueOrDefault(k.String("APP_ENV"), "development"),
		Port:     valueOrDefault(k.String("PORT"), "8080"),
		RedisURL: strings.TrimSpace(k.String("REDIS_URL")),

		CartKeyPrefix:    valueOrDefault(k.String("CART_KEY_PREFIX"), "cart"),
		CartTTL:          parseDuration(k.String("CART_TTL"), "168h"),
		CartDeliveryFee:  fee,
		CurrencyCode:     strings.ToUpper(valueOrDefault(k.String("CURRENCY_CODE"), "BRL")),
		CartLockTTL:      parseDuration(k.String("CART_LOCK_TTL"), "5s"),
		LockRetryBackoff: parseDuration(k.String("LOCK_RETRY_BACKOFF"), "25ms"),
		IdempotencyTTL:   parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),

		CORSAllowedOrigins:     splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		RateLimit:              valueOrDefault(k.String("RATE_LIMIT"), "300-M"),
		BodyLimitBytes:         int64(parseInt(k.String("BODY_LIMIT_BYTES"), 64<<10)),
		SecurityHeadersEnabled: parseBoolDefault(k.String("SECURITY_HEADERS_ENABLED"), true),
		HSTSEnabled:            parseBoolDefault(k.String("SECURITY_HSTS_ENABLED"), false),

		WhatsAppPhone:        strings.TrimSpace(k.String("WHATSAPP_PHONE")),
		HandoffWebhookURL:    strings.TrimSpace(k.String("HANDOFF_WEBHOOK_URL")),
		HandoffWebhookSecret: k.String("HANDOFF_WEBHOOK_SECRET"),
		HandoffQueue:         valueOrDefault(k.String("HANDOFF_QUEUE"), "handoff"),
		HandoffMaxRetry:      parseInt(k.String("HANDOFF_MAX_RETRY"), 8),
		WorkerConcurrency:    parseInt(k.String("WORKER_CONCURRENCY"), 4),
		WorkerMetricsAddr:    strings.TrimSpace(k.String("WORKER_METRICS_ADDR")),

		OutboundTimeout:     parseDuration(k.String("OUTBOUND_TIMEOUT"), "5s"),
		RetryBase:           parseDuration(k.String("RETRY_BASE"), "200ms"),
		RetryMaxAttempts:    parseInt(k.String("RETRY_MAX_ATTEMPTS"), 3),
		RetryJitter:         parseFloat(k.String("RETRY_JITTER"), 0.2),
		BreakerMinRequests:  parseInt(k.String("BREAKER_MIN_REQUESTS"), 5),
		BreakerFailureRatio: parseFloat(k.String("BREAKER_FAILURE_RATIO"), 0.5),
		BreakerOpenFor:      parseDuration(k.String("BREAKER_OPEN_FOR"), "30s"),

		LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "foodcart"),
		MetricsEnabled:   parseBoolDefault(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
		TracingEnabled:   parseBoolDefault(k.String("OBS_ENABLE_TRACING"), false),
		TracingEndpoint:  k.String("OBS_OTLP_ENDPOINT"),
		TracingExporter:  valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
		TracingSampling:  parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
		PprofEnabled:     parseBoolDefault(k.String("OBS_ENABLE_PPROF"), false),
		PprofUser:        k.String("SECURE_PPROF_BASIC_AUTH_USER"),
		PprofPass:        k.String("SECURE_PPROF_BASIC_AUTH_PASS"),
	}

	if cfg.CurrencyCode != "BRL" {
		return nil, fmt.Errorf("CURRENCY_CODE %q is not supported", cfg.CurrencyCode)
	}
	if cfg.CartDeliveryFee < 0 {
		return nil, errors.New("CART_DELIVERY_FEE must not be negative")
	}
	if strings.ContainsAny(cfg.CartKeyPrefix, " \t\n") {
		return nil, errors.New("CART_KEY_PREFIX must not contain whitespace")
	}
	if cfg.HandoffWebhookURL != "" && cfg.RedisURL == "" {
		return nil, errors.New("HANDOFF_WEBHOOK_URL requires REDIS_URL for the delivery queue")
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

// UsesRedis reports whether Redis-backed storage, locks and queues are enabled.
func (c *Config) UsesRedis() bool {
	return c.RedisURL != ""
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

func parseInt(value string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}

func parseFloat(value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return v
}

// MustLoad behaves like Load but panics on error.
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
