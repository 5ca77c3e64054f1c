// Package config provides application configuration loaded from environment
// variables with defaults and validation. One Config type serves all four
// binaries; the gateway additionally requires the three collaborator base
// URLs and refuses to start without them.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// BreakerConfig defines the per-collaborator circuit breaker policy.
// The deployed default is aggressive fail-fast: one failure trips the
// breaker, probing again after one second.
type BreakerConfig struct {
	FailureThreshold int           // CB_FAILURE_THRESHOLD
	RecoveryTimeout  time.Duration // CB_RECOVERY_TIMEOUT
}

// RetryConfig bounds the cancellation compensation poll.
type RetryConfig struct {
	Deadline time.Duration // CANCEL_RETRY_DEADLINE
	Interval time.Duration // CANCEL_RETRY_INTERVAL
}

// GatewayConfig holds the gateway-only settings: where the collaborators
// live and how resilient calls to them behave.
type GatewayConfig struct {
	FlightsURL    string // FLIGHTS_SERVICE_URL (required)
	TicketsURL    string // TICKETS_SERVICE_URL (required)
	PrivilegesURL string // PRIVILEGES_SERVICE_URL (required)

	ClientTimeout time.Duration // CLIENT_TIMEOUT
	Breaker       BreakerConfig
	Retry         RetryConfig
}

// OTELConfig defines OpenTelemetry tracing settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string

	// Logging
	LogLevel  string
	LogPretty bool

	// Collaborator persistence (flights/tickets/bonus binaries)
	DBPath string

	// Rate limiting (gateway)
	RateRPS   float64
	RateBurst int

	Gateway GatewayConfig
	OTEL    OTELConfig
}

// Load reads configuration from environment variables, applies defaults,
// and validates the result. Collaborator URLs are validated separately by
// RequireCollaborators.
func Load(defaultService string) (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		DBPath: getenv("DB_PATH", defaultService+".db"),

		RateRPS:   getfloat("RATE_RPS", 50.0),
		RateBurst: getint("RATE_BURST", 100),

		Gateway: GatewayConfig{
			FlightsURL:    getenv("FLIGHTS_SERVICE_URL", ""),
			TicketsURL:    getenv("TICKETS_SERVICE_URL", ""),
			PrivilegesURL: getenv("PRIVILEGES_SERVICE_URL", ""),
			ClientTimeout: getdur("CLIENT_TIMEOUT", 5*time.Second),
			Breaker: BreakerConfig{
				FailureThreshold: getint("CB_FAILURE_THRESHOLD", 1),
				RecoveryTimeout:  getdur("CB_RECOVERY_TIMEOUT", time.Second),
			},
			Retry: RetryConfig{
				Deadline: getdur("CANCEL_RETRY_DEADLINE", 10*time.Second),
				Interval: getdur("CANCEL_RETRY_INTERVAL", time.Second),
			},
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", defaultService),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// normalization
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// validation
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Gateway.Breaker.FailureThreshold < 1 {
		return cfg, errors.New("CB_FAILURE_THRESHOLD must be >= 1")
	}
	if cfg.Gateway.Breaker.RecoveryTimeout <= 0 {
		return cfg, errors.New("CB_RECOVERY_TIMEOUT must be > 0")
	}
	if cfg.Gateway.Retry.Deadline <= 0 || cfg.Gateway.Retry.Interval <= 0 {
		return cfg, errors.New("cancel retry deadline and interval must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad(defaultService string) Config {
	cfg, err := Load(defaultService)
	if err != nil {
		panic(err)
	}
	return cfg
}

// RequireCollaborators verifies the three collaborator base URLs are set.
// The gateway calls this at startup and exits on error.
func (c Config) RequireCollaborators() error {
	if strings.TrimSpace(c.Gateway.FlightsURL) == "" {
		return errors.New("FLIGHTS_SERVICE_URL environment variable is required")
	}
	if strings.TrimSpace(c.Gateway.TicketsURL) == "" {
		return errors.New("TICKETS_SERVICE_URL environment variable is required")
	}
	if strings.TrimSpace(c.Gateway.PrivilegesURL) == "" {
		return errors.New("PRIVILEGES_SERVICE_URL environment variable is required")
	}
	return nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
