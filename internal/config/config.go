package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"
)

type ClientConfig struct {
	APIToken    string        `envconfig:"TMDB_API_TOKEN" required:"true"`
	APIURL      string        `envconfig:"TMDB_API_URL" default:"https://api.themoviedb.org"`
	Language    string        `envconfig:"TMDB_LANGUAGE" default:"en-US"`
	Timeout     time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	Limit       int           `envconfig:"TMDB_RATE_LIMIT" default:"4"` // reqs/s, TMDB allows ~40 per 10s
	Burst       int           `envconfig:"TMDB_BURST_AMOUNT" default:"5"`
	MaxRetries  int           `envconfig:"TMDB_MAX_RETRIES" default:"1"`
	BaseBackoff time.Duration `envconfig:"TMDB_BASE_BACKOFF" default:"1s"`
}

type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	CORSOrigin      string        `envconfig:"CORS_ALLOWED_ORIGIN" default:"*"`
	RateLimitPerSec float64       `envconfig:"RATE_LIMIT_PER_SEC" default:"5"`
	RateBurst       int           `envconfig:"RATE_BURST" default:"20"`
}

// Addr is the listen address derived from Port.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

type SessionConfig struct {
	TTL           time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"5m"`
	CookieSecure  bool          `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
}

type TelemetryConfig struct {
	ServiceName    string `envconfig:"OTEL_SERVICE_NAME" default:"movie-search"`
	TracesExporter string `envconfig:"OTEL_TRACES_EXPORTER" default:"none"`
	OTLPEndpoint   string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	SentryDSN string `envconfig:"SENTRY_DSN"`

	Client    ClientConfig
	Server    ServerConfig
	Session   SessionConfig
	Telemetry TelemetryConfig
}

func Load() (*Config, error) {
	// a missing .env is fine, the environment may carry everything
	_ = godotenv.Load()

	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("load config error: %w", err)
	}

	if _, err := language.Parse(cfg.Client.Language); err != nil {
		return nil, fmt.Errorf("invalid TMDB_LANGUAGE %q: %w", cfg.Client.Language, err)
	}
	if cfg.Client.Limit <= 0 {
		return nil, fmt.Errorf("invalid rate limit: TMDB_RATE_LIMIT must be positive, got %d", cfg.Client.Limit)
	}
	if cfg.Client.MaxRetries < 1 {
		return nil, fmt.Errorf("invalid max retries: TMDB_MAX_RETRIES must be at least 1, got %d", cfg.Client.MaxRetries)
	}

	if cfg.Session.TTL <= 0 || cfg.Session.SweepInterval <= 0 {
		return nil, fmt.Errorf("invalid session timing: SESSION_TTL and SESSION_SWEEP_INTERVAL must be positive")
	}

	switch cfg.Telemetry.TracesExporter {
	case "none", "stdout", "otlp":
	default:
		return nil, fmt.Errorf("invalid OTEL_TRACES_EXPORTER %q: want none, stdout or otlp", cfg.Telemetry.TracesExporter)
	}

	return cfg, nil
}
