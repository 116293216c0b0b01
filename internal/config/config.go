package config

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Database struct {
	User     string `envconfig:"DB_USER" default:"kanso_user"`
	Password string `envconfig:"DB_PASSWORD" default:"secret"`
	Name     string `envconfig:"DB_NAME" default:"kanso_db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// Redis is optional. An empty host disables caching and rate limiting.
type Redis struct {
	Host     string `envconfig:"REDIS_HOST"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type Auth struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Issuer   string        `envconfig:"JWT_ISSUER" default:"kanso-learn"`
	TokenTTL time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

type RateLimit struct {
	Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// Telemetry exports metrics over OTLP/gRPC when Endpoint is set.
type Telemetry struct {
	Endpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure bool   `envconfig:"OTEL_INSECURE" default:"false"`
}

type Config struct {
	Port            string `envconfig:"PORT" default:"8080"`
	StreakThreshold int    `envconfig:"STREAK_THRESHOLD_MINUTES" default:"15"`
	Database        Database
	Redis           Redis
	Auth            Auth
	RateLimit       RateLimit
	Telemetry       Telemetry
}

// Load reads an optional .env file and then the environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.StreakThreshold < 1 {
		return nil, fmt.Errorf("config: STREAK_THRESHOLD_MINUTES must be at least 1, got %d", cfg.StreakThreshold)
	}
	return &cfg, nil
}

// LoadDatabase reads only the database settings, for tools that never issue tokens.
func LoadDatabase(envFiles ...string) (*Database, error) {
	_ = godotenv.Load(envFiles...)

	var db Database
	if err := envconfig.Process("", &db); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &db, nil
}

func (d Database) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

func (r Redis) Enabled() bool {
	return r.Host != ""
}
