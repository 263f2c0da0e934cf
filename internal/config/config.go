package config

import (
	"fmt"

	pkgconfig "github.com/aviral-m/Backend-Project/pkg/config"
)

const defaultSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the video hosting service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8000"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"videohost"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"videohost_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"videohost_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Connection pool
	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns int32 `env:"DB_MIN_CONNS" envDefault:"5"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT. Access and refresh tokens are signed with separate secrets and
	// carry separate lifetimes.
	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`
	AccessTokenExpiry  string `env:"ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	RefreshTokenExpiry string `env:"REFRESH_TOKEN_EXPIRY" envDefault:"240h"`

	// Media storage (S3-compatible)
	S3Endpoint      string `env:"S3_ENDPOINT" envDefault:"localhost:9000"`
	S3AccessKey     string `env:"S3_ACCESS_KEY" envDefault:"videohost"`
	S3SecretKey     string `env:"S3_SECRET_KEY" envDefault:"videohost_secret"`
	S3Bucket        string `env:"S3_BUCKET" envDefault:"videohost-media"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL" envDefault:"http://localhost:9000/videohost-media"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	// Outside development, both token secrets must be explicitly set and
	// strong enough.
	if cfg.Environment != "development" {
		for name, secret := range map[string]string{
			"ACCESS_TOKEN_SECRET":  cfg.AccessTokenSecret,
			"REFRESH_TOKEN_SECRET": cfg.RefreshTokenSecret,
		} {
			if secret == defaultSecret {
				return nil, fmt.Errorf("%s must be explicitly set via environment variable in %q mode", name, cfg.Environment)
			}
			if len(secret) < 32 {
				return nil, fmt.Errorf("%s must be at least 32 characters long, got %d", name, len(secret))
			}
		}
		if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
			return nil, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
		}
	}

	return cfg, nil
}
