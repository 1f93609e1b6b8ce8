package app

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"30s"`
	AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	ResultTTL time.Duration `envconfig:"RESULT_TTL" default:"1h"`

	// PGDSN enables the run-audit recorder; empty disables it entirely.
	PGDSN string `envconfig:"PG_DSN" default:""`

	// MaxUploadBytes caps the size of a single CSV upload.
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"20971520"`
	// InlineRowLimit is the largest upload (in rows) built synchronously;
	// larger files must be submitted as async runs.
	InlineRowLimit int `envconfig:"INLINE_ROW_LIMIT" default:"50000"`

	UploadRateLimit  int           `envconfig:"UPLOAD_RATE_LIMIT" default:"30"`
	UploadRateWindow time.Duration `envconfig:"UPLOAD_RATE_WINDOW" default:"1m"`
}

// LoadConfig reads configuration from the environment, honouring a local
// .env file when one exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, errors.New("max upload bytes must be positive")
	}
	if cfg.ResultTTL <= 0 {
		return nil, errors.New("result ttl must be positive")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
