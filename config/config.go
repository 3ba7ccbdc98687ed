// Package config parses server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"dev"`
	Port      int    `env:"PORT" envDefault:"8080"`
	DBPath    string `env:"DB_PATH" envDefault:"funding.db"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	// ThresholdsFile overrides the published thresholds when set (.json, .yaml, .yml).
	ThresholdsFile string `env:"THRESHOLDS_FILE"`
	// PostcodeMapFile is the JSON mapping written by cmd/preprocess.
	PostcodeMapFile string `env:"POSTCODE_MAP_FILE"`
	// CoursesFile is an optional course import file loaded on top of the samples.
	CoursesFile string `env:"COURSES_FILE"`
	SeedSamples bool   `env:"SEED_SAMPLES" envDefault:"true"`

	CORSAllowOrigins      []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"120"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// Load reads .env (if present) and then the process environment.
// Variables already set in the environment win over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if cfg.RateLimitPerMin <= 0 {
		return Config{}, fmt.Errorf("op=config.Load: RATE_LIMIT_PER_MIN must be positive, got %d", cfg.RateLimitPerMin)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
