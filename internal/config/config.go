// Package config loads cvchat configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration values.
type Config struct {
	// CV Studio API
	APIURL     string        `env:"CVCHAT_API_URL" envDefault:"http://localhost:8990"`
	APITimeout time.Duration `env:"CVCHAT_API_TIMEOUT" envDefault:"60s"`

	// Sign-in credentials
	Email    string `env:"CVCHAT_EMAIL"`
	Password string `env:"CVCHAT_PASSWORD"`

	// Where triggered downloads (generated PDFs, fetched files) land
	DownloadDir string `env:"CVCHAT_DOWNLOAD_DIR" envDefault:"."`

	// Chat behavior
	Locale              string `env:"CVCHAT_LOCALE" envDefault:"en"`
	LocaleFile          string `env:"CVCHAT_LOCALE_FILE"`
	StreamReplies       bool   `env:"CVCHAT_STREAM_REPLIES" envDefault:"false"`
	SuggestionThreshold int    `env:"CVCHAT_SUGGESTION_THRESHOLD" envDefault:"3"`

	// Logging
	LogFile  string `env:"CVCHAT_LOG_FILE" envDefault:"/tmp/cvchat.log"`
	LogLevel string `env:"CVCHAT_LOG_LEVEL" envDefault:"INFO"`
}

// Load reads configuration from a .env file (if present) and the environment.
// Explicit environment variables always win over .env entries.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Level converts the configured log level string to a slog.Level.
func (c Config) Level() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
