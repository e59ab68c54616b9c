package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIURL != "http://localhost:8990" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.APITimeout != 60*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.Locale != "en" {
		t.Errorf("Locale = %q", cfg.Locale)
	}
	if cfg.SuggestionThreshold != 3 {
		t.Errorf("SuggestionThreshold = %d", cfg.SuggestionThreshold)
	}
	if cfg.StreamReplies {
		t.Error("StreamReplies should default to false")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CVCHAT_API_URL", "https://cv.example.com")
	t.Setenv("CVCHAT_API_TIMEOUT", "5s")
	t.Setenv("CVCHAT_STREAM_REPLIES", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIURL != "https://cv.example.com" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.APITimeout != 5*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if !cfg.StreamReplies {
		t.Error("StreamReplies not picked up")
	}
}

func TestLevelParsing(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		cfg := Config{LogLevel: tt.in}
		if got := cfg.Level(); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
