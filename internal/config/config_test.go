package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.DBPath != "data/billsplit.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Vision.MaxTokens != 800 {
		t.Errorf("MaxTokens = %d, want 800", cfg.Vision.MaxTokens)
	}
	if cfg.Vision.Enabled() {
		t.Error("vision should be disabled without credentials")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/b.db")
	t.Setenv("VISION_API_KEY", "secret")
	t.Setenv("VISION_ENDPOINT", "https://example.com/chat/completions")
	t.Setenv("VISION_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Vision.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Vision.Timeout)
	}
	if !cfg.Vision.Enabled() {
		t.Error("vision should be enabled")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-integer port", key: "PORT", value: "eighty"},
		{name: "zero port", key: "PORT", value: "0"},
		{name: "bad duration", key: "VISION_TIMEOUT", value: "soon"},
		{name: "key without endpoint", key: "VISION_API_KEY", value: "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
