package configs

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Address() != "0.0.0.0:8080" {
		t.Errorf("Server.Address() = %q", cfg.Server.Address())
	}
	if len(cfg.Server.AllowedOrigins) != 0 {
		t.Errorf("Server.AllowedOrigins = %v, want cross-origin access off by default", cfg.Server.AllowedOrigins)
	}
	if cfg.Database.URL == "" {
		t.Error("Database.URL is empty")
	}
	if cfg.Auth.SessionTTL != 720*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want 720h", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.SweepSchedule != "@hourly" {
		t.Errorf("Auth.SweepSchedule = %q, want @hourly", cfg.Auth.SweepSchedule)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DISWANTIN_SERVER_PORT", "9090")
	t.Setenv("DISWANTIN_AUTH_SESSION_TTL", "24h")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want env override 9090", cfg.Server.Port)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want 24h", cfg.Auth.SessionTTL)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "DISWANTIN_SERVER_PORT", "70000"},
		{"bad session ttl", "DISWANTIN_AUTH_SESSION_TTL", "soon"},
		{"bad log format", "DISWANTIN_LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadConfig(""); err == nil {
				t.Error("LoadConfig() expected error, got nil")
			}
		})
	}
}
