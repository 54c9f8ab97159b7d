package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("PUBLIC_BASE_URL", "https://crew.example.org")
	t.Setenv("AUTH_TOKEN_SECRET", testSecret)
}

func TestParse_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.DatabaseDriver != DriverPostgres || cfg.HTTPAddr != ":8080" || cfg.DefaultLocale != "de" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ConfirmationPollInterval != 10*time.Minute {
		t.Fatalf("poll interval = %s, want 10m", cfg.ConfirmationPollInterval)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("level = %s, want info", cfg.SlogLevel())
	}
}

func TestParse_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/var/lib/eventplanner/db.sqlite")
	t.Setenv("CONFIRMATION_POLL_INTERVAL", "90s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DISCORD_ADMIN_CHANNEL_ID", "123456789")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.DatabaseDriver != DriverSQLite || cfg.SQLitePath != "/var/lib/eventplanner/db.sqlite" {
		t.Fatalf("unexpected storage config: %+v", cfg)
	}
	if cfg.ConfirmationPollInterval != 90*time.Second || cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing base url", map[string]string{"PUBLIC_BASE_URL": ""}, "PUBLIC_BASE_URL is required"},
		{"relative base url", map[string]string{"PUBLIC_BASE_URL": "/events"}, "absolute URL"},
		{"missing secret", map[string]string{"AUTH_TOKEN_SECRET": ""}, "AUTH_TOKEN_SECRET is required"},
		{"short secret", map[string]string{"AUTH_TOKEN_SECRET": "short"}, "at least 32 bytes"},
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "mysql"}, "DATABASE_DRIVER"},
		{"bad database url", map[string]string{"DATABASE_URL": "localhost"}, "DATABASE_URL"},
		{"bad channel id", map[string]string{"DISCORD_TEAM_PLANNER_CHANNEL_ID": "#planners"}, "digits only"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"bad interval", map[string]string{"CONFIRMATION_POLL_INTERVAL": "soon"}, "parse env"},
		{"zero interval", map[string]string{"CONFIRMATION_POLL_INTERVAL": "0s"}, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Parse() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
