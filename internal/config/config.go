package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/eventplanner?sslmode=disable"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"data/eventplanner.db"`

	HTTPAddr        string `env:"HTTP_ADDR" envDefault:":8080"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
	AuthTokenSecret string `env:"AUTH_TOKEN_SECRET"`
	AuthTokenIssuer string `env:"AUTH_TOKEN_ISSUER" envDefault:"eventplanner"`

	DiscordToken                string `env:"DISCORD_TOKEN"`
	DiscordAdminChannelID       string `env:"DISCORD_ADMIN_CHANNEL_ID"`
	DiscordTeamPlannerChannelID string `env:"DISCORD_TEAM_PLANNER_CHANNEL_ID"`

	DefaultLocale            string        `env:"DEFAULT_LOCALE" envDefault:"de"`
	ConfirmationPollInterval time.Duration `env:"CONFIRMATION_POLL_INTERVAL" envDefault:"10m"`
	OTLPEndpoint             string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel                 string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	// .env is optional when variables come from the environment (Docker, CI, ...).
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate applies the rules env tags cannot express.
func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres:
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): missing scheme or host", c.DatabaseURL)
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("config: SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("config: DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DatabaseDriver)
	}

	if strings.TrimSpace(c.PublicBaseURL) == "" {
		return fmt.Errorf("config: PUBLIC_BASE_URL is required")
	}
	base, err := url.Parse(c.PublicBaseURL)
	if err != nil || !base.IsAbs() || base.Host == "" {
		return fmt.Errorf("config: PUBLIC_BASE_URL must be an absolute URL, got %q", c.PublicBaseURL)
	}

	if strings.TrimSpace(c.AuthTokenSecret) == "" {
		return fmt.Errorf("config: AUTH_TOKEN_SECRET is required")
	}
	if len(c.AuthTokenSecret) < 32 {
		return fmt.Errorf("config: AUTH_TOKEN_SECRET must be at least 32 bytes")
	}

	for name, id := range map[string]string{
		"DISCORD_ADMIN_CHANNEL_ID":        c.DiscordAdminChannelID,
		"DISCORD_TEAM_PLANNER_CHANNEL_ID": c.DiscordTeamPlannerChannelID,
	} {
		for _, r := range id {
			if r < '0' || r > '9' {
				return fmt.Errorf("config: %s must be a Discord channel ID (digits only)", name)
			}
		}
	}

	if c.ConfirmationPollInterval <= 0 {
		return fmt.Errorf("config: CONFIRMATION_POLL_INTERVAL must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: invalid LOG_LEVEL %q", s)
	}
	return level, nil
}
