package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"eventplanner/internal/adapters/discord"
	"eventplanner/internal/adapters/httpapi"
	"eventplanner/internal/adapters/scheduler"
	"eventplanner/internal/application"
	"eventplanner/internal/config"
	"eventplanner/internal/domain"
	"eventplanner/internal/infrastructure/database"
	"eventplanner/internal/infrastructure/database/sqlite"
	"eventplanner/internal/infrastructure/i18n"
	"eventplanner/internal/infrastructure/telemetry"
	"eventplanner/internal/ports/output"
)

const (
	serviceName     = "eventplanner"
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("eventplanner stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flush traces", "error", err)
		}
	}()

	store, users, closeStore, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sink, closeSink, err := openSink(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	translator := i18n.NewTranslator(cfg.DefaultLocale, logger)
	notifier := application.NewNotifier(users, sink, translator, application.NotifierConfig{
		BaseURL:       cfg.PublicBaseURL,
		DefaultLocale: cfg.DefaultLocale,
		Logger:        logger,
	})
	events := application.NewEventService(store, notifier, nil)
	registrations := application.NewRegistrationService(store, notifier, nil)
	confirmations := application.NewConfirmationService(store, notifier, nil, logger)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.Config{
			Events:        events,
			Registrations: registrations,
			Confirmations: confirmations,
			Auth:          httpapi.NewAuthenticator(cfg.AuthTokenSecret, cfg.AuthTokenIssuer, nil),
			Translator:    translator,
			DefaultLocale: cfg.DefaultLocale,
			Logger:        logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go scheduler.New(confirmations, cfg.ConfirmationPollInterval, logger).Run(ctx)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// openStorage returns the configured event store and user directory.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (output.EventStore, output.UserDirectory, func(), error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("sqlite store opened", "path", cfg.SQLitePath)
		closeStore := func() {
			if err := store.Close(); err != nil {
				logger.Warn("close sqlite store", "error", err)
			}
		}
		return store, store.Users(), closeStore, nil
	default:
		if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			return nil, nil, nil, err
		}
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return database.NewEventStore(pool), database.NewUserDirectory(pool), pool.Close, nil
	}
}

// openSink connects the Discord bot, or falls back to logging notifications
// when no token is configured.
func openSink(cfg *config.Config, logger *slog.Logger) (output.NotificationSink, func(), error) {
	if cfg.DiscordToken == "" {
		logger.Warn("DISCORD_TOKEN not set, notifications are only logged")
		return discord.LogSink{Logger: logger}, func() {}, nil
	}
	bot, err := discord.NewBot(discord.BotConfig{
		Token: cfg.DiscordToken,
		RoleChannels: map[domain.Role]string{
			domain.RoleAdmin:       cfg.DiscordAdminChannelID,
			domain.RoleTeamPlanner: cfg.DiscordTeamPlannerChannelID,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := bot.Open(); err != nil {
		return nil, nil, err
	}
	closeBot := func() {
		if err := bot.Close(); err != nil {
			logger.Warn("close discord session", "error", err)
		}
	}
	return bot, closeBot, nil
}
