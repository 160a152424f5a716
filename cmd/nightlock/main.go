package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nightlock/config"
	"nightlock/internal/actuator"
	"nightlock/internal/bot"
	"nightlock/internal/core"
	"nightlock/internal/logging"
	"nightlock/internal/metrics"
	"nightlock/internal/scheduler"
)

const (
	shutdownTimeout = 10 * time.Second
	defaultEnvFile  = ".env"
)

func main() {
	envFile := flag.String("env-file", defaultEnvFile, "Path to an optional .env file")
	logFormat := flag.String("log-format", "json", "Log format (json or text)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := logging.NewLogger(logging.LoggerConfig{
		Format: *logFormat,
		Level:  logging.ParseLevel(*logLevel),
	})
	slog.SetDefault(logger)

	if err := run(*envFile, logger); err != nil {
		logger.Error("Night Lock stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(envFile string, logger *slog.Logger) error {
	logger.Info("Starting Night Lock", "env_file", envFile)

	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	timezone, err := cfg.Location()
	if err != nil {
		return err
	}
	schedule, err := cfg.DefaultSchedule()
	if err != nil {
		return err
	}

	logger.Info("Configuration loaded",
		"chat_id", cfg.ChatID,
		"admin_id", cfg.AdminID,
		"timezone", timezone.String(),
		"lock_at", schedule.LockAt(),
		"unlock_at", schedule.UnlockAt(),
		"webhook_mode", cfg.WebhookMode(),
		"addr", cfg.Addr(),
	)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	api.Debug = cfg.Debug
	logger.Info("Authorized on Telegram", "username", api.Self.UserName)

	m := metrics.New()

	act := logging.NewActuatorLogger(
		actuator.New(api, cfg.ChatID, timezone, m),
		logger,
	)

	sched := scheduler.NewScheduler(act, timezone, m, logger)
	if err := sched.Reprogram(schedule); err != nil {
		return fmt.Errorf("failed to register triggers: %w", err)
	}
	sched.Start()

	store := core.NewStore(schedule)
	flow := core.NewFlow(store, sched, core.NewSessionTable(cfg.SessionTTL))

	telegramBot := bot.NewBot(bot.Options{
		API:      api,
		Actuator: act,
		Store:    store,
		Flow:     flow,
		Triggers: sched,
		Metrics:  m,
		ChatID:   cfg.ChatID,
		AdminID:  cfg.AdminID,
		Timezone: timezone,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.WebhookMode() {
		if err := telegramBot.SetWebhook(api, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			return err
		}
	} else if err := telegramBot.DeleteWebhook(); err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: bot.NewRouter(bot.RouterConfig{
			Bot:           telegramBot,
			WebhookSecret: cfg.WebhookSecret,
			Metrics:       m,
			Logger:        logger,
			EnableWebhook: cfg.WebhookMode(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	pollDone := make(chan error, 1)
	if !cfg.WebhookMode() {
		go func() {
			pollDone <- telegramBot.Poll(ctx, api, cfg.PollTimeout)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	case err := <-pollDone:
		if err != nil {
			runErr = fmt.Errorf("polling failed: %w", err)
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("Timed out waiting for running triggers")
	}

	logger.Info("Night Lock stopped")
	return runErr
}
