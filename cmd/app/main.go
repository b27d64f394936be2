package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barber-bot/internal/cache"
	"barber-bot/internal/config"
	"barber-bot/internal/convo"
	"barber-bot/internal/httpserver"
	"barber-bot/internal/logging"
	"barber-bot/internal/metrics"
	"barber-bot/internal/repo"
	"barber-bot/internal/twilio"
	"barber-bot/migrations"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("starting barber-bot", "env", cfg.AppEnv, "driver", cfg.DatabaseDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricRegistry := metrics.Registry(cfg.MetricsNamespace)

	var store repo.Store
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		store, err = repo.New(ctx, cfg.DatabaseURL, cfg.DatabaseSchema, logger)
	case config.DriverSQLite:
		store, err = repo.NewSQLite(ctx, cfg.SQLitePath, logger)
	}
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	if err := store.RunMigrations(ctx, migrations.Files); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrated")

	var redisClient *cache.Redis
	if cfg.RedisAddr != "" {
		redisClient = cache.New(cache.Config{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			UseTLS:    cfg.RedisTLS,
			ClientTTL: cfg.ClientCacheTTL,
		}, logger)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("failed closing redis", "error", err)
			}
		}()
		if err := redisClient.Ping(ctx); err != nil {
			logger.Warn("redis ping failed", "error", err)
		}
	}

	notifier := twilio.New(twilio.Config{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		From:       cfg.TwilioWhatsAppFrom,
		Timeout:    cfg.TwilioTimeout,
	}, logger, metricRegistry)
	if !notifier.Configured() {
		logger.Warn("twilio credentials incomplete, outbound delivery disabled")
	}

	engine := convo.New(store, redisClient, metricRegistry, logger)

	httpSrv := httpserver.New(cfg.HTTPListenAddr, logger, metricRegistry, httpserver.Handlers{
		WhatsAppWebhook: httpserver.NewWhatsAppWebhookHandler(engine, notifier, metricRegistry, logger),
		BarberResponse:  httpserver.NewBarberResponseHandler(engine, notifier, metricRegistry, logger),
	}, cfg.PublicBasePath)
	httpSrv.SetDependencies(httpserver.Dependencies{Store: store})

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	return nil
}
