package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fisiogestor/whatsapp-confirm/internal/appointments"
	"github.com/fisiogestor/whatsapp-confirm/internal/clinic"
	"github.com/fisiogestor/whatsapp-confirm/internal/config"
	"github.com/fisiogestor/whatsapp-confirm/internal/evolution"
	"github.com/fisiogestor/whatsapp-confirm/internal/messagelog"
	"github.com/fisiogestor/whatsapp-confirm/internal/reminder"
	"github.com/fisiogestor/whatsapp-confirm/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" || cfg.EvolutionBaseURL == "" {
		logger.Error("reminder worker requires DATABASE_URL and EVOLUTION_BASE_URL")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}

	gateway, err := evolution.New(evolution.Config{
		BaseURL: cfg.EvolutionBaseURL,
		Timeout: cfg.EvolutionTimeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to create evolution client", "error", err)
		os.Exit(1)
	}

	dispatcher := reminder.NewDispatcher(reminder.Config{
		Source:    appointments.NewStore(pool),
		Creds:     clinic.NewStore(pool),
		Sender:    gateway,
		Audit:     messagelog.NewStore(pool),
		Redis:     rdb,
		Logger:    logger,
		Location:  loc,
		Interval:  cfg.ReminderInterval,
		DedupeTTL: cfg.ReminderDedupeTTL,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down reminder worker...")
		cancel()
	}()

	dispatcher.Run(ctx)
}
