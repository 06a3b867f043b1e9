package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fisiogestor/whatsapp-confirm/internal/api/router"
	"github.com/fisiogestor/whatsapp-confirm/internal/appointments"
	"github.com/fisiogestor/whatsapp-confirm/internal/clinic"
	appconfig "github.com/fisiogestor/whatsapp-confirm/internal/config"
	"github.com/fisiogestor/whatsapp-confirm/internal/evolution"
	"github.com/fisiogestor/whatsapp-confirm/internal/http/handlers"
	"github.com/fisiogestor/whatsapp-confirm/internal/intent"
	"github.com/fisiogestor/whatsapp-confirm/internal/messagelog"
	"github.com/fisiogestor/whatsapp-confirm/internal/notify"
	"github.com/fisiogestor/whatsapp-confirm/internal/observability/metrics"
	"github.com/fisiogestor/whatsapp-confirm/internal/patients"
	"github.com/fisiogestor/whatsapp-confirm/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting whatsapp-confirm API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	confirmMetrics := metrics.NewConfirmationMetrics(registry)

	classifier, err := intent.NewClassifier("pt-BR")
	if err != nil {
		logger.Error("failed to build intent classifier", "error", err)
		os.Exit(1)
	}

	patientStore := patients.NewStore(pool)
	appointmentStore := appointments.NewStore(pool)
	clinicStore := clinic.NewStore(pool)
	auditStore := messagelog.NewStore(pool)
	matcher := appointments.NewMatcher(patientStore, appointmentStore, cfg.MatchWindowDays, loc, logger)

	var notifier handlers.Notifier
	if cfg.EvolutionBaseURL != "" {
		gateway, err := evolution.New(evolution.Config{
			BaseURL: cfg.EvolutionBaseURL,
			Timeout: cfg.EvolutionTimeout,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to create evolution client", "error", err)
			os.Exit(1)
		}
		notifier = notify.NewService(clinicStore, gateway, auditStore, confirmMetrics, logger)
	} else {
		logger.Warn("EVOLUTION_BASE_URL not set, outbound notifications disabled")
	}

	webhookHandler := handlers.NewWhatsAppWebhookHandler(handlers.WhatsAppWebhookConfig{
		Classifier: classifier,
		Matcher:    matcher,
		Resolver:   appointmentStore,
		Audit:      auditStore,
		Notifier:   notifier,
		Logger:     logger,
		Metrics:    confirmMetrics,
		Location:   loc,
	})

	healthHandler := handlers.NewHealthHandler(logger, map[string]handlers.Pinger{
		"postgres": handlers.PingerFunc(pool.Ping),
	})

	r := router.New(&router.Config{
		Logger:             logger,
		Webhook:            webhookHandler,
		Health:             healthHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
