package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mark-c-hall/movie-search/internal/config"
	"github.com/mark-c-hall/movie-search/internal/handler"
	"github.com/mark-c-hall/movie-search/internal/metrics"
	"github.com/mark-c-hall/movie-search/internal/search"
	"github.com/mark-c-hall/movie-search/internal/session"
	"github.com/mark-c-hall/movie-search/internal/telemetry"
	"github.com/mark-c-hall/movie-search/internal/tmdb"
	"github.com/mark-c-hall/movie-search/web"
)

const sentryFlushTimeout = 2 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Fatalf("failed to initialize sentry: %v", err)
	}
	defer sentry.Flush(sentryFlushTimeout)

	shutdownTelemetry, err := telemetry.Setup(context.Background(), cfg.Telemetry, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}

	client := tmdb.NewClient(*cfg)

	store := session.NewStore(func() *search.Controller {
		return search.NewController(client, logger)
	}, cfg.Session.TTL, cfg.Session.SweepInterval, logger)

	if err := metrics.RegisterSessions(prometheus.DefaultRegisterer, store.Len); err != nil {
		log.Fatalf("failed to register session metrics: %v", err)
	}

	h, err := handler.NewHandler(store, web.FS, *cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialize handler: %v", err)
	}

	srv := http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(timeoutCtx); err != nil {
		logger.Warn("shutdown did not complete cleanly", "error", err)
	}
	store.Close()
	if err := shutdownTelemetry(timeoutCtx); err != nil {
		logger.Warn("telemetry shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
