package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"patientdesk/framework/httpserver"
	"patientdesk/internal/config"
	"patientdesk/internal/logging"
	"patientdesk/internal/patients"
	"patientdesk/internal/web"
)

const metricsNamespace = "patientdesk"

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.WithError(envErr).Warn("could not read .env file")
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("patientdesk stopped")
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("patient store setup: %w", err)
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler, err := web.NewHandler(
		cfg,
		patients.NewService(store),
		logger,
		httpserver.NewMetrics(metricsNamespace, registry),
	)
	if err != nil {
		return fmt.Errorf("handler setup: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.ListenAddr).Info("patientdesk server listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// openStore picks Postgres when a database URL is configured and the
// in-memory store otherwise.
func openStore(
	ctx context.Context,
	cfg config.Config,
	logger logrus.FieldLogger,
) (patients.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("PATIENTDESK_DATABASE_URL not set; patients are kept in memory")
		return patients.NewMemoryStore(), func() {}, nil
	}

	if err := patients.Migrate(cfg.DatabaseURL); err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("using postgres patient store")
	return patients.NewPostgresStore(pool), pool.Close, nil
}
