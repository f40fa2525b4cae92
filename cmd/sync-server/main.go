package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"maya-shopify-sync/internal/api"
	"maya-shopify-sync/internal/api/handlers"
	"maya-shopify-sync/internal/app"
	"maya-shopify-sync/internal/config"
	"maya-shopify-sync/internal/infra/httpclient"
	"maya-shopify-sync/internal/logging"
	"maya-shopify-sync/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Log, cfg.IsProduction())
	defer func() { _ = logger.Sync() }()

	recorder := metrics.New()
	httpClient := httpclient.New(cfg.Sync.HTTPTimeout)

	// Credentials are re-read per request so a fixed environment takes effect without a restart.
	newRunner := func() (handlers.SyncRunner, error) {
		runCfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		job, err := app.NewSyncJob(runCfg, httpClient, logger, recorder)
		if err != nil {
			return nil, err
		}
		return job, nil
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.SetupRouter(newRunner, recorder, logger, handlers.WithRunTimeout(cfg.Server.SyncTimeout)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("sync server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("sync server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down sync server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("sync server shutdown", zap.Error(err))
	}
}
