// one-shot catalog sync, run by an external scheduler
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"maya-shopify-sync/internal/app"
	"maya-shopify-sync/internal/config"
	"maya-shopify-sync/internal/infra/httpclient"
	"maya-shopify-sync/internal/logging"
	"maya-shopify-sync/internal/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadForSync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error %v\n", err)
		return 1
	}
	logger := logging.NewLogger(cfg.Log, cfg.IsProduction())
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job, err := app.NewSyncJob(cfg, httpclient.New(cfg.Sync.HTTPTimeout), logger, metrics.New())
	if err != nil {
		logger.Error("sync job not started", zap.Error(err))
		return 1
	}

	summary, err := job.Run(ctx)
	if err != nil {
		logger.Error("sync job failed", zap.Error(err))
		return 1
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		logger.Error("write summary", zap.Error(err))
		return 1
	}
	return 0
}
