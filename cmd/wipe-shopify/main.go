package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"maya-shopify-sync/internal/adapters/shopify"
	"maya-shopify-sync/internal/app"
	"maya-shopify-sync/internal/app/mapper"
	"maya-shopify-sync/internal/config"
	"maya-shopify-sync/internal/infra/httpclient"
	"maya-shopify-sync/internal/logging"
	"maya-shopify-sync/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("error %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Log, cfg.IsProduction())
	defer func() { _ = logger.Sync() }()

	if cfg.Shopify.StoreName == "" || cfg.Shopify.Token == "" {
		logger.Error("wipe shopify error", zap.Error(fmt.Errorf("SHOPIFY_STORE_NAME and SHOPIFY_ACCESS_TOKEN are required")))
		os.Exit(1)
	}

	httpClient := httpclient.New(cfg.Sync.HTTPTimeout)
	logger.Info("wipe shopify started", zap.String("vendor", mapper.Vendor))

	shopifyClient := app.NewShopifyClient(cfg, httpClient, logger, metrics.New())
	wipeClient, ok := shopifyClient.(shopify.WipeService)
	if !ok {
		logger.Error("wipe shopify error", zap.Error(fmt.Errorf("shopify wipe service unavailable")))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	deleted, err := wipeClient.DeleteVendorProducts(ctx, mapper.Vendor)
	if err != nil {
		logger.Error("wipe shopify error", zap.Int("deleted", deleted), zap.Error(err))
		os.Exit(1)
	}

	logging.NewNotifier(cfg.TelegramBot, httpClient, logger).NotifyMessage(ctx, fmt.Sprintf("wipe shopify completed deleted=%d", deleted))
	logger.Info("wipe shopify completed", zap.Int("deleted", deleted))
}
