// Package app wires configuration, clients and the sync use case into runnable jobs.
package app

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"maya-shopify-sync/internal/adapters/maya"
	"maya-shopify-sync/internal/adapters/shopify"
	"maya-shopify-sync/internal/app/mapper"
	"maya-shopify-sync/internal/app/usecases"
	"maya-shopify-sync/internal/config"
	"maya-shopify-sync/internal/domain/model"
	"maya-shopify-sync/internal/infra/httpclient"
	"maya-shopify-sync/internal/logging"
	"maya-shopify-sync/internal/metrics"
)

type SyncJob struct {
	sync     usecases.SyncProductsService
	notifier logging.Notifier
	logger   *zap.Logger
}

// NewSyncJob validates cfg before any client exists, so a misconfigured run makes no network calls.
func NewSyncJob(cfg *config.Config, httpClient *http.Client, logger *zap.Logger, recorder *metrics.Metrics) (*SyncJob, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = httpclient.New(cfg.Sync.HTTPTimeout)
	}

	retry := httpclient.DefaultRetryPolicy(cfg.Sync.MaxAttempts)
	source := maya.NewClient(cfg.Maya, httpClient, logger,
		maya.WithRetryPolicy(retry),
		maya.WithMetrics(recorder),
	)
	destination := NewShopifyClient(cfg, httpClient, logger, recorder)

	return &SyncJob{
		sync: usecases.NewSyncProducts(source, destination, mapper.New(logger), logger,
			usecases.WithConcurrency(cfg.Sync.Concurrency),
			usecases.WithMetrics(recorder),
		),
		notifier: logging.NewNotifier(cfg.TelegramBot, httpClient, logger),
		logger:   logger,
	}, nil
}

func NewShopifyClient(cfg *config.Config, httpClient *http.Client, logger *zap.Logger, recorder *metrics.Metrics) shopify.ProductService {
	return shopify.NewClient(cfg.Shopify, httpClient, logger,
		shopify.WithLookupRetry(httpclient.DefaultRetryPolicy(cfg.Sync.MaxAttempts)),
		shopify.WithMetrics(recorder),
	)
}

func (j *SyncJob) Run(ctx context.Context) (model.SyncSummary, error) {
	summary, err := j.sync.Run(ctx)
	if err != nil {
		j.notifier.NotifyFailure(ctx, err)
		return summary, err
	}
	j.notifier.NotifySummary(ctx, summary)
	return summary, nil
}
