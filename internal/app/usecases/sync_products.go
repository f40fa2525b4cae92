package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"maya-shopify-sync/internal/adapters/maya"
	"maya-shopify-sync/internal/adapters/shopify"
	"maya-shopify-sync/internal/app/mapper"
	"maya-shopify-sync/internal/domain/model"
	"maya-shopify-sync/internal/metrics"
)

const DefaultConcurrency = 4

// Run statuses reported to metrics.
const (
	RunStatusSuccess = "success"
	RunStatusPartial = "partial"
	RunStatusError   = "error"
)

type SyncProductsService interface {
	Run(ctx context.Context) (model.SyncSummary, error)
}

type SyncProducts struct {
	source      maya.CatalogService
	destination shopify.ProductService
	mapper      *mapper.Mapper
	metrics     metrics.Recorder
	logger      *zap.Logger
	concurrency int
	now         func() time.Time
}

type Option func(*SyncProducts)

func WithConcurrency(n int) Option {
	return func(s *SyncProducts) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithMetrics(recorder metrics.Recorder) Option {
	return func(s *SyncProducts) { s.metrics = recorder }
}

func NewSyncProducts(source maya.CatalogService, destination shopify.ProductService, productMapper *mapper.Mapper, logger *zap.Logger, opts ...Option) SyncProductsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if productMapper == nil {
		productMapper = mapper.New(logger)
	}
	s := &SyncProducts{
		source:      source,
		destination: destination,
		mapper:      productMapper,
		metrics:     (*metrics.Metrics)(nil),
		logger:      logger.Named("sync"),
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run pulls the whole catalog and upserts every plan. Item failures land in the summary;
// only a failed catalog fetch is returned as an error.
func (s *SyncProducts) Run(ctx context.Context) (model.SyncSummary, error) {
	runID := uuid.New()
	startedAt := s.now()
	logger := s.logger.With(zap.String("run_id", runID.String()))
	logger.Info("product sync started", zap.Int("concurrency", s.concurrency))

	products, err := s.source.FetchAllProducts(ctx)
	if err != nil {
		summary := model.NewSyncSummary(runID, startedAt, s.now(), nil)
		s.metrics.ObserveRun(RunStatusError, summary.Duration())
		logger.Error("product sync aborted", zap.Error(err))
		return summary, fmt.Errorf("fetch catalog: %w", err)
	}
	logger.Info("catalog fetched", zap.Int("products", len(products)))

	skus := newSkuRegistry()
	results := make([]model.SyncResult, len(products))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, product := range products {
		g.Go(func() error {
			results[i] = s.syncOne(ctx, logger, skus, product)
			return nil
		})
	}
	_ = g.Wait()

	summary := model.NewSyncSummary(runID, startedAt, s.now(), results)
	status := RunStatusSuccess
	if summary.Failed > 0 {
		status = RunStatusPartial
	}
	s.metrics.ObserveRun(status, summary.Duration())

	logger.Info("product sync completed",
		zap.Int("total", summary.Total),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration()),
	)
	return summary, nil
}

func (s *SyncProducts) syncOne(ctx context.Context, logger *zap.Logger, skus *skuRegistry, source model.SourceProduct) model.SyncResult {
	result := model.SyncResult{SourceID: source.ID}

	handle, outcome, err := s.upsert(ctx, skus, source)
	if err != nil {
		result.Outcome = model.OutcomeFailed
		result.Error = err.Error()
		s.metrics.ObserveItem(model.OutcomeFailed)
		logger.Warn("product sync failed", zap.String("sku", source.ID), zap.Error(err))
		return result
	}

	result.Outcome = outcome
	result.DestinationID = handle.ProductID
	s.metrics.ObserveItem(outcome)
	logger.Debug("product synced",
		zap.String("sku", source.ID),
		zap.String("outcome", string(outcome)),
		zap.Int64("product_id", handle.ProductID),
	)
	return result
}

func (s *SyncProducts) upsert(ctx context.Context, skus *skuRegistry, source model.SourceProduct) (model.ProductHandle, model.Outcome, error) {
	product := s.mapper.Map(source)
	sku := product.SKU()
	if sku == "" {
		return model.ProductHandle{}, "", fmt.Errorf("%w: product has no sku", model.ErrValidation)
	}

	// Same-SKU items must not race between lookup and create.
	entry := skus.acquire(sku)
	defer entry.unlock()

	existing := entry.known()
	if existing == nil {
		found, err := s.destination.FindBySku(ctx, sku)
		if err != nil {
			return model.ProductHandle{}, "", err
		}
		existing = found
	}

	if existing == nil {
		handle, err := s.destination.Create(ctx, product)
		if err != nil {
			return model.ProductHandle{}, "", err
		}
		entry.remember(handle)
		return handle, model.OutcomeCreated, nil
	}

	handle, err := s.destination.Update(ctx, *existing, product)
	if err != nil {
		return model.ProductHandle{}, "", err
	}
	if handle.ProductID == 0 {
		return model.ProductHandle{}, "", errors.New("update returned empty product id")
	}
	entry.remember(handle)
	return handle, model.OutcomeUpdated, nil
}
