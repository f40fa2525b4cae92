package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"maya-shopify-sync/internal/api/middleware"
	"maya-shopify-sync/internal/domain/model"
)

type SyncRunner interface {
	Run(ctx context.Context) (model.SyncSummary, error)
}

// RunnerFactory builds a runner for one request, so configuration is re-read and validated on every call.
type RunnerFactory func() (SyncRunner, error)

const DefaultRunTimeout = 30 * time.Minute

type SyncHandler struct {
	newRunner  RunnerFactory
	runTimeout time.Duration
	logger     *zap.Logger
	running    sync.Mutex
}

type Option func(*SyncHandler)

// WithRunTimeout bounds a run. Runs outlive a disconnected caller but not this timeout.
func WithRunTimeout(d time.Duration) Option {
	return func(h *SyncHandler) {
		if d > 0 {
			h.runTimeout = d
		}
	}
}

func NewSyncHandler(newRunner RunnerFactory, logger *zap.Logger, opts ...Option) *SyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &SyncHandler{
		newRunner:  newRunner,
		runTimeout: DefaultRunTimeout,
		logger:     logger.Named("api"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type syncResponse struct {
	Message string `json:"message"`
	model.SyncSummary
}

func (h *SyncHandler) SyncProducts(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(zap.String("request_id", middleware.GetRequestID(r.Context())))

	if !h.running.TryLock() {
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, errorResponse{Error: "Product sync already running"})
		return
	}
	defer h.running.Unlock()

	runner, err := h.newRunner()
	if err != nil {
		logger.Error("sync not started", zap.Error(err))
		h.renderError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.runTimeout)
	defer cancel()

	summary, err := runner.Run(ctx)
	if err != nil {
		logger.Error("sync failed", zap.Error(err))
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, syncResponse{Message: "Product sync complete", SyncSummary: summary})
}

func (h *SyncHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: "Product sync failed", Message: err.Error()}
	switch {
	case errors.Is(err, model.ErrConfiguration):
		resp.Error = "Invalid configuration"
	case model.IsFatal(err):
		resp.Error = "Failed to fetch products from Maya Mobile"
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		resp.Error = "Product sync timed out"
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}
