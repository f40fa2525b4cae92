package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"maya-shopify-sync/internal/api/handlers"
	"maya-shopify-sync/internal/api/middleware"
	"maya-shopify-sync/internal/metrics"
)

func SetupRouter(newRunner handlers.RunnerFactory, recorder *metrics.Metrics, logger *zap.Logger, opts ...handlers.Option) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger.Named("http")))
	r.Use(middleware.Recoverer(logger))

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if recorder != nil {
		r.Method(http.MethodGet, "/metrics", recorder.Handler())
	}

	syncHandler := handlers.NewSyncHandler(newRunner, logger, opts...)
	r.Route("/api", func(r chi.Router) {
		r.Get("/sync-products", syncHandler.SyncProducts)
		r.Post("/sync-products", syncHandler.SyncProducts)
	})

	return r
}
