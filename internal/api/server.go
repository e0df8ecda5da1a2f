package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"marketScope/internal/model"
)

// WithdrawalScanner discovers unclaimed amounts for a user.
type WithdrawalScanner interface {
	Scan(ctx context.Context, user common.Address) (model.WithdrawalReport, error)
}

// AnalyticsService serves and invalidates market analytics.
type AnalyticsService interface {
	Get(ctx context.Context, marketID uint64, timeRange string) (model.MarketAnalytics, error)
	InvalidateMarket(ctx context.Context, marketID uint64) (int, error)
}

// PriceService quotes current option prices.
type PriceService interface {
	Current(ctx context.Context, marketID uint64) model.CurrentPrice
}

// DistributionPreviewer previews batch winner distributions.
type DistributionPreviewer interface {
	Preview(ctx context.Context, marketID uint64) (model.DistributionPreview, error)
}

// DecimalsReader reports the betting token's decimals.
type DecimalsReader interface {
	TokenDecimals(ctx context.Context) (uint8, error)
}

// Deps are the services behind the routes.
type Deps struct {
	Scanner   WithdrawalScanner
	Analytics AnalyticsService
	Prices    PriceService
	Previewer DistributionPreviewer
	Decimals  DecimalsReader
}

// Server exposes the market API over HTTP.
type Server struct {
	deps           Deps
	logger         *zap.Logger
	router         *mux.Router
	requestTimeout time.Duration
}

// NewServer builds a Server and registers its routes. A zero requestTimeout disables the per-request deadline.
func NewServer(deps Deps, logger *zap.Logger, requestTimeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		deps:           deps,
		logger:         logger,
		router:         mux.NewRouter(),
		requestTimeout: requestTimeout,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestID, s.accessLog)
	if s.requestTimeout > 0 {
		s.router.Use(s.timeout)
	}

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/admin-auto-discover", s.handleAutoDiscover).Methods("POST")
	api.HandleFunc("/market/analytics", s.handleAnalytics).Methods("GET")
	api.HandleFunc("/market/analytics", s.handleInvalidateAnalytics).Methods("POST")
	api.HandleFunc("/market/current-price", s.handleCurrentPrice).Methods("GET")
	api.HandleFunc("/auto-preview-batch-distribution", s.handlePreviewDistribution).Methods("POST")

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("api shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
