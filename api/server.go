// Package api - Thin HTTP layer over the pricing engine
// The API only decodes requests, looks up master data, calls the engine
// and serializes the result. It never prices anything itself.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"price-list/core/catalog"
	"price-list/core/pricing"
)

// Options configures a Server
type Options struct {
	// Version is reported by /health and /version
	Version string

	// DefaultList is used when a compute request names no price list
	DefaultList string

	// Places rounds prices in responses; negative returns exact values
	Places int32

	// Logger receives access and engine logs; nil discards them
	Logger *zap.Logger
}

// snapshot pairs a catalog with the engine reading from it
type snapshot struct {
	catalog  *catalog.Catalog
	engine   *pricing.Engine
	loadedAt time.Time
}

// Server is the API server
type Server struct {
	router   chi.Router
	opts     Options
	logger   *zap.Logger
	validate *validator.Validate
	current  atomic.Pointer[snapshot]
}

// NewServer creates a server answering from c
func NewServer(c *catalog.Catalog, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router:   chi.NewRouter(),
		opts:     opts,
		logger:   logger,
		validate: validator.New(),
	}
	s.SetCatalog(c)
	s.registerRoutes()
	return s
}

// SetCatalog atomically replaces the catalog. Requests in flight finish
// against the catalog they started with.
func (s *Server) SetCatalog(c *catalog.Catalog) {
	s.current.Store(&snapshot{
		catalog:  c,
		engine:   pricing.NewEngine(c, c, pricing.WithLogger(s.logger.Named("engine"))),
		loadedAt: time.Now().UTC(),
	})
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(accessLog(s.logger))
	r.Use(middleware.Recoverer)

	r.Post("/compute", s.handleCompute)
	r.Get("/price-lists", s.handleListPriceLists)
	r.Get("/price-lists/{id}", s.handleGetPriceList)
	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	writeJSON(w, map[string]interface{}{
		"status":      "healthy",
		"version":     s.opts.Version,
		"time":        time.Now().UTC().Format(time.RFC3339),
		"loaded_at":   snap.loadedAt.Format(time.RFC3339),
		"catalog":     snap.catalog.Stats(),
		"fingerprint": snap.catalog.Fingerprint().Hex(),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"version":     s.opts.Version,
		"engine":      "price-list",
		"api_version": "v1",
	}, http.StatusOK)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves with srv until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout
func (s *Server) Run(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	srv.Handler = s
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("api shutting down")
	return srv.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
