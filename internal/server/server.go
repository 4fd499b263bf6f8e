// =============================================================================
// Business Search - HTTP Service
// =============================================================================
//
// This module exposes the search helpers over HTTP so a browser front end
// can normalize form input, build dropdowns, format numbers and download
// result sets.
//
// ROUTES:
//   POST /query              apply one form change to a query
//   GET  /bands              list band table names
//   GET  /bands/:name        dropdown options for one band table
//   GET  /format/number      ?value=... formatted with thousands separators
//   POST /flatten            expand one business into display rows, or an
//                            array into one group of rows per business
//   POST /export/:format     download results as csv, json or xlsx
//   GET  /stats              request counters
//
// =============================================================================

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/atomic"

	"github.com/ginjaninja78/business-search/internal/bands"
	"github.com/ginjaninja78/business-search/internal/config"
	"github.com/ginjaninja78/business-search/internal/log"
)

const shutdownTimeout = 5 * time.Second

// Stats are the counters reported by GET /stats.
type Stats struct {
	FormChanges int64            `json:"formChanges"`
	Downloads   int64            `json:"downloads"`
	ByFormat    map[string]int64 `json:"byFormat"`
}

// Server serves the search helpers.
type Server struct {
	cfg      *config.Config
	registry *bands.Registry
	logger   log.Logger

	formChanges *atomic.Int64
	downloads   map[string]*atomic.Int64
}

// New creates a server for cfg.
func New(cfg *config.Config, logger log.Logger) *Server {
	return &Server{
		cfg:         cfg,
		registry:    cfg.BandRegistry(),
		logger:      logger,
		formChanges: atomic.NewInt64(0),
		downloads: map[string]*atomic.Int64{
			"csv":  atomic.NewInt64(0),
			"json": atomic.NewInt64(0),
			"xlsx": atomic.NewInt64(0),
		},
	}
}

// Router returns the routes without middleware.
func (s *Server) Router() *httprouter.Router {
	router := httprouter.New()
	router.POST("/query", s.formChange)
	router.GET("/bands", s.bandNames)
	router.GET("/bands/:name", s.bandOptions)
	router.GET("/format/number", s.formatNumber)
	router.POST("/flatten", s.flatten)
	router.POST("/export/:format", s.export)
	router.GET("/stats", s.stats)
	return router
}

// Handler returns the routes wrapped with request logging and CORS.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.Router()
	if origin := s.cfg.Server.AllowOrigin; origin != "" {
		handler = allowOrigin(handler, origin)
	}
	return log.NewLoggingHandler(handler, s.logger)
}

// ListenAndServe serves on the configured port until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Stats returns a snapshot of the counters.
func (s *Server) Stats() Stats {
	st := Stats{
		FormChanges: s.formChanges.Load(),
		ByFormat:    make(map[string]int64, len(s.downloads)),
	}
	for format, n := range s.downloads {
		count := n.Load()
		st.ByFormat[format] = count
		st.Downloads += count
	}
	return st
}

func allowOrigin(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
