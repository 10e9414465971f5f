// Package api exposes the preference pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/JARAWA/JOSAA-preference/internal/config"
	"github.com/JARAWA/JOSAA-preference/internal/dataset"
	"github.com/JARAWA/JOSAA-preference/internal/metrics"
	"github.com/JARAWA/JOSAA-preference/internal/predictor"
)

// Server wires the dataset store and the pipeline behind the HTTP API.
type Server struct {
	cfg      *config.Config
	logger   *logrus.Logger
	store    *dataset.Store
	pipeline *predictor.Pipeline
	limiter  *rate.Limiter
	server   *http.Server

	mu    sync.RWMutex
	ready bool
}

// NewServer creates the API server. It is not listening until Start is
// called.
func NewServer(cfg *config.Config, logger *logrus.Logger, store *dataset.Store, pipeline *predictor.Pipeline) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		pipeline: pipeline,
		limiter:  rate.NewLimiter(rate.Limit(cfg.Server.RateLimitPerSecond), cfg.Server.RateLimitBurst),
	}
}

// SetReady marks the server as ready to serve preference requests.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady reports whether a dataset snapshot has been loaded.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(s.cfg.Server.RequestTimeoutSeconds) * time.Second))
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.cfg.Metrics.Enabled && s.cfg.Metrics.Path != "" {
		r.Handle(s.cfg.Metrics.Path, metrics.Handler())
	}

	r.Group(func(pr chi.Router) {
		pr.Use(s.rateLimit)
		pr.Route("/api/v1", func(ar chi.Router) {
			ar.Post("/preferences", s.handleGeneratePreferences)
			ar.Get("/preferences/export", s.handleExport)
			ar.Get("/branches", s.handleBranches)
		})
	})

	return r
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request with method, path, status and
// duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("Request handled")
		metrics.RequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(ww.Status())).Inc()
	})
}

// rateLimit applies a shared token bucket across all API endpoints.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			respondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
