// Package server provides HTTP server management and lifecycle handling
// for the triage API. It includes server setup, middleware configuration,
// route management, and graceful shutdown with proper error handling and
// logging.
package server

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nishkal/triage-api/config"
	"github.com/nishkal/triage-api/geocode"
	"github.com/nishkal/triage-api/handlers"
	"github.com/nishkal/triage-api/imaging"
	"github.com/nishkal/triage-api/interfaces"
	"github.com/nishkal/triage-api/logging"
	"github.com/nishkal/triage-api/metrics"
)

// Server represents the HTTP server
type Server struct {
	server     *http.Server
	router     chi.Router
	dataStore  interfaces.DataStore
	checker    interfaces.HealthChecker
	geocoder   *geocode.Client
	classifier imaging.Classifier
	config     *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, dataStore interfaces.DataStore, checker interfaces.HealthChecker, geocoder *geocode.Client) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:     router,
		dataStore:  dataStore,
		checker:    checker,
		geocoder:   geocoder,
		classifier: imaging.NewMockClassifier(),
		config:     cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.DefaultLoggingService.Logger))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(RateLimitHandler)
	s.router.Use(metrics.Metrics)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Post("/triage", handlers.Triage(s.dataStore, s.classifier, s.config))
	s.router.Get("/pharmacies/{item}", handlers.FindPharmacies(s.dataStore, s.config))
	s.router.Post("/cart/total", handlers.PriceCart(s.config))
	s.router.Get("/doctors", handlers.ListDoctors(s.dataStore))
	s.router.Get("/geocode", handlers.GeocodeAddress(s.geocoder))
	s.router.Get("/health", handlers.HealthCheck(s.checker))
	s.router.Handle("/metrics", promhttp.Handler())
}

// Start starts the server
func (s *Server) Start() error {
	// Start profiling server if in development mode
	if s.config.Env == "dev" {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		fmt.Println("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			fmt.Println("Profiling server failed: ", err)
		}
	}()
}
