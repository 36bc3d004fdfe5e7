package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/navlens/navlens/internal/database/repositories"
	"github.com/navlens/navlens/internal/modules/backtest"
	"github.com/navlens/navlens/internal/pipeline"
)

// Config holds server configuration
type Config struct {
	Port    int
	DevMode bool
	Log     zerolog.Logger

	Funds      *repositories.FundRepository
	NAVs       *repositories.NAVRepository
	Benchmarks *repositories.BenchmarkRepository
	Scores     *repositories.ScoreRepository

	Pipeline  *pipeline.Service
	Simulator *backtest.Simulator
	Optimizer *backtest.Optimizer
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	funds      *repositories.FundRepository
	navs       *repositories.NAVRepository
	benchmarks *repositories.BenchmarkRepository
	scores     *repositories.ScoreRepository

	pipeline  *pipeline.Service
	simulator *backtest.Simulator
	optimizer *backtest.Optimizer
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		log:        cfg.Log.With().Str("component", "server").Logger(),
		funds:      cfg.Funds,
		navs:       cfg.NAVs,
		benchmarks: cfg.Benchmarks,
		scores:     cfg.Scores,
		pipeline:   cfg.Pipeline,
		simulator:  cfg.Simulator,
		optimizer:  cfg.Optimizer,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // scoring runs can take a while
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(120 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/funds/{id}/score", s.handleFundScore)
		r.Post("/scores/run", s.handleRunScores)
		r.Get("/subcategories/{name}/rankings", s.handleSubcategoryRankings)

		r.Post("/backtest", s.handleBacktest)
		r.Post("/backtest/optimize", s.handleOptimize)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
