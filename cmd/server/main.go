package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/navlens/navlens/internal/config"
	"github.com/navlens/navlens/internal/database"
	"github.com/navlens/navlens/internal/database/repositories"
	"github.com/navlens/navlens/internal/modules/backtest"
	"github.com/navlens/navlens/internal/modules/ranking"
	"github.com/navlens/navlens/internal/modules/returns"
	"github.com/navlens/navlens/internal/modules/risk"
	"github.com/navlens/navlens/internal/modules/scoring"
	"github.com/navlens/navlens/internal/pipeline"
	"github.com/navlens/navlens/internal/scheduler"
	"github.com/navlens/navlens/internal/server"
	"github.com/navlens/navlens/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting navlens")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Repositories
	fundRepo := repositories.NewFundRepository(db.Conn(), log)
	navRepo := repositories.NewNAVRepository(db.Conn(), log)
	benchmarkRepo := repositories.NewBenchmarkRepository(db.Conn(), log)
	scoreRepo := repositories.NewScoreRepository(db.Conn(), log)

	// Calculators and scorer
	scoringCfg := scoring.DefaultConfig()
	if cfg.ScoringConfigVersion != scoringCfg.Version {
		log.Fatal().Str("version", cfg.ScoringConfigVersion).Msg("Unknown scoring config version")
	}
	scorer, err := scoring.NewScorer(scoringCfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid scoring configuration")
	}

	riskCfg := risk.DefaultConfig()
	riskCfg.RiskFreeRate = cfg.RiskFreeRate

	pipelineSvc := pipeline.NewService(
		pipeline.Config{
			Parallelism: cfg.ScoringParallelism,
			FundTimeout: cfg.ScoringTimeout,
		},
		fundRepo, navRepo, benchmarkRepo, scoreRepo,
		returns.NewCalculator(log),
		risk.NewCalculator(riskCfg, log),
		scorer,
		ranking.NewRanker(scoringCfg, log),
		log)

	// Backtesting
	simCfg := backtest.DefaultConfig()
	simCfg.RiskFreeRate = cfg.RiskFreeRate
	simulator := backtest.NewSimulator(simCfg, log)
	optimizer := backtest.NewOptimizer(simulator, log)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	// Nightly scoring job
	if err := sched.AddJob(cfg.ScoringSchedule, scheduler.NewScoringJob(pipelineSvc, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register scoring job")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:       cfg.Port,
		DevMode:    cfg.DevMode,
		Log:        log,
		Funds:      fundRepo,
		NAVs:       navRepo,
		Benchmarks: benchmarkRepo,
		Scores:     scoreRepo,
		Pipeline:   pipelineSvc,
		Simulator:  simulator,
		Optimizer:  optimizer,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
