package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/navlens/navlens/internal/domain"
	"github.com/navlens/navlens/internal/modules/ranking"
	"github.com/navlens/navlens/internal/modules/returns"
	"github.com/navlens/navlens/internal/modules/risk"
	"github.com/navlens/navlens/internal/modules/scoring"
	"github.com/rs/zerolog"
)

// FundLister lists the funds that need scoring.
type FundLister interface {
	ListActive() ([]domain.Fund, error)
}

// NAVSource provides per-fund NAV history.
type NAVSource interface {
	GetSeries(fundID int64) ([]domain.NAVPoint, error)
}

// BenchmarkSource provides benchmark index history by name.
type BenchmarkSource interface {
	GetSeries(name string) ([]domain.BenchmarkPoint, error)
}

// ScoreStore persists and reads back score records.
type ScoreStore interface {
	Upsert(rec domain.ScoreRecord) error
	ListByDate(scoreDate time.Time) ([]domain.ScoreRecord, error)
}

// Config bounds the batch run.
type Config struct {
	Parallelism int           // concurrent per-fund workers
	FundTimeout time.Duration // per-fund budget
}

// DefaultConfig returns the standard pipeline bounds.
func DefaultConfig() Config {
	return Config{
		Parallelism: 4,
		FundTimeout: 30 * time.Second,
	}
}

// RunStats summarizes one scoring run.
type RunStats struct {
	Funds         int `json:"funds"`
	Scored        int `json:"scored"`
	Skipped       int `json:"skipped"`
	Subcategories int `json:"subcategories"`
}

// Service runs the batch scoring pipeline: per-fund computation with
// bounded parallelism, keyed-upsert persistence, then peer ranking per
// subcategory behind a barrier. Each fund's record is written by exactly
// one worker per run, so concurrent persistence needs no locks.
type Service struct {
	cfg        Config
	funds      FundLister
	navs       NAVSource
	benchmarks BenchmarkSource
	scores     ScoreStore

	returnsCalc *returns.Calculator
	riskCalc    *risk.Calculator
	scorer      *scoring.Scorer
	ranker      *ranking.Ranker

	log zerolog.Logger
}

// NewService wires the pipeline.
func NewService(
	cfg Config,
	funds FundLister,
	navs NAVSource,
	benchmarks BenchmarkSource,
	scores ScoreStore,
	returnsCalc *returns.Calculator,
	riskCalc *risk.Calculator,
	scorer *scoring.Scorer,
	ranker *ranking.Ranker,
	log zerolog.Logger,
) *Service {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultConfig().Parallelism
	}
	if cfg.FundTimeout <= 0 {
		cfg.FundTimeout = DefaultConfig().FundTimeout
	}
	return &Service{
		cfg:         cfg,
		funds:       funds,
		navs:        navs,
		benchmarks:  benchmarks,
		scores:      scores,
		returnsCalc: returnsCalc,
		riskCalc:    riskCalc,
		scorer:      scorer,
		ranker:      ranker,
		log:         log.With().Str("service", "pipeline").Logger(),
	}
}

// RunScoringDate scores every active fund as of the given date, then
// ranks each subcategory once all of its members are persisted. A fund
// that fails or times out is logged and skipped; it never blocks the
// batch. Re-running the same date overwrites the same keyed records, so
// the run is idempotent.
func (s *Service) RunScoringDate(ctx context.Context, asOf time.Time) (RunStats, error) {
	asOf = domain.DateOnly(asOf)
	stats := RunStats{}

	funds, err := s.funds.ListActive()
	if err != nil {
		return stats, fmt.Errorf("failed to list funds for scoring: %w", err)
	}
	stats.Funds = len(funds)
	if len(funds) == 0 {
		s.log.Warn().Msg("No active funds to score")
		return stats, nil
	}

	s.log.Info().Int("funds", len(funds)).Time("as_of", asOf).Msg("Starting scoring run")

	benchCache := newBenchmarkCache(s.benchmarks)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		sem     = make(chan struct{}, s.cfg.Parallelism)
		scored  int
		skipped int
	)

	for _, fund := range funds {
		wg.Add(1)
		sem <- struct{}{}
		go func(fund domain.Fund) {
			defer wg.Done()
			defer func() { <-sem }()

			fundCtx, cancel := context.WithTimeout(ctx, s.cfg.FundTimeout)
			defer cancel()

			if err := s.scoreFund(fundCtx, fund, asOf, benchCache); err != nil {
				s.log.Warn().Int64("fund_id", fund.ID).Err(err).Msg("Skipping fund")
				mu.Lock()
				skipped++
				mu.Unlock()
				return
			}
			mu.Lock()
			scored++
			mu.Unlock()
		}(fund)
	}
	wg.Wait()

	stats.Scored = scored
	stats.Skipped = skipped

	// Barrier: every worker has finished and persisted, so the peer
	// groups read back from the store are complete for this date.
	subcats, err := s.rankDate(asOf)
	if err != nil {
		return stats, err
	}
	stats.Subcategories = subcats

	s.log.Info().
		Int("scored", scored).
		Int("skipped", skipped).
		Int("subcategories", subcats).
		Msg("Scoring run finished")

	return stats, nil
}

// scoreFund computes and persists one fund's score record.
func (s *Service) scoreFund(ctx context.Context, fund domain.Fund, asOf time.Time, bench *benchmarkCache) error {
	nav, err := s.navs.GetSeries(fund.ID)
	if err != nil {
		return fmt.Errorf("failed to load NAV series: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var benchSeries []domain.BenchmarkPoint
	if name := resolveBenchmarkName(fund.BenchmarkName, fund.Category); name != "" {
		benchSeries, err = bench.get(name)
		if err != nil {
			// Benchmark trouble costs only the relative metrics.
			s.log.Warn().Int64("fund_id", fund.ID).Str("benchmark", name).Err(err).
				Msg("Benchmark unavailable, relative metrics will be absent")
			benchSeries = nil
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	periodReturns := s.returnsCalc.AllPeriods(nav, asOf)
	riskMetrics := s.riskCalc.Calculate(nav, benchSeries, asOf)
	if err := ctx.Err(); err != nil {
		return err
	}

	rec, err := s.scorer.Score(scoring.Input{
		Fund:    fund,
		Returns: periodReturns,
		Risk:    riskMetrics,
		AsOf:    asOf,
	})
	if err != nil {
		return err
	}
	rec.CreatedAt = time.Now().UTC()

	if err := s.scores.Upsert(rec); err != nil {
		return fmt.Errorf("failed to persist score: %w", err)
	}
	return nil
}

// rankDate groups the persisted records by subcategory and runs the
// peer ranker over each group, writing the ranked records back.
func (s *Service) rankDate(asOf time.Time) (int, error) {
	records, err := s.scores.ListByDate(asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to read back scores for ranking: %w", err)
	}

	groups := make(map[string][]domain.ScoreRecord)
	for _, rec := range records {
		groups[rec.Subcategory] = append(groups[rec.Subcategory], rec)
	}

	for subcategory, group := range groups {
		ranked, err := s.ranker.RankSubcategory(group)
		if err != nil {
			return 0, fmt.Errorf("failed to rank %q: %w", subcategory, err)
		}
		for _, rec := range ranked {
			if err := s.scores.Upsert(rec); err != nil {
				return 0, fmt.Errorf("failed to persist rank for fund %d: %w", rec.FundID, err)
			}
		}
	}
	return len(groups), nil
}

// benchmarkCache deduplicates benchmark fetches across workers within
// one run.
type benchmarkCache struct {
	source BenchmarkSource

	mu     sync.Mutex
	series map[string][]domain.BenchmarkPoint
}

func newBenchmarkCache(source BenchmarkSource) *benchmarkCache {
	return &benchmarkCache{
		source: source,
		series: make(map[string][]domain.BenchmarkPoint),
	}
}

func (c *benchmarkCache) get(name string) ([]domain.BenchmarkPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.series[name]; ok {
		return cached, nil
	}
	series, err := c.source.GetSeries(name)
	if err != nil {
		return nil, err
	}
	c.series[name] = series
	return series, nil
}
