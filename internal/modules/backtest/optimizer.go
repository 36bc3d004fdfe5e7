package backtest

import (
	"sort"
	"sync"

	"github.com/navlens/navlens/internal/domain"
	"github.com/rs/zerolog"
)

// CandidateResult is the outcome of one threshold candidate. Failed runs
// carry the error text and are excluded from selection.
type CandidateResult struct {
	ThresholdPct float64  `json:"threshold_pct"`
	Sharpe       *float64 `json:"sharpe,omitempty"`
	Summary      *Summary `json:"summary,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// OptimizeResult is the full grid-search outcome. BestThreshold is nil
// when no candidate produced a Sharpe ratio.
type OptimizeResult struct {
	BestThreshold *float64          `json:"best_threshold,omitempty"`
	Candidates    []CandidateResult `json:"candidates"`
}

// Optimizer grid-searches rebalance thresholds with the simulator.
type Optimizer struct {
	sim *Simulator
	log zerolog.Logger
}

// NewOptimizer creates an optimizer over the given simulator.
func NewOptimizer(sim *Simulator, log zerolog.Logger) *Optimizer {
	return &Optimizer{
		sim: sim,
		log: log.With().Str("service", "optimizer").Logger(),
	}
}

// Optimize runs one backtest per candidate threshold and picks the
// candidate with the highest Sharpe ratio. Candidates run concurrently;
// each run is independent and shares no mutable state with the others.
// The request's own policy is ignored — every run uses a threshold
// policy built from its candidate.
func (o *Optimizer) Optimize(req Request, thresholds []float64, navs map[int64][]domain.NAVPoint, bench []domain.BenchmarkPoint) (OptimizeResult, error) {
	if len(thresholds) == 0 {
		return OptimizeResult{}, domain.ConfigurationError("no threshold candidates given")
	}

	results := make(chan CandidateResult, len(thresholds))
	var wg sync.WaitGroup

	for _, th := range thresholds {
		wg.Add(1)
		go func(th float64) {
			defer wg.Done()
			results <- o.runCandidate(req, th, navs, bench)
		}(th)
	}
	wg.Wait()
	close(results)

	out := OptimizeResult{Candidates: make([]CandidateResult, 0, len(thresholds))}
	for c := range results {
		out.Candidates = append(out.Candidates, c)
	}
	sort.Slice(out.Candidates, func(i, j int) bool {
		return out.Candidates[i].ThresholdPct < out.Candidates[j].ThresholdPct
	})

	var best *CandidateResult
	for i := range out.Candidates {
		c := &out.Candidates[i]
		if c.Sharpe == nil {
			continue
		}
		if best == nil || *c.Sharpe > *best.Sharpe {
			best = c
		}
	}
	if best != nil {
		th := best.ThresholdPct
		out.BestThreshold = &th
		o.log.Info().Float64("threshold_pct", th).Float64("sharpe", *best.Sharpe).
			Msg("Selected rebalance threshold")
	} else {
		o.log.Warn().Int("candidates", len(thresholds)).
			Msg("No candidate produced a Sharpe ratio")
	}

	return out, nil
}

func (o *Optimizer) runCandidate(req Request, th float64, navs map[int64][]domain.NAVPoint, bench []domain.BenchmarkPoint) CandidateResult {
	policy, err := ThresholdPolicy(th)
	if err != nil {
		return CandidateResult{ThresholdPct: th, Error: err.Error()}
	}
	req.Policy = policy

	res, err := o.sim.Run(req, navs, bench)
	if err != nil {
		o.log.Warn().Float64("threshold_pct", th).Err(err).Msg("Candidate run failed")
		return CandidateResult{ThresholdPct: th, Error: err.Error()}
	}

	return CandidateResult{
		ThresholdPct: th,
		Sharpe:       res.Summary.Sharpe,
		Summary:      &res.Summary,
	}
}
