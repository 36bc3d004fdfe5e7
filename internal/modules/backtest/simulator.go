package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/navlens/navlens/internal/domain"
	"github.com/navlens/navlens/pkg/formulas"
	"github.com/rs/zerolog"
)

// Config holds the tunable bounds of the simulator.
type Config struct {
	RiskFreeRate       float64 // annual, decimal
	StartWindowDays    int     // forward window for the opening NAV
	WeightSumTolerance float64 // pct points of slack on the 100% check
	MinSharpeObs       int     // minimum daily observations for a run Sharpe
}

// DefaultConfig returns the standard simulator bounds.
func DefaultConfig() Config {
	return Config{
		RiskFreeRate:       0.06,
		StartWindowDays:    5,
		WeightSumTolerance: 0.01,
		MinSharpeObs:       30,
	}
}

// RunState tracks a backtest run through its lifecycle.
type RunState string

const (
	StateInitialized RunState = "INITIALIZED"
	StateRunning     RunState = "RUNNING"
	StateCompleted   RunState = "COMPLETED"
	StateFailed      RunState = "FAILED"
)

// Request describes one backtest run.
type Request struct {
	Allocations   []domain.Allocation `json:"allocations"`
	Start         time.Time           `json:"start"`
	End           time.Time           `json:"end"`
	InitialAmount float64             `json:"initial_amount"`
	Policy        Policy              `json:"policy"`
}

// DayValue is the portfolio value on one calendar day.
type DayValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Summary aggregates the run's performance. Metrics that the value
// series cannot support are nil.
type Summary struct {
	TotalReturn      float64                   `json:"total_return"`
	AnnualizedReturn *float64                  `json:"annualized_return,omitempty"`
	Volatility       *float64                  `json:"volatility,omitempty"`
	Sharpe           *float64                  `json:"sharpe,omitempty"`
	Drawdown         *formulas.DrawdownMetrics `json:"drawdown,omitempty"`
	BenchmarkReturn  *float64                  `json:"benchmark_return,omitempty"`
	RebalanceCount   int                       `json:"rebalance_count"`
	RebalanceDates   []time.Time               `json:"rebalance_dates,omitempty"`
}

// Result is the full outcome of one run.
type Result struct {
	State   RunState   `json:"state"`
	Values  []DayValue `json:"values"`
	Summary Summary    `json:"summary"`
}

// Simulator replays a portfolio day-by-day under a rebalance policy.
// Replay is sequential within one run; independent runs share no state
// and may execute concurrently.
type Simulator struct {
	cfg Config
	log zerolog.Logger
}

// NewSimulator creates a backtest simulator.
func NewSimulator(cfg Config, log zerolog.Logger) *Simulator {
	return &Simulator{
		cfg: cfg,
		log: log.With().Str("service", "backtest").Logger(),
	}
}

// leg is the mutable per-fund replay state: the sanitized series, the
// carry-forward cursor and the live unit count.
type leg struct {
	fundID    int64
	targetPct float64
	points    []domain.NAVPoint
	idx       int // most recent observation on or before the current day
	units     float64
}

func (l *leg) nav() float64 { return l.points[l.idx].Value }

// Run replays the portfolio between the request's start and end dates.
// navs maps fund ID to its NAV series; bench may be nil.
//
// The returned result carries the terminal state even on error: a
// validation or missing-start-NAV failure yields StateFailed plus the
// error, never a silently defaulted run.
func (s *Simulator) Run(req Request, navs map[int64][]domain.NAVPoint, bench []domain.BenchmarkPoint) (Result, error) {
	res := Result{State: StateInitialized}

	legs, err := s.prepare(req, navs)
	if err != nil {
		res.State = StateFailed
		return res, err
	}
	res.State = StateRunning

	start := domain.DateOnly(req.Start)
	end := domain.DateOnly(req.End)

	// Opening units: allocated cash over the opening NAV. The portfolio
	// is worth exactly the initial amount on day one.
	for _, l := range legs {
		l.units = req.InitialAmount * l.targetPct / 100 / l.nav()
	}

	var (
		values        []DayValue
		lastRebalance = start
	)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		fresh := false
		for _, l := range legs {
			for l.idx+1 < len(l.points) && !l.points[l.idx+1].Date.After(day) {
				l.idx++
			}
			if l.points[l.idx].Date.Equal(day) {
				fresh = true
			}
		}

		total := 0.0
		for _, l := range legs {
			total += l.units * l.nav()
		}
		values = append(values, DayValue{Date: day, Value: total})

		if s.shouldRebalance(req.Policy, legs, total, day, lastRebalance, fresh) {
			for _, l := range legs {
				l.units = total * l.targetPct / 100 / l.nav()
			}
			lastRebalance = day
			res.Summary.RebalanceCount++
			res.Summary.RebalanceDates = append(res.Summary.RebalanceDates, day)
		}
	}

	s.summarize(&res, values, start, end, bench)
	res.State = StateCompleted

	s.log.Info().
		Time("start", start).
		Time("end", end).
		Int("rebalances", res.Summary.RebalanceCount).
		Float64("total_return", res.Summary.TotalReturn).
		Msg("Backtest completed")

	return res, nil
}

// prepare validates the request and builds the replay legs, locating
// each fund's opening NAV inside the forward start window.
func (s *Simulator) prepare(req Request, navs map[int64][]domain.NAVPoint) ([]*leg, error) {
	if req.InitialAmount <= 0 {
		return nil, domain.ConfigurationError("initial amount must be positive, got %v", req.InitialAmount)
	}
	if !req.Start.Before(req.End) {
		return nil, domain.ConfigurationError("start %s is not before end %s",
			req.Start.Format("2006-01-02"), req.End.Format("2006-01-02"))
	}
	if err := req.Policy.Validate(); err != nil {
		return nil, err
	}
	if len(req.Allocations) == 0 {
		return nil, domain.ConfigurationError("no allocations given")
	}

	sum := 0.0
	seen := make(map[int64]bool, len(req.Allocations))
	for _, a := range req.Allocations {
		if a.WeightPct <= 0 {
			return nil, domain.ConfigurationError("fund %d has non-positive weight %v", a.FundID, a.WeightPct)
		}
		if seen[a.FundID] {
			return nil, domain.ConfigurationError("fund %d allocated twice", a.FundID)
		}
		seen[a.FundID] = true
		sum += a.WeightPct
	}
	if math.Abs(sum-100) > s.cfg.WeightSumTolerance {
		return nil, domain.ConfigurationError("allocation weights sum to %v%%, want 100%%", sum)
	}

	start := domain.DateOnly(req.Start)
	windowEnd := start.AddDate(0, 0, s.cfg.StartWindowDays)

	legs := make([]*leg, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		series, ok := navs[a.FundID]
		if !ok {
			return nil, domain.ConfigurationError("no NAV series for fund %d", a.FundID)
		}
		clean, dropped := domain.SanitizeNAVSeries(series)
		if len(dropped) > 0 {
			s.log.Warn().Int64("fund_id", a.FundID).Int("dropped", len(dropped)).
				Msg("Dropped invalid NAV observations")
		}

		openIdx := -1
		for i, p := range clean {
			if !p.Date.Before(start) && !p.Date.After(windowEnd) {
				openIdx = i
				break
			}
		}
		if openIdx < 0 {
			return nil, fmt.Errorf("%w: fund %d has no NAV within %d days after start %s",
				domain.ErrInsufficientData, a.FundID, s.cfg.StartWindowDays, start.Format("2006-01-02"))
		}

		legs = append(legs, &leg{
			fundID:    a.FundID,
			targetPct: a.WeightPct,
			points:    clean,
			idx:       openIdx,
		})
	}
	return legs, nil
}

// shouldRebalance evaluates the policy for one day. Calendar cadence
// fires only on days with a fresh NAV; the threshold check runs daily
// against the carry-forward valuation.
func (s *Simulator) shouldRebalance(p Policy, legs []*leg, total float64, day, last time.Time, fresh bool) bool {
	if total <= 0 {
		return false
	}
	switch p.Kind {
	case PolicyCalendar:
		if !fresh {
			return false
		}
		return int(day.Sub(last).Hours()/24) >= p.CadenceDays
	case PolicyThreshold:
		for _, l := range legs {
			live := l.units * l.nav() / total * 100
			if math.Abs(live-l.targetPct) > p.ThresholdPct {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// summarize computes the run metrics from the daily value series.
func (s *Simulator) summarize(res *Result, values []DayValue, start, end time.Time, bench []domain.BenchmarkPoint) {
	res.Values = values
	if len(values) == 0 {
		return
	}

	first := values[0].Value
	final := values[len(values)-1].Value
	res.Summary.TotalReturn = final/first - 1

	spanDays := int(end.Sub(start).Hours() / 24)
	if spanDays > 365 {
		res.Summary.AnnualizedReturn = formulas.CAGR(first, final, spanDays)
	} else {
		tr := res.Summary.TotalReturn
		res.Summary.AnnualizedReturn = &tr
	}

	dates := make([]time.Time, len(values))
	vals := make([]float64, len(values))
	for i, v := range values {
		dates[i] = v.Date
		vals[i] = v.Value
	}

	rets := formulas.DailyReturns(vals)
	if len(rets) >= 2 {
		vol := formulas.AnnualizedVolatility(rets)
		res.Summary.Volatility = &vol
	}
	res.Summary.Sharpe = formulas.SharpeRatio(rets, s.cfg.RiskFreeRate, s.cfg.MinSharpeObs)
	res.Summary.Drawdown = formulas.CalculateDrawdownMetrics(dates, vals)

	if len(bench) > 0 {
		res.Summary.BenchmarkReturn = s.benchmarkReturn(bench, start, end)
	}
}

// benchmarkReturn computes the benchmark's simple return over the run
// window, using the same forward window for the opening observation.
func (s *Simulator) benchmarkReturn(bench []domain.BenchmarkPoint, start, end time.Time) *float64 {
	clean, _ := domain.SanitizeBenchmarkSeries(bench)
	windowEnd := start.AddDate(0, 0, s.cfg.StartWindowDays)

	var open, close *domain.BenchmarkPoint
	for i := range clean {
		p := &clean[i]
		if open == nil && !p.Date.Before(start) && !p.Date.After(windowEnd) {
			open = p
		}
		if !p.Date.After(end) {
			close = p
		}
	}
	if open == nil || close == nil || !open.Date.Before(close.Date) {
		return nil
	}
	return formulas.SimpleReturn(open.Value, close.Value)
}
