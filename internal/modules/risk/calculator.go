package risk

import (
	"time"

	"github.com/navlens/navlens/internal/domain"
	"github.com/navlens/navlens/pkg/formulas"
	"github.com/rs/zerolog"
)

// Config holds the tunable bounds of the risk calculator.
type Config struct {
	RiskFreeRate     float64 // annual, decimal (e.g. 0.06 for 6%)
	MaxGapDays       int     // daily returns are not computed across wider holes
	MinSharpeObs     int     // minimum daily observations inside the Sharpe window
	MinBetaOverlap   int     // minimum aligned observations for beta/capture
	ReturnWindowDays int     // lookback for volatility/Sharpe/moments/VaR
	DrawdownDays     int     // lookback for drawdown analysis
	VaRConfidence    float64
}

// DefaultConfig returns the standard calculator bounds.
func DefaultConfig() Config {
	return Config{
		RiskFreeRate:     0.06,
		MaxGapDays:       10,
		MinSharpeObs:     200,
		MinBetaOverlap:   150,
		ReturnWindowDays: 365,
		DrawdownDays:     1095,
		VaRConfidence:    0.95,
	}
}

// Metrics is the full risk profile of one fund at one as-of date.
// Every field is independently nil-able: a nil metric means the inputs
// could not support it, and no assumed or typical value is ever
// substituted.
type Metrics struct {
	Volatility     *float64                  `json:"volatility,omitempty"`       // annualized
	Drawdown       *formulas.DrawdownMetrics `json:"drawdown,omitempty"`         // over the drawdown window
	Sharpe         *float64                  `json:"sharpe,omitempty"`           // annualized
	Beta           *float64                  `json:"beta,omitempty"`             // vs mapped benchmark
	UpCapture      *float64                  `json:"up_capture,omitempty"`       // percent
	DownCapture    *float64                  `json:"down_capture,omitempty"`     // percent
	Skewness       *float64                  `json:"skewness,omitempty"`
	ExcessKurtosis *float64                  `json:"excess_kurtosis,omitempty"`
	VaR95          *float64                  `json:"var_95,omitempty"` // positive loss fraction
	SampleSize     int                       `json:"sample_size"`      // daily returns inside the return window
	BenchOverlap   int                       `json:"bench_overlap"`    // aligned fund/benchmark returns
}

// Calculator computes risk metrics from NAV and benchmark series.
type Calculator struct {
	cfg Config
	log zerolog.Logger
}

// NewCalculator creates a new risk metrics calculator.
func NewCalculator(cfg Config, log zerolog.Logger) *Calculator {
	return &Calculator{
		cfg: cfg,
		log: log.With().Str("calculator", "risk").Logger(),
	}
}

// Calculate computes all risk metrics for a fund as of the given date.
// The benchmark series may be nil; benchmark-relative metrics are then
// left absent. Integrity violations in either series are dropped
// point-wise before computation.
func (c *Calculator) Calculate(nav []domain.NAVPoint, bench []domain.BenchmarkPoint, asOf time.Time) Metrics {
	asOf = domain.DateOnly(asOf)

	cleanNAV, droppedNAV := domain.SanitizeNAVSeries(nav)
	if len(droppedNAV) > 0 {
		c.log.Warn().Int("dropped", len(droppedNAV)).
			Err(domain.IntegrityError("non-positive or out-of-order NAV observations")).
			Msg("Dropped invalid NAV observations")
	}

	m := Metrics{}

	// Fund-only metrics over the one-year return window.
	dates, values := navWindow(cleanNAV, asOf, c.cfg.ReturnWindowDays)
	dailyReturns := dailyReturnSeries(dates, values, c.cfg.MaxGapDays)
	m.SampleSize = len(dailyReturns)

	returnsOnly := make([]float64, len(dailyReturns))
	for i, r := range dailyReturns {
		returnsOnly[i] = r.ret
	}

	if len(returnsOnly) >= 2 {
		vol := formulas.AnnualizedVolatility(returnsOnly)
		m.Volatility = &vol
	}

	m.Sharpe = formulas.SharpeRatio(returnsOnly, c.cfg.RiskFreeRate, c.cfg.MinSharpeObs)
	m.Skewness = formulas.Skewness(returnsOnly)
	m.ExcessKurtosis = formulas.ExcessKurtosis(returnsOnly)
	m.VaR95 = formulas.HistoricalVaR(returnsOnly, c.cfg.VaRConfidence)

	// Drawdown over the longer window.
	ddDates, ddValues := navWindow(cleanNAV, asOf, c.cfg.DrawdownDays)
	m.Drawdown = formulas.CalculateDrawdownMetrics(ddDates, ddValues)

	// Benchmark-relative metrics over the date-aligned window.
	if len(bench) > 0 {
		cleanBench, droppedBench := domain.SanitizeBenchmarkSeries(bench)
		if len(droppedBench) > 0 {
			c.log.Warn().Int("dropped", len(droppedBench)).Msg("Dropped invalid benchmark observations")
		}

		bDates, bValues := benchmarkWindow(cleanBench, asOf, c.cfg.ReturnWindowDays)
		benchReturns := dailyReturnSeries(bDates, bValues, c.cfg.MaxGapDays)

		fundAligned, benchAligned := alignReturns(dailyReturns, benchReturns)
		m.BenchOverlap = len(fundAligned)

		if len(fundAligned) < c.cfg.MinBetaOverlap {
			c.log.Debug().
				Err(domain.AlignmentError("overlap %d below minimum %d", len(fundAligned), c.cfg.MinBetaOverlap)).
				Msg("Skipping benchmark-relative metrics")
		} else {
			m.Beta = formulas.Beta(fundAligned, benchAligned, c.cfg.MinBetaOverlap)
			m.UpCapture = formulas.UpCaptureRatio(fundAligned, benchAligned)
			m.DownCapture = formulas.DownCaptureRatio(fundAligned, benchAligned)
		}
	}

	return m
}
