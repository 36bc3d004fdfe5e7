package scoring

import (
	"sort"

	"github.com/navlens/navlens/internal/domain"
)

// Band awards Points when the metric value clears Min (for metrics where
// higher is better) or stays at or under Min (lower is better). Bands are
// evaluated best-first; the first matching band wins.
type Band struct {
	Min    float64
	Points float64
}

// Ladder is the full band list for one metric. Bands must be sorted by
// strictness: descending Min for higher-is-better metrics, ascending Min
// for lower-is-better ones.
type Ladder struct {
	LowerIsBetter bool
	Bands         []Band
}

// Score maps a metric value onto the ladder. Values that clear no band
// score zero points.
func (l Ladder) Score(value float64) float64 {
	for _, b := range l.Bands {
		if l.LowerIsBetter {
			if value <= b.Min {
				return b.Points
			}
		} else if value >= b.Min {
			return b.Points
		}
	}
	return 0
}

func (l Ladder) maxPoints() float64 {
	max := 0.0
	for _, b := range l.Bands {
		if b.Points > max {
			max = b.Points
		}
	}
	return max
}

func (l Ladder) sorted() bool {
	return sort.SliceIsSorted(l.Bands, func(i, j int) bool {
		if l.LowerIsBetter {
			return l.Bands[i].Min < l.Bands[j].Min
		}
		return l.Bands[i].Min > l.Bands[j].Min
	})
}

// Config is one versioned scoring configuration. The same config version
// applied to the same inputs always produces the same record, so scores
// across funds and dates are comparable only within a version.
type Config struct {
	Version string

	// Per-metric ladders. Return ladders are keyed by trailing period.
	ReturnLadders map[domain.Period]Ladder

	Volatility  Ladder
	MaxDrawdown Ladder
	Sharpe      Ladder
	Beta        Ladder

	ExpenseRatio Ladder
	AUM          Ladder
	FundAge      Ladder // years since inception

	UpCapture      Ladder
	DownCapture    Ladder
	Skewness       Ladder
	ExcessKurtosis Ladder
	VaR95          Ladder

	// Bucket ceilings. Must sum to 100.
	ReturnsCeiling      float64
	RiskCeiling         float64
	FundamentalsCeiling float64
	OtherCeiling        float64

	// Recommendation cutoffs on the total score, plus the peer-rank
	// override: a fund in quartile 1 whose total falls within
	// OverrideMargin below a cutoff and whose risk bucket is at least
	// OverrideRiskFloor is promoted one tier.
	StrongBuyMin      float64
	BuyMin            float64
	HoldMin           float64
	OverrideMargin    float64
	OverrideRiskFloor float64
}

// Validate checks structural invariants of the config. Called by the
// scorer constructor so a bad config table aborts the run up front.
func (c Config) Validate() error {
	if c.Version == "" {
		return domain.ConfigurationError("scoring config has no version")
	}
	sum := c.ReturnsCeiling + c.RiskCeiling + c.FundamentalsCeiling + c.OtherCeiling
	if sum != 100 {
		return domain.ConfigurationError("bucket ceilings sum to %v, want 100", sum)
	}
	for period, l := range c.ReturnLadders {
		if !l.sorted() {
			return domain.ConfigurationError("return ladder %s is not sorted", period)
		}
	}
	named := map[string]Ladder{
		"volatility":      c.Volatility,
		"max_drawdown":    c.MaxDrawdown,
		"sharpe":          c.Sharpe,
		"beta":            c.Beta,
		"expense_ratio":   c.ExpenseRatio,
		"aum":             c.AUM,
		"fund_age":        c.FundAge,
		"up_capture":      c.UpCapture,
		"down_capture":    c.DownCapture,
		"skewness":        c.Skewness,
		"excess_kurtosis": c.ExcessKurtosis,
		"var_95":          c.VaR95,
	}
	for name, l := range named {
		if !l.sorted() {
			return domain.ConfigurationError("%s ladder is not sorted", name)
		}
	}
	return nil
}

// higher builds a higher-is-better ladder from (min, points) pairs given
// best-first.
func higher(bands ...Band) Ladder {
	return Ladder{Bands: bands}
}

// lower builds a lower-is-better ladder from (max, points) pairs given
// best-first.
func lower(bands ...Band) Ladder {
	return Ladder{LowerIsBetter: true, Bands: bands}
}

// DefaultConfig returns the v1 scoring configuration.
//
// Point scales per metric: returns 0-8, risk 0-8, fundamentals 0-7,
// other 0-3. Return thresholds are decimals (0.12 = 12%); drawdown and
// VaR thresholds are positive loss fractions.
func DefaultConfig() Config {
	return Config{
		Version: "v1",

		ReturnLadders: map[domain.Period]Ladder{
			domain.Period3M: higher(
				Band{0.08, 8}, Band{0.05, 6}, Band{0.03, 4}, Band{0.01, 2}, Band{0, 1},
			),
			domain.Period6M: higher(
				Band{0.12, 8}, Band{0.08, 6}, Band{0.05, 4}, Band{0.02, 2}, Band{0, 1},
			),
			domain.Period1Y: higher(
				Band{0.20, 8}, Band{0.14, 6}, Band{0.09, 4}, Band{0.04, 2}, Band{0, 1},
			),
			domain.Period3Y: higher(
				Band{0.18, 8}, Band{0.13, 6}, Band{0.09, 4}, Band{0.05, 2}, Band{0, 1},
			),
			domain.Period5Y: higher(
				Band{0.16, 8}, Band{0.12, 6}, Band{0.09, 4}, Band{0.05, 2}, Band{0, 1},
			),
			domain.PeriodYTD: higher(
				Band{0.15, 8}, Band{0.10, 6}, Band{0.06, 4}, Band{0.02, 2}, Band{0, 1},
			),
		},

		Volatility: lower(
			Band{0.10, 8}, Band{0.14, 6}, Band{0.18, 4}, Band{0.24, 2},
		),
		MaxDrawdown: lower(
			Band{0.08, 8}, Band{0.14, 6}, Band{0.22, 4}, Band{0.32, 2},
		),
		Sharpe: higher(
			Band{1.5, 8}, Band{1.0, 6}, Band{0.6, 4}, Band{0.2, 2}, Band{0, 1},
		),
		Beta: lower(
			Band{0.85, 6}, Band{1.0, 5}, Band{1.1, 3}, Band{1.25, 1},
		),

		ExpenseRatio: lower(
			Band{0.5, 7}, Band{1.0, 5}, Band{1.5, 3}, Band{2.0, 1},
		),
		AUM: higher( // crores
			Band{10000, 7}, Band{5000, 6}, Band{1000, 4}, Band{500, 2}, Band{100, 1},
		),
		FundAge: higher( // years
			Band{10, 7}, Band{5, 5}, Band{3, 3}, Band{1, 1},
		),

		UpCapture: higher( // percent
			Band{110, 3}, Band{100, 2}, Band{90, 1},
		),
		DownCapture: lower( // percent
			Band{80, 3}, Band{95, 2}, Band{105, 1},
		),
		Skewness: higher(
			Band{0.3, 2}, Band{0, 1},
		),
		ExcessKurtosis: lower(
			Band{1.0, 2}, Band{3.0, 1},
		),
		VaR95: lower(
			Band{0.010, 2}, Band{0.018, 1},
		),

		ReturnsCeiling:      40,
		RiskCeiling:         30,
		FundamentalsCeiling: 20,
		OtherCeiling:        10,

		StrongBuyMin:      70,
		BuyMin:            55,
		HoldMin:           40,
		OverrideMargin:    5,
		OverrideRiskFloor: 20,
	}
}
