package domain

import "time"

// Period identifies a trailing return window.
type Period string

const (
	Period3M  Period = "3M"
	Period6M  Period = "6M"
	Period1Y  Period = "1Y"
	Period3Y  Period = "3Y"
	Period5Y  Period = "5Y"
	PeriodYTD Period = "YTD"
)

// Fund represents a mutual fund scheme. Reference data owned by the
// import collaborator; this core only reads it.
type Fund struct {
	ID              int64     `json:"id"`
	SchemeCode      string    `json:"scheme_code"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Subcategory     string    `json:"subcategory"`
	BenchmarkName   string    `json:"benchmark_name"`
	ExpenseRatioPct float64   `json:"expense_ratio_pct"`
	AUMCrores       float64   `json:"aum_crores"`
	InceptionDate   time.Time `json:"inception_date"`
	Active          bool      `json:"active"`
}

// NAVPoint is a single net-asset-value observation. Value is strictly
// positive; dates are unique and ascending within a fund's series.
type NAVPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// BenchmarkPoint is a single benchmark index observation, same shape as
// NAVPoint.
type BenchmarkPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ComponentScores holds the per-metric point scores (0-8 each) that feed
// the four buckets.
type ComponentScores struct {
	Return3M  *float64 `json:"return_3m,omitempty"`
	Return6M  *float64 `json:"return_6m,omitempty"`
	Return1Y  *float64 `json:"return_1y,omitempty"`
	Return3Y  *float64 `json:"return_3y,omitempty"`
	Return5Y  *float64 `json:"return_5y,omitempty"`
	ReturnYTD *float64 `json:"return_ytd,omitempty"`

	Volatility  *float64 `json:"volatility,omitempty"`
	MaxDrawdown *float64 `json:"max_drawdown,omitempty"`
	Sharpe      *float64 `json:"sharpe,omitempty"`
	Beta        *float64 `json:"beta,omitempty"`

	ExpenseRatio *float64 `json:"expense_ratio,omitempty"`
	AUM          *float64 `json:"aum,omitempty"`
	FundAge      *float64 `json:"fund_age,omitempty"`

	UpCapture      *float64 `json:"up_capture,omitempty"`
	DownCapture    *float64 `json:"down_capture,omitempty"`
	Skewness       *float64 `json:"skewness,omitempty"`
	ExcessKurtosis *float64 `json:"excess_kurtosis,omitempty"`
	VaR95          *float64 `json:"var_95,omitempty"`
}

// ScoreRecord is the persisted scoring output for one fund on one score
// date. Rank, percentile, quartile and the final recommendation are
// filled by the peer ranker after every fund in the subcategory has been
// scored. The field shape is a contract consumed by the API/UI layers.
type ScoreRecord struct {
	FundID      int64     `json:"fund_id"`
	ScoreDate   time.Time `json:"score_date"`
	Subcategory string    `json:"subcategory"`

	Components ComponentScores `json:"components"`

	ReturnsBucket      float64 `json:"returns_bucket"`      // capped at 40
	RiskBucket         float64 `json:"risk_bucket"`         // capped at 30
	FundamentalsBucket float64 `json:"fundamentals_bucket"` // capped at 20
	OtherBucket        float64 `json:"other_bucket"`        // capped at 10
	TotalScore         float64 `json:"total_score"`         // 0-100

	SubcategoryRank       int     `json:"subcategory_rank"`
	SubcategoryPercentile float64 `json:"subcategory_percentile"`
	Quartile              int     `json:"quartile"`
	Recommendation        string  `json:"recommendation"`

	ConfigVersion string    `json:"config_version"`
	CreatedAt     time.Time `json:"created_at"`
}

// Allocation is one leg of a backtest portfolio. WeightPct is a
// percentage; weights across a portfolio must sum to 100 within
// tolerance.
type Allocation struct {
	FundID    int64   `json:"fund_id"`
	WeightPct float64 `json:"weight_pct"`
}

// Recommendation tiers, best first.
const (
	RecommendationStrongBuy = "STRONG_BUY"
	RecommendationBuy       = "BUY"
	RecommendationHold      = "HOLD"
	RecommendationSell      = "SELL"
)

// DateOnly normalizes a timestamp to midnight UTC so NAV dates compare
// cleanly regardless of source timezone.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
