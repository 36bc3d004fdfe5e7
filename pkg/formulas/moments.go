package formulas

import (
	"math"

	montstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Skewness calculates the sample skewness of a return series.
// Returns nil for samples under 3 observations or non-finite results.
func Skewness(returns []float64) *float64 {
	if len(returns) < 3 {
		return nil
	}
	s := stat.Skew(returns, nil)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return nil
	}
	return &s
}

// ExcessKurtosis calculates the excess kurtosis of a return series
// (normal distribution = 0). Returns nil for samples under 4
// observations or non-finite results.
func ExcessKurtosis(returns []float64) *float64 {
	if len(returns) < 4 {
		return nil
	}
	k := stat.ExKurtosis(returns, nil)
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return nil
	}
	return &k
}

// HistoricalVaR calculates value-at-risk from the empirical return
// distribution at the given confidence level (e.g. 0.95). The result is
// expressed as a positive loss fraction: VaR 0.02 means a 2% one-day
// loss at the confidence level. Returns nil when the sample is too small
// for the requested tail.
func HistoricalVaR(returns []float64, confidence float64) *float64 {
	if confidence <= 0 || confidence >= 1 {
		return nil
	}
	// Need enough points for the tail percentile to be meaningful.
	minSamples := int(math.Ceil(1.0 / (1.0 - confidence)))
	if len(returns) < minSamples {
		return nil
	}

	q, err := montstats.Percentile(montstats.Float64Data(returns), (1-confidence)*100)
	if err != nil {
		return nil
	}

	v := 0.0
	if q < 0 {
		v = -q
	}
	return &v
}
