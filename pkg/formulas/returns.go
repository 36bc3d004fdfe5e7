package formulas

import "math"

// SimpleReturn calculates the point-to-point return (end/start - 1).
// Returns nil when start is not strictly positive.
func SimpleReturn(start, end float64) *float64 {
	if start <= 0 {
		return nil
	}
	r := end/start - 1
	return &r
}

// CAGR calculates the compound annual growth rate between two values
// observed `days` calendar days apart: (end/start)^(365/days) - 1.
// Returns nil when the inputs cannot produce a finite rate.
func CAGR(start, end float64, days int) *float64 {
	if start <= 0 || end <= 0 || days <= 0 {
		return nil
	}
	r := math.Pow(end/start, 365.0/float64(days)) - 1
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	return &r
}

// DailyReturns converts a value series to day-over-day percentage returns.
// Returns[i] = (Value[i+1] - Value[i]) / Value[i]. Non-positive
// denominators yield a zero entry; callers validate series positivity
// upstream.
func DailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] > 0 {
			returns[i-1] = (values[i] - values[i-1]) / values[i-1]
		}
	}
	return returns
}
