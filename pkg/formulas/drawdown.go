package formulas

import "time"

// DrawdownMetrics represents drawdown analysis results over a dated
// value series.
type DrawdownMetrics struct {
	MaxDrawdown     float64   `json:"max_drawdown"`     // largest peak-to-trough decline, positive fraction (0.25 = 25%)
	PeakDate        time.Time `json:"peak_date"`        // date of the peak preceding the max drawdown
	TroughDate      time.Time `json:"trough_date"`      // date of the trough of the max drawdown
	DurationDays    int       `json:"duration_days"`    // calendar days from peak to trough
	CurrentDrawdown float64   `json:"current_drawdown"` // live distance from the most recent peak
	PeakValue       float64   `json:"peak_value"`       // value at the most recent peak
	CurrentValue    float64   `json:"current_value"`
}

// MaxDrawdown calculates the maximum peak-to-trough decline of a value
// series as a positive fraction. Returns nil for series shorter than 2.
func MaxDrawdown(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}

	maxDD := 0.0
	peak := values[0]
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return &maxDD
}

// CalculateDrawdownMetrics computes full drawdown metrics for a dated
// series. dates and values must be parallel slices; returns nil when the
// series is too short or the slices disagree in length.
func CalculateDrawdownMetrics(dates []time.Time, values []float64) *DrawdownMetrics {
	if len(values) < 2 || len(dates) != len(values) {
		return nil
	}

	maxDD := 0.0
	peak := values[0]
	peakIdx := 0
	maxPeakIdx := 0
	maxTroughIdx := 0

	for i, v := range values {
		if v > peak {
			peak = v
			peakIdx = i
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
				maxPeakIdx = peakIdx
				maxTroughIdx = i
			}
		}
	}

	current := values[len(values)-1]
	currentDD := 0.0
	if peak > 0 {
		currentDD = (peak - current) / peak
	}

	return &DrawdownMetrics{
		MaxDrawdown:     maxDD,
		PeakDate:        dates[maxPeakIdx],
		TroughDate:      dates[maxTroughIdx],
		DurationDays:    int(dates[maxTroughIdx].Sub(dates[maxPeakIdx]).Hours() / 24),
		CurrentDrawdown: currentDD,
		PeakValue:       peak,
		CurrentValue:    current,
	}
}
