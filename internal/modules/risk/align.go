package risk

import (
	"time"

	"github.com/navlens/navlens/internal/domain"
)

// datedReturn is one daily return attributed to the later date of the
// observation pair that produced it.
type datedReturn struct {
	date time.Time
	ret  float64
}

// dailyReturnSeries converts an ordered, sanitized value series to dated
// daily returns. Pairs separated by more than maxGapDays are skipped:
// a return computed across a long hole is not a daily return, and the
// gap must surface as missing data rather than be smoothed over.
func dailyReturnSeries(dates []time.Time, values []float64, maxGapDays int) []datedReturn {
	if len(values) < 2 {
		return nil
	}

	out := make([]datedReturn, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		gap := dates[i].Sub(dates[i-1]).Hours() / 24
		if gap > float64(maxGapDays) {
			continue
		}
		if values[i-1] <= 0 {
			continue
		}
		out = append(out, datedReturn{
			date: dates[i],
			ret:  (values[i] - values[i-1]) / values[i-1],
		})
	}
	return out
}

// alignReturns intersects two dated return series on date, preserving
// chronological order. Both inputs must be date-ascending.
func alignReturns(fund, bench []datedReturn) (fundOut, benchOut []float64) {
	benchByDate := make(map[time.Time]float64, len(bench))
	for _, b := range bench {
		benchByDate[b.date] = b.ret
	}

	for _, f := range fund {
		if b, ok := benchByDate[f.date]; ok {
			fundOut = append(fundOut, f.ret)
			benchOut = append(benchOut, b)
		}
	}
	return fundOut, benchOut
}

// navWindow slices a sanitized NAV series down to observations within
// lookbackDays of asOf (inclusive), ignoring anything after asOf.
func navWindow(points []domain.NAVPoint, asOf time.Time, lookbackDays int) (dates []time.Time, values []float64) {
	cutoff := asOf.AddDate(0, 0, -lookbackDays)
	for _, p := range points {
		if p.Date.Before(cutoff) || p.Date.After(asOf) {
			continue
		}
		dates = append(dates, p.Date)
		values = append(values, p.Value)
	}
	return dates, values
}

// benchmarkWindow is navWindow for benchmark series.
func benchmarkWindow(points []domain.BenchmarkPoint, asOf time.Time, lookbackDays int) (dates []time.Time, values []float64) {
	cutoff := asOf.AddDate(0, 0, -lookbackDays)
	for _, p := range points {
		if p.Date.Before(cutoff) || p.Date.After(asOf) {
			continue
		}
		dates = append(dates, p.Date)
		values = append(values, p.Value)
	}
	return dates, values
}
