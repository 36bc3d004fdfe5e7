package domain

// SanitizeNAVSeries enforces series invariants on an ordered NAV series:
// values strictly positive, dates strictly increasing and unique.
// Offending points are dropped individually (the rest of the series
// stays usable) and reported back so callers can log them.
func SanitizeNAVSeries(points []NAVPoint) (clean []NAVPoint, dropped []NAVPoint) {
	clean = make([]NAVPoint, 0, len(points))
	for _, p := range points {
		if p.Value <= 0 {
			dropped = append(dropped, p)
			continue
		}
		if len(clean) > 0 && !p.Date.After(clean[len(clean)-1].Date) {
			// Duplicate or out-of-order date; keep the first occurrence.
			dropped = append(dropped, p)
			continue
		}
		clean = append(clean, p)
	}
	return clean, dropped
}

// SanitizeBenchmarkSeries applies the same invariants to a benchmark
// series.
func SanitizeBenchmarkSeries(points []BenchmarkPoint) (clean []BenchmarkPoint, dropped []BenchmarkPoint) {
	clean = make([]BenchmarkPoint, 0, len(points))
	for _, p := range points {
		if p.Value <= 0 {
			dropped = append(dropped, p)
			continue
		}
		if len(clean) > 0 && !p.Date.After(clean[len(clean)-1].Date) {
			dropped = append(dropped, p)
			continue
		}
		clean = append(clean, p)
	}
	return clean, dropped
}
