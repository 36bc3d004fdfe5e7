package formulas

// UpCaptureRatio calculates how much of the benchmark's gains the fund
// captured: (average fund return on benchmark-positive days) /
// (average benchmark return on those days) x 100.
//
// Inputs must be date-aligned daily-return series of equal length.
// Returns nil when there are no benchmark-positive days or the benchmark
// average is zero.
func UpCaptureRatio(fundReturns, benchReturns []float64) *float64 {
	return captureRatio(fundReturns, benchReturns, true)
}

// DownCaptureRatio is the symmetric measure over benchmark-negative days.
// Values under 100 mean the fund lost less than the benchmark.
func DownCaptureRatio(fundReturns, benchReturns []float64) *float64 {
	return captureRatio(fundReturns, benchReturns, false)
}

func captureRatio(fundReturns, benchReturns []float64, up bool) *float64 {
	if len(fundReturns) != len(benchReturns) || len(fundReturns) == 0 {
		return nil
	}

	var fundSum, benchSum float64
	count := 0
	for i, b := range benchReturns {
		if (up && b > 0) || (!up && b < 0) {
			fundSum += fundReturns[i]
			benchSum += b
			count++
		}
	}

	if count == 0 || benchSum == 0 {
		return nil
	}

	ratio := (fundSum / float64(count)) / (benchSum / float64(count)) * 100
	return &ratio
}
