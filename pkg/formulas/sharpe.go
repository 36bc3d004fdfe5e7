package formulas

// SharpeRatio calculates the annualized Sharpe ratio from a daily-return
// series.
//
// Sharpe = (annualized mean return - risk-free rate) / annualized volatility
//
// Args:
//
//	returns: daily returns
//	riskFreeRate: annual risk-free rate as a decimal (e.g. 0.06 for 6%)
//	minObservations: minimum sample size before a ratio is reported
//
// Returns nil when the sample is too small or volatility is zero — never
// a divide-by-zero artifact.
func SharpeRatio(returns []float64, riskFreeRate float64, minObservations int) *float64 {
	if minObservations < 2 {
		minObservations = 2
	}
	if len(returns) < minObservations {
		return nil
	}

	vol := AnnualizedVolatility(returns)
	if vol == 0 {
		return nil
	}

	sharpe := (AnnualizedMeanReturn(returns) - riskFreeRate) / vol
	return &sharpe
}

// Beta calculates the fund's sensitivity to its benchmark from two
// date-aligned daily-return series:
//
//	Beta = Cov(fund, benchmark) / Var(benchmark)
//
// Returns nil when the overlap is below minOverlap or the benchmark has
// zero variance.
func Beta(fundReturns, benchReturns []float64, minOverlap int) *float64 {
	if minOverlap < 2 {
		minOverlap = 2
	}
	if len(fundReturns) != len(benchReturns) || len(fundReturns) < minOverlap {
		return nil
	}

	benchVar := Variance(benchReturns)
	if benchVar == 0 {
		return nil
	}

	beta := Covariance(fundReturns, benchReturns) / benchVar
	return &beta
}
