package formulas

import (
	"math"
	"testing"
)

func TestSharpeRatioZeroVolatility(t *testing.T) {
	// Identical returns every day -> zero volatility -> no value,
	// never a divide-by-zero artifact.
	returns := make([]float64, 250)
	for i := range returns {
		returns[i] = 0.001
	}

	if got := SharpeRatio(returns, 0.06, 200); got != nil {
		t.Errorf("expected nil for zero volatility, got %v", *got)
	}
}

func TestSharpeRatioMinimumSample(t *testing.T) {
	returns := []float64{0.01, -0.005, 0.002, 0.007}
	if got := SharpeRatio(returns, 0.06, 200); got != nil {
		t.Errorf("expected nil below minimum sample, got %v", *got)
	}
}

func TestSharpeRatioKnownSeries(t *testing.T) {
	// Alternating returns with positive mean.
	returns := make([]float64, 252)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = 0.002
		} else {
			returns[i] = -0.001
		}
	}

	got := SharpeRatio(returns, 0.0, 200)
	if got == nil {
		t.Fatal("expected a value")
	}

	vol := AnnualizedVolatility(returns)
	want := AnnualizedMeanReturn(returns) / vol
	if math.Abs(*got-want) > 1e-12 {
		t.Errorf("SharpeRatio = %v, want %v", *got, want)
	}
	if *got <= 0 {
		t.Errorf("expected positive Sharpe for positive-mean series, got %v", *got)
	}
}

func TestBeta(t *testing.T) {
	bench := []float64{0.01, -0.02, 0.015, 0.005, -0.01, 0.02, -0.005, 0.01}

	t.Run("fund identical to benchmark has beta 1", func(t *testing.T) {
		got := Beta(bench, bench, 2)
		if got == nil {
			t.Fatal("expected a value")
		}
		if math.Abs(*got-1.0) > 1e-9 {
			t.Errorf("Beta = %v, want 1.0", *got)
		}
	})

	t.Run("fund at half the benchmark moves has beta 0.5", func(t *testing.T) {
		fund := make([]float64, len(bench))
		for i, b := range bench {
			fund[i] = b / 2
		}
		got := Beta(fund, bench, 2)
		if got == nil {
			t.Fatal("expected a value")
		}
		if math.Abs(*got-0.5) > 1e-9 {
			t.Errorf("Beta = %v, want 0.5", *got)
		}
	})

	t.Run("insufficient overlap", func(t *testing.T) {
		if got := Beta(bench[:3], bench[:3], 150); got != nil {
			t.Errorf("expected nil below minimum overlap, got %v", *got)
		}
	})

	t.Run("zero-variance benchmark", func(t *testing.T) {
		flat := []float64{0.01, 0.01, 0.01, 0.01}
		if got := Beta(bench[:4], flat, 2); got != nil {
			t.Errorf("expected nil for zero-variance benchmark, got %v", *got)
		}
	})
}
