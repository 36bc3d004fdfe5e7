package formulas

import (
	"math"
	"testing"
)

func TestSimpleReturn(t *testing.T) {
	got := SimpleReturn(100, 112)
	if got == nil {
		t.Fatal("expected a value")
	}
	if math.Abs(*got-0.12) > 1e-9 {
		t.Errorf("SimpleReturn = %v, want 0.12", *got)
	}

	if SimpleReturn(0, 112) != nil {
		t.Error("expected nil for non-positive start value")
	}
}

func TestCAGR(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		end   float64
		days  int
		want  float64
	}{
		{
			name:  "doubling over exactly two years",
			start: 100,
			end:   200,
			days:  730,
			want:  math.Pow(2, 365.0/730.0) - 1,
		},
		{
			name:  "3x over three years",
			start: 50,
			end:   150,
			days:  1095,
			want:  math.Pow(3, 365.0/1095.0) - 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CAGR(tt.start, tt.end, tt.days)
			if got == nil {
				t.Fatal("expected a value")
			}
			if math.Abs(*got-tt.want) > 1e-12 {
				t.Errorf("CAGR = %v, want %v", *got, tt.want)
			}
		})
	}

	if CAGR(100, 200, 0) != nil {
		t.Error("expected nil for zero-day window")
	}
	if CAGR(-5, 200, 365) != nil {
		t.Error("expected nil for negative start value")
	}
}

func TestDailyReturns(t *testing.T) {
	values := []float64{100, 110, 99}
	returns := DailyReturns(values)

	if len(returns) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(returns))
	}
	if math.Abs(returns[0]-0.10) > 1e-9 {
		t.Errorf("returns[0] = %v, want 0.10", returns[0])
	}
	if math.Abs(returns[1]-(-0.10)) > 1e-9 {
		t.Errorf("returns[1] = %v, want -0.10", returns[1])
	}

	if len(DailyReturns([]float64{100})) != 0 {
		t.Error("expected empty returns for single observation")
	}
}

func TestCaptureRatios(t *testing.T) {
	bench := []float64{0.02, -0.01, 0.01, -0.02}
	fund := []float64{0.01, -0.005, 0.02, -0.01}

	up := UpCaptureRatio(fund, bench)
	if up == nil {
		t.Fatal("expected up capture value")
	}
	// fund avg on up days = 0.015, bench avg = 0.015 -> 100
	if math.Abs(*up-100.0) > 1e-9 {
		t.Errorf("UpCaptureRatio = %v, want 100", *up)
	}

	down := DownCaptureRatio(fund, bench)
	if down == nil {
		t.Fatal("expected down capture value")
	}
	// fund avg on down days = -0.0075, bench avg = -0.015 -> 50
	if math.Abs(*down-50.0) > 1e-9 {
		t.Errorf("DownCaptureRatio = %v, want 50", *down)
	}

	t.Run("no down days", func(t *testing.T) {
		allUp := []float64{0.01, 0.02}
		if got := DownCaptureRatio(allUp, allUp); got != nil {
			t.Errorf("expected nil when benchmark never falls, got %v", *got)
		}
	})
}

func TestHistoricalVaR(t *testing.T) {
	// 100 returns, worst tail around -5%.
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = 0.001
	}
	returns[0] = -0.05
	returns[1] = -0.04
	returns[2] = -0.03
	returns[3] = -0.02
	returns[4] = -0.01

	v := HistoricalVaR(returns, 0.95)
	if v == nil {
		t.Fatal("expected a VaR value")
	}
	if *v <= 0 {
		t.Errorf("expected positive loss figure, got %v", *v)
	}

	if HistoricalVaR(returns[:5], 0.95) != nil {
		t.Error("expected nil for sample too small for the tail")
	}
}
