package returns

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/navlens/navlens/internal/domain"
	"github.com/navlens/navlens/pkg/logger"
)

func newTestCalculator() *Calculator {
	return NewCalculator(logger.New(logger.Config{Level: "error"}))
}

// dailySeries builds a NAV series with one observation per day.
func dailySeries(start time.Time, values []float64) []domain.NAVPoint {
	series := make([]domain.NAVPoint, len(values))
	for i, v := range values {
		series[i] = domain.NAVPoint{Date: start.AddDate(0, 0, i), Value: v}
	}
	return series
}

func TestPeriodReturnSimple(t *testing.T) {
	c := newTestCalculator()
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	// ~13 months of linear growth from 100 to 100+days*0.1.
	days := 400
	values := make([]float64, days)
	for i := range values {
		values[i] = 100 + float64(i)*0.1
	}
	series := dailySeries(start, values)
	anchor := start.AddDate(0, 0, days-1)

	got, err := c.PeriodReturn(series, anchor, domain.Period1Y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Start observation is exactly anchor minus one year.
	target := anchor.AddDate(-1, 0, 0)
	startVal := 100 + target.Sub(start).Hours()/24*0.1
	endVal := values[days-1]
	want := endVal/startVal - 1

	if math.Abs(*got-want) > 1e-9 {
		t.Errorf("1Y return = %v, want %v", *got, want)
	}
}

func TestPeriodReturnCompound(t *testing.T) {
	c := newTestCalculator()
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	// Five years of daily observations, value doubles.
	days := 5*365 + 2
	values := make([]float64, days)
	for i := range values {
		values[i] = 100 * math.Pow(2, float64(i)/float64(days-1))
	}
	series := dailySeries(start, values)
	anchor := start.AddDate(0, 0, days-1)

	got, err := c.PeriodReturn(series, anchor, domain.Period5Y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Doubling over ~5 years compounds to roughly 14.87%/year.
	if *got < 0.13 || *got > 0.16 {
		t.Errorf("5Y CAGR = %v, want ~0.148", *got)
	}
}

func TestPeriodReturnNoObservationInWindow(t *testing.T) {
	c := newTestCalculator()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Only 60 days of history; a 1Y lookback has nothing near the
	// target date.
	series := dailySeries(start, make60(100))
	anchor := start.AddDate(0, 0, 59)

	got, err := c.PeriodReturn(series, anchor, domain.Period1Y)
	if got != nil {
		t.Errorf("expected no value, got %v", *got)
	}
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func make60(base float64) []float64 {
	values := make([]float64, 60)
	for i := range values {
		values[i] = base + float64(i)
	}
	return values
}

func TestPeriodReturnRejectsNonPositiveNAV(t *testing.T) {
	c := newTestCalculator()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	values := make60(100)
	series := dailySeries(start, values)
	// Corrupt one point; it must be excluded, not poison the series.
	series[10].Value = -4

	anchor := start.AddDate(0, 0, 59)
	ytd, err := c.PeriodReturn(series, anchor, domain.PeriodYTD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := values[59]/values[0] - 1
	if math.Abs(*ytd-want) > 1e-9 {
		t.Errorf("YTD return = %v, want %v", *ytd, want)
	}
}

func TestAllPeriodsIndependence(t *testing.T) {
	c := newTestCalculator()
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	// 300 days of history: 3M/6M/YTD computable, 3Y/5Y not.
	values := make([]float64, 300)
	for i := range values {
		values[i] = 100 + float64(i)*0.05
	}
	series := dailySeries(start, values)
	anchor := start.AddDate(0, 0, 299)

	got := c.AllPeriods(series, anchor)

	if got.Return3M == nil || got.Return6M == nil {
		t.Error("expected 3M and 6M returns to be available")
	}
	if got.Return3Y != nil || got.Return5Y != nil {
		t.Error("expected 3Y and 5Y returns to be absent, not estimated")
	}
	if got.ReturnYTD == nil {
		t.Error("expected YTD return to be available")
	}
}

func TestPeriodReturnDeterministic(t *testing.T) {
	c := newTestCalculator()
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	values := make([]float64, 500)
	for i := range values {
		values[i] = 100 + math.Sin(float64(i)/10)*5 + float64(i)*0.02
	}
	series := dailySeries(start, values)
	anchor := start.AddDate(0, 0, 499)

	first, err := c.PeriodReturn(series, anchor, domain.Period1Y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.PeriodReturn(series, anchor, domain.Period1Y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *first != *second {
		t.Errorf("repeated runs differ: %v vs %v", *first, *second)
	}
}
