package scoring

import (
	"errors"
	"testing"
	"time"

	"github.com/navlens/navlens/internal/domain"
	"github.com/navlens/navlens/internal/modules/returns"
	"github.com/navlens/navlens/internal/modules/risk"
	"github.com/navlens/navlens/pkg/formulas"
	"github.com/navlens/navlens/pkg/logger"
)

func fptr(v float64) *float64 { return &v }

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultConfig(), logger.New(logger.Config{Level: "error"}))
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	return s
}

func strongInput() Input {
	return Input{
		Fund: domain.Fund{
			ID:              42,
			Subcategory:     "Large Cap",
			ExpenseRatioPct: 0.4,
			AUMCrores:       15000,
			InceptionDate:   time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		Returns: returns.PeriodReturns{
			Return3M:  fptr(0.09),
			Return6M:  fptr(0.14),
			Return1Y:  fptr(0.25),
			Return3Y:  fptr(0.20),
			Return5Y:  fptr(0.17),
			ReturnYTD: fptr(0.16),
		},
		Risk: risk.Metrics{
			Volatility:     fptr(0.09),
			Drawdown:       &formulas.DrawdownMetrics{MaxDrawdown: 0.06},
			Sharpe:         fptr(1.8),
			Beta:           fptr(0.8),
			UpCapture:      fptr(115),
			DownCapture:    fptr(75),
			Skewness:       fptr(0.5),
			ExcessKurtosis: fptr(0.5),
			VaR95:          fptr(0.008),
		},
		AsOf: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestScoreStrongFundHitsCeilings(t *testing.T) {
	s := newTestScorer(t)

	rec, err := s.Score(strongInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every metric lands in its top band, so each bucket saturates.
	if rec.ReturnsBucket != 40 {
		t.Errorf("returns bucket = %v, want 40", rec.ReturnsBucket)
	}
	if rec.RiskBucket != 30 {
		t.Errorf("risk bucket = %v, want 30", rec.RiskBucket)
	}
	if rec.FundamentalsBucket != 20 {
		t.Errorf("fundamentals bucket = %v, want 20", rec.FundamentalsBucket)
	}
	if rec.OtherBucket != 10 {
		t.Errorf("other bucket = %v, want 10", rec.OtherBucket)
	}
	if rec.TotalScore != 100 {
		t.Errorf("total = %v, want 100", rec.TotalScore)
	}
	if rec.Recommendation != domain.RecommendationStrongBuy {
		t.Errorf("recommendation = %s, want STRONG_BUY", rec.Recommendation)
	}
	if rec.ConfigVersion != "v1" {
		t.Errorf("config version = %s, want v1", rec.ConfigVersion)
	}
}

func TestScoreAbsentMetricsStayAbsent(t *testing.T) {
	s := newTestScorer(t)

	in := Input{
		Fund: domain.Fund{ID: 7, Subcategory: "Mid Cap"},
		Returns: returns.PeriodReturns{
			Return3M: fptr(0.04),
			Return6M: fptr(0.06),
		},
		Risk: risk.Metrics{},
		AsOf: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}

	rec, err := s.Score(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Components.Return1Y != nil || rec.Components.Sharpe != nil {
		t.Error("absent inputs must produce absent components, not zeros")
	}
	if rec.RiskBucket != 0 || rec.OtherBucket != 0 {
		t.Errorf("empty risk inputs must score zero buckets, got %v/%v",
			rec.RiskBucket, rec.OtherBucket)
	}
	if rec.TotalScore <= 0 {
		t.Error("present returns must still contribute to the total")
	}
}

func TestScoreRequiresAtLeastOneReturn(t *testing.T) {
	s := newTestScorer(t)

	in := Input{
		Fund: domain.Fund{ID: 9, Subcategory: "Small Cap"},
		Risk: risk.Metrics{Volatility: fptr(0.2)},
		AsOf: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}

	if _, err := s.Score(in); !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestScoreIsPure(t *testing.T) {
	s := newTestScorer(t)
	in := strongInput()

	first, err := s.Score(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.Score(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.TotalScore != second.TotalScore ||
		first.ReturnsBucket != second.ReturnsBucket ||
		first.Recommendation != second.Recommendation {
		t.Error("repeated scoring of identical input diverged")
	}
}

func TestLadderDirections(t *testing.T) {
	up := higher(Band{10, 8}, Band{5, 4})
	if got := up.Score(12); got != 8 {
		t.Errorf("higher ladder top band = %v, want 8", got)
	}
	if got := up.Score(7); got != 4 {
		t.Errorf("higher ladder mid band = %v, want 4", got)
	}
	if got := up.Score(1); got != 0 {
		t.Errorf("higher ladder miss = %v, want 0", got)
	}

	down := lower(Band{0.1, 8}, Band{0.2, 4})
	if got := down.Score(0.05); got != 8 {
		t.Errorf("lower ladder top band = %v, want 8", got)
	}
	if got := down.Score(0.15); got != 4 {
		t.Errorf("lower ladder mid band = %v, want 4", got)
	}
	if got := down.Score(0.5); got != 0 {
		t.Errorf("lower ladder miss = %v, want 0", got)
	}
}

func TestConfigValidation(t *testing.T) {
	bad := DefaultConfig()
	bad.RiskCeiling = 35 // ceilings now sum to 105
	if _, err := NewScorer(bad, logger.New(logger.Config{Level: "error"})); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for bad ceilings, got %v", err)
	}

	unsorted := DefaultConfig()
	unsorted.Sharpe = higher(Band{0.5, 2}, Band{1.5, 8})
	if _, err := NewScorer(unsorted, logger.New(logger.Config{Level: "error"})); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for unsorted ladder, got %v", err)
	}

	unversioned := DefaultConfig()
	unversioned.Version = ""
	if _, err := NewScorer(unversioned, logger.New(logger.Config{Level: "error"})); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for missing version, got %v", err)
	}
}

func TestFinalRecommendationOverride(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name       string
		total      float64
		quartile   int
		riskBucket float64
		want       string
	}{
		{"promoted to strong buy at margin", 66, 1, 25, domain.RecommendationStrongBuy},
		{"not promoted outside margin", 60, 1, 25, domain.RecommendationBuy},
		{"not promoted in quartile 2", 66, 2, 25, domain.RecommendationBuy},
		{"not promoted below risk floor", 66, 1, 10, domain.RecommendationBuy},
		{"promoted to buy", 51, 1, 22, domain.RecommendationBuy},
		{"promoted to hold", 36, 1, 22, domain.RecommendationHold},
		{"strong buy unchanged", 80, 1, 30, domain.RecommendationStrongBuy},
		{"deep sell not promoted", 20, 1, 30, domain.RecommendationSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.FinalRecommendation(tt.total, tt.quartile, tt.riskBucket)
			if got != tt.want {
				t.Errorf("FinalRecommendation(%v, %d, %v) = %s, want %s",
					tt.total, tt.quartile, tt.riskBucket, got, tt.want)
			}
		})
	}
}
