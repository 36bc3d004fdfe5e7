package ranking

import (
	"errors"
	"math"
	"testing"

	"github.com/navlens/navlens/internal/domain"
	"github.com/navlens/navlens/internal/modules/scoring"
	"github.com/navlens/navlens/pkg/logger"
)

func newTestRanker() *Ranker {
	return NewRanker(scoring.DefaultConfig(), logger.New(logger.Config{Level: "error"}))
}

func record(fundID int64, total float64) domain.ScoreRecord {
	return domain.ScoreRecord{
		FundID:      fundID,
		Subcategory: "Large Cap",
		TotalScore:  total,
		RiskBucket:  25,
	}
}

func TestRankSubcategoryFourFunds(t *testing.T) {
	r := newTestRanker()

	ranked, err := r.RankSubcategory([]domain.ScoreRecord{
		record(3, 70), record(1, 90), record(4, 60), record(2, 80),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantPercentiles := []float64{100, 100.0 * 2 / 3, 100.0 / 3, 0}
	wantQuartiles := []int{1, 2, 3, 4}

	for i, rec := range ranked {
		if rec.SubcategoryRank != i+1 {
			t.Errorf("rank[%d] = %d, want %d", i, rec.SubcategoryRank, i+1)
		}
		if math.Abs(rec.SubcategoryPercentile-wantPercentiles[i]) > 1e-9 {
			t.Errorf("percentile[%d] = %v, want %v", i, rec.SubcategoryPercentile, wantPercentiles[i])
		}
		if rec.Quartile != wantQuartiles[i] {
			t.Errorf("quartile[%d] = %d, want %d", i, rec.Quartile, wantQuartiles[i])
		}
	}

	if ranked[0].FundID != 1 || ranked[3].FundID != 4 {
		t.Error("records not ordered by descending total score")
	}
}

func TestRankSubcategoryTieBreaksOnFundID(t *testing.T) {
	r := newTestRanker()

	ranked, err := r.RankSubcategory([]domain.ScoreRecord{
		record(20, 75), record(10, 75), record(30, 75),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []int64{10, 20, 30}
	for i, rec := range ranked {
		if rec.FundID != wantOrder[i] {
			t.Errorf("position %d = fund %d, want %d", i, rec.FundID, wantOrder[i])
		}
	}
	// Equal scores still get distinct ranks.
	if ranked[0].SubcategoryRank == ranked[1].SubcategoryRank {
		t.Error("tied scores must still receive distinct ranks")
	}
}

func TestRankSubcategorySingleFund(t *testing.T) {
	r := newTestRanker()

	ranked, err := r.RankSubcategory([]domain.ScoreRecord{record(5, 50)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ranked[0].SubcategoryRank != 1 {
		t.Errorf("rank = %d, want 1", ranked[0].SubcategoryRank)
	}
	if ranked[0].SubcategoryPercentile != 100 {
		t.Errorf("percentile = %v, want 100", ranked[0].SubcategoryPercentile)
	}
	if ranked[0].Quartile != 1 {
		t.Errorf("quartile = %d, want 1", ranked[0].Quartile)
	}
}

func TestRankSubcategoryIdempotent(t *testing.T) {
	r := newTestRanker()

	input := []domain.ScoreRecord{record(1, 62), record(2, 58), record(3, 44)}
	first, err := r.RankSubcategory(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.RankSubcategory(first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("re-ranking changed record %d: %+v vs %+v", i, first[i], second[i])
		}
	}

	// The input slice must be untouched.
	if input[0].SubcategoryRank != 0 || input[0].Quartile != 0 {
		t.Error("input slice was mutated")
	}
}

func TestRankSubcategoryFinalizesRecommendation(t *testing.T) {
	r := newTestRanker()

	// 66 sits within the override margin of the STRONG_BUY cutoff; as the
	// top fund it lands in quartile 1 with a healthy risk bucket, so the
	// promotion fires here rather than at scoring time.
	ranked, err := r.RankSubcategory([]domain.ScoreRecord{
		record(1, 66), record(2, 50), record(3, 45), record(4, 30),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ranked[0].Recommendation != domain.RecommendationStrongBuy {
		t.Errorf("top fund recommendation = %s, want STRONG_BUY", ranked[0].Recommendation)
	}
	if ranked[3].Recommendation != domain.RecommendationSell {
		t.Errorf("bottom fund recommendation = %s, want SELL", ranked[3].Recommendation)
	}
}

func TestRankSubcategoryRejectsMixedGroups(t *testing.T) {
	r := newTestRanker()

	a := record(1, 60)
	b := record(2, 55)
	b.Subcategory = "Mid Cap"

	if _, err := r.RankSubcategory([]domain.ScoreRecord{a, b}); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for mixed subcategories, got %v", err)
	}
}

func TestRankSubcategoryEmpty(t *testing.T) {
	r := newTestRanker()

	ranked, err := r.RankSubcategory(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ranked != nil {
		t.Errorf("expected nil output for empty group, got %v", ranked)
	}
}
