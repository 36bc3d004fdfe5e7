package ranking

import (
	"sort"

	"github.com/navlens/navlens/internal/domain"
	"github.com/navlens/navlens/internal/modules/scoring"
	"github.com/rs/zerolog"
)

// Ranker assigns rank, percentile, quartile and the final recommendation
// to the score records of one subcategory. It runs after every fund in
// the subcategory has been scored, never on partial batches.
type Ranker struct {
	cfg scoring.Config
	log zerolog.Logger
}

// NewRanker creates a peer ranker bound to a scoring config. The config
// supplies the recommendation cutoffs used for the quartile-aware
// finalization.
func NewRanker(cfg scoring.Config, log zerolog.Logger) *Ranker {
	return &Ranker{
		cfg: cfg,
		log: log.With().Str("service", "ranker").Logger(),
	}
}

// RankSubcategory orders the records by total score descending (ties
// broken by ascending fund ID) and fills rank, percentile, quartile and
// recommendation on each. The input slice is not modified; re-running on
// the output produces identical results.
//
// Percentile is (1 - (rank-1)/(N-1)) * 100; a single-record group gets
// percentile 100 and quartile 1. Quartile bands are 75/50/25.
func (r *Ranker) RankSubcategory(records []domain.ScoreRecord) ([]domain.ScoreRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	subcategory := records[0].Subcategory
	for _, rec := range records[1:] {
		if rec.Subcategory != subcategory {
			return nil, domain.ConfigurationError(
				"mixed subcategories in one ranking group: %q and %q",
				subcategory, rec.Subcategory)
		}
	}

	ranked := make([]domain.ScoreRecord, len(records))
	copy(ranked, records)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalScore != ranked[j].TotalScore {
			return ranked[i].TotalScore > ranked[j].TotalScore
		}
		return ranked[i].FundID < ranked[j].FundID
	})

	n := len(ranked)
	for i := range ranked {
		rank := i + 1
		ranked[i].SubcategoryRank = rank

		percentile := 100.0
		if n > 1 {
			percentile = (1 - float64(rank-1)/float64(n-1)) * 100
		}
		ranked[i].SubcategoryPercentile = percentile
		ranked[i].Quartile = quartile(percentile)
		ranked[i].Recommendation = r.cfg.FinalRecommendation(
			ranked[i].TotalScore, ranked[i].Quartile, ranked[i].RiskBucket)
	}

	r.log.Debug().
		Str("subcategory", subcategory).
		Int("funds", n).
		Msg("Ranked subcategory")

	return ranked, nil
}

// quartile maps a percentile onto the 1-4 quartile bands.
func quartile(percentile float64) int {
	switch {
	case percentile >= 75:
		return 1
	case percentile >= 50:
		return 2
	case percentile >= 25:
		return 3
	default:
		return 4
	}
}
