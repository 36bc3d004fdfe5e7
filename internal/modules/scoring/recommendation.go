package scoring

import "github.com/navlens/navlens/internal/domain"

// baseRecommendation maps a total score onto the tier cutoffs, without
// any peer-rank information.
func (c Config) baseRecommendation(total float64) string {
	switch {
	case total >= c.StrongBuyMin:
		return domain.RecommendationStrongBuy
	case total >= c.BuyMin:
		return domain.RecommendationBuy
	case total >= c.HoldMin:
		return domain.RecommendationHold
	default:
		return domain.RecommendationSell
	}
}

// FinalRecommendation is the quartile-aware tier, applied after peer
// ranking. A top-quartile fund whose total lands within OverrideMargin
// below a cutoff, and whose risk bucket is at least OverrideRiskFloor,
// is promoted to the tier it just missed. The promotion never jumps two
// tiers and never fires below quartile 1.
func (c Config) FinalRecommendation(total float64, quartile int, riskBucket float64) string {
	base := c.baseRecommendation(total)
	if quartile != 1 || riskBucket < c.OverrideRiskFloor {
		return base
	}

	switch base {
	case domain.RecommendationBuy:
		if total >= c.StrongBuyMin-c.OverrideMargin {
			return domain.RecommendationStrongBuy
		}
	case domain.RecommendationHold:
		if total >= c.BuyMin-c.OverrideMargin {
			return domain.RecommendationBuy
		}
	case domain.RecommendationSell:
		if total >= c.HoldMin-c.OverrideMargin {
			return domain.RecommendationHold
		}
	}
	return base
}
