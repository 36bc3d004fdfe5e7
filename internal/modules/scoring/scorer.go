package scoring

import (
	"math"
	"time"

	"github.com/navlens/navlens/internal/domain"
	"github.com/navlens/navlens/internal/modules/returns"
	"github.com/navlens/navlens/internal/modules/risk"
	"github.com/rs/zerolog"
)

// Input carries everything the scorer needs for one fund. Returns and
// risk metrics come from the two calculators; fundamentals come off the
// fund record itself.
type Input struct {
	Fund    domain.Fund
	Returns returns.PeriodReturns
	Risk    risk.Metrics
	AsOf    time.Time
}

// Scorer converts calculator outputs into a composite 0-100 score. It is
// a pure mapping: the same config version and inputs always produce the
// same record.
type Scorer struct {
	cfg Config
	log zerolog.Logger
}

// NewScorer validates the config and returns a scorer bound to it.
func NewScorer(cfg Config, log zerolog.Logger) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{
		cfg: cfg,
		log: log.With().Str("service", "scorer").Str("config_version", cfg.Version).Logger(),
	}, nil
}

// ConfigVersion reports the version of the bound config.
func (s *Scorer) ConfigVersion() string {
	return s.cfg.Version
}

// Score builds the score record for one fund. Rank, percentile, quartile
// and the final recommendation are left for the peer ranker; the
// recommendation set here is the pre-ranking tier from the total score
// alone.
//
// A metric that is absent from the input stays absent from the component
// scores and simply contributes nothing to its bucket. Only a fund with
// no computable return at all is rejected, with ErrInsufficientData.
func (s *Scorer) Score(in Input) (domain.ScoreRecord, error) {
	comp := domain.ComponentScores{}

	returnsBucket := 0.0
	returnsPresent := 0
	for _, m := range []struct {
		period domain.Period
		value  *float64
		dest   **float64
	}{
		{domain.Period3M, in.Returns.Return3M, &comp.Return3M},
		{domain.Period6M, in.Returns.Return6M, &comp.Return6M},
		{domain.Period1Y, in.Returns.Return1Y, &comp.Return1Y},
		{domain.Period3Y, in.Returns.Return3Y, &comp.Return3Y},
		{domain.Period5Y, in.Returns.Return5Y, &comp.Return5Y},
		{domain.PeriodYTD, in.Returns.ReturnYTD, &comp.ReturnYTD},
	} {
		if m.value == nil {
			continue
		}
		ladder, ok := s.cfg.ReturnLadders[m.period]
		if !ok {
			return domain.ScoreRecord{}, domain.ConfigurationError("no return ladder for period %s", m.period)
		}
		pts := ladder.Score(*m.value)
		*m.dest = &pts
		returnsBucket += pts
		returnsPresent++
	}

	if returnsPresent == 0 {
		return domain.ScoreRecord{}, domain.InsufficientDataError("computable period returns", 0, 1)
	}

	riskBucket := 0.0
	riskBucket += apply(s.cfg.Volatility, in.Risk.Volatility, &comp.Volatility)
	if in.Risk.Drawdown != nil {
		riskBucket += apply(s.cfg.MaxDrawdown, &in.Risk.Drawdown.MaxDrawdown, &comp.MaxDrawdown)
	}
	riskBucket += apply(s.cfg.Sharpe, in.Risk.Sharpe, &comp.Sharpe)
	riskBucket += apply(s.cfg.Beta, in.Risk.Beta, &comp.Beta)

	fundBucket := 0.0
	if in.Fund.ExpenseRatioPct > 0 {
		er := in.Fund.ExpenseRatioPct
		fundBucket += apply(s.cfg.ExpenseRatio, &er, &comp.ExpenseRatio)
	}
	if in.Fund.AUMCrores > 0 {
		aum := in.Fund.AUMCrores
		fundBucket += apply(s.cfg.AUM, &aum, &comp.AUM)
	}
	if !in.Fund.InceptionDate.IsZero() && in.Fund.InceptionDate.Before(in.AsOf) {
		age := in.AsOf.Sub(in.Fund.InceptionDate).Hours() / 24 / 365.25
		fundBucket += apply(s.cfg.FundAge, &age, &comp.FundAge)
	}

	otherBucket := 0.0
	otherBucket += apply(s.cfg.UpCapture, in.Risk.UpCapture, &comp.UpCapture)
	otherBucket += apply(s.cfg.DownCapture, in.Risk.DownCapture, &comp.DownCapture)
	otherBucket += apply(s.cfg.Skewness, in.Risk.Skewness, &comp.Skewness)
	otherBucket += apply(s.cfg.ExcessKurtosis, in.Risk.ExcessKurtosis, &comp.ExcessKurtosis)
	otherBucket += apply(s.cfg.VaR95, in.Risk.VaR95, &comp.VaR95)

	returnsBucket = math.Min(returnsBucket, s.cfg.ReturnsCeiling)
	riskBucket = math.Min(riskBucket, s.cfg.RiskCeiling)
	fundBucket = math.Min(fundBucket, s.cfg.FundamentalsCeiling)
	otherBucket = math.Min(otherBucket, s.cfg.OtherCeiling)

	total := returnsBucket + riskBucket + fundBucket + otherBucket
	total = math.Max(0, math.Min(100, total))

	rec := domain.ScoreRecord{
		FundID:      in.Fund.ID,
		ScoreDate:   domain.DateOnly(in.AsOf),
		Subcategory: in.Fund.Subcategory,

		Components: comp,

		ReturnsBucket:      returnsBucket,
		RiskBucket:         riskBucket,
		FundamentalsBucket: fundBucket,
		OtherBucket:        otherBucket,
		TotalScore:         total,

		Recommendation: s.cfg.baseRecommendation(total),
		ConfigVersion:  s.cfg.Version,
	}

	s.log.Debug().
		Int64("fund_id", in.Fund.ID).
		Float64("total", total).
		Float64("returns", returnsBucket).
		Float64("risk", riskBucket).
		Msg("Scored fund")

	return rec, nil
}

// apply scores value on the ladder when present, records the component
// and returns the awarded points. Absent values contribute nothing.
func apply(l Ladder, value *float64, dest **float64) float64 {
	if value == nil {
		return 0
	}
	pts := l.Score(*value)
	*dest = &pts
	return pts
}
