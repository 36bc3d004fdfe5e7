package returns

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/navlens/navlens/internal/domain"
	"github.com/navlens/navlens/pkg/formulas"
	"github.com/rs/zerolog"
)

// endTolerance is how far back from the anchor date the latest NAV
// observation may sit before the series is considered stale for that
// anchor.
const endToleranceDays = 7

// toleranceDays maps each lookback period to the widest acceptable gap
// between the ideal start date and the nearest actual observation.
// Longer horizons tolerate wider gaps.
var toleranceDays = map[domain.Period]int{
	domain.Period3M:  10,
	domain.Period6M:  15,
	domain.Period1Y:  20,
	domain.Period3Y:  30,
	domain.Period5Y:  45,
	domain.PeriodYTD: 20,
}

// PeriodReturns aggregates the trailing returns for one fund at one
// anchor date. A nil entry means no observation fell inside the
// tolerance window for that period — never zero, never an estimate.
type PeriodReturns struct {
	Return3M  *float64 `json:"return_3m,omitempty"`
	Return6M  *float64 `json:"return_6m,omitempty"`
	Return1Y  *float64 `json:"return_1y,omitempty"`
	Return3Y  *float64 `json:"return_3y,omitempty"`
	Return5Y  *float64 `json:"return_5y,omitempty"`
	ReturnYTD *float64 `json:"return_ytd,omitempty"`
}

// Calculator derives period returns from an ordered NAV series.
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates a new returns calculator.
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{
		log: log.With().Str("calculator", "returns").Logger(),
	}
}

// PeriodReturn computes the trailing return for one period.
//
// Periods of one year or less use the simple return (end/start - 1);
// longer periods use the compound annual growth rate over the actual
// day count between the two observations. Returns
// domain.ErrInsufficientData when either endpoint cannot be located
// inside its tolerance window.
func (c *Calculator) PeriodReturn(series []domain.NAVPoint, anchor time.Time, period domain.Period) (*float64, error) {
	clean, dropped := domain.SanitizeNAVSeries(series)
	if len(dropped) > 0 {
		c.log.Warn().Int("dropped", len(dropped)).Str("period", string(period)).
			Msg("Dropped invalid NAV observations")
	}
	if len(clean) < 2 {
		return nil, domain.InsufficientDataError("nav series", len(clean), 2)
	}

	anchor = domain.DateOnly(anchor)

	end, ok := latestOnOrBefore(clean, anchor)
	if !ok || anchor.Sub(end.Date) > endToleranceDays*24*time.Hour {
		return nil, fmt.Errorf("%w: no NAV within %d days of anchor %s",
			domain.ErrInsufficientData, endToleranceDays, anchor.Format("2006-01-02"))
	}

	target, err := startTarget(anchor, period)
	if err != nil {
		return nil, err
	}

	tolerance, ok := toleranceDays[period]
	if !ok {
		return nil, domain.ConfigurationError("unknown period %q", period)
	}

	start, ok := nearestWithin(clean, target, tolerance)
	if !ok {
		return nil, fmt.Errorf("%w: no NAV within %d days of %s for period %s",
			domain.ErrInsufficientData, tolerance, target.Format("2006-01-02"), period)
	}
	if !start.Date.Before(end.Date) {
		return nil, domain.InsufficientDataError(fmt.Sprintf("period %s window", period), 1, 2)
	}

	if isCompoundPeriod(period) {
		days := int(end.Date.Sub(start.Date).Hours() / 24)
		r := formulas.CAGR(start.Value, end.Value, days)
		if r == nil {
			return nil, fmt.Errorf("%w: CAGR over %d days", domain.ErrComputation, days)
		}
		return r, nil
	}

	r := formulas.SimpleReturn(start.Value, end.Value)
	if r == nil || math.IsNaN(*r) || math.IsInf(*r, 0) {
		return nil, fmt.Errorf("%w: simple return from %f to %f", domain.ErrComputation, start.Value, end.Value)
	}
	return r, nil
}

// AllPeriods computes every trailing period independently. Periods that
// cannot be computed are left nil; only unexpected failures are logged.
func (c *Calculator) AllPeriods(series []domain.NAVPoint, anchor time.Time) PeriodReturns {
	out := PeriodReturns{}
	targets := []struct {
		period domain.Period
		dest   **float64
	}{
		{domain.Period3M, &out.Return3M},
		{domain.Period6M, &out.Return6M},
		{domain.Period1Y, &out.Return1Y},
		{domain.Period3Y, &out.Return3Y},
		{domain.Period5Y, &out.Return5Y},
		{domain.PeriodYTD, &out.ReturnYTD},
	}

	for _, tgt := range targets {
		r, err := c.PeriodReturn(series, anchor, tgt.period)
		if err != nil {
			c.log.Debug().Str("period", string(tgt.period)).Err(err).
				Msg("Period return unavailable")
			continue
		}
		*tgt.dest = r
	}
	return out
}

// startTarget returns the ideal start date for a period anchored at the
// given date. YTD anchors at January 1 of the anchor's year.
func startTarget(anchor time.Time, period domain.Period) (time.Time, error) {
	switch period {
	case domain.Period3M:
		return anchor.AddDate(0, -3, 0), nil
	case domain.Period6M:
		return anchor.AddDate(0, -6, 0), nil
	case domain.Period1Y:
		return anchor.AddDate(-1, 0, 0), nil
	case domain.Period3Y:
		return anchor.AddDate(-3, 0, 0), nil
	case domain.Period5Y:
		return anchor.AddDate(-5, 0, 0), nil
	case domain.PeriodYTD:
		return time.Date(anchor.Year(), 1, 1, 0, 0, 0, 0, time.UTC), nil
	default:
		return time.Time{}, domain.ConfigurationError("unknown period %q", period)
	}
}

// isCompoundPeriod reports whether the period annualizes via CAGR.
func isCompoundPeriod(period domain.Period) bool {
	return period == domain.Period3Y || period == domain.Period5Y
}

// latestOnOrBefore finds the last observation dated on or before the
// given date.
func latestOnOrBefore(series []domain.NAVPoint, date time.Time) (domain.NAVPoint, bool) {
	idx := sort.Search(len(series), func(i int) bool {
		return series[i].Date.After(date)
	})
	if idx == 0 {
		return domain.NAVPoint{}, false
	}
	return series[idx-1], true
}

// nearestWithin finds the observation closest to target, accepting it
// only when the gap is at most tolerance days on either side.
func nearestWithin(series []domain.NAVPoint, target time.Time, tolerance int) (domain.NAVPoint, bool) {
	idx := sort.Search(len(series), func(i int) bool {
		return !series[i].Date.Before(target)
	})

	best := domain.NAVPoint{}
	bestGap := time.Duration(math.MaxInt64)

	if idx < len(series) {
		if gap := series[idx].Date.Sub(target); gap < bestGap {
			best, bestGap = series[idx], gap
		}
	}
	if idx > 0 {
		if gap := target.Sub(series[idx-1].Date); gap < bestGap {
			best, bestGap = series[idx-1], gap
		}
	}

	if bestGap > time.Duration(tolerance)*24*time.Hour {
		return domain.NAVPoint{}, false
	}
	return best, true
}
