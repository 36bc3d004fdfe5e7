package backtest

import (
	"strings"

	"github.com/navlens/navlens/internal/domain"
)

// PolicyKind selects the rebalancing trigger.
type PolicyKind string

const (
	// PolicyNone holds the initial units for the whole run.
	PolicyNone PolicyKind = "none"
	// PolicyCalendar rebalances on a fixed calendar cadence, evaluated
	// on days where at least one fund published a fresh NAV.
	PolicyCalendar PolicyKind = "calendar"
	// PolicyThreshold rebalances whenever any fund's live weight drifts
	// from target by more than ThresholdPct points, checked daily.
	PolicyThreshold PolicyKind = "threshold"
)

// Calendar cadences in days.
const (
	CadenceMonthly   = 30
	CadenceQuarterly = 91
	CadenceYearly    = 365
)

// Policy describes when the simulator restores target weights.
type Policy struct {
	Kind         PolicyKind `json:"kind"`
	CadenceDays  int        `json:"cadence_days,omitempty"`
	ThresholdPct float64    `json:"threshold_pct,omitempty"`
}

// NonePolicy returns the buy-and-hold policy.
func NonePolicy() Policy {
	return Policy{Kind: PolicyNone}
}

// CalendarPolicy builds a cadence policy from a named cadence.
func CalendarPolicy(cadence string) (Policy, error) {
	var days int
	switch strings.ToLower(cadence) {
	case "monthly":
		days = CadenceMonthly
	case "quarterly":
		days = CadenceQuarterly
	case "yearly":
		days = CadenceYearly
	default:
		return Policy{}, domain.ConfigurationError("unknown rebalance cadence %q", cadence)
	}
	return Policy{Kind: PolicyCalendar, CadenceDays: days}, nil
}

// ThresholdPolicy builds a weight-deviation policy. The threshold is in
// percentage points of portfolio weight.
func ThresholdPolicy(pct float64) (Policy, error) {
	if pct <= 0 || pct >= 100 {
		return Policy{}, domain.ConfigurationError("rebalance threshold %v%% out of range (0, 100)", pct)
	}
	return Policy{Kind: PolicyThreshold, ThresholdPct: pct}, nil
}

// Validate checks the policy invariants regardless of how it was built.
func (p Policy) Validate() error {
	switch p.Kind {
	case PolicyNone:
		return nil
	case PolicyCalendar:
		if p.CadenceDays <= 0 {
			return domain.ConfigurationError("calendar policy needs a positive cadence, got %d", p.CadenceDays)
		}
		return nil
	case PolicyThreshold:
		if p.ThresholdPct <= 0 || p.ThresholdPct >= 100 {
			return domain.ConfigurationError("threshold policy needs a threshold in (0, 100), got %v", p.ThresholdPct)
		}
		return nil
	default:
		return domain.ConfigurationError("unknown rebalance policy %q", p.Kind)
	}
}
