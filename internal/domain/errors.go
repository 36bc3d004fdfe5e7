package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the analytics core. Callers match with errors.Is.
//
// Insufficient-data and alignment failures degrade locally: the affected
// metric is left absent and batch processing continues. Integrity
// failures exclude only the offending data point. Configuration failures
// abort the single run that triggered them. Nothing here is ever papered
// over with a substituted value.
var (
	// ErrInsufficientData means too few observations exist for the
	// requested window or metric.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDataIntegrity means an observation violates series invariants
	// (non-positive value, duplicate or out-of-order date).
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrAlignment means fund and benchmark series cannot be date-aligned
	// to the minimum required overlap.
	ErrAlignment = errors.New("series alignment failed")

	// ErrConfiguration means the caller supplied an invalid setup
	// (weights not summing to 100, unknown fund id, bad config table).
	ErrConfiguration = errors.New("invalid configuration")

	// ErrComputation means arithmetic produced a non-finite result.
	ErrComputation = errors.New("computation produced non-finite value")
)

// InsufficientDataError wraps ErrInsufficientData with the observation
// counts that caused it.
func InsufficientDataError(what string, have, need int) error {
	return fmt.Errorf("%w: %s has %d observations, need %d", ErrInsufficientData, what, have, need)
}

// AlignmentError wraps ErrAlignment with detail.
func AlignmentError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrAlignment, fmt.Sprintf(format, args...))
}

// IntegrityError wraps ErrDataIntegrity with the offending detail.
func IntegrityError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDataIntegrity, fmt.Sprintf(format, args...))
}

// ConfigurationError wraps ErrConfiguration with detail.
func ConfigurationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
