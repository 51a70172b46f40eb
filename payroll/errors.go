/*
errors.go - Error kinds for the payroll engine

ERROR CATEGORIES:
  1. DataFetchError   - The shift report provider failed. Fatal to the report.
  2. ValidationError  - One punch record is malformed. Recovered locally and
                        surfaced as a Warning on the staff/day entry.
  3. ComputationError - Invalid configuration (negative rate or threshold).
                        Rejected before any aggregation runs.

USAGE:
  if errors.Is(err, payroll.ErrNegativeRate) { ... }

  var verr *payroll.ValidationError
  if errors.As(err, &verr) && verr.Recovered { ... }
*/
package payroll

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDataFetch is returned when the external shift report provider fails.
	ErrDataFetch = errors.New("shift data fetch failed")

	// ErrUnauthorized is returned when the provider rejects our credentials.
	ErrUnauthorized = errors.New("shift data provider unauthorized")

	// ErrOpenShift marks a punch record without a clock-out.
	ErrOpenShift = errors.New("open shift: no punch out")

	// ErrInvalidPunchWindow marks a punch out at or before the punch in.
	ErrInvalidPunchWindow = errors.New("punch out is not after punch in")

	// ErrInvalidBreaks marks breaks outside the punch window, inverted, or overlapping.
	ErrInvalidBreaks = errors.New("invalid break intervals")

	// ErrNegativeRate is returned for a rate below zero.
	ErrNegativeRate = errors.New("rate must not be negative")

	// ErrNegativeThreshold is returned for an overtime threshold below zero.
	ErrNegativeThreshold = errors.New("overtime threshold must not be negative")

	// ErrThresholdTooLarge is returned for an overtime threshold that does not fit a time.Duration.
	ErrThresholdTooLarge = errors.New("overtime threshold is too large")

	// ErrUnknownRateType is returned for a rate type other than regular/overtime.
	ErrUnknownRateType = errors.New("unknown rate type")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// DataFetchError wraps a failed provider call.
type DataFetchError struct {
	Source string // e.g. "brand-1/outlet-2/2025-03-10"
	Status int    // HTTP status, 0 for transport failures
	Err    error
}

func (e *DataFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *DataFetchError) Unwrap() []error {
	return []error{ErrDataFetch, e.Err}
}

// ValidationError describes one malformed punch record.
// Recovered is true when the record still counts (breaks zeroed) and false
// when it is excluded from totals.
type ValidationError struct {
	StaffID   StaffID
	PunchIn   time.Time
	Reason    string
	Recovered bool
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("punch %s@%s: %v: %s", e.StaffID, e.PunchIn.Format(time.RFC3339), e.Err, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Code is the short machine-readable name used in warnings.
func (e *ValidationError) Code() string {
	switch {
	case errors.Is(e.Err, ErrOpenShift):
		return "open_shift"
	case errors.Is(e.Err, ErrInvalidPunchWindow):
		return "invalid_punch_window"
	case errors.Is(e.Err, ErrInvalidBreaks):
		return "invalid_breaks"
	default:
		return "invalid_record"
	}
}

// ComputationError rejects invalid configuration at the boundary.
type ComputationError struct {
	Field string
	Value string
	Err   error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("invalid %s (%s): %v", e.Field, e.Value, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid configuration input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNegativeRate) ||
		errors.Is(err, ErrNegativeThreshold) ||
		errors.Is(err, ErrThresholdTooLarge) ||
		errors.Is(err, ErrUnknownRateType)
}

// IsFetchError returns true if the error came from the shift report provider.
func IsFetchError(err error) bool {
	return errors.Is(err, ErrDataFetch)
}
