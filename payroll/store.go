/*
store.go - Collaborator interfaces around the pure engine

PURPOSE:
  The engine itself never performs I/O. These interfaces describe the
  collaborators that feed it (shift data) and persist its configuration
  (rate schedules). Implementations live outside this package.

IMPLEMENTATIONS:
  - store/sqlite: imported shift days, role rates, overrides
  - store/memory: in-memory, for tests
  - provider: remote shift report API (ShiftSource only)
*/
package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// ShiftSource returns the fully materialized operating days in a scope,
// ordered by day.
type ShiftSource interface {
	LoadShifts(ctx context.Context, scope Scope) ([]ShiftContext, error)
}

// RateStore persists the rate schedule. Overrides stored here are the durable
// counterpart of session-local overrides.
type RateStore interface {
	LoadSchedule(ctx context.Context) (RateSchedule, error)
	SaveRoleRate(ctx context.Context, role string, rate Rate) error
	DeleteRoleRate(ctx context.Context, role string) error
	SaveOverride(ctx context.Context, staffID StaffID, override RateOverride) error
	DeleteOverride(ctx context.Context, staffID StaffID) error
}

// InScope reports whether an operating day with the given ids and day key
// belongs to the scope. Empty scope fields match everything.
func (s Scope) InScope(brandID, outletID, day string) bool {
	if s.BrandID != "" && s.BrandID != brandID {
		return false
	}
	if s.OutletID != "" && s.OutletID != outletID {
		return false
	}
	if s.From != "" && day < s.From {
		return false
	}
	if s.To != "" && day > s.To {
		return false
	}
	return true
}

// ValidateRate rejects negative rates before they are persisted.
func ValidateRate(field string, r Rate) error {
	if r.Regular.IsNegative() {
		return &ComputationError{Field: field + ".regular", Value: r.Regular.String(), Err: ErrNegativeRate}
	}
	if r.Overtime.IsNegative() {
		return &ComputationError{Field: field + ".overtime", Value: r.Overtime.String(), Err: ErrNegativeRate}
	}
	return nil
}

// DefaultRate is the global fallback pair.
func DefaultRate() Rate {
	return Rate{Regular: GlobalRegularRate, Overtime: GlobalRegularRate.Mul(OvertimeMultiplier)}
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }

// NewOverride builds an override from optional fields.
func NewOverride(regular, overtime *decimal.Decimal) RateOverride {
	var o RateOverride
	if regular != nil {
		o.Regular = decimalPtr(*regular)
	}
	if overtime != nil {
		o.Overtime = decimalPtr(*overtime)
	}
	return o
}
