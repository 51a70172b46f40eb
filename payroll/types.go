/*
Package payroll provides the shift-time and pay aggregation engine.

PURPOSE:
  Converts raw clock-in/clock-out events and break intervals into regular and
  overtime hours, resolves hourly rates, computes pay, and folds the results into
  per-staff and per-day rollups across any set of outlet operating days. Every
  report view and endpoint calls into this one package, so all of them share the
  same overtime threshold and rate defaults.

KEY CONCEPTS IN THIS FILE (types.go):
  - PunchRecord: One staff member's clock-in/clock-out window with breaks
  - ShiftContext: One outlet's operating day (punches + orders)
  - Rate / RateSchedule: Hourly rates by role, with per-staff overrides
  - WorkedTime / PayRecord: Per-record derived values
  - StaffAggregate / DayAggregate / Totals: Per-query rollups

DESIGN PRINCIPLES:
  1. Purity: ComputeAggregates is a fold with no hidden state
  2. Precision: Money and hours use decimal.Decimal
  3. Locality: Every punch record is evaluated on its own (per-shift overtime)
  4. Completeness: Malformed records are flagged, never silently dropped

USAGE:
  res, err := payroll.ComputeAggregates(shifts, schedule, payroll.DefaultOvertimeThreshold)
  if err != nil {
      return err // *ComputationError
  }
  fmt.Println(res.Totals.TotalPayroll)

SEE ALSO:
  - interval.go: Net worked duration per punch record
  - overtime.go: Regular/overtime split
  - rates.go: Rate resolution
  - pay.go: Pay calculation and rounding
  - aggregate.go: The fold
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type StaffID string

// UnknownStaff collects records whose staff metadata is missing.
const UnknownStaff StaffID = "unknown"

// =============================================================================
// RAW INPUT - As delivered by the shift report provider
// =============================================================================

type Staff struct {
	ID    StaffID
	Name  string
	Email string
	Role  string
}

type BreakInterval struct {
	Start time.Time
	End   time.Time
}

func (b BreakInterval) Duration() time.Duration { return b.End.Sub(b.Start) }

// PunchRecord is a single clock-in/clock-out window.
// A nil PunchOut means the staff member is still clocked in.
type PunchRecord struct {
	Staff    Staff
	PunchIn  time.Time
	PunchOut *time.Time
	Breaks   []BreakInterval
}

// IsOpen reports whether the record has no clock-out yet.
func (p PunchRecord) IsOpen() bool { return p.PunchOut == nil }

type Order struct {
	StaffID StaffID
	Total   decimal.Decimal
}

// ShiftContext is one outlet's operating day.
type ShiftContext struct {
	OutletID    string
	BrandID     string
	OpenTime    time.Time
	CloseTime   time.Time
	OpeningCash decimal.Decimal
	ClosingCash decimal.Decimal
	Orders      []Order
	Punches     []PunchRecord
}

// Scope selects the shifts a report covers. From and To are inclusive day keys
// (YYYY-MM-DD); empty BrandID or OutletID matches everything.
type Scope struct {
	BrandID  string
	OutletID string
	From     string
	To       string
}

// =============================================================================
// RATES
// =============================================================================

// Rate is an hourly pay rate pair.
type Rate struct {
	Regular  decimal.Decimal
	Overtime decimal.Decimal
}

// RateOverride replaces one or both fields of a staff member's rate.
// A nil field falls through to the next resolution level.
type RateOverride struct {
	Regular  *decimal.Decimal
	Overtime *decimal.Decimal
}

func (o RateOverride) IsEmpty() bool { return o.Regular == nil && o.Overtime == nil }

// RateSchedule holds role defaults and staff-specific overrides.
type RateSchedule struct {
	Roles     map[string]Rate
	Overrides map[StaffID]RateOverride
}

// RateType names one field of a Rate.
type RateType string

const (
	RateRegular  RateType = "regular"
	RateOvertime RateType = "overtime"
)

// =============================================================================
// DERIVED - Per record
// =============================================================================

// WorkedTime is net worked duration split at the overtime threshold.
// Regular + Overtime always equals the net duration it was split from.
type WorkedTime struct {
	Regular  time.Duration
	Overtime time.Duration
}

func (w WorkedTime) Total() time.Duration { return w.Regular + w.Overtime }

type PayRecord struct {
	RegularPay  decimal.Decimal
	OvertimePay decimal.Decimal
	TotalPay    decimal.Decimal
}

// StaffPayEntry is one counted punch record as shown on the daily timeline.
type StaffPayEntry struct {
	StaffID  StaffID
	Name     string
	PunchIn  time.Time
	PunchOut time.Time
	Net      time.Duration
	Worked   WorkedTime
	Breaks   int
	Rate     Rate
	Pay      PayRecord
}

// =============================================================================
// DERIVED - Aggregates
// =============================================================================

// Warning is a recovered ValidationError attached to a staff or day entry.
type Warning struct {
	StaffID StaffID
	Day     string
	Code    string
	Message string
}

type StaffAggregate struct {
	StaffID       StaffID
	Name          string
	Role          string
	TotalHours    decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	BreaksCount   int
	ShiftsCount   int
	RegularPay    decimal.Decimal
	OvertimePay   decimal.Decimal
	TotalPay      decimal.Decimal
	Rate          Rate
	OrdersCount   int
	Sales         decimal.Decimal
	Warnings      []Warning
}

type ShiftSummary struct {
	OutletID  string
	BrandID   string
	OpenTime  time.Time
	CloseTime time.Time
	Entries   []StaffPayEntry
	Revenue   decimal.Decimal
}

type DayAggregate struct {
	Day      string
	Shifts   []ShiftSummary
	Revenue  decimal.Decimal
	Payroll  decimal.Decimal
	Warnings []Warning
}

type Totals struct {
	TotalPayroll            decimal.Decimal
	TotalHours              decimal.Decimal
	TotalShifts             int
	DistinctStaff           int
	AverageHoursPerEmployee decimal.Decimal
	TotalRevenue            decimal.Decimal
	OpenShifts              int
	Warnings                int
}

// Result is the output of one ComputeAggregates call. It is owned by the caller;
// nothing in this package keeps a reference to it.
type Result struct {
	Staff  map[StaffID]*StaffAggregate
	Days   map[string]*DayAggregate
	Totals Totals
}

// =============================================================================
// HOURS
// =============================================================================

var hourNanos = decimal.NewFromInt(int64(time.Hour))

// Hours converts a duration to decimal hours.
func Hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(hourNanos)
}

// FromHours converts decimal hours to a duration, truncated to the nanosecond.
// h must fit a time.Duration; ThresholdFromHours checks client input.
func FromHours(h decimal.Decimal) time.Duration {
	return time.Duration(h.Mul(hourNanos).IntPart())
}
