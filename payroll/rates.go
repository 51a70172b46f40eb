package payroll

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE RESOLVER
// =============================================================================

var (
	// GlobalRegularRate applies when neither an override nor a role default exists.
	GlobalRegularRate = decimal.NewFromInt(15)

	// OvertimeMultiplier derives an overtime rate from a regular one.
	OvertimeMultiplier = decimal.NewFromFloat(1.5)
)

// ResolveRate returns the hourly rates for a staff member.
//
// Each field resolves independently, first match wins:
//  1. staff override
//  2. role default
//  3. global fallback (15/hr regular, 1.5x regular for overtime)
func ResolveRate(schedule RateSchedule, staffID StaffID, role string) Rate {
	override := schedule.Overrides[staffID]
	roleRate, hasRole := schedule.Roles[role]

	var r Rate
	switch {
	case override.Regular != nil:
		r.Regular = *override.Regular
	case hasRole:
		r.Regular = roleRate.Regular
	default:
		r.Regular = GlobalRegularRate
	}

	switch {
	case override.Overtime != nil:
		r.Overtime = *override.Overtime
	case hasRole && override.Regular == nil:
		r.Overtime = roleRate.Overtime
	default:
		r.Overtime = r.Regular.Mul(OvertimeMultiplier)
	}
	return r
}

// =============================================================================
// SCHEDULE HELPERS
// =============================================================================

// Validate rejects negative rates. It is called at the ComputeAggregates boundary.
func (s RateSchedule) Validate() error {
	roles := make([]string, 0, len(s.Roles))
	for role := range s.Roles {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		r := s.Roles[role]
		if r.Regular.IsNegative() {
			return &ComputationError{Field: "roles." + role + ".regular", Value: r.Regular.String(), Err: ErrNegativeRate}
		}
		if r.Overtime.IsNegative() {
			return &ComputationError{Field: "roles." + role + ".overtime", Value: r.Overtime.String(), Err: ErrNegativeRate}
		}
	}

	ids := make([]string, 0, len(s.Overrides))
	for id := range s.Overrides {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		o := s.Overrides[StaffID(id)]
		if o.Regular != nil && o.Regular.IsNegative() {
			return &ComputationError{Field: "overrides." + id + ".regular", Value: o.Regular.String(), Err: ErrNegativeRate}
		}
		if o.Overtime != nil && o.Overtime.IsNegative() {
			return &ComputationError{Field: "overrides." + id + ".overtime", Value: o.Overtime.String(), Err: ErrNegativeRate}
		}
	}
	return nil
}

// Clone returns a deep copy. Results computed from the original never observe
// later edits to the clone.
func (s RateSchedule) Clone() RateSchedule {
	out := RateSchedule{
		Roles:     make(map[string]Rate, len(s.Roles)),
		Overrides: make(map[StaffID]RateOverride, len(s.Overrides)),
	}
	for k, v := range s.Roles {
		out.Roles[k] = v
	}
	for k, v := range s.Overrides {
		var o RateOverride
		if v.Regular != nil {
			reg := *v.Regular
			o.Regular = &reg
		}
		if v.Overtime != nil {
			ot := *v.Overtime
			o.Overtime = &ot
		}
		out.Overrides[k] = o
	}
	return out
}

// WithOverride returns a copy of the schedule with one override field set.
func (s RateSchedule) WithOverride(staffID StaffID, rateType RateType, value decimal.Decimal) (RateSchedule, error) {
	if value.IsNegative() {
		return RateSchedule{}, &ComputationError{Field: "override." + string(rateType), Value: value.String(), Err: ErrNegativeRate}
	}
	out := s.Clone()
	o := out.Overrides[staffID]
	v := value
	switch rateType {
	case RateRegular:
		o.Regular = &v
	case RateOvertime:
		o.Overtime = &v
	default:
		return RateSchedule{}, &ComputationError{Field: "rate_type", Value: string(rateType), Err: ErrUnknownRateType}
	}
	out.Overrides[staffID] = o
	return out, nil
}

// WithoutOverride returns a copy of the schedule with the staff override removed.
func (s RateSchedule) WithoutOverride(staffID StaffID) RateSchedule {
	out := s.Clone()
	delete(out.Overrides, staffID)
	return out
}

// ParseRateType validates a rate type name.
func ParseRateType(s string) (RateType, error) {
	switch RateType(s) {
	case RateRegular, RateOvertime:
		return RateType(s), nil
	}
	return "", &ComputationError{Field: "rate_type", Value: s, Err: ErrUnknownRateType}
}
