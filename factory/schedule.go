/*
Package factory provides JSON to Go rate schedule conversion.

PURPOSE:
  Converts JSON rate schedule definitions into payroll.RateSchedule values.
  Managers edit role rates and per-staff overrides in the admin UI; the UI
  sends JSON, the factory validates it and builds the schedule the engine
  consumes. Invalid input is rejected here, before any aggregation runs.

JSON SCHEMA:
  {
    "roles": {
      "cook":   {"regular": "18.00", "overtime": "27.00"},
      "server": {"regular": 12.5}
    },
    "overrides": {
      "staff-42": {"regular": "21.00"},
      "staff-77": {"overtime": 30}
    }
  }

  Rates accept JSON numbers or strings. A role without "overtime" gets
  1.5x its regular rate. Override fields are optional; a missing field falls
  through to the role default.

USAGE:
  schedule, err := factory.ParseSchedule(jsonString)
  res, err := payroll.ComputeAggregates(shifts, schedule, threshold)

SEE ALSO:
  - payroll/rates.go: Rate resolution
  - store/sqlite: Persisted schedules
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/outlet-payroll/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of a rate schedule.
type ScheduleJSON struct {
	Roles     map[string]RateJSON     `json:"roles"`
	Overrides map[string]OverrideJSON `json:"overrides,omitempty"`
}

// RateJSON is a role default. Overtime is optional.
type RateJSON struct {
	Regular  decimal.Decimal  `json:"regular"`
	Overtime *decimal.Decimal `json:"overtime,omitempty"`
}

// OverrideJSON is a staff-specific override.
type OverrideJSON struct {
	Regular  *decimal.Decimal `json:"regular,omitempty"`
	Overtime *decimal.Decimal `json:"overtime,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseSchedule parses a JSON string into a validated RateSchedule.
func ParseSchedule(jsonStr string) (payroll.RateSchedule, error) {
	var sj ScheduleJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return payroll.RateSchedule{}, fmt.Errorf("failed to parse schedule JSON: %w", err)
	}
	return FromJSON(sj)
}

// FromJSON converts ScheduleJSON into a RateSchedule and validates it.
func FromJSON(sj ScheduleJSON) (payroll.RateSchedule, error) {
	schedule := payroll.RateSchedule{
		Roles:     make(map[string]payroll.Rate, len(sj.Roles)),
		Overrides: make(map[payroll.StaffID]payroll.RateOverride, len(sj.Overrides)),
	}

	for role, rj := range sj.Roles {
		schedule.Roles[role] = rj.ToRate()
	}

	for id, oj := range sj.Overrides {
		override := payroll.NewOverride(oj.Regular, oj.Overtime)
		if override.IsEmpty() {
			continue
		}
		schedule.Overrides[payroll.StaffID(id)] = override
	}

	if err := schedule.Validate(); err != nil {
		return payroll.RateSchedule{}, err
	}
	return schedule, nil
}

// ToRate applies the overtime default.
func (rj RateJSON) ToRate() payroll.Rate {
	r := payroll.Rate{Regular: rj.Regular}
	if rj.Overtime != nil {
		r.Overtime = *rj.Overtime
	} else {
		r.Overtime = rj.Regular.Mul(payroll.OvertimeMultiplier)
	}
	return r
}

// ToJSON converts a RateSchedule back to its JSON form.
func ToJSON(schedule payroll.RateSchedule) ScheduleJSON {
	sj := ScheduleJSON{
		Roles:     make(map[string]RateJSON, len(schedule.Roles)),
		Overrides: make(map[string]OverrideJSON, len(schedule.Overrides)),
	}
	for role, r := range schedule.Roles {
		ot := r.Overtime
		sj.Roles[role] = RateJSON{Regular: r.Regular, Overtime: &ot}
	}
	for id, o := range schedule.Overrides {
		sj.Overrides[string(id)] = OverrideJSON{Regular: o.Regular, Overtime: o.Overtime}
	}
	return sj
}

// RoleNames returns the roles of a schedule in sorted order.
func RoleNames(schedule payroll.RateSchedule) []string {
	roles := make([]string, 0, len(schedule.Roles))
	for role := range schedule.Roles {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// =============================================================================
// PRESETS
// =============================================================================

// RestaurantDefaultsJSON is a starting schedule for a full-service outlet.
func RestaurantDefaultsJSON() string {
	return `{
  "roles": {
    "manager":    {"regular": "22.00", "overtime": "33.00"},
    "cook":       {"regular": "18.00", "overtime": "27.00"},
    "server":     {"regular": "12.50"},
    "bartender":  {"regular": "14.00"},
    "dishwasher": {"regular": "11.00"}
  }
}`
}

// QuickServiceDefaultsJSON is a flat schedule for counter-service outlets.
func QuickServiceDefaultsJSON() string {
	return `{
  "roles": {
    "shift_lead": {"regular": "17.00"},
    "crew":       {"regular": "13.00"}
  }
}`
}
