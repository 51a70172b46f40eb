package factory_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/outlet-payroll/factory"
	"github.com/warp/outlet-payroll/payroll"
)

func TestParseSchedule_RolesAndOverrides(t *testing.T) {
	schedule, err := factory.ParseSchedule(`{
		"roles": {
			"cook":   {"regular": "18.00", "overtime": 30},
			"server": {"regular": 12.5}
		},
		"overrides": {
			"staff-1": {"regular": "21"},
			"staff-2": {}
		}
	}`)
	require.NoError(t, err)

	require.Len(t, schedule.Roles, 2)
	assert.Equal(t, "30", schedule.Roles["cook"].Overtime.String())
	assert.Equal(t, "18.75", schedule.Roles["server"].Overtime.String(), "missing overtime defaults to 1.5x")

	require.Contains(t, schedule.Overrides, payroll.StaffID("staff-1"))
	assert.NotContains(t, schedule.Overrides, payroll.StaffID("staff-2"), "empty overrides are dropped")

	r := payroll.ResolveRate(schedule, "staff-1", "cook")
	assert.Equal(t, "21", r.Regular.String())
	assert.Equal(t, "31.5", r.Overtime.String())
}

func TestParseSchedule_RejectsNegativeRates(t *testing.T) {
	_, err := factory.ParseSchedule(`{"roles": {"cook": {"regular": -1}}}`)
	assert.ErrorIs(t, err, payroll.ErrNegativeRate)

	_, err = factory.ParseSchedule(`{"roles": {}, "overrides": {"s1": {"overtime": "-2"}}}`)
	assert.ErrorIs(t, err, payroll.ErrNegativeRate)
}

func TestParseSchedule_InvalidJSON(t *testing.T) {
	_, err := factory.ParseSchedule(`{"roles": [`)
	assert.Error(t, err)
	assert.False(t, payroll.IsClientError(err))
}

func TestPresets_Parse(t *testing.T) {
	for name, js := range map[string]string{
		"restaurant":    factory.RestaurantDefaultsJSON(),
		"quick_service": factory.QuickServiceDefaultsJSON(),
	} {
		t.Run(name, func(t *testing.T) {
			schedule, err := factory.ParseSchedule(js)
			require.NoError(t, err)
			assert.NotEmpty(t, factory.RoleNames(schedule))
		})
	}
}

func TestToJSON_RoundTripsThroughParse(t *testing.T) {
	reg := decimal.RequireFromString("20")
	original := payroll.RateSchedule{
		Roles: map[string]payroll.Rate{
			"cook": {Regular: decimal.RequireFromString("18"), Overtime: decimal.RequireFromString("27")},
		},
		Overrides: map[payroll.StaffID]payroll.RateOverride{"s1": {Regular: &reg}},
	}

	raw, err := json.Marshal(factory.ToJSON(original))
	require.NoError(t, err)

	parsed, err := factory.ParseSchedule(string(raw))
	require.NoError(t, err)
	assert.True(t, parsed.Roles["cook"].Overtime.Equal(original.Roles["cook"].Overtime))
	assert.True(t, parsed.Overrides["s1"].Regular.Equal(reg))
	assert.Nil(t, parsed.Overrides["s1"].Overtime)
}
