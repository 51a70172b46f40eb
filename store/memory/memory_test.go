package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/outlet-payroll/payroll"
	"github.com/warp/outlet-payroll/store/memory"
)

func day(brand, outlet, d string) payroll.ShiftContext {
	open, _ := time.Parse(payroll.DayLayout, d)
	return payroll.ShiftContext{BrandID: brand, OutletID: outlet, OpenTime: open.Add(8 * time.Hour)}
}

func TestMemory_ShiftsOrderedAndScoped(t *testing.T) {
	ctx := context.Background()
	m := memory.NewMemory()

	require.NoError(t, m.SaveShiftDay(ctx, "2025-03-12", day("b1", "o1", "2025-03-12")))
	require.NoError(t, m.SaveShiftDay(ctx, "2025-03-10", day("b1", "o2", "2025-03-10")))
	require.NoError(t, m.SaveShiftDay(ctx, "2025-03-10", day("b1", "o1", "2025-03-10")))
	require.NoError(t, m.SaveShiftDay(ctx, "2025-03-10", day("b1", "o1", "2025-03-10")))

	all, err := m.LoadShifts(ctx, payroll.Scope{})
	require.NoError(t, err)
	require.Len(t, all, 3, "re-saving a day replaces it")
	assert.Equal(t, "o1", all[0].OutletID)
	assert.Equal(t, "o2", all[1].OutletID)
	assert.Equal(t, "2025-03-12", all[2].OpenTime.Format(payroll.DayLayout))

	scoped, err := m.LoadShifts(ctx, payroll.Scope{OutletID: "o1", To: "2025-03-11"})
	require.NoError(t, err)
	assert.Len(t, scoped, 1)
}

func TestMemory_ScheduleIsCopied(t *testing.T) {
	ctx := context.Background()
	m := memory.NewMemory()

	require.NoError(t, m.SaveRoleRate(ctx, "cook", payroll.DefaultRate()))
	reg := decimal.NewFromInt(20)
	require.NoError(t, m.SaveOverride(ctx, "c1", payroll.RateOverride{Regular: &reg}))

	got, err := m.LoadSchedule(ctx)
	require.NoError(t, err)
	delete(got.Roles, "cook")
	*got.Overrides["c1"].Regular = decimal.NewFromInt(1)

	again, err := m.LoadSchedule(ctx)
	require.NoError(t, err)
	assert.Contains(t, again.Roles, "cook")
	assert.Equal(t, "20", again.Overrides["c1"].Regular.String())

	neg := decimal.NewFromInt(-1)
	assert.ErrorIs(t, m.SaveOverride(ctx, "c2", payroll.RateOverride{Regular: &neg}), payroll.ErrNegativeRate)
}
