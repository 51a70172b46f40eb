// Package memory provides in-memory payroll collaborators.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/outlet-payroll/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	keys     []key // sorted by day, brand, outlet
	days     map[key]payroll.ShiftContext
	schedule payroll.RateSchedule
}

type key struct {
	Day      string
	BrandID  string
	OutletID string
}

func (k key) less(o key) bool {
	if k.Day != o.Day {
		return k.Day < o.Day
	}
	if k.BrandID != o.BrandID {
		return k.BrandID < o.BrandID
	}
	return k.OutletID < o.OutletID
}

var (
	_ payroll.ShiftSource = (*Memory)(nil)
	_ payroll.RateStore   = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		days: make(map[key]payroll.ShiftContext),
		schedule: payroll.RateSchedule{
			Roles:     make(map[string]payroll.Rate),
			Overrides: make(map[payroll.StaffID]payroll.RateOverride),
		},
	}
}

// SaveShiftDay stores one operating day, replacing an earlier one with the
// same key.
func (m *Memory) SaveShiftDay(_ context.Context, day string, shift payroll.ShiftContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{Day: day, BrandID: shift.BrandID, OutletID: shift.OutletID}
	if _, ok := m.days[k]; !ok {
		i := sort.Search(len(m.keys), func(i int) bool { return k.less(m.keys[i]) })
		m.keys = append(m.keys, key{})
		copy(m.keys[i+1:], m.keys[i:])
		m.keys[i] = k
	}
	m.days[k] = shift
	return nil
}

// LoadShifts returns the days in scope ordered by day, brand, outlet.
func (m *Memory) LoadShifts(_ context.Context, scope payroll.Scope) ([]payroll.ShiftContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.ShiftContext
	for _, k := range m.keys {
		if scope.InScope(k.BrandID, k.OutletID, k.Day) {
			out = append(out, m.days[k])
		}
	}
	return out, nil
}

func (m *Memory) LoadSchedule(_ context.Context) (payroll.RateSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.schedule.Clone(), nil
}

func (m *Memory) SaveRoleRate(_ context.Context, role string, rate payroll.Rate) error {
	if err := payroll.ValidateRate("roles."+role, rate); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedule.Roles[role] = rate
	return nil
}

func (m *Memory) DeleteRoleRate(_ context.Context, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.schedule.Roles, role)
	return nil
}

func (m *Memory) SaveOverride(ctx context.Context, staffID payroll.StaffID, o payroll.RateOverride) error {
	if o.IsEmpty() {
		return m.DeleteOverride(ctx, staffID)
	}
	if err := (payroll.RateSchedule{Overrides: map[payroll.StaffID]payroll.RateOverride{staffID: o}}).Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedule.Overrides[staffID] = payroll.NewOverride(o.Regular, o.Overtime)
	return nil
}

func (m *Memory) DeleteOverride(_ context.Context, staffID payroll.StaffID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.schedule.Overrides, staffID)
	return nil
}
