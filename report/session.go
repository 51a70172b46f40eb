package report

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/outlet-payroll/payroll"
)

// =============================================================================
// SESSION - What-if rate overrides on loaded shifts
// =============================================================================

// ErrSessionNotFound is returned by Registry.Get for an unknown or evicted id.
var ErrSessionNotFound = errors.New("report session not found")

// Session holds the shifts of one report and recomputes it when a manager
// tries a different rate for a staff member. Shifts are loaded once; a
// recomputation never fetches again. Every call returns a new *Report and
// earlier reports are left untouched.
type Session struct {
	ID        string
	Scope     payroll.Scope
	CreatedAt time.Time

	shifts    []payroll.ShiftContext
	base      payroll.RateSchedule
	threshold time.Duration
	opts      []payroll.Option

	mu       sync.Mutex
	schedule payroll.RateSchedule
	result   *payroll.Result
	report   *Report
}

// NewSession computes the initial report. A *payroll.ComputationError from the
// schedule or threshold is returned as is.
func NewSession(scope payroll.Scope, shifts []payroll.ShiftContext, schedule payroll.RateSchedule, threshold time.Duration, opts ...payroll.Option) (*Session, error) {
	base := schedule.Clone()
	shifts = append([]payroll.ShiftContext(nil), shifts...)
	res, err := payroll.ComputeAggregates(shifts, base, threshold, opts...)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        uuid.NewString(),
		Scope:     scope,
		CreatedAt: time.Now().UTC(),
		shifts:    shifts,
		base:      base,
		threshold: threshold,
		opts:      opts,
		schedule:  base,
		result:    res,
		report:    Assemble(res),
	}, nil
}

// Report returns the latest report.
func (s *Session) Report() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Schedule returns a copy of the schedule the latest report was computed with.
func (s *Session) Schedule() payroll.RateSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule.Clone()
}

// ApplyRateOverride sets one rate field for a staff member and recomputes.
// A negative value or unknown rate type leaves the session unchanged.
func (s *Session) ApplyRateOverride(staffID payroll.StaffID, rateType payroll.RateType, value decimal.Decimal) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.schedule.WithOverride(staffID, rateType, value)
	if err != nil {
		return nil, err
	}
	return s.recompute(next)
}

// ClearRateOverride drops the session-local override for a staff member,
// restoring whatever override the session started with.
func (s *Session) ClearRateOverride(staffID payroll.StaffID) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.schedule.WithoutOverride(staffID)
	if o, ok := s.base.Overrides[staffID]; ok {
		next.Overrides[staffID] = payroll.NewOverride(o.Regular, o.Overtime)
	}
	return s.recompute(next)
}

// TopPerformers ranks staff on the latest result.
func (s *Session) TopPerformers(n int) []StaffRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TopPerformers(s.result, n)
}

// recompute must be called with mu held.
func (s *Session) recompute(schedule payroll.RateSchedule) (*Report, error) {
	res, err := payroll.ComputeAggregates(s.shifts, schedule, s.threshold, s.opts...)
	if err != nil {
		return nil, err
	}
	s.schedule = schedule
	s.result = res
	s.report = Assemble(res)
	return s.report, nil
}

// =============================================================================
// REGISTRY - Open sessions, bounded
// =============================================================================

// DefaultRegistrySize bounds the number of open sessions.
const DefaultRegistrySize = 64

// Registry keeps the most recently opened sessions. When full, the oldest
// session is evicted.
type Registry struct {
	mu       sync.RWMutex
	limit    int
	order    []string
	sessions map[string]*Session
}

func NewRegistry(limit int) *Registry {
	if limit <= 0 {
		limit = DefaultRegistrySize
	}
	return &Registry{limit: limit, sessions: make(map[string]*Session)}
}

func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; !ok {
		r.order = append(r.order, s.ID)
	}
	r.sessions[s.ID] = s
	for len(r.order) > r.limit {
		delete(r.sessions, r.order[0])
		r.order = r.order[1:]
	}
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
