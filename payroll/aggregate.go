package payroll

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AGGREGATOR
// =============================================================================

// UndatedDay keys operating days with neither an open time nor any punch.
const UndatedDay = "undated"

// Option configures a ComputeAggregates call.
type Option func(*options)

type options struct {
	zone Zone
}

// WithZone sets the location used to normalize instants and derive day keys.
func WithZone(loc *time.Location) Option {
	return func(o *options) { o.zone = NewZone(loc) }
}

// staffAcc accumulates durations so hour totals are converted once, without
// repeated decimal division drift.
type staffAcc struct {
	agg      *StaffAggregate
	regular  time.Duration
	overtime time.Duration
}

// aggregator is the state of a single fold. It is never reused.
type aggregator struct {
	schedule  RateSchedule
	threshold time.Duration
	zone      Zone

	staff map[StaffID]*staffAcc
	days  map[string]*DayAggregate

	openShifts int
	warnings   int
	revenue    decimal.Decimal
}

// ComputeAggregates folds operating days into per-staff and per-day rollups.
//
// The schedule and threshold are validated first; a *ComputationError aborts
// before any record is read. Malformed punch records never abort: they are
// either counted with breaks zeroed or excluded, and always reported as a
// Warning. The result is freshly allocated on every call.
func ComputeAggregates(shifts []ShiftContext, schedule RateSchedule, threshold time.Duration, opts ...Option) (*Result, error) {
	if threshold < 0 {
		return nil, &ComputationError{Field: "overtime_threshold", Value: threshold.String(), Err: ErrNegativeThreshold}
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	o := options{zone: NewZone(time.UTC)}
	for _, opt := range opts {
		opt(&o)
	}

	a := &aggregator{
		schedule:  schedule,
		threshold: threshold,
		zone:      o.zone,
		staff:     make(map[StaffID]*staffAcc),
		days:      make(map[string]*DayAggregate),
		revenue:   decimal.Zero,
	}
	for _, s := range shifts {
		a.addShift(s)
	}
	return a.result(), nil
}

func (a *aggregator) addShift(s ShiftContext) {
	dayKey := a.zone.ShiftDay(s)
	if dayKey == "" {
		dayKey = UndatedDay
	}
	day := a.day(dayKey)

	summary := ShiftSummary{
		OutletID:  s.OutletID,
		BrandID:   s.BrandID,
		OpenTime:  a.zone.Normalize(s.OpenTime),
		CloseTime: a.zone.Normalize(s.CloseTime),
		Revenue:   decimal.Zero,
	}

	for _, raw := range s.Punches {
		p := a.zone.normalizePunch(raw)
		if entry, ok := a.addPunch(day, p); ok {
			summary.Entries = append(summary.Entries, entry)
			day.Payroll = day.Payroll.Add(entry.Pay.TotalPay)
		}
	}

	// Revenue is tracked independently of payroll.
	for _, order := range s.Orders {
		summary.Revenue = summary.Revenue.Add(order.Total)
		acc := a.staffFor(Staff{ID: order.StaffID})
		acc.agg.OrdersCount++
		acc.agg.Sales = acc.agg.Sales.Add(order.Total)
	}
	day.Revenue = day.Revenue.Add(summary.Revenue)
	a.revenue = a.revenue.Add(summary.Revenue)

	day.Shifts = append(day.Shifts, summary)
}

// addPunch folds one punch record. ok is false when the record is excluded.
func (a *aggregator) addPunch(day *DayAggregate, p PunchRecord) (StaffPayEntry, bool) {
	acc := a.staffFor(p.Staff)
	id := acc.agg.StaffID

	iv, err := NetWorked(p)
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			verr = &ValidationError{PunchIn: p.PunchIn, Reason: err.Error(), Err: err}
		}
		verr.StaffID = id
		a.warn(acc, day, id, verr)
		if errors.Is(err, ErrOpenShift) {
			a.openShifts++
		}
		if !verr.Recovered {
			return StaffPayEntry{}, false
		}
	}

	worked := SplitOvertime(iv.Net, a.threshold)
	rate := ResolveRate(a.schedule, id, acc.agg.Role)
	pay := CalculatePay(worked, rate)

	acc.regular += worked.Regular
	acc.overtime += worked.Overtime
	acc.agg.BreaksCount += iv.Breaks
	acc.agg.ShiftsCount++
	acc.agg.RegularPay = acc.agg.RegularPay.Add(pay.RegularPay)
	acc.agg.OvertimePay = acc.agg.OvertimePay.Add(pay.OvertimePay)
	acc.agg.TotalPay = acc.agg.TotalPay.Add(pay.TotalPay)

	return StaffPayEntry{
		StaffID:  id,
		Name:     acc.agg.Name,
		PunchIn:  p.PunchIn,
		PunchOut: *p.PunchOut,
		Net:      iv.Net,
		Worked:   worked,
		Breaks:   iv.Breaks,
		Rate:     rate,
		Pay:      pay,
	}, true
}

func (a *aggregator) warn(acc *staffAcc, day *DayAggregate, id StaffID, verr *ValidationError) {
	w := Warning{
		StaffID: id,
		Day:     day.Day,
		Code:    verr.Code(),
		Message: verr.Error(),
	}
	acc.agg.Warnings = append(acc.agg.Warnings, w)
	day.Warnings = append(day.Warnings, w)
	a.warnings++
}

// staffFor returns the accumulator for a staff member, creating it on first use.
// Records with no staff id land under UnknownStaff.
func (a *aggregator) staffFor(s Staff) *staffAcc {
	id := s.ID
	if id == "" {
		id = UnknownStaff
	}
	acc, ok := a.staff[id]
	if !ok {
		acc = &staffAcc{agg: &StaffAggregate{
			StaffID:     id,
			RegularPay:  decimal.Zero,
			OvertimePay: decimal.Zero,
			TotalPay:    decimal.Zero,
			Sales:       decimal.Zero,
		}}
		a.staff[id] = acc
	}
	if acc.agg.Name == "" {
		acc.agg.Name = s.Name
	}
	if acc.agg.Role == "" {
		acc.agg.Role = s.Role
	}
	return acc
}

func (a *aggregator) day(key string) *DayAggregate {
	d, ok := a.days[key]
	if !ok {
		d = &DayAggregate{Day: key, Revenue: decimal.Zero, Payroll: decimal.Zero}
		a.days[key] = d
	}
	return d
}

// result finalizes hours and derives grand totals from the staff aggregates.
func (a *aggregator) result() *Result {
	res := &Result{
		Staff: make(map[StaffID]*StaffAggregate, len(a.staff)),
		Days:  a.days,
	}

	totals := Totals{
		TotalPayroll:            decimal.Zero,
		TotalHours:              decimal.Zero,
		AverageHoursPerEmployee: decimal.Zero,
		TotalRevenue:            a.revenue,
		OpenShifts:              a.openShifts,
		Warnings:                a.warnings,
	}

	for id, acc := range a.staff {
		agg := acc.agg
		agg.RegularHours = Hours(acc.regular)
		agg.OvertimeHours = Hours(acc.overtime)
		agg.TotalHours = Hours(acc.regular + acc.overtime)
		agg.Rate = ResolveRate(a.schedule, id, agg.Role)
		res.Staff[id] = agg

		totals.TotalHours = totals.TotalHours.Add(agg.TotalHours)
		totals.TotalPayroll = totals.TotalPayroll.Add(agg.TotalPay)
		totals.TotalShifts += agg.ShiftsCount
		if agg.ShiftsCount > 0 {
			totals.DistinctStaff++
		}
	}

	if totals.DistinctStaff > 0 {
		totals.AverageHoursPerEmployee = totals.TotalHours.
			Div(decimal.NewFromInt(int64(totals.DistinctStaff))).
			Round(PayScale)
	}
	res.Totals = totals
	return res
}

// String is a compact one-line summary, handy in logs.
func (t Totals) String() string {
	return fmt.Sprintf("payroll=%s hours=%s shifts=%d staff=%d avg=%s open=%d warnings=%d",
		t.TotalPayroll.StringFixed(PayScale), t.TotalHours.StringFixed(PayScale),
		t.TotalShifts, t.DistinctStaff, t.AverageHoursPerEmployee.StringFixed(PayScale),
		t.OpenShifts, t.Warnings)
}
