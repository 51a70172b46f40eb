/*
Package report assembles the views an operations console shows for one
payroll computation.

VIEWS:
  Overview       - One row per staff member, sorted by staff id
  TopPerformers  - Staff ranked by total hours worked
  Timeline       - Days ascending, shifts by open time, entries by punch in
  PayrollSummary - Rate and pay per staff member plus grand totals

Every view is derived from a single *payroll.Result. This package selects
fields, rounds hours for display and sorts; it never recomputes pay. A view
that needs different numbers must get them from a new ComputeAggregates call
(see Session).

USAGE:
  res, err := payroll.ComputeAggregates(shifts, schedule, threshold)
  rep := report.Assemble(res)
*/
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/outlet-payroll/payroll"
)

// HoursScale is the number of decimal places hours are shown with.
const HoursScale = 2

// =============================================================================
// ROW TYPES
// =============================================================================

// StaffRow is one line of the staff overview.
type StaffRow struct {
	StaffID       payroll.StaffID
	Name          string
	Role          string
	TotalHours    decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	BreaksCount   int
	ShiftsCount   int
	TotalPay      decimal.Decimal
	OrdersCount   int
	Sales         decimal.Decimal
	Warnings      []payroll.Warning
}

// DayRow is one operating day on the timeline.
type DayRow struct {
	Day      string
	Revenue  decimal.Decimal
	Payroll  decimal.Decimal
	Shifts   []ShiftRow
	Warnings []payroll.Warning
}

type ShiftRow struct {
	OutletID  string
	BrandID   string
	OpenTime  time.Time
	CloseTime time.Time
	Revenue   decimal.Decimal
	Entries   []EntryRow
}

// EntryRow is one counted punch record.
type EntryRow struct {
	StaffID       payroll.StaffID
	Name          string
	PunchIn       time.Time
	PunchOut      time.Time
	Hours         decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	Breaks        int
	TotalPay      decimal.Decimal
}

// PayRow is one line of the payroll summary.
type PayRow struct {
	StaffID       payroll.StaffID
	Name          string
	Role          string
	RegularRate   decimal.Decimal
	OvertimeRate  decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	RegularPay    decimal.Decimal
	OvertimePay   decimal.Decimal
	TotalPay      decimal.Decimal
}

type Summary struct {
	Rows   []PayRow
	Totals payroll.Totals
}

// Report bundles all views of one computation.
type Report struct {
	Overview []StaffRow
	Timeline []DayRow
	Payroll  Summary
	Totals   payroll.Totals
}

// =============================================================================
// VIEWS
// =============================================================================

// Assemble builds every view from res.
func Assemble(res *payroll.Result) *Report {
	return &Report{
		Overview: Overview(res),
		Timeline: Timeline(res),
		Payroll:  PayrollSummary(res),
		Totals:   displayTotals(res.Totals),
	}
}

// Overview returns one row per staff member, sorted by staff id.
func Overview(res *payroll.Result) []StaffRow {
	rows := make([]StaffRow, 0, len(res.Staff))
	for _, agg := range sortedStaff(res) {
		rows = append(rows, staffRow(agg))
	}
	return rows
}

// TopPerformers returns at most n staff members who worked at least one
// counted shift, by descending total hours. Ties are broken by staff id.
func TopPerformers(res *payroll.Result, n int) []StaffRow {
	if n <= 0 {
		return []StaffRow{}
	}
	aggs := make([]*payroll.StaffAggregate, 0, len(res.Staff))
	for _, agg := range res.Staff {
		if agg.ShiftsCount > 0 {
			aggs = append(aggs, agg)
		}
	}
	sort.Slice(aggs, func(i, j int) bool {
		if c := aggs[i].TotalHours.Cmp(aggs[j].TotalHours); c != 0 {
			return c > 0
		}
		return aggs[i].StaffID < aggs[j].StaffID
	})
	if len(aggs) > n {
		aggs = aggs[:n]
	}

	rows := make([]StaffRow, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, staffRow(agg))
	}
	return rows
}

// Timeline returns days in ascending order. UndatedDay sorts last.
func Timeline(res *payroll.Result) []DayRow {
	keys := make([]string, 0, len(res.Days))
	for k := range res.Days {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == payroll.UndatedDay || keys[j] == payroll.UndatedDay {
			return keys[j] == payroll.UndatedDay && keys[i] != payroll.UndatedDay
		}
		return keys[i] < keys[j]
	})

	rows := make([]DayRow, 0, len(keys))
	for _, k := range keys {
		d := res.Days[k]
		row := DayRow{
			Day:      d.Day,
			Revenue:  d.Revenue,
			Payroll:  d.Payroll,
			Shifts:   make([]ShiftRow, 0, len(d.Shifts)),
			Warnings: d.Warnings,
		}

		shifts := append([]payroll.ShiftSummary(nil), d.Shifts...)
		sort.SliceStable(shifts, func(i, j int) bool { return shifts[i].OpenTime.Before(shifts[j].OpenTime) })
		for _, s := range shifts {
			row.Shifts = append(row.Shifts, shiftRow(s))
		}
		rows = append(rows, row)
	}
	return rows
}

// PayrollSummary returns rate and pay per staff member, sorted by staff id,
// with the grand totals.
func PayrollSummary(res *payroll.Result) Summary {
	rows := make([]PayRow, 0, len(res.Staff))
	for _, agg := range sortedStaff(res) {
		if agg.ShiftsCount == 0 {
			continue
		}
		rows = append(rows, PayRow{
			StaffID:       agg.StaffID,
			Name:          agg.Name,
			Role:          agg.Role,
			RegularRate:   agg.Rate.Regular,
			OvertimeRate:  agg.Rate.Overtime,
			RegularHours:  roundHours(agg.RegularHours),
			OvertimeHours: roundHours(agg.OvertimeHours),
			RegularPay:    agg.RegularPay,
			OvertimePay:   agg.OvertimePay,
			TotalPay:      agg.TotalPay,
		})
	}
	return Summary{Rows: rows, Totals: displayTotals(res.Totals)}
}

// =============================================================================
// HELPERS
// =============================================================================

func sortedStaff(res *payroll.Result) []*payroll.StaffAggregate {
	aggs := make([]*payroll.StaffAggregate, 0, len(res.Staff))
	for _, agg := range res.Staff {
		aggs = append(aggs, agg)
	}
	sort.Slice(aggs, func(i, j int) bool { return aggs[i].StaffID < aggs[j].StaffID })
	return aggs
}

func staffRow(agg *payroll.StaffAggregate) StaffRow {
	return StaffRow{
		StaffID:       agg.StaffID,
		Name:          agg.Name,
		Role:          agg.Role,
		TotalHours:    roundHours(agg.TotalHours),
		RegularHours:  roundHours(agg.RegularHours),
		OvertimeHours: roundHours(agg.OvertimeHours),
		BreaksCount:   agg.BreaksCount,
		ShiftsCount:   agg.ShiftsCount,
		TotalPay:      agg.TotalPay,
		OrdersCount:   agg.OrdersCount,
		Sales:         agg.Sales,
		Warnings:      agg.Warnings,
	}
}

func shiftRow(s payroll.ShiftSummary) ShiftRow {
	entries := append([]payroll.StaffPayEntry(nil), s.Entries...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].PunchIn.Before(entries[j].PunchIn) })

	row := ShiftRow{
		OutletID:  s.OutletID,
		BrandID:   s.BrandID,
		OpenTime:  s.OpenTime,
		CloseTime: s.CloseTime,
		Revenue:   s.Revenue,
		Entries:   make([]EntryRow, 0, len(entries)),
	}
	for _, e := range entries {
		row.Entries = append(row.Entries, EntryRow{
			StaffID:       e.StaffID,
			Name:          e.Name,
			PunchIn:       e.PunchIn,
			PunchOut:      e.PunchOut,
			Hours:         roundHours(payroll.Hours(e.Net)),
			RegularHours:  roundHours(payroll.Hours(e.Worked.Regular)),
			OvertimeHours: roundHours(payroll.Hours(e.Worked.Overtime)),
			Breaks:        e.Breaks,
			TotalPay:      e.Pay.TotalPay,
		})
	}
	return row
}

func displayTotals(t payroll.Totals) payroll.Totals {
	t.TotalHours = roundHours(t.TotalHours)
	return t
}

func roundHours(h decimal.Decimal) decimal.Decimal {
	return h.Round(HoursScale)
}
