/*
Package provider fetches operating-day shift reports from the upstream
point-of-sale API and converts them into payroll.ShiftContext values.

WIRE FORMAT (one operating day):
  {
    "outletInfo": {"openTime": "...", "closeTime": "...",
                   "openingCash": "100.00", "closingCash": 1450.5},
    "staffPunchIns": [
      {"staff": {"id": "...", "name": "...", "email": "...", "role": "cook"},
       "punch_in": "2025-03-10T09:00:00+07:00",
       "punch_out": null,
       "breaks": [{"start": "...", "end": "..."}]}
    ],
    "orders": [{"staff": {"id": "..."}, "total": "42.50"}]
  }

Timestamps are RFC 3339. Money accepts JSON numbers or strings. A null or
missing punch_out is an open shift; it is passed through and reported by the
payroll engine, not rejected here. An unparseable timestamp fails the whole
day.
*/
package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/outlet-payroll/payroll"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// DayReport is one operating day as the upstream API returns it.
type DayReport struct {
	OutletInfo    OutletInfo  `json:"outletInfo"`
	StaffPunchIns []PunchWire `json:"staffPunchIns"`
	Orders        []OrderWire `json:"orders"`
}

type OutletInfo struct {
	OpenTime    string          `json:"openTime"`
	CloseTime   string          `json:"closeTime"`
	OpeningCash decimal.Decimal `json:"openingCash"`
	ClosingCash decimal.Decimal `json:"closingCash"`
}

type StaffWire struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

type PunchWire struct {
	Staff    StaffWire   `json:"staff"`
	PunchIn  string      `json:"punch_in"`
	PunchOut *string     `json:"punch_out"`
	Breaks   []BreakWire `json:"breaks"`
}

type BreakWire struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type OrderWire struct {
	Staff StaffWire       `json:"staff"`
	Total decimal.Decimal `json:"total"`
}

// =============================================================================
// DECODING
// =============================================================================

// Decode reads one DayReport from r and converts it.
func Decode(r io.Reader, brandID, outletID string) (payroll.ShiftContext, error) {
	var day DayReport
	if err := json.NewDecoder(r).Decode(&day); err != nil {
		return payroll.ShiftContext{}, fmt.Errorf("decode shift report: %w", err)
	}
	return day.ToShift(brandID, outletID)
}

// ToShift converts the wire day into the engine's input type.
func (d DayReport) ToShift(brandID, outletID string) (payroll.ShiftContext, error) {
	open, err := parseTime("outletInfo.openTime", d.OutletInfo.OpenTime)
	if err != nil {
		return payroll.ShiftContext{}, err
	}
	closing, err := parseTime("outletInfo.closeTime", d.OutletInfo.CloseTime)
	if err != nil {
		return payroll.ShiftContext{}, err
	}

	s := payroll.ShiftContext{
		BrandID:     brandID,
		OutletID:    outletID,
		OpenTime:    open,
		CloseTime:   closing,
		OpeningCash: d.OutletInfo.OpeningCash,
		ClosingCash: d.OutletInfo.ClosingCash,
		Punches:     make([]payroll.PunchRecord, 0, len(d.StaffPunchIns)),
		Orders:      make([]payroll.Order, 0, len(d.Orders)),
	}

	for i, pw := range d.StaffPunchIns {
		p, err := pw.toPunch()
		if err != nil {
			return payroll.ShiftContext{}, fmt.Errorf("staffPunchIns[%d]: %w", i, err)
		}
		s.Punches = append(s.Punches, p)
	}
	for _, ow := range d.Orders {
		s.Orders = append(s.Orders, payroll.Order{StaffID: payroll.StaffID(ow.Staff.ID), Total: ow.Total})
	}
	return s, nil
}

func (pw PunchWire) toPunch() (payroll.PunchRecord, error) {
	in, err := parseTime("punch_in", pw.PunchIn)
	if err != nil {
		return payroll.PunchRecord{}, err
	}
	p := payroll.PunchRecord{
		Staff: payroll.Staff{
			ID:    payroll.StaffID(pw.Staff.ID),
			Name:  pw.Staff.Name,
			Email: pw.Staff.Email,
			Role:  pw.Staff.Role,
		},
		PunchIn: in,
	}
	if pw.PunchOut != nil && *pw.PunchOut != "" {
		out, err := parseTime("punch_out", *pw.PunchOut)
		if err != nil {
			return payroll.PunchRecord{}, err
		}
		p.PunchOut = &out
	}
	for j, bw := range pw.Breaks {
		start, err := parseTime(fmt.Sprintf("breaks[%d].start", j), bw.Start)
		if err != nil {
			return payroll.PunchRecord{}, err
		}
		end, err := parseTime(fmt.Sprintf("breaks[%d].end", j), bw.End)
		if err != nil {
			return payroll.PunchRecord{}, err
		}
		p.Breaks = append(p.Breaks, payroll.BreakInterval{Start: start, End: end})
	}
	return p, nil
}

// parseTime accepts RFC 3339 with or without fractional seconds. Empty is the
// zero time.
func parseTime(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

// =============================================================================
// ENCODING
// =============================================================================

// FromShift is the inverse of ToShift, used to persist fetched days in their
// wire form.
func FromShift(s payroll.ShiftContext) DayReport {
	d := DayReport{
		OutletInfo: OutletInfo{
			OpenTime:    formatTime(s.OpenTime),
			CloseTime:   formatTime(s.CloseTime),
			OpeningCash: s.OpeningCash,
			ClosingCash: s.ClosingCash,
		},
		StaffPunchIns: make([]PunchWire, 0, len(s.Punches)),
		Orders:        make([]OrderWire, 0, len(s.Orders)),
	}
	for _, p := range s.Punches {
		pw := PunchWire{
			Staff: StaffWire{
				ID:    string(p.Staff.ID),
				Name:  p.Staff.Name,
				Email: p.Staff.Email,
				Role:  p.Staff.Role,
			},
			PunchIn: formatTime(p.PunchIn),
		}
		if p.PunchOut != nil {
			out := formatTime(*p.PunchOut)
			pw.PunchOut = &out
		}
		for _, b := range p.Breaks {
			pw.Breaks = append(pw.Breaks, BreakWire{Start: formatTime(b.Start), End: formatTime(b.End)})
		}
		d.StaffPunchIns = append(d.StaffPunchIns, pw)
	}
	for _, o := range s.Orders {
		d.Orders = append(d.Orders, OrderWire{Staff: StaffWire{ID: string(o.StaffID)}, Total: o.Total})
	}
	return d
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
