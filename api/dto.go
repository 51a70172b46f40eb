/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the payroll and report packages from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

NUMBERS:
  Money is a string with two decimals ("131.25") so clients never see
  binary float rounding. Hours are JSON numbers rounded to two decimals.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - provider/wire.go: DayReport wire type
  - factory/schedule.go: ScheduleJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/outlet-payroll/factory"
	"github.com/warp/outlet-payroll/payroll"
	"github.com/warp/outlet-payroll/provider"
	"github.com/warp/outlet-payroll/report"
	"github.com/warp/outlet-payroll/store/sqlite"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ShiftDayRequest is one wire day tagged with its brand and outlet.
type ShiftDayRequest struct {
	BrandID  string `json:"brand_id"`
	OutletID string `json:"outlet_id"`
	provider.DayReport
}

// ComputeRequest is a stateless computation over inline shifts.
// A nil Schedule uses the stored one; a nil threshold uses the server default.
type ComputeRequest struct {
	Shifts                 []ShiftDayRequest     `json:"shifts"`
	Schedule               *factory.ScheduleJSON `json:"schedule,omitempty"`
	OvertimeThresholdHours *decimal.Decimal      `json:"overtime_threshold_hours,omitempty"`
}

// OverrideRequest applies one session-local rate override.
type OverrideRequest struct {
	StaffID  string          `json:"staff_id"`
	RateType string          `json:"rate_type"`
	Value    decimal.Decimal `json:"value"`
}

// =============================================================================
// REPORT TYPES
// =============================================================================

type ReportResponse struct {
	SessionID string    `json:"session_id,omitempty"`
	Report    ReportDTO `json:"report"`
}

type ReportDTO struct {
	Totals   TotalsDTO    `json:"totals"`
	Overview []StaffDTO   `json:"overview"`
	Timeline []DayDTO     `json:"timeline"`
	Payroll  []PayLineDTO `json:"payroll"`
}

type TotalsDTO struct {
	TotalPayroll            string  `json:"total_payroll"`
	TotalHours              float64 `json:"total_hours"`
	TotalShifts             int     `json:"total_shifts"`
	DistinctStaff           int     `json:"distinct_staff"`
	AverageHoursPerEmployee float64 `json:"average_hours_per_employee"`
	TotalRevenue            string  `json:"total_revenue"`
	OpenShifts              int     `json:"open_shifts"`
	Warnings                int     `json:"warnings"`
}

type StaffDTO struct {
	StaffID       string       `json:"staff_id"`
	Name          string       `json:"name,omitempty"`
	Role          string       `json:"role,omitempty"`
	TotalHours    float64      `json:"total_hours"`
	RegularHours  float64      `json:"regular_hours"`
	OvertimeHours float64      `json:"overtime_hours"`
	BreaksCount   int          `json:"breaks_count"`
	ShiftsCount   int          `json:"shifts_count"`
	TotalPay      string       `json:"total_pay"`
	OrdersCount   int          `json:"orders_count"`
	Sales         string       `json:"sales"`
	Warnings      []WarningDTO `json:"warnings,omitempty"`
}

type DayDTO struct {
	Day      string       `json:"day"`
	Revenue  string       `json:"revenue"`
	Payroll  string       `json:"payroll"`
	Shifts   []ShiftDTO   `json:"shifts"`
	Warnings []WarningDTO `json:"warnings,omitempty"`
}

type ShiftDTO struct {
	BrandID   string     `json:"brand_id,omitempty"`
	OutletID  string     `json:"outlet_id,omitempty"`
	OpenTime  string     `json:"open_time,omitempty"`
	CloseTime string     `json:"close_time,omitempty"`
	Revenue   string     `json:"revenue"`
	Entries   []EntryDTO `json:"entries"`
}

type EntryDTO struct {
	StaffID       string  `json:"staff_id"`
	Name          string  `json:"name,omitempty"`
	PunchIn       string  `json:"punch_in"`
	PunchOut      string  `json:"punch_out"`
	Hours         float64 `json:"hours"`
	RegularHours  float64 `json:"regular_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	Breaks        int     `json:"breaks"`
	TotalPay      string  `json:"total_pay"`
}

type PayLineDTO struct {
	StaffID       string  `json:"staff_id"`
	Name          string  `json:"name,omitempty"`
	Role          string  `json:"role,omitempty"`
	RegularRate   string  `json:"regular_rate"`
	OvertimeRate  string  `json:"overtime_rate"`
	RegularHours  float64 `json:"regular_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	RegularPay    string  `json:"regular_pay"`
	OvertimePay   string  `json:"overtime_pay"`
	TotalPay      string  `json:"total_pay"`
}

type WarningDTO struct {
	StaffID string `json:"staff_id"`
	Day     string `json:"day"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// OTHER TYPES
// =============================================================================

// ImportResponse summarizes one imported day.
type ImportResponse struct {
	BrandID  string `json:"brand_id"`
	OutletID string `json:"outlet_id"`
	Day      string `json:"day"`
	Punches  int    `json:"punches"`
	Orders   int    `json:"orders"`
}

type ReportRunDTO struct {
	ID            string  `json:"id"`
	BrandID       string  `json:"brand_id,omitempty"`
	OutletID      string  `json:"outlet_id,omitempty"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	Source        string  `json:"source"`
	TotalPayroll  string  `json:"total_payroll"`
	TotalHours    float64 `json:"total_hours"`
	TotalShifts   int     `json:"total_shifts"`
	DistinctStaff int     `json:"distinct_staff"`
	Warnings      int     `json:"warnings"`
	CreatedAt     string  `json:"created_at"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BrandID     string `json:"brand_id"`
	OutletID    string `json:"outlet_id"`
	From        string `json:"from"`
	To          string `json:"to"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func money(d decimal.Decimal) string { return d.StringFixed(payroll.PayScale) }

func hours(d decimal.Decimal) float64 { return d.Round(report.HoursScale).InexactFloat64() }

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toReportDTO(rep *report.Report) ReportDTO {
	dto := ReportDTO{
		Totals:   toTotalsDTO(rep.Totals),
		Overview: make([]StaffDTO, len(rep.Overview)),
		Timeline: make([]DayDTO, len(rep.Timeline)),
		Payroll:  make([]PayLineDTO, len(rep.Payroll.Rows)),
	}
	for i, row := range rep.Overview {
		dto.Overview[i] = toStaffDTO(row)
	}
	for i, day := range rep.Timeline {
		d := DayDTO{
			Day:      day.Day,
			Revenue:  money(day.Revenue),
			Payroll:  money(day.Payroll),
			Shifts:   make([]ShiftDTO, len(day.Shifts)),
			Warnings: toWarningDTOs(day.Warnings),
		}
		for j, s := range day.Shifts {
			d.Shifts[j] = toShiftDTO(s)
		}
		dto.Timeline[i] = d
	}
	for i, row := range rep.Payroll.Rows {
		dto.Payroll[i] = PayLineDTO{
			StaffID:       string(row.StaffID),
			Name:          row.Name,
			Role:          row.Role,
			RegularRate:   money(row.RegularRate),
			OvertimeRate:  money(row.OvertimeRate),
			RegularHours:  hours(row.RegularHours),
			OvertimeHours: hours(row.OvertimeHours),
			RegularPay:    money(row.RegularPay),
			OvertimePay:   money(row.OvertimePay),
			TotalPay:      money(row.TotalPay),
		}
	}
	return dto
}

func toTotalsDTO(t payroll.Totals) TotalsDTO {
	return TotalsDTO{
		TotalPayroll:            money(t.TotalPayroll),
		TotalHours:              hours(t.TotalHours),
		TotalShifts:             t.TotalShifts,
		DistinctStaff:           t.DistinctStaff,
		AverageHoursPerEmployee: hours(t.AverageHoursPerEmployee),
		TotalRevenue:            money(t.TotalRevenue),
		OpenShifts:              t.OpenShifts,
		Warnings:                t.Warnings,
	}
}

func toStaffDTO(row report.StaffRow) StaffDTO {
	return StaffDTO{
		StaffID:       string(row.StaffID),
		Name:          row.Name,
		Role:          row.Role,
		TotalHours:    hours(row.TotalHours),
		RegularHours:  hours(row.RegularHours),
		OvertimeHours: hours(row.OvertimeHours),
		BreaksCount:   row.BreaksCount,
		ShiftsCount:   row.ShiftsCount,
		TotalPay:      money(row.TotalPay),
		OrdersCount:   row.OrdersCount,
		Sales:         money(row.Sales),
		Warnings:      toWarningDTOs(row.Warnings),
	}
}

func toStaffDTOs(rows []report.StaffRow) []StaffDTO {
	dtos := make([]StaffDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toStaffDTO(row)
	}
	return dtos
}

func toShiftDTO(s report.ShiftRow) ShiftDTO {
	dto := ShiftDTO{
		BrandID:   s.BrandID,
		OutletID:  s.OutletID,
		OpenTime:  timestamp(s.OpenTime),
		CloseTime: timestamp(s.CloseTime),
		Revenue:   money(s.Revenue),
		Entries:   make([]EntryDTO, len(s.Entries)),
	}
	for i, e := range s.Entries {
		dto.Entries[i] = EntryDTO{
			StaffID:       string(e.StaffID),
			Name:          e.Name,
			PunchIn:       timestamp(e.PunchIn),
			PunchOut:      timestamp(e.PunchOut),
			Hours:         hours(e.Hours),
			RegularHours:  hours(e.RegularHours),
			OvertimeHours: hours(e.OvertimeHours),
			Breaks:        e.Breaks,
			TotalPay:      money(e.TotalPay),
		}
	}
	return dto
}

func toWarningDTOs(ws []payroll.Warning) []WarningDTO {
	if len(ws) == 0 {
		return nil
	}
	dtos := make([]WarningDTO, len(ws))
	for i, w := range ws {
		dtos[i] = WarningDTO{StaffID: string(w.StaffID), Day: w.Day, Code: w.Code, Message: w.Message}
	}
	return dtos
}

func toReportRunDTO(r sqlite.ReportRun) ReportRunDTO {
	return ReportRunDTO{
		ID:            r.ID,
		BrandID:       r.BrandID,
		OutletID:      r.OutletID,
		From:          r.From,
		To:            r.To,
		Source:        r.Source,
		TotalPayroll:  money(r.TotalPayroll),
		TotalHours:    hours(r.TotalHours),
		TotalShifts:   r.TotalShifts,
		DistinctStaff: r.DistinctStaff,
		Warnings:      r.Warnings,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}
