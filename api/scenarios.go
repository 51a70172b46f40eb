/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	shift data for demos. Each scenario seeds role rates, optional staff
	overrides and a set of operating days for one outlet.

AVAILABLE SCENARIOS:

	single_outlet_week: Five staff, one outlet, a full week of regular shifts
	overtime_heavy:     Long shifts, a split double shift, a shift past midnight
	malformed_records:  Open shift, inverted punches, overlapping breaks,
	                    a punch with no staff id

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Replace role rates from a factory preset
 3. Save staff overrides, if any
 4. Save operating days, keyed by their open time in the handler's zone

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "overtime_heavy"}

	GET /api/payroll/report?brand_id=demo-brand&outlet_id=harbor&from=2025-03-10&to=2025-03-12

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: GetReport
  - factory/schedule.go: Rate presets
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/outlet-payroll/factory"
	"github.com/warp/outlet-payroll/payroll"
)

const demoBrand = "demo-brand"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single_outlet_week",
		Name:        "Single Outlet Week",
		Description: "Five staff at one outlet, Monday to Sunday, regular shifts with lunch breaks",
		BrandID:     demoBrand,
		OutletID:    "central",
		From:        "2025-03-10",
		To:          "2025-03-16",
	},
	{
		ID:          "overtime_heavy",
		Name:        "Overtime Heavy",
		Description: "12h shifts, a split double shift under the threshold, a bar shift past midnight, one staff override",
		BrandID:     demoBrand,
		OutletID:    "harbor",
		From:        "2025-03-10",
		To:          "2025-03-12",
	},
	{
		ID:          "malformed_records",
		Name:        "Malformed Records",
		Description: "One day with an open shift, inverted punches, overlapping breaks and a missing staff id",
		BrandID:     demoBrand,
		OutletID:    "airport",
		From:        "2025-03-10",
		To:          "2025-03-10",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var load func(context.Context) error
	switch req.ScenarioID {
	case "single_outlet_week":
		load = h.loadSingleOutletWeek
	case "overtime_heavy":
		load = h.loadOvertimeHeavy
	case "malformed_records":
		load = h.loadMalformedRecords
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()

	h.mu.Lock()
	defer h.mu.Unlock()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := load(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.logger.Info("scenario loaded", zap.String("scenario", req.ScenarioID))

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSingleOutletWeek(ctx context.Context) error {
	if err := h.seedRates(ctx, factory.RestaurantDefaultsJSON()); err != nil {
		return err
	}

	d := h.demoDays("central")
	for i := 0; i < 7; i++ {
		day := d.day(i)
		s := day.shift("08:00", "23:00")

		if i < 5 { // Mon-Fri
			s.Punches = append(s.Punches, day.punch(staffMaya, "08:00", "16:30", day.brk("12:00", "12:30")))
		}
		s.Punches = append(s.Punches,
			day.punch(staffChen, "09:00", "17:30", day.brk("13:00", "13:30")),
			day.punch(staffSam, "11:00", "19:00", day.brk("15:00", "15:15")),
		)
		if i >= 2 { // Wed-Sun
			s.Punches = append(s.Punches, day.punch(staffCarlos, "14:00", "23:00", day.brk("18:00", "18:30")))
		}
		if i >= 3 { // Thu-Sun
			s.Punches = append(s.Punches, day.punch(staffSofia, "17:00", "23:00"))
			s.Orders = append(s.Orders, order(staffSofia.ID, 210+15*i))
		}
		s.Orders = append(s.Orders,
			order(staffSam.ID, 120+10*i),
			order(staffSam.ID, 85),
			order(staffSam.ID, 42+i),
		)

		if err := h.saveDemoDay(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadOvertimeHeavy(ctx context.Context) error {
	if err := h.seedRates(ctx, factory.RestaurantDefaultsJSON()); err != nil {
		return err
	}
	// Chen is the senior cook.
	if err := h.Store.SaveOverride(ctx, staffChen.ID, payroll.NewOverride(decPtr(20), nil)); err != nil {
		return err
	}

	d := h.demoDays("harbor")
	for i := 0; i < 3; i++ {
		day := d.day(i)
		s := day.shift("07:00", "02:00")
		s.Punches = append(s.Punches,
			// 11.5h net: 8h regular + 3.5h overtime
			day.punch(staffChen, "07:00", "19:00", day.brk("12:00", "12:30")),
			// split double: 4h + 5h, each under the threshold
			day.punch(staffCarlos, "08:00", "12:00"),
			day.punch(staffCarlos, "17:00", "22:00"),
			// past midnight, attributed to the open day
			day.punch(staffBo, "16:00", "02:00", day.brk("21:00", "21:30")),
		)
		s.Orders = append(s.Orders, order(staffBo.ID, 640+20*i))

		if err := h.saveDemoDay(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadMalformedRecords(ctx context.Context) error {
	if err := h.seedRates(ctx, factory.RestaurantDefaultsJSON()); err != nil {
		return err
	}

	day := h.demoDays("airport").day(0)
	s := day.shift("06:00", "22:00")

	open := day.punch(staffSam, "10:00", "")
	inverted := day.punch(staffSofia, "15:00", "11:00")
	overlapping := day.punch(staffMaya, "08:00", "16:00",
		day.brk("12:00", "13:00"),
		day.brk("12:30", "13:30"),
	)
	anonymous := day.punch(payroll.Staff{}, "10:00", "14:00")

	s.Punches = append(s.Punches,
		day.punch(staffChen, "09:00", "17:00"),
		open,
		inverted,
		overlapping,
		anonymous,
	)
	s.Orders = append(s.Orders, order(staffSam.ID, 55), order("", 12))
	return h.saveDemoDay(ctx, s)
}

// =============================================================================
// HELPERS
// =============================================================================

var (
	staffMaya   = payroll.Staff{ID: "maya", Name: "Maya Putri", Email: "maya@demo.test", Role: "manager"}
	staffChen   = payroll.Staff{ID: "chen", Name: "Chen Wei", Email: "chen@demo.test", Role: "cook"}
	staffCarlos = payroll.Staff{ID: "carlos", Name: "Carlos Ruiz", Email: "carlos@demo.test", Role: "cook"}
	staffSam    = payroll.Staff{ID: "sam", Name: "Sam Okafor", Email: "sam@demo.test", Role: "server"}
	staffSofia  = payroll.Staff{ID: "sofia", Name: "Sofia Rossi", Email: "sofia@demo.test", Role: "server"}
	staffBo     = payroll.Staff{ID: "bo", Name: "Bo Lindqvist", Email: "bo@demo.test", Role: "bartender"}
)

func (h *Handler) seedRates(ctx context.Context, presetJSON string) error {
	schedule, err := factory.ParseSchedule(presetJSON)
	if err != nil {
		return err
	}
	return h.Store.ReplaceRoleRates(ctx, schedule.Roles)
}

func (h *Handler) saveDemoDay(ctx context.Context, s payroll.ShiftContext) error {
	return h.Store.SaveShiftDay(ctx, h.Zone.ShiftDay(s), s)
}

// demoDays builds local times for one outlet starting Monday 2025-03-10.
type demoDays struct {
	outletID string
	start    time.Time
}

func (h *Handler) demoDays(outletID string) demoDays {
	return demoDays{
		outletID: outletID,
		start:    time.Date(2025, 3, 10, 0, 0, 0, 0, h.Zone.Location()),
	}
}

type demoDay struct {
	outletID string
	date     time.Time
}

func (d demoDays) day(i int) demoDay {
	return demoDay{outletID: d.outletID, date: d.start.AddDate(0, 0, i)}
}

// at parses HH:MM on this day. A clock before 05:00 belongs to the next
// calendar day, which is how late shifts are written on a roster.
func (d demoDay) at(clock string) time.Time {
	c, err := time.Parse("15:04", clock)
	if err != nil {
		panic(fmt.Sprintf("demo clock %q: %v", clock, err))
	}
	t := time.Date(d.date.Year(), d.date.Month(), d.date.Day(), c.Hour(), c.Minute(), 0, 0, d.date.Location())
	if c.Hour() < 5 {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func (d demoDay) shift(open, close string) payroll.ShiftContext {
	return payroll.ShiftContext{
		BrandID:     demoBrand,
		OutletID:    d.outletID,
		OpenTime:    d.at(open),
		CloseTime:   d.at(close),
		OpeningCash: decimal.NewFromInt(200),
		ClosingCash: decimal.NewFromInt(200),
	}
}

// punch builds a record; an empty out clock is an open shift.
func (d demoDay) punch(s payroll.Staff, in, out string, breaks ...payroll.BreakInterval) payroll.PunchRecord {
	p := payroll.PunchRecord{Staff: s, PunchIn: d.at(in), Breaks: breaks}
	if out != "" {
		t := d.at(out)
		p.PunchOut = &t
	}
	return p
}

func (d demoDay) brk(start, end string) payroll.BreakInterval {
	return payroll.BreakInterval{Start: d.at(start), End: d.at(end)}
}

func order(staffID payroll.StaffID, total int) payroll.Order {
	return payroll.Order{StaffID: staffID, Total: decimal.NewFromInt(int64(total))}
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
