/*
handlers.go - HTTP API handlers for the outlet payroll console

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the payroll and report packages.
  Handlers never compute pay themselves.

ENDPOINTS:
  Payroll:
    POST   /api/payroll/compute                          Stateless computation over inline shifts
    GET    /api/payroll/report                           Report for a brand/outlet/date scope
    PUT    /api/payroll/sessions/{id}/overrides          What-if rate override
    DELETE /api/payroll/sessions/{id}/overrides/{staffID} Revert an override
    GET    /api/payroll/sessions/{id}/top                Top performers

  Rates:
    GET    /api/rates                     Current schedule
    PUT    /api/rates                     Replace role defaults
    PUT    /api/rates/overrides/{staffID} Persist a staff override
    DELETE /api/rates/overrides/{staffID} Remove a staff override

  Shifts:
    POST   /api/shifts/import             Import one provider day

  Audit:
    GET    /api/report-runs               Generated reports, newest first

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/load            Load a demo scenario
    POST   /api/scenarios/reset           Clear all data

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Imported shifts, rates, report runs
  - Provider: Optional upstream shift report API
  - Sessions: Open report sessions for what-if overrides

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input, negative rates or threshold, ranges over 92 days
  - 404: Unknown or evicted report session
  - 502: Upstream shift report provider failed
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/outlet-payroll/factory"
	"github.com/warp/outlet-payroll/payroll"
	"github.com/warp/outlet-payroll/provider"
	"github.com/warp/outlet-payroll/report"
	"github.com/warp/outlet-payroll/store/sqlite"
)

const (
	defaultTopN         = 5
	defaultRunsLimit    = 50
	sourceStore         = "store"
	sourceProvider      = "provider"
	maxComputeBodyBytes = 8 << 20

	// maxScopeDays bounds a report range (about one quarter).
	maxScopeDays = 92
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Provider  payroll.ShiftSource
	Sessions  *report.Registry
	Zone      payroll.Zone
	Threshold time.Duration

	logger *zap.Logger

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

type HandlerOption func(*Handler)

// WithProvider enables source=provider on the report endpoint.
func WithProvider(p payroll.ShiftSource) HandlerOption {
	return func(h *Handler) { h.Provider = p }
}

func WithZone(z payroll.Zone) HandlerOption {
	return func(h *Handler) { h.Zone = z }
}

func WithThreshold(d time.Duration) HandlerOption {
	return func(h *Handler) { h.Threshold = d }
}

func WithLogger(l *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		Store:     store,
		Sessions:  report.NewRegistry(report.DefaultRegistrySize),
		Zone:      payroll.NewZone(time.UTC),
		Threshold: payroll.DefaultOvertimeThreshold,
		logger:    zap.L().Named("api.handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// ComputePayroll runs one stateless computation over shifts in the body.
func (h *Handler) ComputePayroll(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxComputeBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shifts := make([]payroll.ShiftContext, 0, len(req.Shifts))
	for i, day := range req.Shifts {
		s, err := day.ToShift(day.BrandID, day.OutletID)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid shift %d", i), err)
			return
		}
		shifts = append(shifts, s)
	}

	var schedule payroll.RateSchedule
	var err error
	if req.Schedule != nil {
		schedule, err = factory.FromJSON(*req.Schedule)
	} else {
		schedule, err = h.Store.LoadSchedule(r.Context())
	}
	if err != nil {
		h.writeDomainError(w, "Failed to load rate schedule", err)
		return
	}

	threshold := h.Threshold
	if req.OvertimeThresholdHours != nil {
		threshold, err = payroll.ThresholdFromHours("overtime_threshold_hours", *req.OvertimeThresholdHours)
		if err != nil {
			h.writeDomainError(w, "Invalid overtime threshold", err)
			return
		}
	}

	res, err := payroll.ComputeAggregates(shifts, schedule, threshold, payroll.WithZone(h.Zone.Location()))
	if err != nil {
		h.writeDomainError(w, "Failed to compute payroll", err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: toReportDTO(report.Assemble(res))})
}

// GetReport loads a scope, opens a session and records the run.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	scope := payroll.Scope{
		BrandID:  q.Get("brand_id"),
		OutletID: q.Get("outlet_id"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	}
	if err := h.validateScope(scope); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scope", err)
		return
	}

	source := q.Get("source")
	var shifts []payroll.ShiftContext
	var err error
	switch source {
	case "", sourceStore:
		source = sourceStore
		shifts, err = h.Store.LoadShifts(ctx, scope)
	case sourceProvider:
		if h.Provider == nil {
			writeError(w, http.StatusBadRequest, "Shift provider is not configured", nil)
			return
		}
		if scope.BrandID == "" || scope.OutletID == "" {
			writeError(w, http.StatusBadRequest, "brand_id and outlet_id are required for source=provider", nil)
			return
		}
		shifts, err = h.Provider.LoadShifts(ctx, scope)
	default:
		writeError(w, http.StatusBadRequest, "Unknown source", fmt.Errorf("source %q", source))
		return
	}
	if err != nil {
		h.writeDomainError(w, "Failed to load shifts", err)
		return
	}

	schedule, err := h.Store.LoadSchedule(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load rate schedule", err)
		return
	}

	session, err := report.NewSession(scope, shifts, schedule, h.Threshold, payroll.WithZone(h.Zone.Location()))
	if err != nil {
		h.writeDomainError(w, "Failed to compute payroll", err)
		return
	}
	h.Sessions.Put(session)

	rep := session.Report()
	run := sqlite.ReportRun{
		ID:            uuid.NewString(),
		BrandID:       scope.BrandID,
		OutletID:      scope.OutletID,
		From:          scope.From,
		To:            scope.To,
		Source:        source,
		TotalPayroll:  rep.Totals.TotalPayroll,
		TotalHours:    rep.Totals.TotalHours,
		TotalShifts:   rep.Totals.TotalShifts,
		DistinctStaff: rep.Totals.DistinctStaff,
		Warnings:      rep.Totals.Warnings,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.Store.SaveReportRun(ctx, run); err != nil {
		h.logger.Error("failed to record report run", zap.String("run_id", run.ID), zap.Error(err))
	}

	h.logger.Info("report generated",
		zap.String("session_id", session.ID),
		zap.String("source", source),
		zap.Int("days", len(shifts)),
		zap.Stringer("totals", rep.Totals))

	writeJSON(w, http.StatusOK, ReportResponse{SessionID: session.ID, Report: toReportDTO(rep)})
}

// ApplyOverride recomputes a session's report with one rate field changed.
func (h *Handler) ApplyOverride(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, "Session not found", err)
		return
	}

	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.StaffID == "" {
		writeError(w, http.StatusBadRequest, "staff_id is required", nil)
		return
	}
	rateType, err := payroll.ParseRateType(req.RateType)
	if err != nil {
		h.writeDomainError(w, "Invalid rate type", err)
		return
	}

	rep, err := session.ApplyRateOverride(payroll.StaffID(req.StaffID), rateType, req.Value)
	if err != nil {
		h.writeDomainError(w, "Failed to apply override", err)
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{SessionID: session.ID, Report: toReportDTO(rep)})
}

// ClearOverride reverts a session-local override.
func (h *Handler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, "Session not found", err)
		return
	}

	rep, err := session.ClearRateOverride(payroll.StaffID(chi.URLParam(r, "staffID")))
	if err != nil {
		h.writeDomainError(w, "Failed to clear override", err)
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{SessionID: session.ID, Report: toReportDTO(rep)})
}

// GetTopPerformers ranks a session's staff by hours worked.
func (h *Handler) GetTopPerformers(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, "Session not found", err)
		return
	}

	n := defaultTopN
	if s := r.URL.Query().Get("n"); s != "" {
		n, err = strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toStaffDTOs(session.TopPerformers(n)))
}

// =============================================================================
// RATE HANDLERS
// =============================================================================

// GetRates returns the stored schedule.
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.Store.LoadSchedule(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load rates", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.ToJSON(schedule))
}

// ReplaceRates replaces the role defaults. Overrides in the body are ignored;
// they are managed under /api/rates/overrides.
func (h *Handler) ReplaceRates(w http.ResponseWriter, r *http.Request) {
	var sj factory.ScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	sj.Overrides = nil

	schedule, err := factory.FromJSON(sj)
	if err != nil {
		h.writeDomainError(w, "Invalid rates", err)
		return
	}
	if err := h.Store.ReplaceRoleRates(r.Context(), schedule.Roles); err != nil {
		h.writeDomainError(w, "Failed to save rates", err)
		return
	}
	h.GetRates(w, r)
}

// PutRateOverride persists a staff override.
func (h *Handler) PutRateOverride(w http.ResponseWriter, r *http.Request) {
	staffID := payroll.StaffID(chi.URLParam(r, "staffID"))

	var oj factory.OverrideJSON
	if err := json.NewDecoder(r.Body).Decode(&oj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Store.SaveOverride(r.Context(), staffID, payroll.NewOverride(oj.Regular, oj.Overtime)); err != nil {
		h.writeDomainError(w, "Failed to save override", err)
		return
	}
	h.GetRates(w, r)
}

// DeleteRateOverride removes a persisted staff override.
func (h *Handler) DeleteRateOverride(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteOverride(r.Context(), payroll.StaffID(chi.URLParam(r, "staffID"))); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete override", err)
		return
	}
	h.GetRates(w, r)
}

// =============================================================================
// SHIFT IMPORT
// =============================================================================

// ImportShiftDay stores one provider wire day. The day key comes from the
// shift's open time (or first punch) in the configured zone.
func (h *Handler) ImportShiftDay(w http.ResponseWriter, r *http.Request) {
	brandID := r.URL.Query().Get("brand_id")
	outletID := r.URL.Query().Get("outlet_id")
	if brandID == "" || outletID == "" {
		writeError(w, http.StatusBadRequest, "brand_id and outlet_id are required", nil)
		return
	}

	shift, err := provider.Decode(http.MaxBytesReader(w, r.Body, maxComputeBodyBytes), brandID, outletID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift report", err)
		return
	}
	day := h.Zone.ShiftDay(shift)
	if day == "" {
		writeError(w, http.StatusBadRequest, "Shift report has no open time and no punches", nil)
		return
	}

	if err := h.Store.SaveShiftDay(r.Context(), day, shift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save shift day", err)
		return
	}

	writeJSON(w, http.StatusCreated, ImportResponse{
		BrandID:  brandID,
		OutletID: outletID,
		Day:      day,
		Punches:  len(shift.Punches),
		Orders:   len(shift.Orders),
	})
}

// =============================================================================
// AUDIT
// =============================================================================

// ListReportRuns returns recent report runs.
func (h *Handler) ListReportRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.ListReportRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list report runs", err)
		return
	}

	dtos := make([]ReportRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toReportRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) validateScope(scope payroll.Scope) error {
	if scope.From == "" || scope.To == "" {
		return errors.New("from and to are required (YYYY-MM-DD)")
	}
	from, err := h.Zone.ParseDay(scope.From)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	to, err := h.Zone.ParseDay(scope.To)
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}
	if to.Before(from) {
		return errors.New("to is before from")
	}
	if to.After(from.AddDate(0, 0, maxScopeDays-1)) {
		return fmt.Errorf("range is longer than %d days", maxScopeDays)
	}
	return nil
}

// writeDomainError maps payroll and report errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case payroll.IsClientError(err):
		writeErrorCode(w, http.StatusBadRequest, "invalid_configuration", message, err)
	case errors.Is(err, report.ErrSessionNotFound):
		writeErrorCode(w, http.StatusNotFound, "session_not_found", message, err)
	case errors.Is(err, payroll.ErrUnauthorized):
		h.logger.Warn("shift provider rejected credentials", zap.Error(err))
		writeErrorCode(w, http.StatusBadGateway, "unauthorized", message, err)
	case payroll.IsFetchError(err):
		h.logger.Warn("shift provider failed", zap.Error(err))
		writeErrorCode(w, http.StatusBadGateway, "data_fetch", message, err)
	default:
		h.logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	writeErrorCode(w, status, "", message, err)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
