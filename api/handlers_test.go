/*
handlers_test.go - HTTP tests for the payroll API

Tests for:
- Stateless compute (worked example)
- Scenario load -> report -> what-if override -> revert
- Error mapping (400 / 404 / 502)
- Shift import, rate management, report runs
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/outlet-payroll/factory"
	"github.com/warp/outlet-payroll/provider"
	"github.com/warp/outlet-payroll/store/sqlite"
)

func newTestServer(t *testing.T, opts ...HandlerOption) (*httptest.Server, *Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	opts = append([]HandlerOption{WithLogger(zap.NewNop())}, opts...)
	h := NewHandler(store, opts...)
	srv := httptest.NewServer(NewRouter(h, RouterOptions{}))
	t.Cleanup(srv.Close)
	return srv, h
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func loadScenario(t *testing.T, srv *httptest.Server, id string) {
	t.Helper()
	status := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load", map[string]string{"scenario_id": id}, nil)
	require.Equal(t, http.StatusOK, status)
}

const workedExampleDay = `{
  "brand_id": "b1",
  "outlet_id": "o1",
  "outletInfo": {"openTime": "2025-03-10T08:00:00Z", "closeTime": "2025-03-10T22:00:00Z"},
  "staffPunchIns": [{
    "staff": {"id": "c1", "name": "Cook One", "role": "cook"},
    "punch_in": "2025-03-10T09:00:00Z",
    "punch_out": "2025-03-10T18:00:00Z",
    "breaks": [{"start": "2025-03-10T13:00:00Z", "end": "2025-03-10T13:30:00Z"}]
  }],
  "orders": []
}`

// =============================================================================
// COMPUTE
// =============================================================================

func TestComputePayroll_WorkedExample(t *testing.T) {
	// GIVEN: 09:00-18:00 with a 30 minute break, no stored rates
	srv, _ := newTestServer(t)
	body := `{"shifts": [` + workedExampleDay + `]}`

	// WHEN: computing statelessly
	var resp ReportResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/payroll/compute", body, &resp)

	// THEN: 8h at 15 + 0.5h at 22.5
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, resp.SessionID)
	assert.Equal(t, "131.25", resp.Report.Totals.TotalPayroll)
	assert.Equal(t, 8.5, resp.Report.Totals.TotalHours)
	require.Len(t, resp.Report.Payroll, 1)
	assert.Equal(t, "120.00", resp.Report.Payroll[0].RegularPay)
	assert.Equal(t, "11.25", resp.Report.Payroll[0].OvertimePay)
	assert.Equal(t, "22.50", resp.Report.Payroll[0].OvertimeRate)
}

func TestComputePayroll_InlineScheduleAndThreshold(t *testing.T) {
	// GIVEN: a cook rate of 18 and a 9 hour threshold
	srv, _ := newTestServer(t)
	body := `{
	  "shifts": [` + workedExampleDay + `],
	  "schedule": {"roles": {"cook": {"regular": "18"}}},
	  "overtime_threshold_hours": 9
	}`

	var resp ReportResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/payroll/compute", body, &resp)

	// THEN: 8.5h all regular at 18
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "153.00", resp.Report.Totals.TotalPayroll)
	assert.Equal(t, 0.0, resp.Report.Overview[0].OvertimeHours)
}

func TestComputePayroll_RejectsNegativeRate(t *testing.T) {
	srv, _ := newTestServer(t)
	body := `{"shifts": [], "schedule": {"roles": {"cook": {"regular": "-1"}}}}`

	var resp ErrorResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/payroll/compute", body, &resp)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_configuration", resp.Code)
}

func TestComputePayroll_ThresholdOutOfRange(t *testing.T) {
	srv, _ := newTestServer(t)

	// 3,000,000 hours does not fit a time.Duration
	for _, hours := range []string{"-1", "3000000"} {
		body := `{"shifts": [` + workedExampleDay + `], "overtime_threshold_hours": ` + hours + `}`

		var resp ErrorResponse
		status := doJSON(t, http.MethodPost, srv.URL+"/api/payroll/compute", body, &resp)

		assert.Equal(t, http.StatusBadRequest, status, hours)
		assert.Equal(t, "invalid_configuration", resp.Code, hours)
	}
}

func TestComputePayroll_BadTimestamp(t *testing.T) {
	srv, _ := newTestServer(t)
	body := `{"shifts": [{"outletInfo": {"openTime": "yesterday"}}]}`

	status := doJSON(t, http.MethodPost, srv.URL+"/api/payroll/compute", body, nil)

	assert.Equal(t, http.StatusBadRequest, status)
}

// =============================================================================
// REPORTS AND SESSIONS
// =============================================================================

const harborReport = "/api/payroll/report?brand_id=demo-brand&outlet_id=harbor&from=2025-03-10&to=2025-03-12"

func TestGetReport_OvertimeHeavyScenario(t *testing.T) {
	// GIVEN: the overtime scenario
	srv, _ := newTestServer(t)
	loadScenario(t, srv, "overtime_heavy")

	// WHEN: building the report over its three days
	var resp ReportResponse
	status := doJSON(t, http.MethodGet, srv.URL+harborReport, nil, &resp)

	// THEN:
	//   chen   3 x (8h x 20 + 3.5h x 30)   = 795.00
	//   carlos 3 x (4h + 5h) x 18          = 486.00
	//   bo     3 x (8h x 14 + 1.5h x 21)   = 430.50
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, resp.SessionID)

	totals := resp.Report.Totals
	assert.Equal(t, "1711.50", totals.TotalPayroll)
	assert.Equal(t, 90.0, totals.TotalHours)
	assert.Equal(t, 12, totals.TotalShifts)
	assert.Equal(t, 3, totals.DistinctStaff)
	assert.Equal(t, 30.0, totals.AverageHoursPerEmployee)
	assert.Equal(t, 0, totals.Warnings)

	pay := map[string]string{}
	for _, row := range resp.Report.Payroll {
		pay[row.StaffID] = row.TotalPay
	}
	assert.Equal(t, map[string]string{"bo": "430.50", "carlos": "486.00", "chen": "795.00"}, pay)

	// AND: the bar shift past midnight stays on its open day
	require.Len(t, resp.Report.Timeline, 3)
	assert.Equal(t, "2025-03-10", resp.Report.Timeline[0].Day)
	assert.Equal(t, "570.50", resp.Report.Timeline[0].Payroll)
}

func TestSession_OverrideThenRevert(t *testing.T) {
	srv, _ := newTestServer(t)
	loadScenario(t, srv, "overtime_heavy")

	var rep ReportResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+harborReport, nil, &rep))
	sessionURL := srv.URL + "/api/payroll/sessions/" + rep.SessionID

	// WHEN: raising carlos to 20/hr
	var overridden ReportResponse
	status := doJSON(t, http.MethodPut, sessionURL+"/overrides",
		`{"staff_id": "carlos", "rate_type": "regular", "value": 20}`, &overridden)

	// THEN: 27h x 20 replaces 27h x 18
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, rep.SessionID, overridden.SessionID)
	assert.Equal(t, "1765.50", overridden.Report.Totals.TotalPayroll)

	// WHEN: reverting
	var reverted ReportResponse
	status = doJSON(t, http.MethodDelete, sessionURL+"/overrides/carlos", nil, &reverted)

	// THEN: back to the stored schedule
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1711.50", reverted.Report.Totals.TotalPayroll)

	// AND: the stored rates were never touched
	var rates factory.ScheduleJSON
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/api/rates", nil, &rates))
	assert.NotContains(t, rates.Overrides, "carlos")
}

func TestSession_ClearRestoresStoredOverride(t *testing.T) {
	// GIVEN: chen's stored override of 20
	srv, _ := newTestServer(t)
	loadScenario(t, srv, "overtime_heavy")

	var rep ReportResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+harborReport, nil, &rep))
	sessionURL := srv.URL + "/api/payroll/sessions/" + rep.SessionID

	// WHEN: overriding then clearing chen
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPut, sessionURL+"/overrides",
		`{"staff_id": "chen", "rate_type": "regular", "value": "25"}`, nil))
	var cleared ReportResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodDelete, sessionURL+"/overrides/chen", nil, &cleared))

	// THEN: the stored override applies again
	assert.Equal(t, "1711.50", cleared.Report.Totals.TotalPayroll)
}

func TestSession_Errors(t *testing.T) {
	srv, _ := newTestServer(t)
	loadScenario(t, srv, "overtime_heavy")

	var rep ReportResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+harborReport, nil, &rep))
	sessionURL := srv.URL + "/api/payroll/sessions/" + rep.SessionID

	t.Run("negative override", func(t *testing.T) {
		var resp ErrorResponse
		status := doJSON(t, http.MethodPut, sessionURL+"/overrides",
			`{"staff_id": "chen", "rate_type": "regular", "value": -5}`, &resp)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "invalid_configuration", resp.Code)
	})

	t.Run("unknown rate type", func(t *testing.T) {
		var resp ErrorResponse
		status := doJSON(t, http.MethodPut, sessionURL+"/overrides",
			`{"staff_id": "chen", "rate_type": "weekend", "value": 5}`, &resp)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "invalid_configuration", resp.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		var resp ErrorResponse
		status := doJSON(t, http.MethodPut, srv.URL+"/api/payroll/sessions/nope/overrides",
			`{"staff_id": "chen", "rate_type": "regular", "value": 5}`, &resp)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "session_not_found", resp.Code)
	})
}

func TestGetTopPerformers(t *testing.T) {
	srv, _ := newTestServer(t)
	loadScenario(t, srv, "overtime_heavy")

	var rep ReportResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+harborReport, nil, &rep))

	var top []StaffDTO
	status := doJSON(t, http.MethodGet, srv.URL+"/api/payroll/sessions/"+rep.SessionID+"/top?n=2", nil, &top)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, top, 2)
	assert.Equal(t, "chen", top[0].StaffID)
	assert.Equal(t, 34.5, top[0].TotalHours)
	assert.Equal(t, "bo", top[1].StaffID)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/payroll/sessions/"+rep.SessionID+"/top?n=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetReport_MalformedRecordsScenario(t *testing.T) {
	srv, _ := newTestServer(t)
	loadScenario(t, srv, "malformed_records")

	var resp ReportResponse
	status := doJSON(t, http.MethodGet,
		srv.URL+"/api/payroll/report?brand_id=demo-brand&outlet_id=airport&from=2025-03-10&to=2025-03-10", nil, &resp)
	require.Equal(t, http.StatusOK, status)

	// THEN: chen 8h x 18, maya 8h x 22 (breaks ignored), unknown 4h x 15
	totals := resp.Report.Totals
	assert.Equal(t, "380.00", totals.TotalPayroll)
	assert.Equal(t, 3, totals.TotalShifts)
	assert.Equal(t, 3, totals.DistinctStaff)
	assert.Equal(t, 1, totals.OpenShifts)
	assert.Equal(t, 3, totals.Warnings)
	assert.Equal(t, "67.00", totals.TotalRevenue)

	codes := map[string]string{}
	for _, w := range resp.Report.Timeline[0].Warnings {
		codes[w.StaffID] = w.Code
	}
	assert.Equal(t, map[string]string{
		"sam":   "open_shift",
		"sofia": "invalid_punch_window",
		"maya":  "invalid_breaks",
	}, codes)
}

func TestGetReport_InvalidScope(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []string{
		"/api/payroll/report",
		"/api/payroll/report?from=2025-03-10",
		"/api/payroll/report?from=2025-03-12&to=2025-03-10",
		"/api/payroll/report?from=10-03-2025&to=2025-03-12",
		"/api/payroll/report?from=2025-03-10&to=2025-03-12&source=carrier-pigeon",
		"/api/payroll/report?from=2025-03-10&to=2025-03-12&source=provider",
		"/api/payroll/report?from=2025-01-01&to=2025-12-31",
		"/api/payroll/report?from=0001-01-01&to=9999-12-31",
	}
	for _, path := range cases {
		assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodGet, srv.URL+path, nil, nil), path)
	}
}

func TestGetReport_LongestRangeAccepted(t *testing.T) {
	srv, _ := newTestServer(t)

	// 92 days inclusive
	status := doJSON(t, http.MethodGet, srv.URL+"/api/payroll/report?from=2025-01-01&to=2025-04-02", nil, nil)
	assert.Equal(t, http.StatusOK, status)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/payroll/report?from=2025-01-01&to=2025-04-03", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetReport_ProviderNeedsOutlet(t *testing.T) {
	// GIVEN: a configured provider
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer upstream.Close()
	client := provider.NewClient(upstream.URL, "t", provider.WithLogger(zap.NewNop()))
	srv, _ := newTestServer(t, WithProvider(client))

	for _, path := range []string{
		"/api/payroll/report?brand_id=b1&from=2025-03-10&to=2025-03-10&source=provider",
		"/api/payroll/report?outlet_id=o1&from=2025-03-10&to=2025-03-10&source=provider",
	} {
		// WHEN: the brand or outlet is missing
		var resp ErrorResponse
		status := doJSON(t, http.MethodGet, srv.URL+path, nil, &resp)

		// THEN: 400 before any upstream call
		assert.Equal(t, http.StatusBadRequest, status, path)
	}
	assert.Zero(t, calls.Load())
}

func TestGetReport_ProviderUnauthorized(t *testing.T) {
	// GIVEN: an upstream provider rejecting our token
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer upstream.Close()
	client := provider.NewClient(upstream.URL, "expired", provider.WithLogger(zap.NewNop()))
	srv, _ := newTestServer(t, WithProvider(client))

	// WHEN: reporting from the provider
	var resp ErrorResponse
	status := doJSON(t, http.MethodGet,
		srv.URL+"/api/payroll/report?brand_id=b1&outlet_id=o1&from=2025-03-10&to=2025-03-11&source=provider", nil, &resp)

	// THEN: 502 with the unauthorized code
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "unauthorized", resp.Code)
}

func TestGetReport_ProviderFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()
	client := provider.NewClient(upstream.URL, "t", provider.WithLogger(zap.NewNop()))
	srv, _ := newTestServer(t, WithProvider(client))

	var resp ErrorResponse
	status := doJSON(t, http.MethodGet,
		srv.URL+"/api/payroll/report?brand_id=b1&outlet_id=o1&from=2025-03-10&to=2025-03-10&source=provider", nil, &resp)

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "data_fetch", resp.Code)
}

func TestGetReport_FromProvider(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		var day provider.DayReport
		assert.NoError(t, json.Unmarshal([]byte(workedExampleDay), &day))
		json.NewEncoder(w).Encode(day)
	}))
	defer upstream.Close()
	client := provider.NewClient(upstream.URL, "t", provider.WithLogger(zap.NewNop()))
	srv, _ := newTestServer(t, WithProvider(client))

	var resp ReportResponse
	status := doJSON(t, http.MethodGet,
		srv.URL+"/api/payroll/report?brand_id=b1&outlet_id=o1&from=2025-03-10&to=2025-03-10&source=provider", nil, &resp)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "131.25", resp.Report.Totals.TotalPayroll)
}

// =============================================================================
// IMPORT, RATES, RUNS
// =============================================================================

func TestImportShiftDay_ThenReport(t *testing.T) {
	srv, _ := newTestServer(t)

	// WHEN: importing one provider day
	var imp ImportResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/shifts/import?brand_id=b1&outlet_id=o1", workedExampleDay, &imp)

	// THEN: it is keyed by its open day
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, ImportResponse{BrandID: "b1", OutletID: "o1", Day: "2025-03-10", Punches: 1, Orders: 0}, imp)

	// AND: a stored report picks it up
	var rep ReportResponse
	status = doJSON(t, http.MethodGet, srv.URL+"/api/payroll/report?brand_id=b1&outlet_id=o1&from=2025-03-10&to=2025-03-10", nil, &rep)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "131.25", rep.Report.Totals.TotalPayroll)
}

func TestImportShiftDay_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest,
		doJSON(t, http.MethodPost, srv.URL+"/api/shifts/import", workedExampleDay, nil))
	assert.Equal(t, http.StatusBadRequest,
		doJSON(t, http.MethodPost, srv.URL+"/api/shifts/import?brand_id=b1&outlet_id=o1", `{"staffPunchIns": []}`, nil))
}

func TestRates_ReplaceAndOverrides(t *testing.T) {
	srv, _ := newTestServer(t)

	// WHEN: replacing roles
	var rates factory.ScheduleJSON
	status := doJSON(t, http.MethodPut, srv.URL+"/api/rates", `{"roles": {"cook": {"regular": "18"}}}`, &rates)

	// THEN: overtime defaults to 1.5x
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, rates.Roles, "cook")
	assert.Equal(t, "18", rates.Roles["cook"].Regular.String())
	require.NotNil(t, rates.Roles["cook"].Overtime)
	assert.Equal(t, "27", rates.Roles["cook"].Overtime.String())

	// WHEN: saving an override
	status = doJSON(t, http.MethodPut, srv.URL+"/api/rates/overrides/c1", `{"regular": "20"}`, &rates)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, rates.Overrides, "c1")
	assert.Equal(t, "20", rates.Overrides["c1"].Regular.String())
	assert.Nil(t, rates.Overrides["c1"].Overtime)

	// AND: negative values are rejected
	var errResp ErrorResponse
	status = doJSON(t, http.MethodPut, srv.URL+"/api/rates/overrides/c1", `{"overtime": "-2"}`, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_configuration", errResp.Code)

	// WHEN: deleting it
	var after factory.ScheduleJSON
	status = doJSON(t, http.MethodDelete, srv.URL+"/api/rates/overrides/c1", nil, &after)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, after.Overrides, "c1")
	assert.Contains(t, after.Roles, "cook")
}

func TestReportRuns_RecordedPerReport(t *testing.T) {
	srv, _ := newTestServer(t)
	loadScenario(t, srv, "overtime_heavy")

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+harborReport, nil, nil))

	var runs []ReportRunDTO
	status := doJSON(t, http.MethodGet, srv.URL+"/api/report-runs", nil, &runs)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, runs, 1)
	assert.Equal(t, "harbor", runs[0].OutletID)
	assert.Equal(t, "store", runs[0].Source)
	assert.Equal(t, "1711.50", runs[0].TotalPayroll)
	assert.Equal(t, 12, runs[0].TotalShifts)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodGet, srv.URL+"/api/report-runs?limit=x", nil, nil))
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_ListLoadCurrentReset(t *testing.T) {
	srv, h := newTestServer(t)

	var list []ScenarioDTO
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/api/scenarios", nil, &list))
	assert.Len(t, list, 3)

	loadScenario(t, srv, "single_outlet_week")

	var current ScenarioDTO
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/api/scenarios/current", nil, &current))
	assert.Equal(t, "single_outlet_week", current.ID)

	n, err := h.Store.ShiftDayCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	// Loading another scenario replaces the first.
	loadScenario(t, srv, "malformed_records")
	n, err = h.Store.ShiftDayCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/reset", nil, nil))
	n, err = h.Store.ShiftDayCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.Equal(t, http.StatusBadRequest,
		doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load", `{"scenario_id": "nope"}`, nil))
}

func TestScenario_SingleOutletWeek(t *testing.T) {
	srv, _ := newTestServer(t)
	loadScenario(t, srv, "single_outlet_week")

	var resp ReportResponse
	status := doJSON(t, http.MethodGet,
		srv.URL+"/api/payroll/report?brand_id=demo-brand&outlet_id=central&from=2025-03-10&to=2025-03-16", nil, &resp)
	require.Equal(t, http.StatusOK, status)

	// maya 5 + chen 7 + sam 7 + carlos 5 + sofia 4
	assert.Equal(t, 28, resp.Report.Totals.TotalShifts)
	assert.Equal(t, 5, resp.Report.Totals.DistinctStaff)
	assert.Len(t, resp.Report.Timeline, 7)
	assert.Equal(t, 0, resp.Report.Totals.Warnings)
}
