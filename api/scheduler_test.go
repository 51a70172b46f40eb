package api

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/outlet-payroll/payroll"
	"github.com/warp/outlet-payroll/store/memory"
)

type fakeFetcher struct {
	mu     sync.Mutex
	scopes []payroll.Scope
	fail   map[string]error
	// openAt places a day's shift; nil opens at 08:00 UTC on the day.
	openAt func(day time.Time) time.Time
}

func (f *fakeFetcher) FetchRange(ctx context.Context, scope payroll.Scope) ([]payroll.ShiftContext, error) {
	f.mu.Lock()
	f.scopes = append(f.scopes, scope)
	f.mu.Unlock()

	if err := f.fail[scope.OutletID]; err != nil {
		return nil, err
	}
	days, err := payroll.NewZone(time.UTC).Days(scope.From, scope.To)
	if err != nil {
		return nil, err
	}
	out := make([]payroll.ShiftContext, len(days))
	for i, d := range days {
		open, _ := time.Parse(payroll.DayLayout, d)
		// Brand and outlet are left empty; the scheduler fills them in.
		if f.openAt != nil {
			out[i] = payroll.ShiftContext{OpenTime: f.openAt(open)}
			continue
		}
		out[i] = payroll.ShiftContext{OpenTime: open.Add(8 * time.Hour)}
	}
	return out, nil
}

func newTestScheduler(fetcher RangeFetcher, sink ShiftSink, targets ...SyncTarget) *SyncScheduler {
	s := NewSyncScheduler(fetcher, sink, targets, zap.NewNop())
	s.LookbackDays = 3
	s.Now = func() time.Time { return time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC) }
	return s
}

func TestSyncScheduler_Window(t *testing.T) {
	s := newTestScheduler(&fakeFetcher{}, memory.NewMemory())

	from, to := s.Window()
	assert.Equal(t, "2025-03-10", from)
	assert.Equal(t, "2025-03-12", to)

	s.LookbackDays = 0
	from, to = s.Window()
	assert.Equal(t, "2025-03-12", from)
	assert.Equal(t, "2025-03-12", to)
}

func TestSyncScheduler_RunNowStoresEveryDay(t *testing.T) {
	// GIVEN: two outlets
	fetcher := &fakeFetcher{}
	sink := memory.NewMemory()
	s := newTestScheduler(fetcher, sink,
		SyncTarget{BrandID: "b1", OutletID: "o1"},
		SyncTarget{BrandID: "b1", OutletID: "o2"},
	)

	// WHEN: running once
	res, err := s.RunNow(context.Background())

	// THEN: three days per outlet are stored under their outlet
	require.NoError(t, err)
	assert.Equal(t, SyncResult{From: "2025-03-10", To: "2025-03-12", Outlets: 2, Days: 6}, res)

	shifts, err := sink.LoadShifts(context.Background(), payroll.Scope{BrandID: "b1", OutletID: "o2", From: "2025-03-10", To: "2025-03-12"})
	require.NoError(t, err)
	require.Len(t, shifts, 3)
	assert.Equal(t, "o2", shifts[0].OutletID)
	assert.Len(t, fetcher.scopes, 2)
}

func TestSyncScheduler_StoresUnderShiftOpenDay(t *testing.T) {
	// GIVEN: a provider whose reports open at 22:00 the evening before the requested date
	fetcher := &fakeFetcher{openAt: func(day time.Time) time.Time { return day.Add(-2 * time.Hour) }}
	sink := memory.NewMemory()
	s := newTestScheduler(fetcher, sink, SyncTarget{BrandID: "b1", OutletID: "o1"})

	// WHEN: syncing 2025-03-10..2025-03-12
	res, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Days)

	// THEN: days are keyed by open time, the same way an import keys them
	ctx := context.Background()
	first, err := sink.LoadShifts(ctx, payroll.Scope{OutletID: "o1", From: "2025-03-09", To: "2025-03-09"})
	require.NoError(t, err)
	assert.Len(t, first, 1)

	last, err := sink.LoadShifts(ctx, payroll.Scope{OutletID: "o1", From: "2025-03-12", To: "2025-03-12"})
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestSyncScheduler_UndatedReportKeepsRequestedDay(t *testing.T) {
	// GIVEN: reports with no open time and no punches
	fetcher := &fakeFetcher{openAt: func(time.Time) time.Time { return time.Time{} }}
	sink := memory.NewMemory()
	s := newTestScheduler(fetcher, sink, SyncTarget{BrandID: "b1", OutletID: "o1"})

	_, err := s.RunNow(context.Background())
	require.NoError(t, err)

	// THEN: each report is stored under the date it was requested for
	shifts, err := sink.LoadShifts(context.Background(), payroll.Scope{OutletID: "o1", From: "2025-03-10", To: "2025-03-12"})
	require.NoError(t, err)
	assert.Len(t, shifts, 3)
}

func TestSyncScheduler_OneOutletFailing(t *testing.T) {
	// GIVEN: one outlet whose provider call fails
	boom := &payroll.DataFetchError{Source: "b1/o2", Status: 500, Err: errors.New("boom")}
	sink := memory.NewMemory()
	s := newTestScheduler(&fakeFetcher{fail: map[string]error{"o2": boom}}, sink,
		SyncTarget{BrandID: "b1", OutletID: "o1"},
		SyncTarget{BrandID: "b1", OutletID: "o2"},
	)

	res, err := s.RunNow(context.Background())

	// THEN: the healthy outlet is still stored and the failure is reported
	require.Error(t, err)
	assert.True(t, payroll.IsFetchError(err))
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 3, res.Days)

	shifts, err := sink.LoadShifts(context.Background(), payroll.Scope{OutletID: "o1"})
	require.NoError(t, err)
	assert.Len(t, shifts, 3)
}

func TestSyncScheduler_DisabledDoesNotStart(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := newTestScheduler(fetcher, memory.NewMemory(), SyncTarget{BrandID: "b1", OutletID: "o1"})
	s.Enabled = false

	s.Start()
	s.Stop()

	assert.Empty(t, fetcher.scopes)
}

func TestSyncScheduler_StartRunsImmediately(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := newTestScheduler(fetcher, memory.NewMemory(), SyncTarget{BrandID: "b1", OutletID: "o1"})
	s.Interval = time.Hour

	s.Start()
	assert.Eventually(t, func() bool {
		fetcher.mu.Lock()
		defer fetcher.mu.Unlock()
		return len(fetcher.scopes) == 1
	}, time.Second, 10*time.Millisecond)
	s.Stop()
}
