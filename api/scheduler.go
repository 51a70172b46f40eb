/*
scheduler.go - Background shift report sync

PURPOSE:
  Periodically pulls the last few operating days of every configured outlet
  from the upstream shift report provider and stores them, so reports can be
  built from the local store without waiting on the provider.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Re-fetches the whole lookback window each run; stored days are replaced,
    so late punch corrections upstream are picked up
  - Outlets sync concurrently; one failing outlet does not stop the others
  - Errors are logged, never fatal

USAGE:
  scheduler := NewSyncScheduler(client, store, targets)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - provider/client.go: FetchRange
  - handlers.go: GetReport with source=provider (on-demand fetch)
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warp/outlet-payroll/payroll"
)

// RangeFetcher fetches consecutive operating days, in day order.
type RangeFetcher interface {
	FetchRange(ctx context.Context, scope payroll.Scope) ([]payroll.ShiftContext, error)
}

// ShiftSink stores one operating day under its day key.
type ShiftSink interface {
	SaveShiftDay(ctx context.Context, day string, shift payroll.ShiftContext) error
}

// SyncTarget is one outlet to keep in sync.
type SyncTarget struct {
	BrandID  string
	OutletID string
}

// SyncResult summarizes one run.
type SyncResult struct {
	From    string
	To      string
	Outlets int
	Days    int
	Failed  int
}

// SyncScheduler handles periodic provider sync.
type SyncScheduler struct {
	Fetcher      RangeFetcher
	Sink         ShiftSink
	Targets      []SyncTarget
	Interval     time.Duration
	LookbackDays int
	Zone         payroll.Zone
	Concurrency  int
	Enabled      bool

	// Now is the clock; tests replace it.
	Now func() time.Time

	logger *zap.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSyncScheduler creates a new scheduler with hourly runs over the last
// seven days.
func NewSyncScheduler(fetcher RangeFetcher, sink ShiftSink, targets []SyncTarget, logger ...*zap.Logger) *SyncScheduler {
	l := zap.L().Named("api.sync")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &SyncScheduler{
		Fetcher:      fetcher,
		Sink:         sink,
		Targets:      targets,
		Interval:     time.Hour,
		LookbackDays: 7,
		Zone:         payroll.NewZone(time.UTC),
		Concurrency:  2,
		Enabled:      true,
		Now:          time.Now,
		logger:       l,
	}
}

// Start begins the scheduler.
func (s *SyncScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.logger.Info("sync disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.Interval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run()

	s.logger.Info("sync started",
		zap.Duration("interval", s.Interval),
		zap.Int("outlets", len(s.Targets)),
		zap.Int("lookback_days", s.LookbackDays))
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.logger.Info("sync stopped")
	}
}

func (s *SyncScheduler) run() {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stop
		cancel()
	}()

	// Run immediately on start
	s.RunNow(ctx)

	for {
		select {
		case <-s.ticker.C:
			s.RunNow(ctx)
		case <-s.stop:
			return
		}
	}
}

// Window returns the inclusive day range a run covers.
func (s *SyncScheduler) Window() (from, to string) {
	lookback := s.LookbackDays
	if lookback < 1 {
		lookback = 1
	}
	today := s.Zone.Normalize(s.Now())
	return today.AddDate(0, 0, -(lookback - 1)).Format(payroll.DayLayout), today.Format(payroll.DayLayout)
}

// RunNow syncs every target once. The returned error joins all outlet
// failures; successful outlets are stored regardless.
func (s *SyncScheduler) RunNow(ctx context.Context) (SyncResult, error) {
	from, to := s.Window()
	days, err := s.Zone.Days(from, to)
	if err != nil {
		return SyncResult{}, err
	}
	res := SyncResult{From: from, To: to, Outlets: len(s.Targets)}

	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	if s.Concurrency > 0 {
		g.SetLimit(s.Concurrency)
	}
	for _, t := range s.Targets {
		t := t
		g.Go(func() error {
			n, err := s.syncTarget(ctx, t, days)
			mu.Lock()
			defer mu.Unlock()
			res.Days += n
			if err != nil {
				res.Failed++
				errs = append(errs, err)
				s.logger.Warn("outlet sync failed",
					zap.String("brand_id", t.BrandID),
					zap.String("outlet_id", t.OutletID),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("sync run completed",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("days", res.Days),
		zap.Int("failed_outlets", res.Failed))
	return res, errors.Join(errs...)
}

func (s *SyncScheduler) syncTarget(ctx context.Context, t SyncTarget, days []string) (int, error) {
	scope := payroll.Scope{BrandID: t.BrandID, OutletID: t.OutletID, From: days[0], To: days[len(days)-1]}
	shifts, err := s.Fetcher.FetchRange(ctx, scope)
	if err != nil {
		return 0, err
	}
	if len(shifts) != len(days) {
		return 0, fmt.Errorf("sync %s/%s: got %d days, want %d", t.BrandID, t.OutletID, len(shifts), len(days))
	}

	stored := 0
	for i, shift := range shifts {
		shift.BrandID, shift.OutletID = t.BrandID, t.OutletID
		// Keyed like an imported day; the requested date only when the
		// report carries no times at all.
		day := s.Zone.ShiftDay(shift)
		if day == "" {
			day = days[i]
		}
		if err := s.Sink.SaveShiftDay(ctx, day, shift); err != nil {
			return stored, fmt.Errorf("sync %s/%s/%s: %w", t.BrandID, t.OutletID, day, err)
		}
		stored++
	}
	return stored, nil
}
