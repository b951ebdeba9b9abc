/*
scheduler.go - Automated holiday sync scheduler

PURPOSE:
  Periodically pulls the public holiday feed into the store so payroll keeps
  working from stored holidays when the feed is unreachable.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Syncs once immediately on start
  - A failed sync is logged and retried on the next tick; stored holidays
    stay untouched

CONFIGURATION:
  - Interval: How often to sync (default: 24 hours)

USAGE:
  scheduler := NewHolidaySyncScheduler(feed, store, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: SyncHolidays endpoint (manual sync)
  - holiday/sync.go: Sync
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/payroll-engine/holiday"
)

// HolidaySyncScheduler copies the holiday feed into a store on an interval.
type HolidaySyncScheduler struct {
	Feed     holiday.Fetcher
	Store    holiday.Store
	Interval time.Duration
	// Timeout bounds a single sync.
	Timeout time.Duration
	Logger  *slog.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	lastMu  sync.Mutex
	lastRun time.Time
	lastErr error
}

// NewHolidaySyncScheduler creates a new scheduler.
func NewHolidaySyncScheduler(feed holiday.Fetcher, store holiday.Store, logger *slog.Logger) *HolidaySyncScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HolidaySyncScheduler{
		Feed:     feed,
		Store:    store,
		Interval: 24 * time.Hour,
		Timeout:  time.Minute,
		Logger:   logger,
	}
}

// Start begins the scheduler. Calling Start twice is a no-op.
func (s *HolidaySyncScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		return
	}
	s.ticker = time.NewTicker(s.Interval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run(s.ticker, s.stop)

	s.Logger.Info("holiday sync scheduler started", "interval", s.Interval.String())
}

// Stop stops the scheduler, cancelling a running sync, and waits for it to return.
func (s *HolidaySyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.wg.Wait()
	s.ticker = nil
	s.Logger.Info("holiday sync scheduler stopped")
}

func (s *HolidaySyncScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	// Stop cancels a download in flight instead of waiting out Timeout.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.RunNow(ctx)
	for {
		select {
		case <-ticker.C:
			s.RunNow(ctx)
		case <-stop:
			return
		}
	}
}

// RunNow performs one sync and returns how many holidays were written.
func (s *HolidaySyncScheduler) RunNow(ctx context.Context) (int, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	n, err := holiday.Sync(ctx, s.Feed, s.Store)

	s.lastMu.Lock()
	s.lastRun, s.lastErr = time.Now(), err
	s.lastMu.Unlock()

	if err != nil {
		s.Logger.Warn("holiday sync failed", "error", err, "written", n)
		return n, err
	}
	s.Logger.Info("holiday sync finished", "written", n)
	return n, nil
}

// LastRun reports when the last sync ran and how it ended.
func (s *HolidaySyncScheduler) LastRun() (time.Time, error) {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	return s.lastRun, s.lastErr
}
