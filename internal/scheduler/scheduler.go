// Package scheduler keeps the cached dataset warm: a cron job refreshes the
// quotes shortly before the cache window lapses, so interactive requests
// almost always hit a fresh cache.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"DividendDash/internal/analytics"
	"DividendDash/internal/cache"
	"DividendDash/internal/quote"
	"DividendDash/internal/recorder"
)

// Scheduler manages the background refresh cron task.
type Scheduler struct {
	Cron     *cron.Cron
	Fetcher  *quote.Fetcher
	Store    *cache.Store
	Recorder recorder.Recorder

	Tickers []string
	Opts    quote.FetchOptions
	// Margin is how close to staleness the cache may get before a tick
	// triggers a refresh.
	Margin time.Duration

	ctx context.Context
	log zerolog.Logger
}

// New creates a scheduler. store may be nil, in which case every tick
// refreshes.
func New(ctx context.Context, f *quote.Fetcher, store *cache.Store, rec recorder.Recorder,
	tickers []string, opts quote.FetchOptions, margin time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Fetcher:  f,
		Store:    store,
		Recorder: rec,
		Tickers:  tickers,
		Opts:     opts,
		Margin:   margin,
		ctx:      ctx,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the refresh task under the given cron spec (with seconds).
func (s *Scheduler) Register(cronSpec string) error {
	if _, err := s.Cron.AddFunc(cronSpec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the refresh task immediately (manual trigger / warm-up).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	if !s.needsRefresh() {
		return
	}
	s.log.Info().Int("tickers", len(s.Tickers)).Msg("refreshing quote cache")

	opts := s.Opts
	opts.ForceRefresh = true

	started := time.Now()
	records, err := s.Fetcher.Fetch(s.ctx, s.Tickers, opts)
	if err != nil {
		s.log.Error().Err(err).Msg("background refresh failed")
		return
	}

	stats := analytics.Compute(records)
	if err := s.Recorder.RecordFetch(&recorder.FetchRun{
		Source:    s.Fetcher.Source.Name(),
		Requested: len(s.Tickers),
		Returned:  len(records),
		AvgYield:  stats.AvgYield,
		AvgPrice:  stats.AvgPrice,
		Elapsed:   time.Since(started),
	}); err != nil {
		s.log.Error().Err(err).Msg("record fetch run")
	}
}

// needsRefresh reports whether the cache is absent, stale, or within the
// refresh margin of going stale.
func (s *Scheduler) needsRefresh() bool {
	if s.Store == nil {
		return true
	}
	remaining, ok := s.Store.TimeRemaining(cache.Fingerprint(s.Tickers))
	if !ok {
		return true
	}
	return remaining <= s.Margin
}
