// Package schedule runs the daily sync job on a cron schedule in the
// configured timezone. The job itself checks the automation flag so pausing
// through the dashboard takes effect without touching the cron entry.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/demandei/mediumsync/internal/config"
	"github.com/demandei/mediumsync/internal/domain"
)

// SyncFunc runs one sync pass.
type SyncFunc func(ctx context.Context) (*domain.SyncResult, error)

// Scheduler owns the cron instance and the pause state.
type Scheduler struct {
	cron    *cron.Cron
	syncFn  SyncFunc
	entryID cron.EntryID

	mu     sync.Mutex
	paused bool
}

// New builds a Scheduler for a daily run at cfg.Hour:cfg.Minute in
// cfg.Timezone. An unknown timezone falls back to UTC.
func New(cfg config.ScheduleConfig, syncFn SyncFunc) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Error().Err(err).Str("timezone", cfg.Timezone).Msg("unknown timezone, using UTC")
		loc = time.UTC
	}

	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		syncFn: syncFn,
	}

	spec := fmt.Sprintf("%d %d * * *", cfg.Minute, cfg.Hour)
	id, err := s.cron.AddFunc(spec, s.runSync)
	if err != nil {
		return nil, fmt.Errorf("schedule daily sync: %w", err)
	}
	s.entryID = id

	log.Info().
		Str("at", fmt.Sprintf("%02d:%02d", cfg.Hour, cfg.Minute)).
		Str("timezone", loc.String()).
		Msg("daily sync scheduled")
	return s, nil
}

func (s *Scheduler) runSync() {
	if s.Paused() {
		log.Info().Msg("scheduled sync skipped, automation paused")
		return
	}
	log.Info().Msg("starting scheduled sync")
	res, err := s.syncFn(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("scheduled sync failed")
		return
	}
	log.Info().
		Int("found", res.Found).
		Int("synced", res.Synced).
		Int("skipped", res.Skipped).
		Msg("scheduled sync completed")
}

// Start begins dispatching jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop halts dispatching and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("scheduler stopped")
}

// Pause keeps the cron entry but makes runs no-op.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
	log.Info().Msg("daily sync paused")
}

// Resume re-enables scheduled runs.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
	log.Info().Msg("daily sync resumed")
}

// Paused reports whether scheduled runs are currently suppressed.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// NextRun returns the next scheduled fire time, zero when the scheduler is
// not running.
func (s *Scheduler) NextRun() time.Time {
	return s.cron.Entry(s.entryID).Next
}
