package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/demandei/mediumsync/internal/config"
	"github.com/demandei/mediumsync/internal/domain"
)

func noopSync(calls *atomic.Int32) SyncFunc {
	return func(ctx context.Context) (*domain.SyncResult, error) {
		calls.Add(1)
		return &domain.SyncResult{}, nil
	}
}

func TestNewRejectsNothing(t *testing.T) {
	var calls atomic.Int32
	s, err := New(config.ScheduleConfig{Hour: 8, Minute: 30, Timezone: "America/Sao_Paulo"}, noopSync(&calls))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Paused() {
		t.Fatal("new scheduler must not start paused")
	}
}

func TestNextRunMatchesConfiguredTime(t *testing.T) {
	var calls atomic.Int32
	s, err := New(config.ScheduleConfig{Hour: 8, Minute: 30, Timezone: "America/Sao_Paulo"}, noopSync(&calls))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	defer s.Stop()

	next := s.NextRun()
	if next.IsZero() {
		t.Fatal("NextRun must be set once started")
	}
	if next.Hour() != 8 || next.Minute() != 30 {
		t.Fatalf("next run at %02d:%02d, want 08:30", next.Hour(), next.Minute())
	}
	if got := next.Location().String(); got != "America/Sao_Paulo" {
		t.Fatalf("next run location %q", got)
	}
	if !next.After(time.Now()) {
		t.Fatalf("next run %v is in the past", next)
	}
}

func TestUnknownTimezoneFallsBackToUTC(t *testing.T) {
	var calls atomic.Int32
	s, err := New(config.ScheduleConfig{Hour: 0, Minute: 0, Timezone: "Mars/Olympus"}, noopSync(&calls))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	defer s.Stop()
	if got := s.NextRun().Location().String(); got != "UTC" {
		t.Fatalf("location %q, want UTC", got)
	}
}

func TestPausedRunIsSkipped(t *testing.T) {
	var calls atomic.Int32
	s, err := New(config.ScheduleConfig{Hour: 8, Minute: 0, Timezone: "UTC"}, noopSync(&calls))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.Pause()
	s.runSync()
	if got := calls.Load(); got != 0 {
		t.Fatalf("paused run invoked sync %d times", got)
	}

	s.Resume()
	s.runSync()
	if got := calls.Load(); got != 1 {
		t.Fatalf("resumed run invoked sync %d times, want 1", got)
	}
}
