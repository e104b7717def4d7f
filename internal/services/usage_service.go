// Package services – UsageService
//
// This file implements the UsageService, the ledger in front of the paid
// source API. Every billable call increments the current month's counter and
// the sync gate refuses to start a run that could not leave a safety margin
// of unspent requests. Usage persistence failures are logged and absorbed: a
// broken ledger must never take the content pipeline down with it, but the
// gate fails closed so a run never starts blind.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/demandei/mediumsync/internal/config"
	"github.com/demandei/mediumsync/internal/domain"
	"github.com/demandei/mediumsync/internal/repo"
)

// safetyMargin is how many requests must stay unspent after a gated
// operation. It absorbs the per-article detail fetches a search triggers.
const safetyMargin = 100

// usage thresholds for dashboard warning levels.
const (
	warningThreshold  = 2000
	criticalThreshold = 2400
)

// historyMonths caps how far back Stats reaches.
const historyMonths = 3

// UsageService tracks billable source-API consumption per calendar month.
// It satisfies medium.UsageRecorder.
type UsageService struct {
	DB       *gorm.DB
	Limit    int
	Baseline int

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// NewUsageService constructs a UsageService from config.
func NewUsageService(db *gorm.DB, cfg config.UsageConfig) *UsageService {
	return &UsageService{
		DB:       db,
		Limit:    cfg.MonthlyLimit,
		Baseline: cfg.Baseline,
		Now:      time.Now,
	}
}

// Current returns the current month's ledger row, creating a seeded one when
// absent.
func (s *UsageService) Current(ctx context.Context) (*domain.APIUsage, error) {
	return repo.GetOrCreateUsage(ctx, s.DB, repo.MonthKey(s.Now()), s.Baseline, s.Limit)
}

// RecordUsage adds n billable requests to the current month. Persistence
// errors are logged and swallowed.
func (s *UsageService) RecordUsage(ctx context.Context, n int) {
	u, err := repo.IncrementUsage(ctx, s.DB, repo.MonthKey(s.Now()), n, s.Baseline, s.Limit)
	if err != nil {
		log.Error().Err(err).Int("n", n).Msg("usage increment failed")
		return
	}
	log.Debug().Int("used", u.RequestsUsed).Int("limit", u.RequestsLimit).Msg("API usage recorded")
}

// CanMakeRequest reports whether n more billable requests fit within the
// monthly budget while keeping the safety margin unspent. Ledger read
// failures gate closed.
func (s *UsageService) CanMakeRequest(ctx context.Context, n int) bool {
	u, err := s.Current(ctx)
	if err != nil {
		log.Error().Err(err).Msg("usage lookup failed, refusing request")
		return false
	}
	return u.Remaining() > n+safetyMargin
}

// Stats assembles the dashboard projection: current month, daily average,
// a linear 30-day projection, and recent history with warning flags.
func (s *UsageService) Stats(ctx context.Context) (*domain.UsageStats, error) {
	now := s.Now()
	current, err := repo.GetOrCreateUsage(ctx, s.DB, repo.MonthKey(now), s.Baseline, s.Limit)
	if err != nil {
		return nil, err
	}
	history, err := repo.UsageHistory(ctx, s.DB, current.Month, historyMonths)
	if err != nil {
		return nil, err
	}

	day := now.UTC().Day()
	avg := float64(current.RequestsUsed) / float64(day)

	return &domain.UsageStats{
		CurrentMonth:     current,
		DailyAverage:     avg,
		ProjectedMonthly: avg * 30,
		History:          history,
		Warning:          current.RequestsUsed > warningThreshold,
		Critical:         current.RequestsUsed > criticalThreshold,
		AsOf:             now,
	}, nil
}
