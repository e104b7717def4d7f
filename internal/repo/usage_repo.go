// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the monthly API usage ledger.
//
// Counters are keyed by calendar month ("YYYY-MM"). A month's counter is
// created lazily on first touch and seeded at a configurable baseline rather
// than zero: quota consumed before this system started observing still counts
// against the upstream limit. Rows are never deleted; they accumulate as
// history.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/demandei/mediumsync/internal/domain"
)

// MonthKey formats t as the ledger's "YYYY-MM" month identity.
func MonthKey(t time.Time) string { return t.UTC().Format("2006-01") }

// GetOrCreateUsage returns the counter for month, creating it seeded at
// baseline with the given limit when absent.
func GetOrCreateUsage(ctx context.Context, db *gorm.DB, month string, baseline, limit int) (*domain.APIUsage, error) {
	var u domain.APIUsage
	err := db.WithContext(ctx).Where("month = ?", month).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	u = domain.APIUsage{
		Month:         month,
		RequestsUsed:  baseline,
		RequestsLimit: limit,
	}
	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// IncrementUsage adds n billable requests to month's counter, creating it
// (seeded at baseline) when absent. RequestsUsed never decreases.
func IncrementUsage(ctx context.Context, db *gorm.DB, month string, n, baseline, limit int) (*domain.APIUsage, error) {
	u, err := GetOrCreateUsage(ctx, db, month, baseline, limit)
	if err != nil {
		return nil, err
	}
	res := db.WithContext(ctx).Model(u).
		Updates(map[string]any{
			"requests_used": gorm.Expr("requests_used + ?", n),
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	return GetOrCreateUsage(ctx, db, month, baseline, limit)
}

// UsageHistory returns up to limit month counters strictly before the given
// month key, most recent first. The caller surfaces the current month as its
// own snapshot, so it is not part of the history.
func UsageHistory(ctx context.Context, db *gorm.DB, before string, limit int) ([]domain.APIUsage, error) {
	var out []domain.APIUsage
	err := db.WithContext(ctx).
		Where("month < ?", before).
		Order("month desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
