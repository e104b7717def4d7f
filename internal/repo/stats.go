package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/demandei/mediumsync/internal/domain"
)

// PublishedStats returns aggregate metadata for the published_articles table:
// the total number of rows and the maximum SyncedAt timestamp among them.
//
// When nothing has been published the returned count is 0 and lastSyncedAt is
// nil.
func PublishedStats(ctx context.Context, db *gorm.DB) (count int64, lastSyncedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.PublishedArticle{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest synced_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		SyncedAt time.Time
	}
	if err = q.Select("synced_at").Order("synced_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.SyncedAt, nil
}

// CacheCounts returns the number of live cached articles split into translated
// and untranslated buckets. Expired rows are excluded rather than evicted; the
// lazy sweep stays in the read paths.
func CacheCounts(ctx context.Context, db *gorm.DB, now time.Time) (domain.CacheStats, error) {
	var total, translated int64

	err := db.WithContext(ctx).Model(&domain.CachedArticle{}).
		Where("expires_at > ?", now).
		Count(&total).Error
	if err != nil {
		return domain.CacheStats{}, err
	}
	err = db.WithContext(ctx).Model(&domain.CachedArticle{}).
		Where("expires_at > ? AND is_translated = ?", now, true).
		Count(&translated).Error
	if err != nil {
		return domain.CacheStats{}, err
	}
	return domain.CacheStats{
		TotalCached:   int(total),
		Translated:    int(translated),
		NotTranslated: int(total - translated),
	}, nil
}
