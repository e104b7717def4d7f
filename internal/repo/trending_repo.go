// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the trending result-set cache: one row
// per (topic tag, ranking mode) key, replaced wholesale on refresh.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/demandei/mediumsync/internal/domain"
)

// GetTrendingSet fetches the cached result set for key. Expired rows are
// deleted on read and reported as a miss, same as GetCachedArticle.
func GetTrendingSet(ctx context.Context, db *gorm.DB, key string, now time.Time) (*domain.TrendingSet, error) {
	var t domain.TrendingSet
	err := db.WithContext(ctx).Where("cache_key = ?", key).First(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if t.Expired(now) {
		if err := db.WithContext(ctx).Delete(&domain.TrendingSet{}, t.ID).Error; err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &t, nil
}

// PutTrendingSet replaces the row for key wholesale: any previous row is
// deleted and a fresh one inserted, never updated in place. articlesJSON is
// the denormalized summary list produced by the service layer.
func PutTrendingSet(ctx context.Context, db *gorm.DB, key, articlesJSON string, ttl time.Duration, now time.Time) (*domain.TrendingSet, error) {
	if err := db.WithContext(ctx).
		Where("cache_key = ?", key).
		Delete(&domain.TrendingSet{}).Error; err != nil {
		return nil, err
	}
	row := domain.TrendingSet{
		CacheKey:  key,
		Articles:  articlesJSON,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ClearExpiredTrending deletes every expired trending row and returns how
// many were removed.
func ClearExpiredTrending(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.TrendingSet{})
	return res.RowsAffected, res.Error
}
