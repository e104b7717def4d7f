// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the article
// cache.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. TTL policy (what counts as expired, how
// callers react to misses) lives in the service layer; the two eviction
// strategies the store offers are explicit methods:
//
//   - GetCachedArticle performs lazy, read-triggered eviction of the single
//     row it touches.
//   - ListCachedArticles and ClearExpiredArticles perform a full sweep.
//
// Error semantics:
//   - When a row is not found, functions return (nil, nil) — a cache miss is
//     not an error.
//   - On DB errors the raw gorm error is propagated; the service layer
//     decides whether to swallow it (cache reads) or surface it.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/demandei/mediumsync/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetCachedArticle fetches the cache row for mediumID. If the row exists but
// its TTL elapsed, the row is deleted and (nil, nil) is returned — point
// lookups self-heal opportunistically.
func GetCachedArticle(ctx context.Context, db *gorm.DB, mediumID string, now time.Time) (*domain.CachedArticle, error) {
	var a domain.CachedArticle
	err := db.WithContext(ctx).Where("medium_id = ?", mediumID).First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if a.Expired(now) {
		if err := db.WithContext(ctx).Delete(&domain.CachedArticle{}, a.ID).Error; err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &a, nil
}

// SaveCachedArticle upserts the cache row for article.MediumID.
//
// Behavior:
//   - Live row exists: only the translation fields are merged in (when
//     translated is non-nil); the original artifact is left untouched.
//   - Expired row exists: it is deleted first and a fresh row inserted.
//   - No row: a fresh row is inserted.
//
// Fresh rows carry ExpiresAt = now + ttl and the image URL list passed by
// the caller (extracted from the body by the content pipeline).
func SaveCachedArticle(ctx context.Context, db *gorm.DB, article *domain.CachedArticle, translated *domain.Translation, ttl time.Duration, now time.Time) (*domain.CachedArticle, error) {
	var existing domain.CachedArticle
	err := db.WithContext(ctx).Where("medium_id = ?", article.MediumID).First(&existing).Error
	switch {
	case err == nil && !existing.Expired(now):
		if translated != nil {
			updates := map[string]any{
				"translated_title":    translated.Title,
				"translated_subtitle": translated.Subtitle,
				"translated_content":  translated.Content,
				"is_translated":       true,
			}
			if err := db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
				return nil, err
			}
		}
		return GetCachedArticle(ctx, db, article.MediumID, now)
	case err == nil:
		// Stale row: authoritative data is whatever the caller fetched now.
		if err := db.WithContext(ctx).Delete(&domain.CachedArticle{}, existing.ID).Error; err != nil {
			return nil, err
		}
	case err != gorm.ErrRecordNotFound:
		return nil, err
	}

	row := *article
	row.ID = 0
	row.CachedAt = now
	row.ExpiresAt = now.Add(ttl)
	if translated != nil {
		row.TranslatedTitle = translated.Title
		row.TranslatedSubtitle = translated.Subtitle
		row.TranslatedContent = translated.Content
		row.IsTranslated = true
	}
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListCachedArticles sweeps all expired rows first, then returns the
// remaining rows ordered newest-cached-first.
func ListCachedArticles(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.CachedArticle, error) {
	if err := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.CachedArticle{}).Error; err != nil {
		return nil, err
	}
	var out []domain.CachedArticle
	err := db.WithContext(ctx).Order("cached_at desc").Find(&out).Error
	return out, err
}

// ClearExpiredArticles deletes every expired cache row and returns how many
// were removed.
func ClearExpiredArticles(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.CachedArticle{})
	return res.RowsAffected, res.Error
}

// ClearTranslation resets the translation fields of one article (mediumID
// non-empty) or of every cached article (mediumID empty), forcing a
// retranslation on next use.
func ClearTranslation(ctx context.Context, db *gorm.DB, mediumID string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.CachedArticle{})
	if mediumID != "" {
		q = q.Where("medium_id = ?", mediumID)
	} else {
		q = q.Where("1 = 1")
	}
	res := q.Updates(map[string]any{
		"translated_title":    "",
		"translated_subtitle": "",
		"translated_content":  "",
		"is_translated":       false,
	})
	return res.RowsAffected, res.Error
}
