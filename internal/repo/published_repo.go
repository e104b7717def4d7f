// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for published
// articles — the dedup ledger that prevents the same source article from
// being posted twice.
//
// Unlike the cache repositories, write failures here are never swallowed
// upstream: the publish-idempotence invariant depends on these rows, so a
// failed save must be visible to the orchestrator.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/demandei/mediumsync/internal/domain"
)

// PublishedExists reports whether mediumID was already republished.
func PublishedExists(ctx context.Context, db *gorm.DB, mediumID string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.PublishedArticle{}).
		Where("medium_id = ?", mediumID).
		Count(&count).Error
	return count > 0, err
}

// SavePublishedArticle records a publish result. If a row for the article
// already exists the row is updated in place (republish), otherwise a new
// row is created — the MediumID unique index guarantees at most one row per
// source article either way.
func SavePublishedArticle(ctx context.Context, db *gorm.DB, p *domain.PublishedArticle) (*domain.PublishedArticle, error) {
	var existing domain.PublishedArticle
	err := db.WithContext(ctx).Where("medium_id = ?", p.MediumID).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]any{
			"title":         p.Title,
			"author":        p.Author,
			"source_url":    p.SourceURL,
			"wordpress_id":  p.WordPressID,
			"wordpress_url": p.WordPressURL,
			"status":        p.Status,
			"synced_at":     time.Now().UTC(),
		}
		if err := db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case err == gorm.ErrRecordNotFound:
		p.SyncedAt = time.Now().UTC()
		if err := db.WithContext(ctx).Create(p).Error; err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, err
	}
}

// ListRecentPublished returns the most recently created published rows.
func ListRecentPublished(ctx context.Context, db *gorm.DB, limit int) ([]domain.PublishedArticle, error) {
	var out []domain.PublishedArticle
	err := db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountPublished returns the total number of published rows.
func CountPublished(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.PublishedArticle{}).Count(&total).Error
	return total, err
}
