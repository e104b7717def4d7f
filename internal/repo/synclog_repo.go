// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the sync audit log: exactly one row is
// written per orchestrated run, whether it succeeded or failed.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/demandei/mediumsync/internal/domain"
)

// CreateSyncLog writes the audit record for one run. The status is derived
// from the error text: any recorded errors mark the run as failed.
func CreateSyncLog(ctx context.Context, db *gorm.DB, found, synced, skipped int, errText string) (*domain.SyncLog, error) {
	status := domain.SyncStatusSuccess
	if errText != "" {
		status = domain.SyncStatusError
	}
	l := &domain.SyncLog{
		Status:          status,
		ArticlesFound:   found,
		ArticlesSynced:  synced,
		ArticlesSkipped: skipped,
		Errors:          errText,
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// ListSyncLogs returns the most recent sync log rows, newest first.
func ListSyncLogs(ctx context.Context, db *gorm.DB, limit int) ([]domain.SyncLog, error) {
	var out []domain.SyncLog
	err := db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// LastSyncLog returns the newest sync log row, or (nil, nil) when no run has
// happened yet.
func LastSyncLog(ctx context.Context, db *gorm.DB) (*domain.SyncLog, error) {
	var l domain.SyncLog
	err := db.WithContext(ctx).Order("created_at desc").First(&l).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}
