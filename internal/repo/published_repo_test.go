package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/demandei/mediumsync/internal/domain"
)

func newPublishedRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("published_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestPublishedExists(t *testing.T) {
	db := newPublishedRepoDB(t, &domain.PublishedArticle{})

	ok, err := PublishedExists(context.Background(), db, "m1")
	if err != nil || ok {
		t.Fatalf("expected absent, got ok=%v err=%v", ok, err)
	}

	row := domain.PublishedArticle{MediumID: "m1", Title: "t", WordPressID: 7}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	ok, err = PublishedExists(context.Background(), db, "m1")
	if err != nil || !ok {
		t.Fatalf("expected present, got ok=%v err=%v", ok, err)
	}
}

func TestSavePublishedArticle_InsertThenUpdateInPlace(t *testing.T) {
	db := newPublishedRepoDB(t, &domain.PublishedArticle{})

	p := &domain.PublishedArticle{
		MediumID:     "m1",
		Title:        "First",
		Author:       "Ada",
		SourceURL:    "https://medium.com/p/m1",
		WordPressID:  42,
		WordPressURL: "https://blog.example.com/?p=42",
		Status:       "draft",
	}
	saved, err := SavePublishedArticle(context.Background(), db, p)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.ID == 0 || saved.SyncedAt.IsZero() {
		t.Fatalf("expected persisted row with SyncedAt set: %+v", saved)
	}

	// Republish updates the existing row instead of inserting a sibling.
	again := &domain.PublishedArticle{
		MediumID:     "m1",
		Title:        "Revised",
		WordPressID:  43,
		WordPressURL: "https://blog.example.com/?p=43",
		Status:       "publish",
	}
	updated, err := SavePublishedArticle(context.Background(), db, again)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != saved.ID {
		t.Fatalf("expected in-place update, got new row %d vs %d", updated.ID, saved.ID)
	}

	var got domain.PublishedArticle
	if err := db.First(&got, "medium_id = ?", "m1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Title != "Revised" || got.WordPressID != 43 || got.Status != "publish" {
		t.Fatalf("row not updated: %+v", got)
	}

	total, err := CountPublished(context.Background(), db)
	if err != nil || total != 1 {
		t.Fatalf("expected single row, got total=%d err=%v", total, err)
	}
}

func TestListRecentPublished_NewestFirstWithLimit(t *testing.T) {
	db := newPublishedRepoDB(t, &domain.PublishedArticle{})

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		row := domain.PublishedArticle{
			MediumID:  fmt.Sprintf("m%d", i),
			Title:     "t",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	list, err := ListRecentPublished(context.Background(), db, 2)
	if err != nil {
		t.Fatalf("ListRecentPublished: %v", err)
	}
	if len(list) != 2 || list[0].MediumID != "m3" || list[1].MediumID != "m2" {
		t.Fatalf("unexpected page: %+v", list)
	}
}
