// Package domain defines the persistence models for cached articles, trending
// result sets, API usage counters, published articles, automation settings,
// and sync logs. These types are mapped with GORM and form the core data
// layer of the sync service.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// StringList is a JSON-serialized string slice column. SQLite has no native
// array type, so tag sets and image URL lists are stored as JSON text.
type StringList []string

// CachedArticle is a cached copy of a source article, optionally carrying its
// translation. At most one live (non-expired) row exists per MediumID; an
// expired row is deleted before a new one becomes authoritative.
//
// Fields:
//   - MediumID: the source article identifier (unique).
//   - Original*: title/subtitle/content exactly as fetched, plus the content
//     format reported by the provider ("markdown", "html", or "none").
//   - Images: inline image URLs extracted from the body, deduplicated in
//     discovery order.
//   - Translated* / IsTranslated: filled in once the rewrite step ran.
//   - CachedAt / ExpiresAt: TTL bookkeeping (ExpiresAt = CachedAt + 7 days).
type CachedArticle struct {
	ID               uint       `json:"-"                 gorm:"primaryKey"`
	MediumID         string     `json:"medium_id"         gorm:"type:varchar(255);not null;uniqueIndex"`
	OriginalTitle    string     `json:"original_title"    gorm:"type:varchar(500);not null"`
	OriginalSubtitle string     `json:"original_subtitle" gorm:"type:text"`
	OriginalContent  string     `json:"original_content"  gorm:"type:text"`
	ContentFormat    string     `json:"content_format"    gorm:"type:varchar(16);default:'markdown'"`
	Author           string     `json:"author"            gorm:"type:varchar(255)"`
	CoverImage       string     `json:"cover_image"       gorm:"type:text"`
	Images           StringList `json:"images"            gorm:"serializer:json"`
	Tags             StringList `json:"tags"              gorm:"serializer:json"`
	Claps            int        `json:"claps"`
	ReadingTime      float64    `json:"reading_time"`
	URL              string     `json:"url"               gorm:"type:text"`
	TranslatedTitle    string   `json:"translated_title"    gorm:"type:varchar(500)"`
	TranslatedSubtitle string   `json:"translated_subtitle" gorm:"type:text"`
	TranslatedContent  string   `json:"translated_content"  gorm:"type:text"`
	IsTranslated     bool       `json:"is_translated"     gorm:"not null;default:false"`
	CachedAt         time.Time  `json:"cached_at"         gorm:"index"`
	ExpiresAt        time.Time  `json:"expires_at"        gorm:"index"`
}

// TableName returns the database table name for CachedArticle.
func (CachedArticle) TableName() string { return "cached_articles" }

// Expired reports whether the row's TTL has elapsed at the given time.
func (a *CachedArticle) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}

// TrendingSet is a cached, ordered trending result list for one
// (topic tag, ranking mode) pair. Rows are replaced wholesale on refresh:
// the old row is deleted and a new one inserted, never updated in place.
type TrendingSet struct {
	ID        uint      `json:"-"          gorm:"primaryKey"`
	CacheKey  string    `json:"cache_key"  gorm:"type:varchar(255);not null;uniqueIndex"`
	Articles  string    `json:"-"          gorm:"type:text;not null"` // denormalized JSON
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
}

// TableName returns the database table name for TrendingSet.
func (TrendingSet) TableName() string { return "trending_sets" }

// Expired reports whether the set's TTL has elapsed at the given time.
func (t *TrendingSet) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TrendingKey builds the deterministic cache key for a tag and ranking mode
// so that repeat requests for the same parameters hit the same row.
func TrendingKey(tag, mode string) string { return tag + ":" + mode }

// APIUsage tracks billable source-API calls for one calendar month.
// RequestsUsed only ever increases within a month; a new month gets a fresh
// counter seeded at a baseline rather than zero, reflecting quota already
// consumed before this system started watching. Rows are never deleted.
type APIUsage struct {
	ID            uint      `json:"-"              gorm:"primaryKey"`
	Month         string    `json:"month"          gorm:"type:char(7);not null;uniqueIndex"` // YYYY-MM
	RequestsUsed  int       `json:"requests_used"  gorm:"not null;default:0"`
	RequestsLimit int       `json:"requests_limit" gorm:"not null;default:2500"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for APIUsage.
func (APIUsage) TableName() string { return "api_usage" }

// Remaining returns the unconsumed request budget for the month.
func (u *APIUsage) Remaining() int { return u.RequestsLimit - u.RequestsUsed }

// UsagePercent returns consumption as a percentage of the monthly limit.
func (u *APIUsage) UsagePercent() float64 {
	if u.RequestsLimit == 0 {
		return 0
	}
	return float64(u.RequestsUsed) / float64(u.RequestsLimit) * 100
}

// PublishedArticle records a source article that was republished to the CMS.
// The MediumID unique index is the dedup invariant: one source article maps
// to at most one post. A republish attempt updates the row in place.
type PublishedArticle struct {
	ID           uint           `json:"-"             gorm:"primaryKey"`
	MediumID     string         `json:"medium_id"     gorm:"type:varchar(255);not null;uniqueIndex"`
	Title        string         `json:"title"         gorm:"type:varchar(500);not null"`
	Author       string         `json:"author"        gorm:"type:varchar(255)"`
	SourceURL    string         `json:"source_url"    gorm:"type:text"`
	WordPressID  int            `json:"wordpress_id"  gorm:"column:wordpress_id"`
	WordPressURL string         `json:"wordpress_url" gorm:"column:wordpress_url;type:text"`
	Status       string         `json:"status"        gorm:"type:varchar(32)"`
	SyncedAt     time.Time      `json:"synced_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`
}

// TableName returns the database table name for PublishedArticle.
func (PublishedArticle) TableName() string { return "published_articles" }

// AutomationSetting is the singleton toggle for scheduled syncs. It is
// lazily created with Enabled=true on first read.
type AutomationSetting struct {
	ID        uint      `json:"-"          gorm:"primaryKey"`
	Enabled   bool      `json:"enabled"    gorm:"not null;default:true"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for AutomationSetting.
func (AutomationSetting) TableName() string { return "automation_settings" }

// Sync run outcomes recorded in SyncLog.Status.
const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// SyncLog is the audit record written once per sync run, on success and on
// top-level failure alike.
type SyncLog struct {
	ID              uint      `json:"id"               gorm:"primaryKey"`
	Status          string    `json:"status"           gorm:"type:varchar(50)"`
	ArticlesFound   int       `json:"articles_found"   gorm:"not null;default:0"`
	ArticlesSynced  int       `json:"articles_synced"  gorm:"not null;default:0"`
	ArticlesSkipped int       `json:"articles_skipped" gorm:"not null;default:0"`
	Errors          string    `json:"errors"           gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"       gorm:"index"`
}

// TableName returns the database table name for SyncLog.
func (SyncLog) TableName() string { return "sync_logs" }
