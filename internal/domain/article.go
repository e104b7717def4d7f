package domain

import "time"

// Article is the in-memory representation of a source article as returned by
// the content provider. It is not persisted directly; CachedArticle and
// PublishedArticle are projections of it.
type Article struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Author        string   `json:"author"`
	AuthorID      string   `json:"author_id"`
	PublicationID string   `json:"publication_id"`
	PublishedAt   string   `json:"published_at"`
	URL           string   `json:"url"`
	Tags          []string `json:"tags"`
	Topics        []string `json:"topics"`
	Claps         int      `json:"claps"`
	Responses     int      `json:"responses_count"`
	ReadingTime   float64  `json:"reading_time"`
	WordCount     int      `json:"word_count"`
	ImageURL      string   `json:"image_url"`
	Lang          string   `json:"lang"`

	// Content is fetched separately from the detail endpoint; Format records
	// which representation succeeded ("markdown", "html", or "none").
	Content string `json:"content,omitempty"`
	Format  string `json:"content_format,omitempty"`

	// Translated is set once the rewrite step replaced title/subtitle/content
	// and stamped Lang with the target language.
	Translated bool `json:"translated,omitempty"`

	// Trending metadata, set only on results of trending/topic lookups.
	TrendingTag  string `json:"trending_tag,omitempty"`
	TrendingMode string `json:"trending_mode,omitempty"`
	Topic        string `json:"topic,omitempty"`
}

// Translation carries the rewritten fields merged into a cache row once the
// rewrite step completed.
type Translation struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Content  string `json:"content"`
}

// SyncResult summarizes one orchestrated sync run.
type SyncResult struct {
	Found   int      `json:"found"`
	Synced  int      `json:"synced"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// UsageStats is the dashboard projection of the usage ledger.
type UsageStats struct {
	CurrentMonth     *APIUsage  `json:"current_month"`
	DailyAverage     float64    `json:"daily_average"`
	ProjectedMonthly float64    `json:"projected_monthly"`
	History          []APIUsage `json:"history"`
	Warning          bool       `json:"warning_level"`
	Critical         bool       `json:"critical_level"`
	AsOf             time.Time  `json:"as_of"`
}

// CacheStats is the dashboard projection of the article cache.
type CacheStats struct {
	TotalCached   int `json:"total_cached"`
	Translated    int `json:"translated"`
	NotTranslated int `json:"not_translated"`
}
