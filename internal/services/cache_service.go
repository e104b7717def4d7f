// Package services – CacheService
//
// This file implements the CacheService, the TTL-bounded store between the
// paid source API and everything downstream. Reads prefer the cache; misses
// fetch from the provider and persist the result. Cache persistence failures
// degrade to pass-through: the caller still gets the fetched artifact, it
// just will not be cached.
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/demandei/mediumsync/internal/config"
	"github.com/demandei/mediumsync/internal/content"
	"github.com/demandei/mediumsync/internal/domain"
	"github.com/demandei/mediumsync/internal/repo"
)

// ArticleProvider is the slice of the source API the cache layer needs.
// *medium.Client satisfies this; tests substitute fakes.
type ArticleProvider interface {
	Enabled() bool
	GetArticle(ctx context.Context, id string) (*domain.Article, error)
	SearchArticles(ctx context.Context, query string, limit int) ([]domain.Article, error)
	GetTrending(ctx context.Context, tag, mode string, limit int) ([]domain.Article, error)
	GetLatestPosts(ctx context.Context, topic string, limit int) ([]domain.Article, error)
}

// ArticleTranslator is the slice of the rewrite step the cache layer needs.
// *translate.Translator satisfies this.
type ArticleTranslator interface {
	Enabled() bool
	TranslateArticle(ctx context.Context, a *domain.Article, targetLang string) (*domain.Translation, error)
}

// CacheService coordinates the article and trending caches.
type CacheService struct {
	DB         *gorm.DB
	Provider   ArticleProvider
	Translator ArticleTranslator

	ArticleTTL  time.Duration
	TrendingTTL time.Duration

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// NewCacheService constructs a CacheService with TTLs from config.
func NewCacheService(db *gorm.DB, provider ArticleProvider, tr ArticleTranslator, cfg config.CacheConfig) *CacheService {
	return &CacheService{
		DB:          db,
		Provider:    provider,
		Translator:  tr,
		ArticleTTL:  cfg.ArticleTTL,
		TrendingTTL: cfg.TrendingTTL,
		Now:         time.Now,
	}
}

// cacheRow projects a fetched article onto a cache row, extracting inline
// image URLs from the body.
func cacheRow(a *domain.Article) *domain.CachedArticle {
	return &domain.CachedArticle{
		MediumID:         a.ID,
		OriginalTitle:    a.Title,
		OriginalSubtitle: a.Subtitle,
		OriginalContent:  a.Content,
		ContentFormat:    a.Format,
		Author:           a.Author,
		CoverImage:       a.ImageURL,
		Images:           content.ExtractImageURLs(a.Content, a.Format),
		Tags:             a.Tags,
		Claps:            a.Claps,
		ReadingTime:      a.ReadingTime,
		URL:              a.URL,
	}
}

// GetOrFetchArticle returns the cached article, fetching and caching it on a
// miss. forceRefresh skips the cache read so the provider result becomes
// authoritative.
func (s *CacheService) GetOrFetchArticle(ctx context.Context, mediumID string, forceRefresh bool) (*domain.CachedArticle, error) {
	now := s.Now()
	if !forceRefresh {
		cached, err := repo.GetCachedArticle(ctx, s.DB, mediumID, now)
		if err != nil {
			log.Error().Err(err).Str("article", mediumID).Msg("cache read failed, treating as miss")
		} else if cached != nil {
			log.Debug().Str("article", mediumID).Msg("cache hit")
			return cached, nil
		}
	}

	if s.Provider == nil || !s.Provider.Enabled() {
		return nil, ErrProviderNotConfigured
	}
	a, err := s.Provider.GetArticle(ctx, mediumID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrArticleNotFound
	}

	row := cacheRow(a)
	saved, err := repo.SaveCachedArticle(ctx, s.DB, row, nil, s.ArticleTTL, now)
	if err != nil {
		log.Error().Err(err).Str("article", mediumID).Msg("cache write failed, returning unpersisted copy")
		row.CachedAt = now
		row.ExpiresAt = now.Add(s.ArticleTTL)
		return row, nil
	}
	return saved, nil
}

// SearchAndCache searches the provider and caches every hit not already
// cached. Per-article cache failures drop the article from the result.
func (s *CacheService) SearchAndCache(ctx context.Context, query string, limit int) ([]domain.CachedArticle, error) {
	if s.Provider == nil || !s.Provider.Enabled() {
		return nil, ErrProviderNotConfigured
	}
	articles, err := s.Provider.SearchArticles(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	out := make([]domain.CachedArticle, 0, len(articles))
	for i := range articles {
		a := &articles[i]
		cached, err := repo.GetCachedArticle(ctx, s.DB, a.ID, now)
		if err == nil && cached != nil {
			out = append(out, *cached)
			continue
		}
		saved, err := repo.SaveCachedArticle(ctx, s.DB, cacheRow(a), nil, s.ArticleTTL, now)
		if err != nil {
			log.Error().Err(err).Str("article", a.ID).Msg("could not cache search hit")
			continue
		}
		out = append(out, *saved)
	}
	return out, nil
}

// TranslateCachedArticle ensures the cached article carries a translation,
// translating the original fields when it does not. An already-translated
// row and a disabled translator both return the row as-is.
func (s *CacheService) TranslateCachedArticle(ctx context.Context, mediumID, targetLang string) (*domain.CachedArticle, error) {
	cached, err := s.GetOrFetchArticle(ctx, mediumID, false)
	if err != nil {
		return nil, err
	}
	if cached.IsTranslated {
		log.Info().Str("article", mediumID).Msg("article already translated")
		return cached, nil
	}
	if s.Translator == nil || !s.Translator.Enabled() {
		log.Warn().Str("article", mediumID).Msg("translator not enabled")
		return cached, nil
	}

	a := &domain.Article{
		ID:       mediumID,
		Title:    cached.OriginalTitle,
		Subtitle: cached.OriginalSubtitle,
		Content:  cached.OriginalContent,
		Format:   cached.ContentFormat,
		Lang:     "en",
	}
	tr, err := s.Translator.TranslateArticle(ctx, a, targetLang)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return cached, nil
	}

	saved, err := repo.SaveCachedArticle(ctx, s.DB, cached, tr, s.ArticleTTL, s.Now())
	if err != nil {
		log.Error().Err(err).Str("article", mediumID).Msg("could not persist translation")
		return cached, nil
	}
	return saved, nil
}

// TrendingWithCache returns the trending set for (tag, mode), fetching from
// the provider only when no live cached set exists.
func (s *CacheService) TrendingWithCache(ctx context.Context, tag, mode string, limit int) ([]domain.Article, error) {
	now := s.Now()
	key := domain.TrendingKey(tag, mode)

	set, err := repo.GetTrendingSet(ctx, s.DB, key, now)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("trending cache read failed, treating as miss")
	} else if set != nil {
		var articles []domain.Article
		if err := json.Unmarshal([]byte(set.Articles), &articles); err != nil {
			log.Error().Err(err).Str("key", key).Msg("trending cache payload corrupt, refetching")
		} else {
			return articles, nil
		}
	}

	if s.Provider == nil || !s.Provider.Enabled() {
		return nil, ErrProviderNotConfigured
	}
	articles, err := s.Provider.GetTrending(ctx, tag, mode, limit)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(articles)
	if err == nil {
		if _, err := repo.PutTrendingSet(ctx, s.DB, key, string(payload), s.TrendingTTL, now); err != nil {
			log.Error().Err(err).Str("key", key).Msg("trending cache write failed")
		}
	}
	return articles, nil
}

// LatestPosts returns the newest articles for a topic straight from the
// provider. Topic browsing is exploratory, so results are not cached.
func (s *CacheService) LatestPosts(ctx context.Context, topic string, limit int) ([]domain.Article, error) {
	if s.Provider == nil || !s.Provider.Enabled() {
		return nil, ErrProviderNotConfigured
	}
	return s.Provider.GetLatestPosts(ctx, topic, limit)
}

// ListCached returns all live cache rows, newest first. Read failures yield
// an empty list.
func (s *CacheService) ListCached(ctx context.Context) []domain.CachedArticle {
	rows, err := repo.ListCachedArticles(ctx, s.DB, s.Now())
	if err != nil {
		log.Error().Err(err).Msg("cache list failed")
		return nil
	}
	return rows
}

// CacheStats returns cache row counts. Failures yield zeroes.
func (s *CacheService) CacheStats(ctx context.Context) domain.CacheStats {
	stats, err := repo.CacheCounts(ctx, s.DB, s.Now())
	if err != nil {
		log.Error().Err(err).Msg("cache stats failed")
		return domain.CacheStats{}
	}
	return stats
}

// ClearExpired removes expired article and trending rows and returns how
// many were deleted.
func (s *CacheService) ClearExpired(ctx context.Context) int {
	now := s.Now()
	var total int64
	n, err := repo.ClearExpiredArticles(ctx, s.DB, now)
	if err != nil {
		log.Error().Err(err).Msg("expired article sweep failed")
	}
	total += n
	n, err = repo.ClearExpiredTrending(ctx, s.DB, now)
	if err != nil {
		log.Error().Err(err).Msg("expired trending sweep failed")
	}
	total += n
	log.Info().Int64("cleared", total).Msg("expired cache entries cleared")
	return int(total)
}

// ClearTranslation wipes translation fields so the next translate pass redoes
// them. An empty mediumID clears every row. Returns affected row count.
func (s *CacheService) ClearTranslation(ctx context.Context, mediumID string) int {
	n, err := repo.ClearTranslation(ctx, s.DB, mediumID)
	if err != nil {
		log.Error().Err(err).Str("article", mediumID).Msg("translation reset failed")
		return 0
	}
	return int(n)
}
