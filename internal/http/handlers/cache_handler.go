// Cache endpoints:
//   - GET  /cache                (list live rows + counts)
//   - POST /cache/clear-expired  (TTL sweep)
//   - POST /cache/retranslate    (redo one or all translations)
//   - POST /cache/:id/publish    (publish straight from the cache)
//   - GET  /trending             (cached trending lookup)
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/demandei/mediumsync/internal/domain"
	"github.com/demandei/mediumsync/internal/repo"
	"github.com/demandei/mediumsync/internal/services"
	"github.com/demandei/mediumsync/internal/utils"
)

// ListCache returns every live cache row plus aggregate counts.
func (h *Handlers) ListCache(c *gin.Context) {
	ctx := c.Request.Context()
	rows := h.cacheSvc.ListCached(ctx)
	ok(c, http.StatusOK, gin.H{
		"articles": rows,
		"stats":    h.cacheSvc.CacheStats(ctx),
	})
}

// ClearExpiredCache sweeps expired article and trending rows.
func (h *Handlers) ClearExpiredCache(c *gin.Context) {
	removed := h.cacheSvc.ClearExpired(c.Request.Context())
	ok(c, http.StatusOK, gin.H{"removed": removed})
}

// RetranslateRequest selects what to retranslate. An empty MediumID means
// every cached article; an empty TargetLang falls back to the configured
// target language.
type RetranslateRequest struct {
	MediumID   string `json:"medium_id"`
	TargetLang string `json:"target_lang"`
}

// Retranslate wipes existing translations and redoes them, for one cached
// article or for all of them.
func (h *Handlers) Retranslate(c *gin.Context) {
	ctx := c.Request.Context()

	var req RetranslateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}
	lang := req.TargetLang
	if lang == "" {
		lang = h.targetLang
	}

	if req.MediumID != "" {
		h.cacheSvc.ClearTranslation(ctx, req.MediumID)
		row, err := h.cacheSvc.TranslateCachedArticle(ctx, req.MediumID, lang)
		if err != nil {
			if errors.Is(err, services.ErrArticleNotFound) {
				fail(c, http.StatusNotFound, ErrCodeNotFound, "article not found")
				return
			}
			fail(c, http.StatusInternalServerError, ErrCodeTranslateFailed, err.Error())
			return
		}
		ok(c, http.StatusOK, gin.H{"retranslated": 1, "failed": 0, "article": row})
		return
	}

	rows := h.cacheSvc.ListCached(ctx)
	h.cacheSvc.ClearTranslation(ctx, "")
	done, failed := 0, 0
	for i := range rows {
		if _, err := h.cacheSvc.TranslateCachedArticle(ctx, rows[i].MediumID, lang); err != nil {
			failed++
			continue
		}
		done++
	}
	ok(c, http.StatusOK, gin.H{"retranslated": done, "failed": failed})
}

// PublishFromCache publishes one cached article to the CMS, preferring the
// translated fields when present, and records the publish for dedup.
func (h *Handlers) PublishFromCache(c *gin.Context) {
	ctx := c.Request.Context()
	mediumID := c.Param("id")
	if mediumID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id required")
		return
	}
	if h.publisher == nil || !h.publisher.Enabled() {
		fail(c, http.StatusServiceUnavailable, ErrCodeNotConfigured, "CMS is not configured")
		return
	}

	row, err := h.cacheSvc.GetOrFetchArticle(ctx, mediumID, false)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrArticleNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "article not found")
		case errors.Is(err, services.ErrProviderNotConfigured):
			fail(c, http.StatusServiceUnavailable, ErrCodeNotConfigured, "source API is not configured")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	a := h.articleFromCache(row)
	post, err := h.publisher.CreatePost(ctx, a)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodePublishFailed, err.Error())
		return
	}

	rec := &domain.PublishedArticle{
		MediumID:     row.MediumID,
		Title:        a.Title,
		Author:       row.Author,
		SourceURL:    row.URL,
		WordPressID:  post.ID,
		WordPressURL: post.Link,
		Status:       post.Status,
		SyncedAt:     time.Now(),
	}
	saved, err := repo.SavePublishedArticle(ctx, h.db, rec)
	if err != nil {
		// The post exists in the CMS but the dedup row failed; surface it
		// so the operator can reconcile.
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "post created but not recorded: "+err.Error())
		return
	}
	ok(c, http.StatusCreated, gin.H{"post": post, "article": saved})
}

// articleFromCache rebuilds the in-memory article from a cache row,
// preferring translated fields.
func (h *Handlers) articleFromCache(row *domain.CachedArticle) *domain.Article {
	a := &domain.Article{
		ID:          row.MediumID,
		Title:       row.OriginalTitle,
		Subtitle:    row.OriginalSubtitle,
		Content:     row.OriginalContent,
		Format:      row.ContentFormat,
		Author:      row.Author,
		ImageURL:    row.CoverImage,
		Tags:        row.Tags,
		Claps:       row.Claps,
		ReadingTime: row.ReadingTime,
		URL:         row.URL,
		Lang:        "en",
	}
	if row.IsTranslated {
		a.Title = row.TranslatedTitle
		a.Subtitle = row.TranslatedSubtitle
		a.Content = row.TranslatedContent
		a.Translated = true
		a.Lang = h.targetLang
	}
	return a
}

// Trending returns the cached trending list for a (tag, mode) pair,
// fetching it only when no live cached set exists.
func (h *Handlers) Trending(c *gin.Context) {
	tag := c.DefaultQuery("tag", "programming")
	mode := c.DefaultQuery("mode", "hot")
	limit := utils.AtoiDefault(c.Query("limit"), 10)
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	articles, err := h.cacheSvc.TrendingWithCache(c.Request.Context(), tag, mode, limit)
	if err != nil {
		if errors.Is(err, services.ErrProviderNotConfigured) {
			fail(c, http.StatusServiceUnavailable, ErrCodeNotConfigured, "source API is not configured")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"tag": tag, "mode": mode, "articles": articles, "count": len(articles)})
}

// Topics returns the newest posts for a topic, uncached.
// GET /topics?topic=artificial-intelligence&limit=12
func (h *Handlers) Topics(c *gin.Context) {
	topic := c.DefaultQuery("topic", "artificial-intelligence")
	limit := utils.AtoiDefault(c.Query("limit"), 12)
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	articles, err := h.cacheSvc.LatestPosts(c.Request.Context(), topic, limit)
	if err != nil {
		if errors.Is(err, services.ErrProviderNotConfigured) {
			fail(c, http.StatusServiceUnavailable, ErrCodeNotConfigured, "source API is not configured")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"topic": topic, "articles": articles, "count": len(articles)})
}
