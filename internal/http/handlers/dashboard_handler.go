// Dashboard read endpoints:
//   - GET /status    (aggregate health of the pipeline)
//   - GET /usage     (budget ledger + whether a sync fits)
//   - GET /articles  (recently published)
//   - GET /logs      (sync audit trail)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/demandei/mediumsync/internal/domain"
	"github.com/demandei/mediumsync/internal/repo"
	"github.com/demandei/mediumsync/internal/utils"
)

// StatusResponse is the aggregate snapshot served by GET /status.
type StatusResponse struct {
	TotalSynced       int64              `json:"total_synced"`
	LastSync          *time.Time         `json:"last_sync"`
	Cache             domain.CacheStats  `json:"cache"`
	Usage             *domain.UsageStats `json:"usage"`
	LastRun           *domain.SyncLog    `json:"last_run"`
	AutomationEnabled bool               `json:"automation_enabled"`
	NextRun           *time.Time         `json:"next_run,omitempty"`
	Configured        Configured         `json:"configured"`
}

// Status returns the pipeline snapshot: publish counts, cache counts,
// budget usage, the last run's log, and the automation state.
func (h *Handlers) Status(c *gin.Context) {
	ctx := c.Request.Context()

	count, lastSync, err := repo.PublishedStats(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not read publish stats")
		return
	}

	usage, err := h.usageSvc.Stats(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not read usage stats")
		return
	}

	auto, err := repo.GetAutomationSetting(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not read automation state")
		return
	}

	lastRun, err := repo.LastSyncLog(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not read sync log")
		return
	}

	resp := StatusResponse{
		TotalSynced:       count,
		LastSync:          lastSync,
		Cache:             h.cacheSvc.CacheStats(ctx),
		Usage:             usage,
		LastRun:           lastRun,
		AutomationEnabled: auto.Enabled,
		Configured:        h.configured,
	}
	if h.sched != nil && auto.Enabled {
		if next := h.sched.NextRun(); !next.IsZero() {
			resp.NextRun = &next
		}
	}
	ok(c, http.StatusOK, resp)
}

// UsageResponse wraps the ledger stats with the sync gate verdict.
type UsageResponse struct {
	*domain.UsageStats
	CanSync bool `json:"can_sync"`
}

// Usage returns the monthly budget ledger and whether a full sync run
// currently fits within it.
func (h *Handlers) Usage(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := h.usageSvc.Stats(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not read usage stats")
		return
	}
	ok(c, http.StatusOK, UsageResponse{UsageStats: stats, CanSync: h.syncSvc.CanSync(ctx)})
}

// Articles returns the most recently published articles, newest first.
// limit query param caps the page (default 50, max 200).
func (h *Handlers) Articles(c *gin.Context) {
	limit := clampLimit(c, 50, 200)
	items, err := repo.ListRecentPublished(c.Request.Context(), h.db, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list published articles")
		return
	}
	ok(c, http.StatusOK, gin.H{"articles": items, "count": len(items)})
}

// Logs returns the sync audit trail, newest first (default 20, max 100).
func (h *Handlers) Logs(c *gin.Context) {
	limit := clampLimit(c, 20, 100)
	items, err := repo.ListSyncLogs(c.Request.Context(), h.db, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list sync logs")
		return
	}
	ok(c, http.StatusOK, gin.H{"logs": items, "count": len(items)})
}

// clampLimit parses and bounds the limit query param.
func clampLimit(c *gin.Context, def, max int) int {
	limit := utils.AtoiDefault(c.Query("limit"), def)
	if limit < 1 {
		limit = 1
	}
	if limit > max {
		limit = max
	}
	return limit
}
