// Sync control endpoints:
//   - POST /sync               (manual run, blocks until done)
//   - POST /automation/toggle  (pause/resume the scheduled job)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/demandei/mediumsync/internal/domain"
	"github.com/demandei/mediumsync/internal/http/middleware"
	"github.com/demandei/mediumsync/internal/repo"
	"github.com/demandei/mediumsync/internal/services"
)

// RunSync triggers a full sync pass and blocks until it finishes. The
// run writes its own audit log; this handler only maps the outcome to a
// status code. A budget refusal is 429, a missing integration 503.
func (h *Handlers) RunSync(c *gin.Context) {
	res, err := h.syncSvc.Run(c.Request.Context())
	if err != nil {
		middleware.ObserveSyncRun(domain.SyncStatusError, 0)
		switch {
		case errors.Is(err, services.ErrBudgetExceeded):
			fail(c, http.StatusTooManyRequests, ErrCodeBudgetExceeded, "monthly API budget cannot cover a sync run")
		case errors.Is(err, services.ErrProviderNotConfigured),
			errors.Is(err, services.ErrPublisherNotConfigured):
			fail(c, http.StatusServiceUnavailable, ErrCodeNotConfigured, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSyncFailed, err.Error())
		}
		return
	}
	middleware.ObserveSyncRun(domain.SyncStatusSuccess, res.Synced)
	ok(c, http.StatusOK, res)
}

// ToggleAutomationRequest optionally pins the automation state. Without a
// body the current state is flipped.
type ToggleAutomationRequest struct {
	Enabled *bool `json:"enabled"`
}

// ToggleAutomation flips (or pins) the scheduled-sync toggle and pauses
// or resumes the cron job accordingly.
func (h *Handlers) ToggleAutomation(c *gin.Context) {
	ctx := c.Request.Context()

	var req ToggleAutomationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}

	cur, err := repo.GetAutomationSetting(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not read automation state")
		return
	}
	target := !cur.Enabled
	if req.Enabled != nil {
		target = *req.Enabled
	}

	updated, err := repo.SetAutomationEnabled(ctx, h.db, target)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not update automation state")
		return
	}

	if h.sched != nil {
		if target {
			h.sched.Resume()
		} else {
			h.sched.Pause()
		}
	}
	ok(c, http.StatusOK, updated)
}
