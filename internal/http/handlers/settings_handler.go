// Settings endpoints:
//   - GET  /settings         (full tree + validation verdict)
//   - POST /settings         (merge section updates)
//   - POST /test-connection  (probe the CMS credentials)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSettings returns the full settings tree and its validation verdict.
func (h *Handlers) GetSettings(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{
		"settings":   h.settings.All(),
		"validation": h.settings.Validate(),
	})
}

// UpdateSettings merges the posted sections into the settings file. The
// payload maps section names to partial section objects; unknown keys
// within a section are stored as-is. The updated tree and a fresh
// validation verdict are returned.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var payload map[string]map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil || len(payload) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "expected a JSON object of settings sections")
		return
	}

	for section, data := range payload {
		if err := h.settings.UpdateSection(section, data); err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not persist settings")
			return
		}
	}

	v := h.settings.Validate()
	if !v.IsValid {
		// Persisted anyway; the verdict tells the operator what is missing.
		ok(c, http.StatusOK, gin.H{"settings": h.settings.All(), "validation": v, "warning": ErrCodeSettingsInvalid})
		return
	}
	ok(c, http.StatusOK, gin.H{"settings": h.settings.All(), "validation": v})
}

// TestConnection probes the CMS with the configured credentials.
func (h *Handlers) TestConnection(c *gin.Context) {
	if h.publisher == nil || !h.publisher.Enabled() {
		fail(c, http.StatusServiceUnavailable, ErrCodeNotConfigured, "CMS is not configured")
		return
	}
	if err := h.publisher.TestConnection(c.Request.Context()); err != nil {
		fail(c, http.StatusBadGateway, ErrCodeConnectionFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"connected": true})
}
