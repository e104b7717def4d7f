package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/demandei/mediumsync/internal/config"
	"github.com/demandei/mediumsync/internal/domain"
	"github.com/demandei/mediumsync/internal/medium"
	"github.com/demandei/mediumsync/internal/services"
	"github.com/demandei/mediumsync/internal/settings"
	"github.com/demandei/mediumsync/internal/translate"
	"github.com/demandei/mediumsync/internal/wordpress"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newRouterDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.CachedArticle{},
		&domain.TrendingSet{},
		&domain.APIUsage{},
		&domain.PublishedArticle{},
		&domain.AutomationSetting{},
		&domain.SyncLog{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := config.Config{
		APIBasePath:  "/api/v1",
		RateRPS:      100,
		RateBurst:    10,
		SettingsPath: filepath.Join(t.TempDir(), "settings.json"),
		OTEL:         config.OTELConfig{ServiceName: "mediumsync-test"},
		Usage:        config.UsageConfig{MonthlyLimit: 2500, Baseline: 126},
		Cache:        config.CacheConfig{ArticleTTL: 7 * 24 * time.Hour, TrendingTTL: 24 * time.Hour},
		Search:       config.SearchConfig{Keywords: []string{"docker"}, MaxPerRun: 3, TargetLang: "pt"},
	}
	db := newRouterDB(t)

	// Unconfigured integrations: Enabled() is false across the board, so
	// routes must still mount and answer.
	usageSvc := services.NewUsageService(db, cfg.Usage)
	provider := medium.NewClient(cfg.Medium, usageSvc)
	translator := translate.New(nil)
	publisher := wordpress.NewClient(cfg.WordPress)

	RegisterRoutes(r, Deps{
		DB:        db,
		Sync:      services.NewSyncService(db, provider, publisher, translator, usageSvc, cfg.Search),
		Cache:     services.NewCacheService(db, provider, translator, cfg.Cache),
		Usage:     usageSvc,
		Publisher: publisher,
		Settings:  settings.NewManager(cfg),
	}, cfg)
	return r
}

func TestRegisterRoutes_HealthMetricsAndFallbacks(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID on response")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// Unknown route gets the JSON envelope, not Gin's default 404.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json 404 body: %v", err)
	}
	if resp["code"] != "not_found" {
		t.Fatalf("404 code = %v", resp["code"])
	}

	// Wrong method on a known route.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/status", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /api/v1/status = %d", w.Code)
	}
}

func TestRegisterRoutes_DashboardMounted(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/status = %d: %s", w.Code, w.Body.String())
	}
	var status map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid status body: %v", err)
	}
	conf, _ := status["configured"].(map[string]any)
	if conf == nil || conf["medium_api"] != false {
		t.Fatalf("expected unconfigured integrations, got %v", status["configured"])
	}

	// A manual sync against unconfigured integrations is refused cleanly.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("POST /api/v1/sync = %d; want 503", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/settings = %d", w.Code)
	}
}
