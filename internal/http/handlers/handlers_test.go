package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/demandei/mediumsync/internal/config"
	"github.com/demandei/mediumsync/internal/domain"
	"github.com/demandei/mediumsync/internal/settings"
	"github.com/demandei/mediumsync/internal/wordpress"
)

var errBoom = fmt.Errorf("boom")

// ---------- test DB ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.PublishedArticle{},
		&domain.SyncLog{},
		&domain.AutomationSetting{},
		&domain.APIUsage{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// ---------- service stubs ----------

type stubSync struct {
	run func(context.Context) (*domain.SyncResult, error)
	can bool
}

func (s *stubSync) Run(ctx context.Context) (*domain.SyncResult, error) {
	if s.run != nil {
		return s.run(ctx)
	}
	return &domain.SyncResult{}, nil
}

func (s *stubSync) CanSync(context.Context) bool { return s.can }

type stubCache struct {
	rows    []domain.CachedArticle
	stats   domain.CacheStats
	cleared int

	getOrFetch func(context.Context, string, bool) (*domain.CachedArticle, error)
	translate  func(context.Context, string, string) (*domain.CachedArticle, error)
	trending   func(context.Context, string, string, int) ([]domain.Article, error)
	latest     func(context.Context, string, int) ([]domain.Article, error)

	clearedTranslations []string
}

func (s *stubCache) GetOrFetchArticle(ctx context.Context, id string, force bool) (*domain.CachedArticle, error) {
	if s.getOrFetch != nil {
		return s.getOrFetch(ctx, id, force)
	}
	for i := range s.rows {
		if s.rows[i].MediumID == id {
			return &s.rows[i], nil
		}
	}
	return nil, fmt.Errorf("no such article %q", id)
}

func (s *stubCache) TranslateCachedArticle(ctx context.Context, id, lang string) (*domain.CachedArticle, error) {
	if s.translate != nil {
		return s.translate(ctx, id, lang)
	}
	return s.GetOrFetchArticle(ctx, id, false)
}

func (s *stubCache) TrendingWithCache(ctx context.Context, tag, mode string, limit int) ([]domain.Article, error) {
	if s.trending != nil {
		return s.trending(ctx, tag, mode, limit)
	}
	return nil, nil
}

func (s *stubCache) LatestPosts(ctx context.Context, topic string, limit int) ([]domain.Article, error) {
	if s.latest != nil {
		return s.latest(ctx, topic, limit)
	}
	return nil, nil
}

func (s *stubCache) ListCached(context.Context) []domain.CachedArticle { return s.rows }
func (s *stubCache) CacheStats(context.Context) domain.CacheStats      { return s.stats }
func (s *stubCache) ClearExpired(context.Context) int                  { return s.cleared }

func (s *stubCache) ClearTranslation(_ context.Context, id string) int {
	s.clearedTranslations = append(s.clearedTranslations, id)
	return 1
}

type stubUsage struct {
	stats *domain.UsageStats
	err   error
}

func (s *stubUsage) Stats(context.Context) (*domain.UsageStats, error) { return s.stats, s.err }

type stubPublisher struct {
	enabled   bool
	testErr   error
	createErr error
	posted    []string
}

func (s *stubPublisher) Enabled() bool                        { return s.enabled }
func (s *stubPublisher) TestConnection(context.Context) error { return s.testErr }

func (s *stubPublisher) CreatePost(_ context.Context, a *domain.Article) (*wordpress.PostResult, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.posted = append(s.posted, a.ID)
	return &wordpress.PostResult{ID: 700 + len(s.posted), Link: "https://blog.example.com/p/" + a.ID, Status: "draft"}, nil
}

type stubSched struct {
	paused  bool
	next    time.Time
	pauses  int
	resumes int
}

func (s *stubSched) Pause()            { s.paused = true; s.pauses++ }
func (s *stubSched) Resume()           { s.paused = false; s.resumes++ }
func (s *stubSched) Paused() bool      { return s.paused }
func (s *stubSched) NextRun() time.Time { return s.next }

// ---------- fixture ----------

func newSettingsManager(t *testing.T) *settings.Manager {
	t.Helper()
	return settings.NewManager(config.Config{
		SettingsPath: filepath.Join(t.TempDir(), "settings.json"),
		Medium:       config.MediumConfig{APIKey: "key", APIHost: "host"},
		WordPress: config.WordPressConfig{
			URL:      "https://blog.example.com",
			Username: "bot",
			Password: "secret",
		},
		Gemini: config.GeminiConfig{APIKey: "gk"},
		Search: config.SearchConfig{Keywords: []string{"docker"}},
	})
}

type handlerEnv struct {
	h     *Handlers
	db    *gorm.DB
	sync  *stubSync
	cache *stubCache
	usage *stubUsage
	pub   *stubPublisher
	sched *stubSched
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &handlerEnv{
		db:    newHandlerDB(t),
		sync:  &stubSync{can: true},
		cache: &stubCache{},
		usage: &stubUsage{stats: &domain.UsageStats{
			CurrentMonth: &domain.APIUsage{Month: "2025-03", RequestsUsed: 200, RequestsLimit: 2500},
		}},
		pub:   &stubPublisher{enabled: true},
		sched: &stubSched{next: time.Date(2025, 3, 11, 23, 0, 0, 0, time.UTC)},
	}
	env.h = New(env.db, env.sync, env.cache, env.usage, env.pub, env.sched,
		newSettingsManager(t),
		Configured{Medium: true, WordPress: true, Gemini: true},
		"pt")
	return env
}

// serve runs one request through a fresh router holding only the routes
// the test exercises.
func serve(h *Handlers, method, target string, body string, register func(*gin.Engine)) *httptest.ResponseRecorder {
	r := gin.New()
	register(r)
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	r.ServeHTTP(w, req)
	return w
}
