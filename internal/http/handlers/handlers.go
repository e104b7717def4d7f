// Handler wiring.
//
// Handlers depend on narrow service interfaces so transport stays
// decoupled from the concrete service structs; tests substitute fakes.
package handlers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/demandei/mediumsync/internal/domain"
	"github.com/demandei/mediumsync/internal/settings"
	"github.com/demandei/mediumsync/internal/wordpress"
)

// SyncRunner runs sync passes and reports whether the budget allows one.
type SyncRunner interface {
	Run(ctx context.Context) (*domain.SyncResult, error)
	CanSync(ctx context.Context) bool
}

// CacheManager exposes the article and trending cache operations the
// dashboard needs. *services.CacheService satisfies this.
type CacheManager interface {
	GetOrFetchArticle(ctx context.Context, mediumID string, forceRefresh bool) (*domain.CachedArticle, error)
	TranslateCachedArticle(ctx context.Context, mediumID, targetLang string) (*domain.CachedArticle, error)
	TrendingWithCache(ctx context.Context, tag, mode string, limit int) ([]domain.Article, error)
	LatestPosts(ctx context.Context, topic string, limit int) ([]domain.Article, error)
	ListCached(ctx context.Context) []domain.CachedArticle
	CacheStats(ctx context.Context) domain.CacheStats
	ClearExpired(ctx context.Context) int
	ClearTranslation(ctx context.Context, mediumID string) int
}

// UsageReporter exposes the monthly API budget ledger.
type UsageReporter interface {
	Stats(ctx context.Context) (*domain.UsageStats, error)
}

// Publisher is the CMS surface used for publish-from-cache and the
// connection probe. *wordpress.Client satisfies this.
type Publisher interface {
	Enabled() bool
	TestConnection(ctx context.Context) error
	CreatePost(ctx context.Context, a *domain.Article) (*wordpress.PostResult, error)
}

// Scheduler is the slice of the cron scheduler the automation toggle and
// status endpoint need.
type Scheduler interface {
	Pause()
	Resume()
	Paused() bool
	NextRun() time.Time
}

// Configured reports which upstream integrations carry credentials. It is
// computed once at startup from config and shown on the status endpoint.
type Configured struct {
	Medium    bool `json:"medium_api"`
	WordPress bool `json:"wordpress"`
	Gemini    bool `json:"gemini"`
}

// Handlers groups the dashboard endpoints and their dependencies.
type Handlers struct {
	db         *gorm.DB
	syncSvc    SyncRunner
	cacheSvc   CacheManager
	usageSvc   UsageReporter
	publisher  Publisher
	sched      Scheduler
	settings   *settings.Manager
	configured Configured
	targetLang string
}

// New constructs a Handlers instance bound to the given dependencies.
// sched may be nil when the scheduler is not running (tests, one-shot runs).
func New(db *gorm.DB, syncSvc SyncRunner, cacheSvc CacheManager, usageSvc UsageReporter,
	publisher Publisher, sched Scheduler, mgr *settings.Manager, configured Configured, targetLang string) *Handlers {
	return &Handlers{
		db:         db,
		syncSvc:    syncSvc,
		cacheSvc:   cacheSvc,
		usageSvc:   usageSvc,
		publisher:  publisher,
		sched:      sched,
		settings:   mgr,
		configured: configured,
		targetLang: targetLang,
	}
}
