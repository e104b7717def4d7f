// Package services – SyncService
//
// This file implements the SyncService, the orchestrator of one sync run:
// search the source by the configured keywords, filter by language, then per
// article check dedup, check relevance, translate, publish, and record the
// published row. Article failures are isolated: the loop continues and the
// article counts as skipped. Every run, successful or not, leaves exactly one
// sync log row.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/demandei/mediumsync/internal/config"
	"github.com/demandei/mediumsync/internal/domain"
	"github.com/demandei/mediumsync/internal/medium"
	"github.com/demandei/mediumsync/internal/repo"
	"github.com/demandei/mediumsync/internal/wordpress"
)

// SearchProvider is the slice of the source API the orchestrator needs.
type SearchProvider interface {
	Enabled() bool
	SearchByKeywords(ctx context.Context, keywords []string, maxArticles int) ([]domain.Article, error)
}

// Publisher is the slice of the CMS client the orchestrator needs.
type Publisher interface {
	Enabled() bool
	CreatePost(ctx context.Context, a *domain.Article) (*wordpress.PostResult, error)
}

// BudgetGate answers whether the monthly budget can absorb a run.
type BudgetGate interface {
	CanMakeRequest(ctx context.Context, n int) bool
}

// SyncService runs the search-translate-publish pipeline.
type SyncService struct {
	DB         *gorm.DB
	Provider   SearchProvider
	Publisher  Publisher
	Translator ArticleTranslator
	Budget     BudgetGate

	Keywords      []string
	MaxPerRun     int
	Language      string
	AutoTranslate bool
	TargetLang    string

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// NewSyncService constructs a SyncService from config.
func NewSyncService(db *gorm.DB, provider SearchProvider, publisher Publisher, tr ArticleTranslator, budget BudgetGate, cfg config.SearchConfig) *SyncService {
	return &SyncService{
		DB:            db,
		Provider:      provider,
		Publisher:     publisher,
		Translator:    tr,
		Budget:        budget,
		Keywords:      cfg.Keywords,
		MaxPerRun:     cfg.MaxPerRun,
		Language:      cfg.Language,
		AutoTranslate: cfg.AutoTranslate,
		TargetLang:    cfg.TargetLang,
		Now:           time.Now,
	}
}

// CanSync reports whether the budget leaves room for one run. A run spends
// roughly one search per keyword plus one detail fetch per article, bounded
// here the same way the dashboard reports it.
func (s *SyncService) CanSync(ctx context.Context) bool {
	if s.Budget == nil {
		return true
	}
	return s.Budget.CanMakeRequest(ctx, s.MaxPerRun*2)
}

// Run executes one sync pass. Top-level failures return an error after
// writing a failed log with zero counts; per-article failures only bump the
// skipped count.
func (s *SyncService) Run(ctx context.Context) (*domain.SyncResult, error) {
	if s.Provider == nil || !s.Provider.Enabled() {
		return nil, s.failRun(ctx, ErrProviderNotConfigured)
	}
	if s.Publisher == nil || !s.Publisher.Enabled() {
		return nil, s.failRun(ctx, ErrPublisherNotConfigured)
	}
	if !s.CanSync(ctx) {
		return nil, s.failRun(ctx, ErrBudgetExceeded)
	}

	log.Info().Strs("keywords", s.Keywords).Int("max", s.MaxPerRun).Msg("starting sync run")

	articles, err := s.Provider.SearchByKeywords(ctx, s.Keywords, s.MaxPerRun)
	if err != nil {
		return nil, s.failRun(ctx, fmt.Errorf("article search failed: %w", err))
	}

	res := &domain.SyncResult{Found: len(articles), Errors: []string{}}
	log.Info().Int("found", res.Found).Msg("articles found")

	if s.Language != "both" && s.Language != "" {
		articles = medium.FilterByLanguage(articles, s.Language)
	}

	for i := range articles {
		if err := s.processArticle(ctx, &articles[i]); err != nil {
			if err != errSkipped {
				res.Errors = append(res.Errors, fmt.Sprintf("article %s: %v", articles[i].ID, err))
			}
			res.Skipped++
			continue
		}
		res.Synced++
	}

	errText := strings.Join(res.Errors, "\n")
	if _, err := repo.CreateSyncLog(ctx, s.DB, res.Found, res.Synced, res.Skipped, errText); err != nil {
		return res, fmt.Errorf("record sync log: %w", err)
	}

	log.Info().
		Int("found", res.Found).
		Int("synced", res.Synced).
		Int("skipped", res.Skipped).
		Msg("sync run completed")
	return res, nil
}

// errSkipped marks the deliberate skip paths (dedup, relevance) so they do
// not show up in the error list.
var errSkipped = fmt.Errorf("article skipped")

func (s *SyncService) processArticle(ctx context.Context, a *domain.Article) error {
	exists, err := repo.PublishedExists(ctx, s.DB, a.ID)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		log.Info().Str("article", a.ID).Str("title", a.Title).Msg("article already synced")
		return errSkipped
	}

	if !medium.IsRelevant(a, s.Keywords) {
		log.Info().Str("article", a.ID).Str("title", a.Title).Msg("article not relevant")
		return errSkipped
	}

	if s.AutoTranslate && s.Translator != nil && s.Translator.Enabled() {
		log.Info().Str("article", a.ID).Str("title", a.Title).Msg("translating article")
		tr, err := s.Translator.TranslateArticle(ctx, a, s.TargetLang)
		if err != nil {
			return fmt.Errorf("translation: %w", err)
		}
		if tr != nil {
			if tr.Title != "" {
				a.Title = tr.Title
			}
			if tr.Subtitle != "" {
				a.Subtitle = tr.Subtitle
			}
			if tr.Content != "" {
				a.Content = tr.Content
			}
			a.Lang = s.TargetLang
			a.Translated = true
		}
	}

	post, err := s.Publisher.CreatePost(ctx, a)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	_, err = repo.SavePublishedArticle(ctx, s.DB, &domain.PublishedArticle{
		MediumID:     a.ID,
		Title:        a.Title,
		Author:       a.Author,
		SourceURL:    a.URL,
		WordPressID:  post.ID,
		WordPressURL: post.Link,
		Status:       post.Status,
		SyncedAt:     s.Now(),
	})
	if err != nil {
		// The post exists in the CMS but the dedup row failed; surface it so
		// the operator can reconcile.
		return fmt.Errorf("record published article: %w", err)
	}

	log.Info().Str("article", a.ID).Int("post_id", post.ID).Msg("article synced")
	return nil
}

// failRun writes the failed sync log and passes the error through.
func (s *SyncService) failRun(ctx context.Context, cause error) error {
	if _, err := repo.CreateSyncLog(ctx, s.DB, 0, 0, 0, cause.Error()); err != nil {
		log.Error().Err(err).Msg("could not record failed sync log")
	}
	return cause
}
