// Command server runs the article sync service: the daily scheduler, the
// TTL article cache, and the JSON dashboard API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/demandei/mediumsync/internal/config"
	httpapi "github.com/demandei/mediumsync/internal/http"
	"github.com/demandei/mediumsync/internal/medium"
	"github.com/demandei/mediumsync/internal/observability"
	"github.com/demandei/mediumsync/internal/repo"
	"github.com/demandei/mediumsync/internal/schedule"
	"github.com/demandei/mediumsync/internal/services"
	"github.com/demandei/mediumsync/internal/settings"
	"github.com/demandei/mediumsync/internal/sysutil"
	"github.com/demandei/mediumsync/internal/translate"
	"github.com/demandei/mediumsync/internal/wordpress"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("could not open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("db tracing not enabled")
		}
	}

	// Service wiring: the usage ledger meters every provider call, the
	// cache sits in front of the provider, and the sync service drives
	// discover -> translate -> publish.
	usageSvc := services.NewUsageService(db, cfg.Usage)
	provider := medium.NewClient(cfg.Medium, usageSvc)

	translator := translate.New(nil)
	if cfg.Gemini.APIKey != "" {
		translator = translate.New(translate.NewGeminiClient(cfg.Gemini))
	}

	publisher := wordpress.NewClient(cfg.WordPress)
	cacheSvc := services.NewCacheService(db, provider, translator, cfg.Cache)
	syncSvc := services.NewSyncService(db, provider, publisher, translator, usageSvc, cfg.Search)

	sched, err := schedule.New(cfg.Schedule, syncSvc.Run)
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler setup failed")
	}
	sched.Start()
	if auto, err := repo.GetAutomationSetting(ctx, db); err != nil {
		log.Warn().Err(err).Msg("could not read automation state, scheduler stays active")
	} else if !auto.Enabled {
		sched.Pause()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:        db,
		Sync:      syncSvc,
		Cache:     cacheSvc,
		Usage:     usageSvc,
		Publisher: publisher,
		Scheduler: sched,
		Settings:  settings.NewManager(cfg),
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sched.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("bye")
}
