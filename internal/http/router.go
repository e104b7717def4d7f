// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation IDs, redacted logging, panic recovery, metrics,
// compression, rate limiting, CORS, and security headers.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured access logs with credential scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. gzip compression
//  7. Metrics and the /metrics endpoint
//  8. Rate limiter (per client IP)
//  9. CORS and security headers
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/demandei/mediumsync/internal/config"
	"github.com/demandei/mediumsync/internal/http/handlers"
	"github.com/demandei/mediumsync/internal/http/middleware"
	"github.com/demandei/mediumsync/internal/services"
	"github.com/demandei/mediumsync/internal/settings"
	"github.com/demandei/mediumsync/internal/wordpress"
)

// Deps carries the constructed application services the router mounts.
// Scheduler may be nil when the cron job is not running.
type Deps struct {
	DB        *gorm.DB
	Sync      *services.SyncService
	Cache     *services.CacheService
	Usage     *services.UsageService
	Publisher *wordpress.Client
	Scheduler handlers.Scheduler
	Settings  *settings.Manager
}

// RegisterRoutes attaches all middleware and endpoints to the Gin engine
// and mounts the versioned dashboard API under cfg.APIBasePath.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Access logs with credential scrubbing
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB); settings imports are small
	r.Use(limitBody(1 << 20))

	// 6) Compress article listings; cached bodies are large
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 9) CORS posture (allow all when no origins configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header, which
		// gin-contrib/cors would otherwise skip.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers; the dashboard exposes usage figures and settings,
	// so responses are marked uncacheable.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := handlers.New(
		deps.DB,
		deps.Sync,
		deps.Cache,
		deps.Usage,
		deps.Publisher,
		deps.Scheduler,
		deps.Settings,
		handlers.Configured{
			Medium:    cfg.Medium.APIKey != "",
			WordPress: cfg.WordPress.URL != "",
			Gemini:    cfg.Gemini.APIKey != "",
		},
		cfg.Search.TargetLang,
	)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("/status", h.Status)
		api.GET("/usage", h.Usage)
		api.GET("/articles", h.Articles)
		api.GET("/logs", h.Logs)

		api.POST("/sync", h.RunSync)
		api.POST("/automation/toggle", h.ToggleAutomation)

		api.GET("/cache", h.ListCache)
		api.POST("/cache/clear-expired", h.ClearExpiredCache)
		api.POST("/cache/retranslate", h.Retranslate)
		api.POST("/cache/:id/publish", h.PublishFromCache)
		api.GET("/trending", h.Trending)
		api.GET("/topics", h.Topics)

		api.GET("/settings", h.GetSettings)
		api.POST("/settings", h.UpdateSettings)
		api.POST("/test-connection", h.TestConnection)
	}
}

// limitBody caps the request body size using http.MaxBytesReader; reads
// beyond the cap error downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
