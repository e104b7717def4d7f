// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings for the
// HTTP server, logging, the embedded database, the source content API, the
// WordPress target, the Gemini rewrite provider, search keywords, the sync
// schedule, cache TTLs, and the monthly API budget.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// MediumConfig holds credentials and limits for the source content API
// (a RapidAPI-hosted Medium gateway). Every call against it is billable.
type MediumConfig struct {
	APIKey  string        // RAPIDAPI_KEY
	APIHost string        // RAPIDAPI_HOST
	Timeout time.Duration // per-request timeout
	// Throttle is the fixed delay between consecutive article fetches,
	// required by the upstream rate limits.
	Throttle time.Duration
}

// WordPressConfig holds the target CMS credentials and publishing defaults.
type WordPressConfig struct {
	URL        string // WORDPRESS_URL (site root, no trailing slash)
	Username   string // WORDPRESS_USERNAME
	Password   string // WORDPRESS_PASSWORD (application password)
	AuthorName string // AUTHOR_NAME
	Category   string // CATEGORY_NAME default category
	PostStatus string // POST_STATUS: draft|publish
	Timeout    time.Duration
}

// GeminiConfig holds the rewrite provider credentials.
type GeminiConfig struct {
	APIKey        string // GEMINI_API_KEY
	Model         string // GEMINI_MODEL
	FallbackModel string // used when the configured model fails to initialize
	Timeout       time.Duration
}

// SearchConfig drives article discovery.
type SearchConfig struct {
	Keywords      []string // SEARCH_KEYWORDS, comma separated
	MaxPerRun     int      // MAX_ARTICLES_PER_RUN
	Language      string   // LANGUAGE_PREFERENCE: en|pt|both
	AutoTranslate bool     // AUTO_TRANSLATE
	TargetLang    string   // target language code for the rewrite step
}

// ScheduleConfig drives the daily sync job.
type ScheduleConfig struct {
	Hour     int    // SCHEDULE_HOUR (0-23)
	Minute   int    // SCHEDULE_MINUTE (0-59)
	Timezone string // TIMEZONE, IANA name
}

// UsageConfig bounds monthly consumption of the paid source API.
type UsageConfig struct {
	MonthlyLimit int // REQUESTS_LIMIT per calendar month
	// Baseline seeds a freshly created month counter. It accounts for quota
	// consumed outside this system's observation window.
	Baseline int
}

// CacheConfig holds artifact TTLs.
type CacheConfig struct {
	ArticleTTL  time.Duration // per-article cache rows
	TrendingTTL time.Duration // per-(tag,mode) trending result sets
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool

	// App
	DBPath       string // SQLite path
	SettingsPath string // flat JSON settings file
	APIBasePath  string

	// Rate limiting (dashboard edge)
	RateRPS   float64
	RateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Domain
	Medium    MediumConfig
	WordPress WordPressConfig
	Gemini    GeminiConfig
	Search    SearchConfig
	Schedule  ScheduleConfig
	Usage     UsageConfig
	Cache     CacheConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		// A manual sync blocks the request for the whole run, so the write
		// timeout must cover the sequential article loop.
		WriteTimeout:   getdur("WRITE_TIMEOUT", 10*time.Minute),
		IdleTimeout:    getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:        strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// App
		DBPath:       getenv("DB_PATH", "data/mediumsync.db"),
		SettingsPath: getenv("SETTINGS_PATH", "data/settings.json"),
		APIBasePath:  normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		Medium: MediumConfig{
			APIKey:   getenv("RAPIDAPI_KEY", ""),
			APIHost:  getenv("RAPIDAPI_HOST", "medium2.p.rapidapi.com"),
			Timeout:  getdur("MEDIUM_TIMEOUT", 10*time.Second),
			Throttle: getdur("MEDIUM_THROTTLE", 500*time.Millisecond),
		},
		WordPress: WordPressConfig{
			URL:        strings.TrimRight(getenv("WORDPRESS_URL", ""), "/"),
			Username:   getenv("WORDPRESS_USERNAME", ""),
			Password:   getenv("WORDPRESS_PASSWORD", ""),
			AuthorName: getenv("AUTHOR_NAME", "Demandei"),
			Category:   getenv("CATEGORY_NAME", "Tecnologia"),
			PostStatus: getenv("POST_STATUS", "draft"),
			Timeout:    getdur("WORDPRESS_TIMEOUT", 30*time.Second),
		},
		Gemini: GeminiConfig{
			APIKey:        getenv("GEMINI_API_KEY", ""),
			Model:         getenv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
			FallbackModel: getenv("GEMINI_FALLBACK_MODEL", "gemini-pro"),
			Timeout:       getdur("GEMINI_TIMEOUT", 60*time.Second),
		},
		Search: SearchConfig{
			Keywords:      splitCSV(getenv("SEARCH_KEYWORDS", "python,javascript,react,nodejs,AI,machine learning")),
			MaxPerRun:     getint("MAX_ARTICLES_PER_RUN", 2),
			Language:      strings.ToLower(getenv("LANGUAGE_PREFERENCE", "both")),
			AutoTranslate: getbool("AUTO_TRANSLATE", true),
			TargetLang:    strings.ToLower(getenv("TARGET_LANGUAGE", "pt")),
		},
		Schedule: ScheduleConfig{
			Hour:     getint("SCHEDULE_HOUR", 8),
			Minute:   getint("SCHEDULE_MINUTE", 0),
			Timezone: getenv("TIMEZONE", "America/Sao_Paulo"),
		},
		Usage: UsageConfig{
			MonthlyLimit: getint("REQUESTS_LIMIT", 2500),
			Baseline:     getint("REQUESTS_BASELINE", 126),
		},
		Cache: CacheConfig{
			ArticleTTL:  getdur("ARTICLE_CACHE_TTL", 7*24*time.Hour),
			TrendingTTL: getdur("TRENDING_CACHE_TTL", 24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "mediumsync"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	switch cfg.Search.Language {
	case "en", "pt", "both":
	default:
		cfg.Search.Language = "both"
	}
	switch cfg.WordPress.PostStatus {
	case "draft", "publish", "pending", "private":
	default:
		cfg.WordPress.PostStatus = "draft"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.Schedule.Hour < 0 || cfg.Schedule.Hour > 23 {
		return cfg, errors.New("SCHEDULE_HOUR must be in [0,23]")
	}
	if cfg.Schedule.Minute < 0 || cfg.Schedule.Minute > 59 {
		return cfg, errors.New("SCHEDULE_MINUTE must be in [0,59]")
	}
	if cfg.Search.MaxPerRun < 1 {
		return cfg, errors.New("MAX_ARTICLES_PER_RUN must be >= 1")
	}
	if cfg.Usage.MonthlyLimit < 1 {
		return cfg, errors.New("REQUESTS_LIMIT must be >= 1")
	}
	if cfg.Usage.Baseline < 0 || cfg.Usage.Baseline >= cfg.Usage.MonthlyLimit {
		return cfg, errors.New("REQUESTS_BASELINE must be in [0, REQUESTS_LIMIT)")
	}
	if cfg.Cache.ArticleTTL <= 0 || cfg.Cache.TrendingTTL <= 0 {
		return cfg, errors.New("cache TTLs must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// Validate reports which credentials a fully functional deployment is still
// missing. The server starts regardless; the dashboard surfaces the issues.
func (c Config) Validate() []string {
	var issues []string
	if c.Medium.APIKey == "" {
		issues = append(issues, "RAPIDAPI_KEY is required")
	}
	if c.WordPress.URL == "" {
		issues = append(issues, "WORDPRESS_URL is required")
	}
	if c.WordPress.Username == "" {
		issues = append(issues, "WORDPRESS_USERNAME is required")
	}
	if c.WordPress.Password == "" {
		issues = append(issues, "WORDPRESS_PASSWORD is required")
	}
	if len(c.Search.Keywords) == 0 {
		issues = append(issues, "at least one SEARCH_KEYWORD is required")
	}
	if c.Search.AutoTranslate && c.Gemini.APIKey == "" {
		issues = append(issues, "AUTO_TRANSLATE enabled but GEMINI_API_KEY is missing")
	}
	return issues
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
