// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, a structured HTTP logger that scrubs
// credential material from request metadata before emitting logs. The service
// carries three sets of secrets (the RapidAPI key, the Gemini key, and the
// WordPress application password) and all of them travel in headers or query
// strings at some point, so the access log must never echo them.
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders: []string{"X-Admin-Token"},
//	}))
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders specifies extra HTTP header names whose values will be fully
// replaced with "[REDACTED]". Matching is case-insensitive and merged with
// the built-in sensitive headers.
type RedactOptions struct {
	MaskHeaders []string
}

// builtinMaskedHeaders are always fully masked: auth material and the
// upstream API key headers this service itself uses.
var builtinMaskedHeaders = []string{
	"authorization",
	"cookie",
	"set-cookie",
	"x-rapidapi-key",
	"x-goog-api-key",
	"x-api-key",
}

// secretParamRE matches query parameters that carry credentials, e.g.
// "api_key=...", "rapidapi_key=...", "password=...", "token=...".
var secretParamRE = regexp.MustCompile(`(?i)\b(api_?key|rapidapi_key|password|token|secret)=[^&\s]*`)

// tokenRE matches bare credential-shaped strings: 24+ chars of key alphabet.
var tokenRE = regexp.MustCompile(`\b[A-Za-z0-9_\-]{24,}\b`)

// RedactingLogger returns a Gin middleware that logs HTTP requests with
// credential values scrubbed.
//
// Behavior:
//   - Logs method, path, query string, status, response size, latency,
//     and request headers (with scrubbing applied).
//   - Fully masks the built-in sensitive headers and any additional headers
//     provided in opts.MaskHeaders.
//   - Replaces credential-bearing query parameters and bare key-shaped
//     strings in query and header values.
//   - Emits at INFO level by default, WARN for 4xx, ERROR for 5xx.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	redact := func(s string) string {
		if s == "" {
			return s
		}
		out := secretParamRE.ReplaceAllString(s, "$1=[REDACTED]")
		out = tokenRE.ReplaceAllString(out, "[REDACTED:key]")
		return out
	}

	maskHeaders := make(map[string]struct{}, len(builtinMaskedHeaders)+len(opts.MaskHeaders))
	for _, h := range builtinMaskedHeaders {
		maskHeaders[h] = struct{}{}
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := redact(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			val := strings.Join(vv, ", ")
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(val)
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		size := c.Writer.Size()

		reqID := c.Writer.Header().Get("X-Request-ID")
		if reqID == "" {
			reqID = c.GetHeader("X-Request-ID")
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", size).
			Dur("latency", latency).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
