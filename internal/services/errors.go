// Package services defines the business logic for usage budgeting, article
// caching, and the sync pipeline. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// Translation into user-facing messages or HTTP status codes belongs in the
// handler layer.
package services

import "errors"

var (
	// ErrBudgetExceeded is returned when the monthly source-API budget cannot
	// cover the requests a sync run would spend.
	ErrBudgetExceeded = errors.New("monthly API request budget exceeded")

	// ErrProviderNotConfigured is returned when an operation needs the source
	// API but no credentials are configured.
	ErrProviderNotConfigured = errors.New("source API not configured")

	// ErrPublisherNotConfigured is returned when an operation needs the
	// WordPress target but no credentials are configured.
	ErrPublisherNotConfigured = errors.New("wordpress target not configured")

	// ErrArticleNotFound indicates that the requested article exists neither
	// in the cache nor at the source.
	ErrArticleNotFound = errors.New("article not found")

	// ErrNoContent is returned when an article is published without any body
	// content to render.
	ErrNoContent = errors.New("article has no content")
)
