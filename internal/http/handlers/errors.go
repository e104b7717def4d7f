package handlers

// Stable machine-readable error codes returned in ErrorResponse.Code.
// Generic codes mirror HTTP status semantics; the domain-specific ones
// distinguish failures the status alone cannot convey, such as a sync
// refused by the monthly API budget versus one that crashed mid-run.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeBudgetExceeded   = "budget_exceeded"
	ErrCodeNotConfigured    = "not_configured"
	ErrCodeSyncFailed       = "sync_failed"
	ErrCodePublishFailed    = "publish_failed"
	ErrCodeTranslateFailed  = "translate_failed"
	ErrCodeConnectionFailed = "connection_failed"
	ErrCodeSettingsInvalid  = "settings_invalid"
)
