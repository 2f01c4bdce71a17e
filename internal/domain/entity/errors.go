package entity

import "errors"

// Standard domain errors
var (
	// ErrTransientService marks a failed or timed-out completion/retrieval call.
	ErrTransientService = errors.New("completion or retrieval service unavailable")

	// ErrMalformedModelOutput marks a model response that could not be parsed.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrUnknownCategory marks a classifier label outside the known set.
	ErrUnknownCategory = errors.New("unknown trader category")

	// ErrGeolocationUnavailable marks a failed IP or coordinate lookup.
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")

	// ErrAuditPersistence marks a failed audit append.
	ErrAuditPersistence = errors.New("audit record could not be persisted")

	ErrRateLimitExceeded = errors.New("rate limit exceeded: too many queries")
	ErrInvalidRequest    = errors.New("invalid request parameters")
	ErrUnauthorized      = errors.New("officer authentication required")
)
