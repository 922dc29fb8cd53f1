// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across cache/service/sync layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary sign-in lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrSyncTimeout indicates a multi-thread chat pass exceeded its join deadline.
	ErrSyncTimeout = errors.New("sync timeout")

	// ErrNoSession indicates no authenticated user is available.
	ErrNoSession = errors.New("no active session")
)
