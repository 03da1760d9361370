package domain

import "errors"

// Domain errors represent error conditions in the offlinegate domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrCacheMiss is returned by cache lookups when no entry exists.
	// It is a control-flow branch for the strategies, not a failure.
	ErrCacheMiss = errors.New("offlinegate: cache miss")

	// ErrAlreadyRunning is returned when Start() is called on a running gateway.
	ErrAlreadyRunning = errors.New("offlinegate: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped gateway.
	ErrNotRunning = errors.New("offlinegate: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("offlinegate: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("offlinegate: invalid configuration")
)
