package usecase

import "errors"

var (
	// ErrInvalidInput marks requests rejected before any upstream call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTeamNotFound marks an abbreviation or id missing from the roster.
	ErrTeamNotFound = errors.New("team not found")
	// ErrDependencyUnavailable marks an upstream or store that cannot serve right now,
	// including an open circuit breaker.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
