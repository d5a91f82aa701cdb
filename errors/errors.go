package errors

import "errors"

// Common CLI errors with actionable guidance.
var (
	// ErrNotAuthenticated indicates the token is missing or rejected.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied indicates the token lacks the actions:read scope
	// for the repository.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("rate limited")

	// ErrConnectionFailed indicates the API or archive host is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrMissingSetting indicates a required setting has no value.
	ErrMissingSetting = errors.New("missing setting")
)

// Exit codes returned by the CLI.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitNoArtifacts = 2
)
