package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/randalmurphal/fetchartifact"
)

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	return statusCode(err) == http.StatusUnauthorized
}

// IsPermissionError checks if an error is permission-related.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrPermissionDenied) {
		return true
	}
	return statusCode(err) == http.StatusForbidden
}

// IsConnectionError checks if an error is connection-related.
// This includes TLS errors, timeouts, and network connectivity issues.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrConnectionFailed) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused", "no such host", "network is unreachable", "dial tcp",
		"certificate", "tls", "x509",
		"timeout", "deadline exceeded",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// IsNoArtifacts checks if the search came up empty.
func IsNoArtifacts(err error) bool {
	return errors.Is(err, fetchartifact.ErrNoArtifacts)
}

// ExitCode maps an error to the process exit status: ExitOK for nil,
// ExitNoArtifacts for an empty search, ExitFailure otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsNoArtifacts(err):
		return ExitNoArtifacts
	default:
		return ExitFailure
	}
}
