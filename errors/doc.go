// Package errors turns fetch-artifact failures into user-facing CLI errors.
//
// Core types:
//   - CLIError: Wraps errors with message, suggestion, and details
//   - ErrorMessenger: Interface for customizing error messages
//
// Sentinel errors for common scenarios:
//   - ErrNotAuthenticated: Token missing or rejected
//   - ErrPermissionDenied: Token cannot read Actions data
//   - ErrRateLimited: API rate limit hit
//   - ErrConnectionFailed: API or archive host unreachable
//   - ErrMissingSetting: Required setting has no value
//
// Example usage:
//
//	result, err := fetchartifact.Download(ctx, api, req)
//	if err != nil {
//	    err = errors.Wrap(err, "getsentry/sentry", "https://api.github.com")
//	    fmt.Fprintln(os.Stderr, err)
//	    os.Exit(errors.ExitCode(err))
//	}
package errors
