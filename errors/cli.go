package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v57/github"

	"github.com/randalmurphal/fetchartifact"
	transfer "github.com/randalmurphal/fetchartifact/http"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
type ErrorMessenger interface {
	// AuthErrorMessage returns the message and suggestion for a missing
	// or rejected token.
	AuthErrorMessage() (message, suggestion string)

	// PermissionDeniedMessage returns the message and suggestion when the
	// token cannot read the repository's Actions data.
	PermissionDeniedMessage(repo string) (message, suggestion string)

	// RateLimitedMessage returns the message and suggestion for rate limits.
	RateLimitedMessage() (message, suggestion string)

	// ConnectionErrorMessage returns the message and suggestion for
	// connection errors against serverURL.
	ConnectionErrorMessage(serverURL string) (message, suggestion string)

	// TLSErrorMessage returns the message and suggestion for TLS/certificate errors.
	TLSErrorMessage(serverURL string) (message, suggestion string)

	// TimeoutErrorMessage returns the message and suggestion for timeout errors.
	TimeoutErrorMessage(serverURL string) (message, suggestion string)

	// NoArtifactsMessage returns the message and suggestion for an empty
	// search. reason describes how the search ended.
	NoArtifactsMessage(reason string) (message, suggestion string)

	// MissingSettingMessage returns the message and suggestion for a
	// required setting with no value.
	MissingSettingMessage(key string) (message, suggestion string)
}

// DefaultMessenger provides default error messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) AuthErrorMessage() (string, string) {
	return "GitHub rejected the request as unauthenticated.",
		"Set GITHUB_TOKEN or FETCH_ARTIFACT_TOKEN to a token that can read the repository."
}

func (m DefaultMessenger) PermissionDeniedMessage(repo string) (string, string) {
	return fmt.Sprintf("The token cannot read workflow artifacts for %s.", repo),
		"Grant the token the actions:read permission, or use a token with access to the repository."
}

func (m DefaultMessenger) RateLimitedMessage() (string, string) {
	return "GitHub API rate limit exceeded.",
		"Wait for the limit to reset, or authenticate to get a higher limit."
}

func (m DefaultMessenger) ConnectionErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Cannot connect to %s", serverURL),
		"Check that:\n  - The API URL is correct\n  - Your network connection is working"
}

func (m DefaultMessenger) TLSErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("TLS/certificate error connecting to %s", serverURL),
		"Check that the server certificate is valid."
}

func (m DefaultMessenger) TimeoutErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Connection to %s timed out", serverURL),
		"The server may be overloaded or unreachable.\nTry again in a moment."
}

func (m DefaultMessenger) NoArtifactsMessage(reason string) (string, string) {
	return fmt.Sprintf("No artifacts found (%s).", reason),
		"Check the workflow name, branch and artifact name. Artifacts also expire after their retention period."
}

func (m DefaultMessenger) MissingSettingMessage(key string) (string, string) {
	return fmt.Sprintf("No value for %q.", key),
		fmt.Sprintf("Pass --%s, set FETCH_ARTIFACT_%s, or add it to .fetch-artifact.yaml.",
			strings.ReplaceAll(key, "_", "-"), strings.ToUpper(key))
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) ErrorMessenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

// Wrap applies every wrapper in turn and returns the first rewrite.
// repo is owner/repo and serverURL the API root, used in messages.
func Wrap(err error, repo, serverURL string, opts ...Option) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	for _, wrap := range []func(error) error{
		func(err error) error { return WrapNoArtifactsError(err, opts...) },
		func(err error) error { return WrapAuthError(err, repo, opts...) },
		func(err error) error { return WrapConnectionError(err, serverURL, opts...) },
	} {
		if wrapped := wrap(err); wrapped != err {
			return wrapped
		}
	}
	return err
}

// WrapNoArtifactsError explains an empty search.
func WrapNoArtifactsError(err error, opts ...Option) error {
	if !errors.Is(err, fetchartifact.ErrNoArtifacts) {
		return err
	}

	reason := "nothing matched"
	var noArtifacts *fetchartifact.NoArtifactsError
	if errors.As(err, &noArtifacts) {
		reason = noArtifacts.Kind.String()
	}

	msg, suggestion := getMessenger(opts).NoArtifactsMessage(reason)
	return &CLIError{
		Err:        err,
		Message:    msg,
		Details:    err.Error(),
		Suggestion: suggestion,
	}
}

// WrapAuthError turns 401, 403 and rate-limit responses into guidance.
func WrapAuthError(err error, repo string, opts ...Option) error {
	if err == nil {
		return nil
	}

	messenger := getMessenger(opts)

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) || errors.Is(err, transfer.ErrRateLimited) {
		msg, suggestion := messenger.RateLimitedMessage()
		return &CLIError{Err: ErrRateLimited, Message: msg, Suggestion: suggestion}
	}

	switch statusCode(err) {
	case http.StatusUnauthorized:
		msg, suggestion := messenger.AuthErrorMessage()
		return &CLIError{Err: ErrNotAuthenticated, Message: msg, Suggestion: suggestion}
	case http.StatusForbidden:
		msg, suggestion := messenger.PermissionDeniedMessage(repo)
		return &CLIError{Err: ErrPermissionDenied, Message: msg, Details: err.Error(), Suggestion: suggestion}
	}

	return err
}

// WrapConnectionError wraps connection-related errors with helpful guidance.
func WrapConnectionError(err error, serverURL string, opts ...Option) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	messenger := getMessenger(opts)

	// Check for connection refused
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp") {
		msg, suggestion := messenger.ConnectionErrorMessage(serverURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}

	// Check for TLS/certificate errors
	if strings.Contains(errStr, "certificate") || strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") {
		msg, suggestion := messenger.TLSErrorMessage(serverURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}

	// Check for timeout
	if errors.Is(err, transfer.ErrReadTimeout) ||
		strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		msg, suggestion := messenger.TimeoutErrorMessage(serverURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	return err
}

// NewMissingSettingError reports a required setting with no value.
func NewMissingSettingError(key string, opts ...Option) error {
	msg, suggestion := getMessenger(opts).MissingSettingMessage(key)
	return &CLIError{
		Err:        fmt.Errorf("%w: %s", ErrMissingSetting, key),
		Message:    msg,
		Suggestion: suggestion,
	}
}

// statusCode extracts the HTTP status from API and transfer errors.
func statusCode(err error) int {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	var apiErr *transfer.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
