package fetchartifact

import (
	"errors"
	"fmt"
)

var (
	// ErrNoArtifacts indicates the search finished without a matching
	// artifact. It is the only absence error callers need to check.
	ErrNoArtifacts = errors.New("no artifacts found")

	// ErrInvalidRequest indicates a request failed validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// NoArtifactsError reports why the search came up empty.
type NoArtifactsError struct {
	Kind     OutcomeKind
	Workflow string
	Branch   string
	Artifact string
	Commit   string
}

func (e *NoArtifactsError) Error() string {
	msg := fmt.Sprintf("no artifacts found: %s (workflow %q, branch %q, artifact %q",
		e.Kind, e.Workflow, e.Branch, e.Artifact)
	if e.Commit != "" {
		msg += fmt.Sprintf(", commit %s", e.Commit)
	}
	return msg + ")"
}

func (e *NoArtifactsError) Unwrap() error {
	return ErrNoArtifacts
}

// InvalidRequestError wraps a validation failure.
type InvalidRequestError struct {
	Err error
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Err.Error()
}

// Unwrap exposes both ErrInvalidRequest and the underlying validation error.
func (e *InvalidRequestError) Unwrap() []error {
	return []error{ErrInvalidRequest, e.Err}
}
