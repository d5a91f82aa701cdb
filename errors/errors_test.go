package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-github/v57/github"

	"github.com/randalmurphal/fetchartifact"
	transfer "github.com/randalmurphal/fetchartifact/http"
)

func ghError(status int) error {
	return &github.ErrorResponse{
		Response: &http.Response{StatusCode: status, Request: &http.Request{Method: "GET"}},
		Message:  http.StatusText(status),
	}
}

func TestCLIError(t *testing.T) {
	err := &CLIError{
		Err:        ErrNotAuthenticated,
		Message:    "Test message",
		Suggestion: "Test suggestion",
		Details:    "Test details",
	}

	if got, want := err.Error(), "Test message\nTest details\n\nTest suggestion"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Error("expected error to unwrap to ErrNotAuthenticated")
	}
}

func TestCLIError_MinimalFields(t *testing.T) {
	err := &CLIError{
		Err:     ErrConnectionFailed,
		Message: "Connection failed",
	}

	if errStr := err.Error(); errStr != "Connection failed" {
		t.Errorf("expected 'Connection failed', got %q", errStr)
	}
}

func TestWrapAuthError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType error
		wantSame bool
	}{
		{"nil error", nil, nil, true},
		{"github 401", fmt.Errorf("list workflows: %w", ghError(http.StatusUnauthorized)), ErrNotAuthenticated, false},
		{"github 403", fmt.Errorf("list runs: %w", ghError(http.StatusForbidden)), ErrPermissionDenied, false},
		{"transfer 403", &transfer.APIError{Service: "artifact", StatusCode: 403}, ErrPermissionDenied, false},
		{"rate limit", &github.RateLimitError{Response: &http.Response{StatusCode: 403, Request: &http.Request{Method: "GET"}}}, ErrRateLimited, false},
		{"transfer 429", &transfer.APIError{Service: "artifact", StatusCode: 429}, ErrRateLimited, false},
		{"github 404", ghError(http.StatusNotFound), nil, true},
		{"plain error", errors.New("disk full"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapAuthError(tt.err, "billyvg/sentry")

			if tt.wantSame {
				if got != tt.err {
					t.Errorf("WrapAuthError() = %v, want unchanged", got)
				}
				return
			}

			var cliErr *CLIError
			if !errors.As(got, &cliErr) {
				t.Fatalf("WrapAuthError() = %T, want *CLIError", got)
			}
			if !errors.Is(got, tt.wantType) {
				t.Errorf("WrapAuthError() does not match %v", tt.wantType)
			}
		})
	}
}

func TestWrapAuthError_PermissionNamesRepo(t *testing.T) {
	err := WrapAuthError(ghError(http.StatusForbidden), "billyvg/sentry")
	if !strings.Contains(err.Error(), "billyvg/sentry") {
		t.Errorf("message should name the repository: %q", err)
	}
}

func TestWrapConnectionError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCLI    bool
		wantSubstr string
	}{
		{"nil", nil, false, ""},
		{"refused", errors.New("dial tcp 127.0.0.1:443: connect: connection refused"), true, "Cannot connect to https://api.github.com"},
		{"tls", errors.New("x509: certificate signed by unknown authority"), true, "TLS/certificate error"},
		{"timeout", errors.New("context deadline exceeded"), true, "timed out"},
		{"read timeout", fmt.Errorf("download: %w", transfer.ErrReadTimeout), true, "timed out"},
		{"other", errors.New("zip: not a valid zip file"), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapConnectionError(tt.err, "https://api.github.com")

			var cliErr *CLIError
			isCLI := errors.As(got, &cliErr)
			if isCLI != tt.wantCLI {
				t.Fatalf("WrapConnectionError() = %v, wantCLI %v", got, tt.wantCLI)
			}
			if !tt.wantCLI {
				if got != tt.err {
					t.Errorf("error changed: %v", got)
				}
				return
			}
			if !errors.Is(got, ErrConnectionFailed) {
				t.Error("expected ErrConnectionFailed")
			}
			if !strings.Contains(got.Error(), tt.wantSubstr) {
				t.Errorf("Error() = %q, want substring %q", got, tt.wantSubstr)
			}
		})
	}
}

func TestWrapNoArtifactsError(t *testing.T) {
	err := &fetchartifact.NoArtifactsError{
		Kind:     fetchartifact.OutcomeNoWorkflow,
		Workflow: "acceptance",
		Branch:   "master",
		Artifact: "visual-snapshots",
	}

	got := WrapNoArtifactsError(err)

	var cliErr *CLIError
	if !errors.As(got, &cliErr) {
		t.Fatalf("WrapNoArtifactsError() = %T", got)
	}
	if !strings.Contains(cliErr.Message, "no workflow") {
		t.Errorf("Message = %q", cliErr.Message)
	}
	if !errors.Is(got, fetchartifact.ErrNoArtifacts) {
		t.Error("wrapped error lost ErrNoArtifacts")
	}

	plain := errors.New("boom")
	if WrapNoArtifactsError(plain) != plain {
		t.Error("unrelated error rewritten")
	}
}

func TestWrap(t *testing.T) {
	noArtifacts := &fetchartifact.NoArtifactsError{Kind: fetchartifact.OutcomeExhaustedSearch}

	if Wrap(nil, "o/r", "") != nil {
		t.Error("Wrap(nil) != nil")
	}
	if got := Wrap(noArtifacts, "o/r", ""); !IsNoArtifacts(got) {
		t.Errorf("Wrap() = %v, want no artifacts", got)
	}
	if got := Wrap(ghError(http.StatusUnauthorized), "o/r", ""); !IsAuthError(got) {
		t.Errorf("Wrap() = %v, want auth error", got)
	}
	if got := Wrap(errors.New("dial tcp: no such host"), "o/r", "https://ghe"); !IsConnectionError(got) {
		t.Errorf("Wrap() = %v, want connection error", got)
	}

	already := NewMissingSettingError("workflow")
	if Wrap(already, "o/r", "") != already {
		t.Error("CLIError wrapped twice")
	}
}

func TestNewMissingSettingError(t *testing.T) {
	err := NewMissingSettingError("max_pages")

	if !errors.Is(err, ErrMissingSetting) {
		t.Error("expected ErrMissingSetting")
	}
	if !strings.Contains(err.Error(), "--max-pages") || !strings.Contains(err.Error(), "FETCH_ARTIFACT_MAX_PAGES") {
		t.Errorf("Error() = %q", err)
	}
}

type customMessenger struct {
	DefaultMessenger
}

func (customMessenger) AuthErrorMessage() (string, string) {
	return "Custom auth.", "Run gh auth login."
}

func TestWithMessenger(t *testing.T) {
	err := WrapAuthError(ghError(http.StatusUnauthorized), "o/r", WithMessenger(customMessenger{}))
	if !strings.HasPrefix(err.Error(), "Custom auth.") {
		t.Errorf("Error() = %q", err)
	}
}

func TestPredicates(t *testing.T) {
	if IsAuthError(nil) || IsPermissionError(nil) || IsConnectionError(nil) || IsNoArtifacts(nil) {
		t.Error("nil matched a predicate")
	}
	if !IsAuthError(ghError(http.StatusUnauthorized)) {
		t.Error("401 not an auth error")
	}
	if !IsPermissionError(&transfer.APIError{StatusCode: 403}) {
		t.Error("transfer 403 not a permission error")
	}
	if IsPermissionError(ghError(http.StatusNotFound)) {
		t.Error("404 is not a permission error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"no artifacts", fmt.Errorf("download: %w", fetchartifact.ErrNoArtifacts), ExitNoArtifacts},
		{"wrapped no artifacts", WrapNoArtifactsError(&fetchartifact.NoArtifactsError{}), ExitNoArtifacts},
		{"other", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
