package progress

import (
	"io"
	"log/slog"
	"os"
)

// =============================================================================
// Reporter Interface
// =============================================================================

// Reporter receives progress output. args are slog-style key/value pairs.
// Groups do not nest; StartGroup while a group is open replaces it.
type Reporter interface {
	StartGroup(name string)
	EndGroup()
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warning(msg string, args ...any)
}

// Detect returns a LogReporter for logger. Inside GitHub Actions the
// reporter also writes workflow commands to w, so the job log gets groups
// and annotations while logger still receives every record.
func Detect(w io.Writer, logger *slog.Logger) Reporter {
	logReporter := NewLogReporter(logger)
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return NewMultiReporter(NewActionsReporter(w), logReporter)
	}
	return logReporter
}

// =============================================================================
// MultiReporter
// =============================================================================

// MultiReporter sends progress output to multiple reporters.
type MultiReporter struct {
	Reporters []Reporter
}

// NewMultiReporter creates a reporter that fans out to multiple reporters.
func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	return &MultiReporter{Reporters: reporters}
}

// StartGroup implements Reporter.
func (m *MultiReporter) StartGroup(name string) {
	for _, r := range m.Reporters {
		r.StartGroup(name)
	}
}

// EndGroup implements Reporter.
func (m *MultiReporter) EndGroup() {
	for _, r := range m.Reporters {
		r.EndGroup()
	}
}

// Debug implements Reporter.
func (m *MultiReporter) Debug(msg string, args ...any) {
	for _, r := range m.Reporters {
		r.Debug(msg, args...)
	}
}

// Info implements Reporter.
func (m *MultiReporter) Info(msg string, args ...any) {
	for _, r := range m.Reporters {
		r.Info(msg, args...)
	}
}

// Warning implements Reporter.
func (m *MultiReporter) Warning(msg string, args ...any) {
	for _, r := range m.Reporters {
		r.Warning(msg, args...)
	}
}

// =============================================================================
// NopReporter
// =============================================================================

// NopReporter discards all progress output.
type NopReporter struct{}

func (NopReporter) StartGroup(string)      {}
func (NopReporter) EndGroup()              {}
func (NopReporter) Debug(string, ...any)   {}
func (NopReporter) Info(string, ...any)    {}
func (NopReporter) Warning(string, ...any) {}
