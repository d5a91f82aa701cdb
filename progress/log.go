package progress

import (
	"log/slog"
)

// LogReporter writes progress through slog. Lines emitted inside a group
// carry a "group" attribute.
type LogReporter struct {
	Logger *slog.Logger
	group  string
}

// NewLogReporter creates a reporter that logs to the given logger.
// If logger is nil, uses the default slog logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{Logger: logger}
}

// StartGroup implements Reporter.
func (r *LogReporter) StartGroup(name string) {
	r.group = name
	r.Logger.Debug("group started", "group", name)
}

// EndGroup implements Reporter.
func (r *LogReporter) EndGroup() {
	if r.group == "" {
		return
	}
	r.Logger.Debug("group finished", "group", r.group)
	r.group = ""
}

// Debug implements Reporter.
func (r *LogReporter) Debug(msg string, args ...any) {
	r.Logger.Debug(msg, r.withGroup(args)...)
}

// Info implements Reporter.
func (r *LogReporter) Info(msg string, args ...any) {
	r.Logger.Info(msg, r.withGroup(args)...)
}

// Warning implements Reporter.
func (r *LogReporter) Warning(msg string, args ...any) {
	r.Logger.Warn(msg, r.withGroup(args)...)
}

func (r *LogReporter) withGroup(args []any) []any {
	if r.group == "" {
		return args
	}
	return append([]any{"group", r.group}, args...)
}
