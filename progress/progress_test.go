package progress

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// =============================================================================
// ActionsReporter Tests
// =============================================================================

func TestActionsReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewActionsReporter(&buf)

	r.StartGroup(`resolve workflow:"ci", branch:"main"`)
	r.Debug("checking run", "url", "https://github.com/o/r/actions/runs/1")
	r.Info("found artifact")
	r.Warning("artifact not found", "name", "visual-snapshots")
	r.EndGroup()

	want := strings.Join([]string{
		`::group::resolve workflow:"ci", branch:"main"`,
		"::debug::checking run url=https://github.com/o/r/actions/runs/1",
		"found artifact",
		"::warning::artifact not found name=visual-snapshots",
		"::endgroup::",
		"",
	}, "\n")

	if got := buf.String(); got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestActionsReporter_EscapesData(t *testing.T) {
	var buf bytes.Buffer
	NewActionsReporter(&buf).Warning("100% done\nnext line")

	if got, want := buf.String(), "::warning::100%25 done%0Anext line\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		args []any
		want string
	}{
		{"no args", "hello", nil, "hello"},
		{"pairs", "run", []any{"id", 42, "sha", "abc"}, "run id=42 sha=abc"},
		{"dangling key", "run", []any{"id"}, "run id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := format(tt.msg, tt.args); got != tt.want {
				t.Errorf("format() = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// LogReporter Tests
// =============================================================================

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := NewLogReporter(logger)

	r.StartGroup("search")
	r.Warning("no runs", "branch", "main")
	r.EndGroup()
	r.Info("outside")

	output := buf.String()
	if !strings.Contains(output, "level=WARN") || !strings.Contains(output, "msg=\"no runs\" group=search branch=main") {
		t.Errorf("warning line missing group attribute: %s", output)
	}
	if !strings.Contains(output, "group finished") {
		t.Errorf("missing group end: %s", output)
	}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if last := lines[len(lines)-1]; strings.Contains(last, "group=") {
		t.Errorf("line after EndGroup still grouped: %s", last)
	}
}

func TestLogReporter_NilLogger(t *testing.T) {
	r := NewLogReporter(nil)
	if r.Logger == nil {
		t.Error("NewLogReporter should use default logger when nil")
	}
}

// =============================================================================
// MultiReporter / NopReporter / Detect Tests
// =============================================================================

func TestMultiReporter(t *testing.T) {
	var a, b bytes.Buffer
	m := NewMultiReporter(NewActionsReporter(&a), NopReporter{}, NewActionsReporter(&b))

	m.StartGroup("g")
	m.Debug("d")
	m.Info("i")
	m.Warning("w")
	m.EndGroup()

	if a.String() != b.String() {
		t.Errorf("reporters diverged:\n%s\n%s", a.String(), b.String())
	}
	if strings.Count(a.String(), "\n") != 5 {
		t.Errorf("expected 5 lines, got %q", a.String())
	}
}

func TestDetect(t *testing.T) {
	t.Run("inside actions", func(t *testing.T) {
		t.Setenv("GITHUB_ACTIONS", "true")
		var commands, logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))

		r := Detect(&commands, logger)
		if _, ok := r.(*MultiReporter); !ok {
			t.Fatalf("Detect() = %T, want *MultiReporter", r)
		}
		r.StartGroup("resolve")
		r.Warning("workflow not found", "workflow", "acceptance")
		r.EndGroup()

		if !strings.Contains(commands.String(), "::warning::workflow not found workflow=acceptance\n") {
			t.Errorf("workflow commands = %q", commands.String())
		}
		if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "group=resolve") {
			t.Errorf("log output = %q", logs.String())
		}
	})

	t.Run("outside actions", func(t *testing.T) {
		t.Setenv("GITHUB_ACTIONS", "")
		if _, ok := Detect(&bytes.Buffer{}, nil).(*LogReporter); !ok {
			t.Error("expected LogReporter")
		}
	})
}
