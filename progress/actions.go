package progress

import (
	"fmt"
	"io"
	"strings"
)

// ActionsReporter writes GitHub Actions workflow commands.
// See https://docs.github.com/actions/using-workflows/workflow-commands-for-github-actions.
type ActionsReporter struct {
	w io.Writer
}

// NewActionsReporter creates a reporter writing workflow commands to w.
func NewActionsReporter(w io.Writer) *ActionsReporter {
	return &ActionsReporter{w: w}
}

// StartGroup implements Reporter.
func (r *ActionsReporter) StartGroup(name string) {
	r.command("group", name)
}

// EndGroup implements Reporter.
func (r *ActionsReporter) EndGroup() {
	r.command("endgroup", "")
}

// Debug implements Reporter. Debug lines only show when step debug
// logging is enabled for the run.
func (r *ActionsReporter) Debug(msg string, args ...any) {
	r.command("debug", format(msg, args))
}

// Info implements Reporter.
func (r *ActionsReporter) Info(msg string, args ...any) {
	fmt.Fprintln(r.w, format(msg, args))
}

// Warning implements Reporter.
func (r *ActionsReporter) Warning(msg string, args ...any) {
	r.command("warning", format(msg, args))
}

func (r *ActionsReporter) command(name, message string) {
	fmt.Fprintf(r.w, "::%s::%s\n", name, escapeData(message))
}

// format renders key/value pairs after the message as key=value.
func format(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}

	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		sb.WriteByte(' ')
		if i+1 >= len(args) {
			fmt.Fprintf(&sb, "%v", args[i])
			break
		}
		fmt.Fprintf(&sb, "%v=%v", args[i], args[i+1])
	}
	return sb.String()
}

var dataEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

func escapeData(s string) string {
	return dataEscaper.Replace(s)
}
