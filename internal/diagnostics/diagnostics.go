// Package diagnostics formats the two kinds of run-visible output the
// checker produces: fatal aborts, and the recoverable type
// mismatches check_one collects along the way. It has no column/caret
// rendering — the export format only ever carries line numbers, not
// byte offsets, so there is nothing to underline.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Reporter writes diagnostics to an output stream with level-appropriate
// coloring, leaving out the source-excerpt machinery a flat export file
// has no use for.
type Reporter struct {
	out io.Writer
}

// NewReporter returns a Reporter writing to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Fatal formats a fatal diagnostic and wraps it as an error the caller can
// return up to main. Malformed input and kernel invariant violations both
// abort the whole run.
func (r *Reporter) Fatal(line int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	bold := color.New(color.FgRed, color.Bold).SprintFunc()
	if line > 0 {
		fmt.Fprintf(r.out, "%s: %s\n  --> line %d\n", bold("error"), msg, line)
		return errors.Errorf("line %d: %s", line, msg)
	}
	fmt.Fprintf(r.out, "%s: %s\n", bold("error"), msg)
	return errors.New(msg)
}

// Mismatch reports a recoverable declaration-level type mismatch and
// continues — the caller does not abort for these.
func (r *Reporter) Mismatch(decl, detail string) {
	label := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Fprintf(r.out, "%s: declaration %s: %s\n", label("mismatch"), decl, detail)
}

// Success prints the completion line, colored green when standard output
// is a terminal.
func (r *Reporter) Success() {
	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintln(r.out, ok("no errors in declarations"))
}
