package kernel

import "fmt"

// faultKind classifies the fatal causes internal to the kernel itself
// (malformed input is the parser's concern, not this package's);
// faultInvariant is the only kind. A declaration's declared type
// disagreeing with its value's inferred type is NOT a fault: CheckOne
// returns it as a Mismatch and checking continues. A type mismatch found
// inside Infer (an application argument, or a let-bound value, whose type
// disagrees with the expected one) is raised as a fault and aborts the run.
type faultKind int

const (
	faultInvariant faultKind = iota
)

// fault is panicked by any kernel routine that hits a state the parser
// should have made impossible — BVar reaching infer, FVar reaching universe
// substitution, an expected Pi that isn't one, a Proj head that isn't an
// inductive constructor spine — and by Infer on a type mismatch. CheckAll
// does not recover it; cmd/tckernel's run recovers it at the top of the run
// and turns it into a process abort with a diagnostic.
type fault struct {
	kind faultKind
	msg  string
}

func (f fault) Error() string {
	return fmt.Sprintf("kernel invariant violation: %s", f.msg)
}

func invariantf(format string, args ...any) {
	panic(fault{kind: faultInvariant, msg: fmt.Sprintf(format, args...)})
}
