// errors.go: the error taxonomy plus caret-snippet rendering for read
// errors.
//
// Every fallible layer has its own error type carrying that layer's
// payload, all tagged with an ErrKind so callers can classify without type
// switches:
//
//   - *HeapError: ErrSpace (allocation into a full heap) and ErrPointer
//     (dereference of a free slot or a stamp mismatch).
//   - *ReadError: ErrRead, with 1-based line/column and an Incomplete flag
//     the driver uses to offer a continuation prompt.
//   - *EvalError: ErrType, ErrGuard, ErrLookup and ErrShape from the
//     evaluator.
//
// WrapErrorWithSource decorates a read error with a caret snippet under
// the offending column, one context line either side. The original error
// stays in the chain, so KindOf, IsIncomplete and errors.As still see it
// through the decoration. Other errors pass through untouched.
package softmacs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKind classifies an error independent of which layer raised it.
type ErrKind int

const (
	ErrSpace   ErrKind = iota // heap full on allocation
	ErrPointer                // free slot or stamp mismatch
	ErrRead                   // malformed token stream
	ErrType                   // value of the wrong shape
	ErrGuard                  // internal consistency check failed
	ErrLookup                 // unbound symbol
	ErrShape                  // pattern/arity mismatch in application
)

func (k ErrKind) String() string {
	switch k {
	case ErrSpace:
		return "space"
	case ErrPointer:
		return "pointer"
	case ErrRead:
		return "read"
	case ErrType:
		return "type"
	case ErrGuard:
		return "guard"
	case ErrLookup:
		return "lookup"
	case ErrShape:
		return "shape"
	}
	return "unknown"
}

// HeapError is raised by the arena: ErrSpace from put, ErrPointer from get
// and from marking through a stale or free slot.
type HeapError struct {
	Kind     ErrKind
	Index    int    // slot index, ErrPointer only
	Stamp    uint64 // stamp the failing handle carried, ErrPointer only
	Capacity int    // heap capacity, ErrSpace only
}

func (e *HeapError) Error() string {
	if e.Kind == ErrSpace {
		return fmt.Sprintf("space error: heap full (%d slots)", e.Capacity)
	}
	return fmt.Sprintf("pointer error: slot %d stamp %d is not live", e.Index, e.Stamp)
}

// ReadError is raised by the tokenizer/parser. Line and Col are 1-based.
// Incomplete marks the one recoverable-by-more-input case: an open list
// still pending at end of input.
type ReadError struct {
	Line       int
	Col        int
	Msg        string
	Incomplete bool
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// IsIncomplete reports whether err carries a read error that more input
// could repair (an unclosed list). The REPL keeps prompting on these.
func IsIncomplete(err error) bool {
	var re *ReadError
	return errors.As(err, &re) && re.Incomplete
}

// EvalError is raised by the evaluator: unbound symbols, applications of
// non-procedures, malformed argument lists, pattern mismatches, and guard
// failures in list iteration.
type EvalError struct {
	Kind ErrKind
	Msg  string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
}

func failType(format string, args ...any) error {
	return &EvalError{Kind: ErrType, Msg: fmt.Sprintf(format, args...)}
}

func failShape(format string, args ...any) error {
	return &EvalError{Kind: ErrShape, Msg: fmt.Sprintf(format, args...)}
}

func failLookup(name string) error {
	return &EvalError{Kind: ErrLookup, Msg: fmt.Sprintf("unbound symbol %q", name)}
}

// guard fails with a guard error when flag is false. Used where an
// invariant the object model promises (a cached proper list terminating in
// unit) is re-checked at a consumption site.
func guard(flag bool) error {
	if !flag {
		return &EvalError{Kind: ErrGuard, Msg: "invariant violated"}
	}
	return nil
}

// KindOf extracts the ErrKind from any error this package raises, looking
// through wrapping; ok reports whether err carries one of ours.
func KindOf(err error) (kind ErrKind, ok bool) {
	var he *HeapError
	if errors.As(err, &he) {
		return he.Kind, true
	}
	var re *ReadError
	if errors.As(err, &re) {
		return ErrRead, true
	}
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Kind, true
	}
	return 0, false
}

/* ===========================
   caret snippets
   =========================== */

// WrapErrorWithSource augments a read error with a caret-annotated snippet
// of the source it came from, wrapping rather than replacing it. Any other
// error is returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	re, ok := err.(*ReadError)
	if !ok {
		return err
	}
	return fmt.Errorf("%w\n\n%s", re, snippet(src, re))
}

// snippet builds the caret-annotated block under a read error:
//
//	   1 | (a b c) #bad
//	     |         ^
//
// Coordinates are clamped so short or empty sources never break rendering.
func snippet(src string, re *ReadError) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	line, col := re.Line, re.Col
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}
	text := lines[line-1]
	if col > len(text)+1 {
		col = len(text) + 1
	}

	var b strings.Builder
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, text)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return strings.TrimRight(b.String(), "\n")
}
