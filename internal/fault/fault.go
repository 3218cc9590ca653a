// =============================================================================
// Upload Reconciler - Error Kinds
// =============================================================================
//
// This package classifies every failure the reconciler can meet. The split
// that matters is between the one fatal kind and everything else:
//
//   Malformed : an input line has too few fields. The run stops.
//   NotExist  : an upload bundle or target is missing. Logged, skipped.
//   Exist     : the destination subtree is already there. Logged, skipped.
//   Extract   : the bundle does not hold exactly one readable ZIP. Logged.
//   IO        : any other filesystem failure. Logged at item or section level.
//
// =============================================================================

package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the class of a failure.
type Kind uint8

// Kinds of failures.
const (
	Other     Kind = iota // Unclassified.
	Malformed             // Input line with missing fields.
	NotExist              // Item does not exist.
	Exist                 // Item already exists.
	Extract               // Archive could not be extracted.
	IO                    // Filesystem failure.
)

func (k Kind) String() string {
	switch k {
	case Malformed:
		return "malformed input"
	case NotExist:
		return "item does not exist"
	case Exist:
		return "item already exists"
	case Extract:
		return "extraction error"
	case IO:
		return "I/O error"
	}
	return "other error"
}

// Error is the error type used across the reconciler.
type Error struct {
	// Op is the operation being performed, e.g. "roster.Load".
	Op string

	// Kind is the class of the failure.
	Kind Kind

	// Path is the file or directory involved, if any.
	Path string

	// Line is the 1-based input line number for Malformed errors.
	Line int

	// Err is the underlying error, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error. If err is already an *Error with the same kind and no
// new information is added, it is returned unchanged.
func E(op string, kind Kind, path string, err error) error {
	if prev, ok := err.(*Error); ok && prev.Kind == kind && path == "" && op == "" {
		return prev
	}
	return &Error{Op: op, Kind: kind, Path: path, Err: err}
}

// Malformedf reports a structurally broken input line.
func Malformedf(op, path string, line int, format string, args ...interface{}) error {
	return &Error{
		Op:   op,
		Kind: Malformed,
		Path: path,
		Line: line,
		Err:  fmt.Errorf(format, args...),
	}
}

// KindOf returns the kind of the outermost *Error in err's chain, or Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// Is reports whether err carries the given kind.
func Is(kind Kind, err error) bool {
	return err != nil && KindOf(err) == kind
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	return Is(Malformed, err)
}
