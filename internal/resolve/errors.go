package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by (*Error).Is.
var (
	ErrFileNotFound  = errors.New("file not found")
	ErrCyclicInclude = errors.New("cyclic include")
	ErrIO            = errors.New("load failure")
	ErrBadDirective  = errors.New("bad #include syntax")
	ErrDepthExceeded = errors.New("include depth exceeded")
)

// Kind classifies a build failure.
type Kind int

const (
	KindFileNotFound Kind = iota + 1
	KindCyclicInclude
	KindIO
	KindBadDirective
	KindDepthExceeded
)

func (k Kind) String() string {
	switch k {
	case KindFileNotFound:
		return "file_not_found"
	case KindCyclicInclude:
		return "cyclic_include"
	case KindIO:
		return "io_failure"
	case KindBadDirective:
		return "bad_directive"
	case KindDepthExceeded:
		return "depth_exceeded"
	}
	return "unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case KindFileNotFound:
		return ErrFileNotFound
	case KindCyclicInclude:
		return ErrCyclicInclude
	case KindIO:
		return ErrIO
	case KindBadDirective:
		return ErrBadDirective
	case KindDepthExceeded:
		return ErrDepthExceeded
	}
	return nil
}

// Frame is one enclosing include directive: File included the failing
// name (or the next frame's file) at Line.
type Frame struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Error is a build failure with its inclusion context.
type Error struct {
	Kind  Kind
	Name  string   // Name the failing request or directive referred to
	Stack []Frame  // Enclosing directives, root first
	Cycle []string // For KindCyclicInclude: the re-entered chain, closing name last
	Err   error    // Underlying cause, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindFileNotFound:
		fmt.Fprintf(&b, "file %q not found", e.Name)
	case KindCyclicInclude:
		fmt.Fprintf(&b, "cyclic include: %s", strings.Join(e.Cycle, " -> "))
	case KindIO:
		fmt.Fprintf(&b, "load %q: %v", e.Name, e.Err)
	case KindBadDirective:
		fmt.Fprintf(&b, "bad #include syntax: %q", e.Name)
	case KindDepthExceeded:
		fmt.Fprintf(&b, "include depth exceeded at %q", e.Name)
	default:
		fmt.Fprintf(&b, "include %q failed", e.Name)
	}
	for i := len(e.Stack) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "\n\tin %s at line %d", e.Stack[i].File, e.Stack[i].Line)
	}
	return b.String()
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Includers returns the names of the enclosing files, root first.
func (e *Error) Includers() []string {
	names := make([]string, len(e.Stack))
	for i, f := range e.Stack {
		names[i] = f.File
	}
	return names
}
