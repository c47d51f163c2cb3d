package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/splice/internal/resolve"
	"github.com/fatih/color"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	stackLine  = color.New(color.Faint)
)

// printError writes err to w. Resolver failures get their inclusion stack
// listed innermost first.
func printError(w io.Writer, err error) {
	var rerr *resolve.Error
	if !errors.As(err, &rerr) {
		errorLabel.Fprint(w, "error: ")
		fmt.Fprintln(w, err)
		return
	}

	errorLabel.Fprint(w, "error: ")
	fmt.Fprintln(w, summary(rerr))
	for i := len(rerr.Stack) - 1; i >= 0; i-- {
		f := rerr.Stack[i]
		stackLine.Fprintf(w, "  included from %s:%d\n", f.File, f.Line)
	}
}

func summary(e *resolve.Error) string {
	switch e.Kind {
	case resolve.KindFileNotFound:
		return fmt.Sprintf("%q not found", e.Name)
	case resolve.KindCyclicInclude:
		return fmt.Sprintf("cyclic include %v", e.Cycle)
	case resolve.KindIO:
		return fmt.Sprintf("cannot load %q: %v", e.Name, e.Err)
	case resolve.KindBadDirective:
		return fmt.Sprintf("malformed directive %s", e.Name)
	case resolve.KindDepthExceeded:
		return fmt.Sprintf("include depth exceeded at %q", e.Name)
	}
	return e.Error()
}
