package ui

import (
	"fmt"
	"io"
)

// OK prints a success line.
func (p Palette) OK(w io.Writer, msg string) {
	fmt.Fprintln(w, p.Success.Render(p.SymDone+" "+msg))
}

// Fail prints a failure line.
func (p Palette) Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, p.Error.Render("✖ "+msg))
}

// Hint prints a muted follow-up line.
func (p Palette) Hint(w io.Writer, msg string) {
	fmt.Fprintln(w, p.Muted.Render(msg))
}
