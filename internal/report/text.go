package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/andyballingall/aftercare/internal/linecount"
)

// TextReporter implements linecount.Reporter for plain text output. Unless
// Verbose is set, the output is the total alone so it can be captured by
// shell scripts.
type TextReporter struct {
	Verbose   bool
	UseColour bool
}

const (
	colReset     = "\033[0m"
	colGrey      = "\033[90m"
	colWhite     = "\033[37m"
	colBoldWhite = "\033[1;37m"
)

// cs returns a string which will render with the given colour
// if colourisation is enabled.
func (tr *TextReporter) cs(c, s string) string {
	if !tr.UseColour {
		return s
	}
	return c + s + colReset
}

func (tr *TextReporter) Write(w io.Writer, r *linecount.Result) error {
	if !tr.Verbose {
		_, err := fmt.Fprintf(w, "%d\n", r.Total)
		return err
	}

	for _, f := range r.Files {
		name := f.Path
		if rel, err := filepath.Rel(r.Root, f.Path); err == nil {
			name = rel
		}
		fmt.Fprintf(w, "%s %s\n", tr.cs(colWhite, fmt.Sprintf("%8d", f.Lines)), tr.cs(colGrey, name))
	}
	_, err := fmt.Fprintf(w, "%s %s\n",
		tr.cs(colBoldWhite, fmt.Sprintf("%8d", r.Total)),
		tr.cs(colBoldWhite, fmt.Sprintf("total (%d files)", len(r.Files))))
	return err
}
