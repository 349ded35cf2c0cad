// Package report provides output formats for aftercare results.
package report

import (
	"encoding/json"
	"io"

	"github.com/andyballingall/aftercare/internal/linecount"
)

// JSONReporter implements linecount.Reporter for JSON output.
type JSONReporter struct{}

type jsonFile struct {
	Path  string `json:"path"`
	Lines int    `json:"lines"`
}

type jsonOutput struct {
	Root      string     `json:"root"`
	Extension string     `json:"extension"`
	Total     int        `json:"total"`
	Files     []jsonFile `json:"files"`
}

func (jr *JSONReporter) Write(w io.Writer, r *linecount.Result) error {
	out := jsonOutput{
		Root:      r.Root,
		Extension: r.Extension,
		Total:     r.Total,
		Files:     make([]jsonFile, 0, len(r.Files)),
	}
	for _, f := range r.Files {
		out.Files = append(out.Files, jsonFile{Path: f.Path, Lines: f.Lines})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
