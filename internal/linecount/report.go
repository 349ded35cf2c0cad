package linecount

import (
	"io"
)

// Reporter writes a Result in some output format.
type Reporter interface {
	Write(w io.Writer, r *Result) error
}
