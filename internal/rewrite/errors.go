package rewrite

import (
	"errors"
	"fmt"
)

// MalformedInputError reports source text that the rewriter refuses to guess
// about, such as an unterminated import specifier or a class whose braces
// never balance.
type MalformedInputError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedInputError) Error() string {
	switch {
	case e.Path == "" && e.Line == 0:
		return fmt.Sprintf("malformed input: %s", e.Reason)
	case e.Path == "":
		return fmt.Sprintf("line %d: malformed input: %s", e.Line, e.Reason)
	case e.Line == 0:
		return fmt.Sprintf("%s: malformed input: %s", e.Path, e.Reason)
	default:
		return fmt.Sprintf("%s:%d: malformed input: %s", e.Path, e.Line, e.Reason)
	}
}

// locate fills in the position of a MalformedInputError where the error
// was produced without one. Other errors are returned unchanged.
func locate(err error, path string, line int) error {
	var mErr *MalformedInputError
	if !errors.As(err, &mErr) {
		return err
	}
	located := *mErr
	if located.Path == "" {
		located.Path = path
	}
	if located.Line == 0 {
		located.Line = line
	}
	return &located
}
