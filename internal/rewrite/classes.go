package rewrite

import (
	"strings"
)

// braceScanner tracks curly-brace nesting across the lines of a file. Braces
// inside string literals, template literals, regular expression literals and
// comments are ignored.
type braceScanner struct {
	depth          int
	inBlockComment bool
	inTemplate     bool
}

// braceEvent records the nesting depth after the brace at pos was consumed.
type braceEvent struct {
	pos   int
	depth int
}

// inCode reports whether the scanner sits in ordinary code, outside any
// comment or template literal carried over from a previous line.
func (s *braceScanner) inCode() bool {
	return !s.inBlockComment && !s.inTemplate
}

func (s *braceScanner) feed(line string) ([]braceEvent, error) {
	var events []braceEvent
	for i := 0; i < len(line); i++ {
		c := line[i]
		next := byte(0)
		if i+1 < len(line) {
			next = line[i+1]
		}

		switch {
		case s.inBlockComment:
			if c == '*' && next == '/' {
				s.inBlockComment = false
				i++
			}
		case s.inTemplate:
			if c == '\\' {
				i++
			} else if c == '`' {
				s.inTemplate = false
			}
		case c == '/' && next == '/':
			return events, nil
		case c == '/' && next == '*':
			s.inBlockComment = true
			i++
		case c == '/' && regexCanStart(line, i):
			if end := closingSlash(line, i); end >= 0 {
				i = end
			}
		case c == '`':
			s.inTemplate = true
		case c == '\'' || c == '"':
			if end := closingQuote(line, i); end >= 0 {
				i = end
			} else {
				i = len(line)
			}
		case c == '{':
			s.depth++
			events = append(events, braceEvent{pos: i, depth: s.depth})
		case c == '}':
			s.depth--
			if s.depth < 0 {
				return events, &MalformedInputError{Reason: "closing brace without matching opening brace"}
			}
			events = append(events, braceEvent{pos: i, depth: s.depth})
		}
	}
	return events, nil
}

// classBody accumulates the lines of one class declaration.
type classBody struct {
	start    int
	indent   string
	eol      string
	lines    []string
	opened   bool
	declared map[string]bool
}

// InjectMethods returns lines with a stub added to every top-level class
// body for each configured method the class does not already declare. Lines
// outside class bodies are returned untouched.
func (r *Rewriter) InjectMethods(lines []string) ([]string, error) {
	var sc braceScanner
	out := make([]string, 0, len(lines))
	var cls *classBody

	for i, line := range lines {
		startDepth := sc.depth
		atCode := sc.inCode()

		events, err := sc.feed(line)
		if err != nil {
			return nil, locate(err, "", i+1)
		}

		trimmed := strings.TrimSpace(line)
		if cls == nil && startDepth == 0 && atCode && strings.HasPrefix(trimmed, r.opts.ClassPrefix) {
			_, eol := splitEOL(line)
			if eol == "" {
				eol = "\n"
			}
			cls = &classBody{
				start:    i,
				indent:   leadingWhitespace(line),
				eol:      eol,
				declared: make(map[string]bool),
			}
		}
		if cls == nil {
			out = append(out, line)
			continue
		}

		cls.lines = append(cls.lines, line)
		if startDepth == 1 && atCode {
			for _, m := range r.opts.Methods {
				if strings.HasPrefix(trimmed, m+"() {") {
					cls.declared[m] = true
				}
			}
		}

		closePos := -1
		for _, ev := range events {
			if ev.depth > 0 {
				cls.opened = true
			}
			if cls.opened && ev.depth == 0 {
				closePos = ev.pos
				break
			}
		}
		if closePos < 0 {
			continue
		}

		out = append(out, r.completeClass(cls, closePos)...)
		cls = nil
	}

	if cls != nil {
		return nil, &MalformedInputError{Line: cls.start + 1, Reason: "class body is never closed"}
	}

	return out, nil
}

// completeClass returns the class lines with any missing stubs placed
// immediately before the line holding the closing brace at closePos. When
// that line also holds other code ahead of the brace, it is split so the
// stubs still precede the brace.
func (r *Rewriter) completeClass(cls *classBody, closePos int) []string {
	var stubs []string
	for _, m := range r.opts.Methods {
		if !cls.declared[m] {
			stubs = append(stubs, cls.indent+r.opts.Indent+m+"() { return {}; }"+cls.eol)
		}
	}
	if len(stubs) == 0 {
		return cls.lines
	}

	last := len(cls.lines) - 1
	closing := cls.lines[last]
	res := make([]string, 0, len(cls.lines)+len(stubs)+1)
	res = append(res, cls.lines[:last]...)

	if head := strings.TrimRight(closing[:closePos], " \t"); strings.TrimSpace(head) != "" {
		res = append(res, head+cls.eol)
		res = append(res, stubs...)
		return append(res, cls.indent+closing[closePos:])
	}

	res = append(res, stubs...)
	return append(res, closing)
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
