package rewrite

import (
	"strings"
)

const parentDir = "../"

// literal is a quoted string on a line. start and end index the opening and
// closing quote characters.
type literal struct {
	start int
	end   int
	quote byte
}

func (l literal) value(s string) string {
	return s[l.start+1 : l.end]
}

// RewriteLine applies the import rules to a single line, which may carry its
// line terminator. Lines that are not import statements, and import lines
// without a quoted specifier, are returned unchanged.
//
// For import lines the extension is inserted into the trailing specifier
// first, then every single-quoted literal beginning with a configured alias
// is made relative by prefixing depth parent-directory steps. Aliases are
// tried in configured order and only the first match applies.
func (r *Rewriter) RewriteLine(line string, depth int) (string, error) {
	if !r.isImport(line) {
		return line, nil
	}

	body, eol := splitEOL(line)
	lits, err := scanLiterals(body)
	if err != nil {
		return "", err
	}
	if len(lits) == 0 {
		return line, nil
	}

	specifier := lits[len(lits)-1]
	if specifier.quote != '\'' {
		return "", &MalformedInputError{Reason: "module specifier must be single-quoted"}
	}
	tail := body[specifier.end+1:]
	terminal := tail == "" || tail == ";"

	out := body
	for i := len(lits) - 1; i >= 0; i-- {
		lit := lits[i]
		if lit.quote != '\'' {
			continue
		}
		v := lit.value(body)
		if i == len(lits)-1 && terminal && !strings.HasSuffix(v, r.opts.Extension) {
			v += r.opts.Extension
		}
		v = r.relativise(v, depth)
		out = out[:lit.start+1] + v + out[lit.end:]
	}

	return out + eol, nil
}

// relativise replaces a leading alias directory with a path that climbs
// depth levels before descending into it.
func (r *Rewriter) relativise(v string, depth int) string {
	if depth <= 0 {
		return v
	}
	for _, alias := range r.opts.Aliases {
		if strings.HasPrefix(v, alias+"/") {
			return strings.Repeat(parentDir, depth) + v
		}
	}
	return v
}

// isImport reports whether the line starts with the import keyword as a whole
// word, so identifiers such as "imported" are not mistaken for statements.
func (r *Rewriter) isImport(line string) bool {
	kw := r.opts.ImportKeyword
	if !strings.HasPrefix(line, kw) {
		return false
	}
	if len(line) == len(kw) {
		return true
	}
	return !isIdentByte(line[len(kw)])
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}

// splitEOL separates a line from its terminator.
func splitEOL(line string) (string, string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

// scanLiterals tokenises a single line and returns its string literals in
// order. Scanning stops at a line comment.
func scanLiterals(s string) ([]literal, error) {
	var lits []literal
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			return lits, nil
		case c == '/' && regexCanStart(s, i):
			if end := closingSlash(s, i); end >= 0 {
				i = end
			}
		case c == '\'' || c == '"' || c == '`':
			end := closingQuote(s, i)
			if end < 0 {
				return nil, &MalformedInputError{Reason: "unterminated string literal in import statement"}
			}
			lits = append(lits, literal{start: i, end: end, quote: c})
			i = end
		}
	}
	return lits, nil
}

// closingQuote returns the index of the quote closing the literal opened at
// s[open], honouring backslash escapes, or -1 if the literal is unterminated.
func closingQuote(s string, open int) int {
	q := s[open]
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case q:
			return i
		}
	}
	return -1
}

// regexKeywords are the words after which a slash opens a regular expression
// rather than dividing.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

// regexCanStart reports whether a slash at s[i] begins a regular expression
// literal, judged by the previous significant token on the line.
func regexCanStart(s string, i int) bool {
	j := i - 1
	for j >= 0 && (s[j] == ' ' || s[j] == '\t') {
		j--
	}
	if j < 0 {
		return true
	}
	c := s[j]
	if isIdentByte(c) {
		k := j
		for k >= 0 && isIdentByte(s[k]) {
			k--
		}
		return regexKeywords[s[k+1:j+1]]
	}
	return strings.IndexByte("(,=:[!&|?{};+-*%<>~^", c) >= 0
}

// closingSlash returns the index of the slash closing the regular expression
// opened at s[open], honouring escapes and character classes, or -1 if the
// line ends first.
func closingSlash(s string, open int) int {
	inClass := false
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '\r', '\n':
			return -1
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return i
			}
		}
	}
	return -1
}
