// Package rewrite post-processes generated JavaScript files: it makes import
// specifiers extension-qualified and depth-relative, and injects default
// accessor stubs into exported classes.
package rewrite

// Options configures a Rewriter. The zero value is not useful; start from
// DefaultOptions and override fields as required.
type Options struct {
	// Extension is appended to import specifiers that lack it, e.g. ".js".
	Extension string

	// Aliases are top-level directory names referenced without a relative
	// prefix. They are substituted in order; the first matching alias wins.
	Aliases []string

	// DepthOffset is subtracted from the number of path separators between
	// the traversal root and a file to give the file's depth.
	DepthOffset int

	// ImportKeyword marks the lines the import rules apply to.
	ImportKeyword string

	// ClassPrefix identifies a top-level class declaration once the line
	// has been trimmed.
	ClassPrefix string

	// Methods are the accessor stubs each class body must declare.
	Methods []string

	// Indent is one level of indentation for injected stubs.
	Indent string

	// InjectMethods enables stub injection during Traverse.
	InjectMethods bool
}

// DefaultOptions returns the options used when no configuration is supplied.
func DefaultOptions() Options {
	return Options{
		Extension:     ".js",
		Aliases:       []string{"core", "extensions", "_tests"},
		DepthOffset:   0,
		ImportKeyword: "import",
		ClassPrefix:   "export class",
		Methods:       []string{"defaults", "mutabilities"},
		Indent:        "    ",
		InjectMethods: true,
	}
}
