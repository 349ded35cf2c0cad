// Package validator provides interfaces and types for JSON Schema validation.
package validator

// Draft represents a JSON Schema draft version.
type Draft string

// Draft7 represents JSON Schema Draft 7.
const Draft7 Draft = "http://json-schema.org/draft-07/schema#"

// A JSONDocument is a valid parsed JSON Document - i.e. the result of json.Unmarshal().
type JSONDocument interface{}

// A JSONSchema is a valid parsed JSON Document representing a JSON Schema.
// Note that a Compiler must compile the JSONSchema before use which will identify any JSON Schema issues.
type JSONSchema JSONDocument

// Validator represents something which can be used to validate a JSON document.
type Validator interface {
	// Validate validates JSON document.
	Validate(v JSONDocument) error
}

// Compiler defines a JSON Schema compiler.
type Compiler interface {
	// AddSchema registers a JSONSchema with the compiler.
	// An error is produced if the JSONSchema cannot be added.
	AddSchema(id string, data JSONSchema) error

	// Compile creates a Validator from the JSONSchema previously added with the given ID.
	// An error is produced if the JSONSchema cannot be compiled.
	Compile(id string) (Validator, error)
}
