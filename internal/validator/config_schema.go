package validator

import (
	"bytes"
	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ConfigSchemaID identifies the schema of the aftercare configuration file.
const ConfigSchemaID = "https://github.com/andyballingall/aftercare/config.schema.json"

//go:embed config.schema.json
var configSchema []byte

// NewConfigValidator compiles the embedded configuration schema.
func NewConfigValidator() (Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(configSchema))
	if err != nil {
		return nil, err
	}

	c := NewSanthoshCompiler()
	if err := c.AddSchema(ConfigSchemaID, doc); err != nil {
		return nil, err
	}
	return c.Compile(ConfigSchemaID)
}
