package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchemaID = "http://example.com/schema.json"

func TestSanthoshCompiler(t *testing.T) {
	t.Parallel()

	t.Run("successful compile", func(t *testing.T) {
		t.Parallel()
		c := NewSanthoshCompiler()
		data := map[string]interface{}{
			"$id":  testSchemaID,
			"type": "object",
		}

		require.NoError(t, c.AddSchema(testSchemaID, data))
		v, err := c.Compile(testSchemaID)
		require.NoError(t, err)
		require.NoError(t, v.Validate(map[string]interface{}{}))
		assert.Error(t, v.Validate("not an object"))
	})

	t.Run("compile missing schema", func(t *testing.T) {
		t.Parallel()
		v, err := NewSanthoshCompiler().Compile("http://example.com/missing.json")
		require.Error(t, err)
		assert.Nil(t, v)
	})

	t.Run("compile invalid schema", func(t *testing.T) {
		t.Parallel()
		c := NewSanthoshCompiler()
		data := map[string]interface{}{
			"$id":  testSchemaID,
			"type": 12,
		}

		_ = c.AddSchema(testSchemaID, data)
		_, err := c.Compile(testSchemaID)
		require.Error(t, err)
	})
}

func TestToDocument(t *testing.T) {
	t.Parallel()

	doc, err := ToDocument(map[string]interface{}{"workers": 3})
	require.NoError(t, err)
	m, ok := doc.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, m, "workers")

	_, err = ToDocument(func() {})
	require.Error(t, err)
}

func TestConfigValidator(t *testing.T) {
	t.Parallel()

	v, err := NewConfigValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		doc     map[string]interface{}
		wantErr bool
	}{
		{name: "empty", doc: map[string]interface{}{}},
		{
			name: "full",
			doc: map[string]interface{}{
				"root":    "lib",
				"logFile": ".aftercare.log",
				"rewrite": map[string]interface{}{
					"extension":     ".js",
					"aliases":       []interface{}{"core", "_tests"},
					"depthOffset":   1,
					"importKeyword": "import",
					"classPrefix":   "export class",
					"methods":       []interface{}{"defaults"},
					"indent":        "\t",
					"injectMethods": false,
				},
				"count": map[string]interface{}{"extension": ".d.ts", "workers": 4},
			},
		},
		{name: "unknown key", doc: map[string]interface{}{"bogus": true}, wantErr: true},
		{
			name:    "extension without dot",
			doc:     map[string]interface{}{"rewrite": map[string]interface{}{"extension": "js"}},
			wantErr: true,
		},
		{
			name:    "negative depth offset",
			doc:     map[string]interface{}{"rewrite": map[string]interface{}{"depthOffset": -1}},
			wantErr: true,
		},
		{
			name:    "method is not an identifier",
			doc:     map[string]interface{}{"rewrite": map[string]interface{}{"methods": []interface{}{"a b"}}},
			wantErr: true,
		},
		{
			name:    "quoted alias",
			doc:     map[string]interface{}{"rewrite": map[string]interface{}{"aliases": []interface{}{"'core"}}},
			wantErr: true,
		},
		{
			name:    "workers wrong type",
			doc:     map[string]interface{}{"count": map[string]interface{}{"workers": "many"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, err := ToDocument(tt.doc)
			require.NoError(t, err)
			err = v.Validate(doc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
