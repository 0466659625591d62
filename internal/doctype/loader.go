package doctype

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json default_table.json
var builtin embed.FS

const schemaURL = "kycdocs://doctype/schema.json"

func compiledSchema() (*jsonschema.Schema, error) {
	raw, err := builtin.ReadFile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	return c.Compile(schemaURL)
}

// Parse validates raw JSON against the table schema and builds a Table.
func Parse(raw []byte) (*Table, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing document type table: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("document type table failed schema validation: %w", err)
	}

	var types []DocumentType
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, fmt.Errorf("decoding document type table: %w", err)
	}
	return NewTable(types), nil
}

// Load reads a table from path, falling back to the embedded default
// table when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document type table %s: %w", path, err)
	}
	return Parse(raw)
}

// Default returns the embedded default table.
func Default() (*Table, error) {
	raw, err := builtin.ReadFile("default_table.json")
	if err != nil {
		return nil, fmt.Errorf("reading embedded default table: %w", err)
	}
	return Parse(raw)
}
