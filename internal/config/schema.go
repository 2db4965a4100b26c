// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package config

import (
	"bytes"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaID is the schema $id for emberhost config files.
const SchemaID = "https://emberhost.dev/schemas/config.schema.json"

// schemaCache holds the compiled schema to avoid recompilation.
var schemaCache *jschema.Schema

// GenerateSchema generates a JSON Schema from the Config struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Config{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Emberhost Configuration"
	schema.Description = "Schema for emberhost.yaml configuration files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_GENERATE_FAILED").
			With("operation", "marshal schema").
			Wrap(err)
	}
	return data, nil
}

// Validate checks a loaded Config against the generated schema.
func Validate(cfg Config) error {
	// Round-trip through JSON so the validator sees plain maps.
	raw, err := json.Marshal(cfg)
	if err != nil {
		return oops.Code("CONFIG_VALIDATE_FAILED").
			With("operation", "marshal config").
			Wrap(err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return oops.Code("CONFIG_VALIDATE_FAILED").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	if err := sch.Validate(doc); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return nil
}

// compiledSchema returns the cached compiled schema or compiles it.
func compiledSchema() (*jschema.Schema, error) {
	if schemaCache != nil {
		return schemaCache, nil
	}

	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	schemaData, err := jschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").
			With("operation", "parse schema json").
			Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").
			With("operation", "add schema resource").
			Wrap(err)
	}

	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").
			With("operation", "compile schema").
			Wrap(err)
	}

	schemaCache = sch
	return sch, nil
}
