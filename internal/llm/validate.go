package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// RecordValidator checks mapped author objects against the record schema.
// The schema is compiled once and reused for every object of every paper.
type RecordValidator struct {
	schema *jsonschema.Schema
}

func NewRecordValidator() (*RecordValidator, error) {
	schema, err := compileSchema(BuildAffiliationRecordSchema())
	if err != nil {
		return nil, err
	}
	return &RecordValidator{schema: schema}, nil
}

// Validate reports why obj is not a valid author record, or nil.
func (v *RecordValidator) Validate(obj map[string]any) error {
	if err := v.schema.Validate(obj); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
