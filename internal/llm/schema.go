package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
)

// BuildWorkOrderJSONSchema returns the JSON-Schema of a reply as a generic map.
// Every field is optional and nullable; extra keys are allowed and ignored.
func BuildWorkOrderJSONSchema() map[string]any {
	text := map[string]any{"type": []string{"string", "number", "null"}}
	amount := map[string]any{"type": []string{"number", "string", "null"}}
	sign := map[string]any{"type": []string{"boolean", "null"}}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			entity.ColWorkOrderNumber: text,
			entity.ColJobNumber:       text,
			entity.ColDescription:     text,
			entity.ColDate:            text,
			entity.ColHours:           amount,
			entity.ColTotalAmountDue:  amount,
			entity.ColSignedByBoth:    sign,
			entity.ColCustomerSign:    sign,
			entity.ColWCDPSign:        sign,
		},
	}
}

const schemaURL = "mem://work_order.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func workOrderSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = compileSchema(BuildWorkOrderJSONSchema())
	})
	return compiledSchema, schemaErr
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSONAgainstSchema validates data against the work-order reply schema.
func ValidateJSONAgainstSchema(data []byte) error {
	schema, err := workOrderSchema()
	if err != nil {
		return err
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// Check reports the fields whose JSON type differs from the reply schema. The
// result is advisory: a mismatch does not make the reply unusable.
func (f Fields) Check() error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	return ValidateJSONAgainstSchema(data)
}
