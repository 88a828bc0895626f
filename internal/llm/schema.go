package llm

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaFor reflects a Schema from the json and jsonschema tags of T.
// Fields without omitempty are required and extra properties are
// rejected, which is what strict structured-output modes expect.
func SchemaFor[T any](name, description string) *Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	var v T
	reflected := r.Reflect(v)

	raw, err := json.Marshal(reflected)
	if err != nil {
		panic(fmt.Sprintf("llm: marshal schema %s: %v", name, err))
	}
	var def map[string]any
	if err := json.Unmarshal(raw, &def); err != nil {
		panic(fmt.Sprintf("llm: decode schema %s: %v", name, err))
	}
	// Providers reject meta keys in inline schemas.
	delete(def, "$schema")
	delete(def, "$id")

	return &Schema{Name: name, Description: description, Definition: def}
}

// Decode validates a structured response against schema and unmarshals it
// into T.
func Decode[T any](resp *Response, schema *Schema) (T, error) {
	var out T
	if resp == nil {
		return out, &ErrInvalidResponse{Err: fmt.Errorf("nil response")}
	}
	if err := validateResponse(schema, resp.Content); err != nil {
		return out, err
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		invalid := &ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("decode %T: %w", out, err)}
		if schema != nil {
			invalid.Schema = schema.Name
		}
		return out, invalid
	}
	return out, nil
}
