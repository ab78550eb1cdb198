package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToolDefinition describes one tool advertised to the model and the handler
// that executes it. Handlers receive the raw arguments string exactly as the
// model produced it.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema InputSchema
	Function    func(input json.RawMessage) (string, error)
}

// InputSchema is the object schema of a tool's arguments.
type InputSchema struct {
	// Properties marshals to the JSON Schema "properties" object.
	Properties any
	Required   []string
}

// Object renders the schema as a JSON Schema object of type "object".
func (s InputSchema) Object() map[string]any {
	obj := map[string]any{
		"type":       "object",
		"properties": s.Properties,
	}
	if s.Properties == nil {
		obj["properties"] = map[string]any{}
	}
	if len(s.Required) > 0 {
		obj["required"] = s.Required
	}
	return obj
}

// PropertyMap returns Properties as a plain map, which is what provider SDKs
// accept for their schema parameters.
func (s InputSchema) PropertyMap() map[string]any {
	out := map[string]any{}
	if s.Properties == nil {
		return out
	}
	b, err := json.Marshal(s.Properties)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(b, &out)
	return out
}

// GenerateSchema derives an InputSchema from the exported fields of T. Fields
// without omitempty are required.
func GenerateSchema[T any]() InputSchema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return InputSchema{
		Properties: schema.Properties,
		Required:   schema.Required,
	}
}
