package tools

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToolDefinition binds a tool's wire contract (name, description, input
// schema) to its handler. Handlers return the text shown to the model, or a
// validate.ToolError when the input was unusable.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Function    func(ctx context.Context, input json.RawMessage) (string, error)
}

// GenerateSchema derives a JSON Schema from a Go input struct. Schemas are
// inlined (no $ref) and closed against unknown properties so the model cannot
// invent fields.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
