package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/frontogether/internal/agenterr"
	"github.com/petasbytes/frontogether/internal/conversation"
)

// Dispatcher routes a model-requested call to the registered handler. The
// zero Dispatcher has no tools and rejects every call as unknown.
type Dispatcher struct {
	defs   []ToolDefinition
	byName map[string]ToolDefinition
}

// NewDispatcher indexes defs by name. Duplicate names are rejected.
func NewDispatcher(defs ...ToolDefinition) (*Dispatcher, error) {
	d := &Dispatcher{byName: make(map[string]ToolDefinition, len(defs))}
	for _, def := range defs {
		if def.Name == "" || def.Function == nil {
			return nil, fmt.Errorf("tool definition %q is incomplete", def.Name)
		}
		if _, dup := d.byName[def.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", def.Name)
		}
		d.byName[def.Name] = def
		d.defs = append(d.defs, def)
	}
	return d, nil
}

// Definitions returns the registered tools in registration order.
func (d *Dispatcher) Definitions() []ToolDefinition {
	return append([]ToolDefinition(nil), d.defs...)
}

// Dispatch runs call and returns the tool's result text. Unregistered names
// fail with an UnknownTool error naming the function. Handler errors are
// returned unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, call conversation.ToolCall) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	def, ok := d.byName[call.Name]
	if !ok {
		return "", agenterr.New(agenterr.KindUnknownTool, "invalid tool: %s", call.Name)
	}
	return def.Function(json.RawMessage(call.Arguments))
}
