package tools

import (
	"fmt"
	"sort"
)

// constructors maps every built-in tool name to its root-bound constructor.
var constructors = map[string]func(root string) ToolDefinition{
	"write_file": NewWriteFile,
	"read_file":  NewReadFile,
	"list_files": NewListFiles,
}

// DefaultNames are the tools enabled when configuration names none.
var DefaultNames = []string{"write_file"}

// BuiltinNames lists every built-in tool name in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Registry returns the named built-in tools bound to root, in the order
// given. An empty names list selects DefaultNames.
func Registry(root string, names ...string) ([]ToolDefinition, error) {
	if len(names) == 0 {
		names = DefaultNames
	}
	defs := make([]ToolDefinition, 0, len(names))
	for _, n := range names {
		ctor, ok := constructors[n]
		if !ok {
			return nil, fmt.Errorf("unknown built-in tool %q (have %v)", n, BuiltinNames())
		}
		defs = append(defs, ctor(root))
	}
	return defs, nil
}
