// Package tools defines tool contracts, the built-in tools and the dispatcher
// that runs a model-requested call against them.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - write_file: writes one file directly inside the working directory.
//   - read_file, list_files (non-recursive): optional read-only tools.
//   - Dispatcher: name lookup and execution; unknown names fail with ERR_UNKNOWN_TOOL.
package tools
