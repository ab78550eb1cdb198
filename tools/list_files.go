package tools

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/petasbytes/frontogether/internal/agenterr"
	"github.com/petasbytes/frontogether/internal/fsops"
)

type ListFilesInput struct {
	Path     string `json:"path,omitempty" jsonschema_description:"Optional relative path to list files from (defaults to current directory)."`
	Page     int    `json:"page,omitempty" jsonschema_description:"1-based page number (default 1)."`
	PageSize int    `json:"page_size,omitempty" jsonschema_description:"Page size (default 200)."`
}

// defaultListFilesPageSize is the fallback page size when page_size <= 0.
const defaultListFilesPageSize = 200

var ListFilesInputSchema = GenerateSchema[ListFilesInput]()

// NewListFiles returns the list_files tool bound to root.
func NewListFiles(root string) ToolDefinition {
	return ToolDefinition{
		Name:        "list_files",
		Description: "List names of files in a directory within the working directory (non-recursive).",
		InputSchema: ListFilesInputSchema,
		Function: func(input json.RawMessage) (string, error) {
			return listFiles(root, input)
		},
	}
}

// listFiles sorts the entries of one directory and pages them.
// Defaults:
//   - page: 1 when <= 0
//   - page_size: 200 when <= 0
//
// The result is always a JSON-encoded []string.
func listFiles(root string, input json.RawMessage) (string, error) {
	var in ListFilesInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return "", agenterr.Wrap(agenterr.KindArgumentParse, err, "list_files arguments")
		}
	}
	page := in.Page
	if page <= 0 {
		page = 1
	}
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = defaultListFilesPageSize
	}

	namesJSON, err := fsops.ListFiles(root, in.Path)
	if err != nil {
		return "", err
	}
	var names []string
	if err := json.Unmarshal([]byte(namesJSON), &names); err != nil {
		return "", fmt.Errorf("invalid list_files payload: %w", err)
	}
	sort.Strings(names)

	start := (page - 1) * pageSize
	if start >= len(names) {
		return "[]", nil
	}
	end := start + pageSize
	if end > len(names) {
		end = len(names)
	}
	paged := names[start:end]

	b, err := json.Marshal(paged)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
