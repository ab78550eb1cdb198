package tools

import (
	"encoding/json"

	"github.com/petasbytes/frontogether/internal/agenterr"
	"github.com/petasbytes/frontogether/internal/fsops"
)

// WriteFileResult is returned to the model after a successful write.
const WriteFileResult = "true"

type WriteFileInput struct {
	Filename string `json:"filename" jsonschema_description:"Name of a file directly inside the working directory."`
	Content  string `json:"content" jsonschema_description:"Full new content of the file."`
}

// writeFileArgs detects missing keys, which a plain struct would zero-fill.
type writeFileArgs struct {
	Filename *string `json:"filename"`
	Content  *string `json:"content"`
}

var WriteFileInputSchema = GenerateSchema[WriteFileInput]()

// NewWriteFile returns the write_file tool bound to root.
func NewWriteFile(root string) ToolDefinition {
	return ToolDefinition{
		Name:        "write_file",
		Description: "Create or overwrite a file directly inside the working directory. Subdirectories and paths outside it are rejected.",
		InputSchema: WriteFileInputSchema,
		Function: func(input json.RawMessage) (string, error) {
			return writeFile(root, input)
		},
	}
}

func writeFile(root string, input json.RawMessage) (string, error) {
	var args writeFileArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return "", agenterr.Wrap(agenterr.KindArgumentParse, err, "write_file arguments")
	}
	if args.Filename == nil || args.Content == nil {
		return "", agenterr.New(agenterr.KindArgumentParse, "write_file requires filename and content")
	}
	if err := fsops.WriteFile(root, *args.Filename, *args.Content); err != nil {
		return "", err
	}
	return WriteFileResult, nil
}
