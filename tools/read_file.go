package tools

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/petasbytes/frontogether/internal/agenterr"
	"github.com/petasbytes/frontogether/internal/fsops"
)

type ReadFileInput struct {
	Path   string `json:"path" jsonschema_description:"File path relative to the working directory."`
	Offset int    `json:"offset,omitempty" jsonschema_description:"First line to return, counted from 0."`
	Limit  int    `json:"limit,omitempty" jsonschema_description:"Number of lines to return (default 200)."`
}

const (
	readPageLines = 200
	readLineRunes = 2000
	readPageRunes = 12_000
)

// readMoreMarker ends a page that does not reach the end of the file.
const readMoreMarker = "-- truncated; use offset/limit to fetch more --\n"

var ReadFileInputSchema = GenerateSchema[ReadFileInput]()

// NewReadFile returns the read_file tool bound to root. Reads may reach into
// subdirectories but never leave root or enter .git/ or .agent/.
func NewReadFile(root string) ToolDefinition {
	return ToolDefinition{
		Name:        "read_file",
		Description: "Return lines of a file in the working directory. Use offset and limit to page through long files.",
		InputSchema: ReadFileInputSchema,
		Function: func(input json.RawMessage) (string, error) {
			return readFile(root, input)
		},
	}
}

func readFile(root string, input json.RawMessage) (string, error) {
	var in ReadFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", agenterr.Wrap(agenterr.KindArgumentParse, err, "read_file arguments")
	}
	if in.Path == "" {
		return "", agenterr.New(agenterr.KindArgumentParse, "read_file requires path")
	}
	content, err := fsops.ReadFile(root, in.Path)
	if err != nil {
		return "", err
	}
	return pageLines(strings.Split(content, "\n"), in.Offset, in.Limit), nil
}

// pageLines joins lines[offset:offset+limit], shortening long lines and the
// page as a whole, and appends readMoreMarker when anything was left out.
func pageLines(lines []string, offset, limit int) string {
	if limit <= 0 {
		limit = readPageLines
	}
	offset = min(max(offset, 0), len(lines))
	end := min(offset+limit, len(lines))

	var b strings.Builder
	cut := end < len(lines)
	budget := readPageRunes
	for i, line := range lines[offset:end] {
		if i > 0 {
			if budget == 0 {
				cut = true
				break
			}
			b.WriteByte('\n')
			budget--
		}
		line, short := truncateRunes(line, min(readLineRunes, budget))
		if short {
			cut = true
		}
		b.WriteString(line)
		budget -= utf8.RuneCountInString(line)
	}

	out := b.String()
	if cut {
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += readMoreMarker
	}
	return out
}

// truncateRunes returns the first n runes of s and whether any were dropped.
func truncateRunes(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], true
		}
		i++
	}
	return s, false
}
