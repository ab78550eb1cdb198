// Package prompt renders the text sent to the model for a user turn.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"
	"unicode/utf8"

	"github.com/petasbytes/frontogether/internal/fsops"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// DefaultMaxFileBytes caps the size of a file inlined into a prompt.
const DefaultMaxFileBytes = 64 << 10

// Builder turns the user's raw input into the text of a user message.
type Builder interface {
	UserText(content string) (string, error)
	SystemText() string
}

// FileContent is one inlined file.
type FileContent struct {
	Name    string
	Content string
}

// Workspace inlines the regular files of Root ahead of the user's text.
type Workspace struct {
	Root string
	// IncludeFiles turns the listing off when false.
	IncludeFiles bool
	MaxFileBytes int64
	// System overrides the built-in system prompt when non-empty.
	System string
	// Exclude lists files never inlined. Relative entries are taken from
	// Root. The config file belongs here since it may carry an API key.
	Exclude []string
}

// DefaultExclude is the config file name looked up in the working directory.
const DefaultExclude = "frontogether.yaml"

// NewWorkspace returns a Workspace builder with files included.
func NewWorkspace(root string) *Workspace {
	return &Workspace{
		Root:         root,
		IncludeFiles: true,
		MaxFileBytes: DefaultMaxFileBytes,
		Exclude:      []string{DefaultExclude},
	}
}

func (w *Workspace) SystemText() string {
	if w.System != "" {
		return w.System
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "system.tmpl", nil); err != nil {
		panic(fmt.Sprintf("prompt: system template: %v", err))
	}
	return buf.String()
}

func (w *Workspace) UserText(content string) (string, error) {
	var files []FileContent
	if w.IncludeFiles {
		var err error
		files, err = w.readFiles()
		if err != nil {
			return "", err
		}
	}
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "message.tmpl", struct {
		Files   []FileContent
		Content string
	}{files, content})
	if err != nil {
		return "", fmt.Errorf("render message: %w", err)
	}
	return buf.String(), nil
}

// readFiles returns the UTF-8 files of the working directory. Binary and
// oversized files are skipped.
func (w *Workspace) readFiles() ([]FileContent, error) {
	entries, err := fsops.RegularFiles(w.Root)
	if err != nil {
		return nil, err
	}
	limit := w.MaxFileBytes
	if limit <= 0 {
		limit = DefaultMaxFileBytes
	}
	excluded := w.excluded()
	var out []FileContent
	for _, f := range entries {
		if excluded(f.Name) {
			slog.Debug("prompt: skipping excluded file", "file", f.Name)
			continue
		}
		if f.Size > limit {
			slog.Debug("prompt: skipping large file", "file", f.Name, "size", f.Size, "limit", limit)
			continue
		}
		body, err := fsops.ReadFile(w.Root, f.Name)
		if err != nil {
			slog.Debug("prompt: skipping unreadable file", "file", f.Name, "err", err)
			continue
		}
		if !utf8.ValidString(body) {
			slog.Debug("prompt: skipping non-UTF-8 file", "file", f.Name)
			continue
		}
		out = append(out, FileContent{Name: f.Name, Content: body})
	}
	return out, nil
}

// excluded reports whether a file of Root is listed in Exclude. Files are
// compared with os.SameFile so links and relative spellings still match.
func (w *Workspace) excluded() func(name string) bool {
	var skip []os.FileInfo
	for _, e := range w.Exclude {
		if e == "" {
			continue
		}
		if !filepath.IsAbs(e) {
			e = filepath.Join(w.Root, e)
		}
		if fi, err := os.Stat(e); err == nil {
			skip = append(skip, fi)
		}
	}
	return func(name string) bool {
		fi, err := os.Stat(filepath.Join(w.Root, name))
		if err != nil {
			return false
		}
		for _, s := range skip {
			if os.SameFile(fi, s) {
				return true
			}
		}
		return false
	}
}
