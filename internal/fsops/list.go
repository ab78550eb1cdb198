package fsops

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/petasbytes/frontogether/internal/agenterr"
	"github.com/petasbytes/frontogether/internal/safety"
)

// ListFiles lists non-recursive directory entries for a directory relative to root.
// It returns a JSON-encoded []string of names, with directories suffixed by "/".
func ListFiles(root, relDir string) (string, error) {
	absRoot, err := safety.ResolveRoot(root)
	if err != nil {
		return "", err
	}
	if relDir == "" {
		relDir = "."
	}
	absDir, err := safety.ValidateRelPath(absRoot, relDir)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return "", agenterr.Wrap(agenterr.KindIO, err, "list %s", relDir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}

	b, err := json.Marshal(names)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// File is a regular top-level file in the working directory.
type File struct {
	Name string
	Size int64
}

// RegularFiles returns the regular files directly inside root, sorted by
// name. Directories, symlinks and other special files are left out.
func RegularFiles(root string) ([]File, error) {
	absRoot, err := safety.ResolveRoot(root)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.KindIO, err, "list working directory")
	}
	var files []File
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{Name: e.Name(), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
