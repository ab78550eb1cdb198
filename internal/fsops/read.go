// Package fsops implements the file operations behind the built-in tools and
// the workspace prompt. Every function takes the working directory explicitly.
package fsops

import (
	"os"

	"github.com/petasbytes/frontogether/internal/agenterr"
	"github.com/petasbytes/frontogether/internal/safety"
)

// ReadFile reads a file addressed by a path relative to root.
func ReadFile(root, relPath string) (string, error) {
	absRoot, err := safety.ResolveRoot(root)
	if err != nil {
		return "", err
	}
	absPath, err := safety.ValidateRelPath(absRoot, relPath)
	if err != nil {
		return "", err
	}

	fi, err := os.Stat(absPath)
	if err != nil {
		return "", agenterr.Wrap(agenterr.KindIO, err, "stat %s", relPath)
	}
	if fi.IsDir() {
		return "", agenterr.New(agenterr.KindIO, "%s is a directory", relPath)
	}

	b, err := os.ReadFile(absPath)
	if err != nil {
		return "", agenterr.Wrap(agenterr.KindIO, err, "read %s", relPath)
	}
	return string(b), nil
}
