// Package safety resolves model-supplied paths against a working directory.
package safety

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/petasbytes/frontogether/internal/agenterr"
)

// ResolveRoot makes dir absolute and resolves symlinks where possible so
// later boundary checks compare like with like. An empty dir means the
// process working directory.
func ResolveRoot(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs(%s): %w", dir, err)
	}
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		abs = r
	}
	return abs, nil
}

// ResolveDirectChild returns the absolute path of name inside root. The
// resolved parent directory must be exactly root: absolute names, parent
// traversal, subdirectories and symlinks pointing elsewhere are rejected
// with a PathEscape error.
func ResolveDirectChild(root, name string) (string, error) {
	absRoot, err := ResolveRoot(root)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(name) {
		return "", agenterr.New(agenterr.KindPathEscape, "absolute paths are not allowed: %s", name)
	}

	candidate, err := resolveLeaf(filepath.Join(absRoot, name))
	if err != nil {
		return "", agenterr.Wrap(agenterr.KindPathEscape, err, "%s cannot be resolved", name)
	}
	if filepath.Dir(candidate) != absRoot {
		return "", agenterr.New(agenterr.KindPathEscape, "%s does not resolve directly inside the working directory", name)
	}
	return candidate, nil
}

// maxLinkHops bounds link chains followed by resolveLeaf.
const maxLinkHops = 40

// resolveLeaf resolves every symlink in p, including a final link whose
// target does not exist yet. The result is where a write to p would land.
func resolveLeaf(p string) (string, error) {
	for hops := 0; ; hops++ {
		if hops > maxLinkHops {
			return "", fmt.Errorf("too many links at %s", p)
		}
		dir, err := filepath.EvalSymlinks(filepath.Dir(p))
		if err != nil {
			return "", err
		}
		p = filepath.Join(dir, filepath.Base(p))

		fi, err := os.Lstat(p)
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		if err != nil {
			return "", err
		}
		if fi.Mode()&fs.ModeSymlink == 0 {
			return p, nil
		}
		target, err := os.Readlink(p)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		p = filepath.Clean(target)
	}
}

// ValidateRelPath resolves relPath against absRoot and returns an absolute path
// inside the sandbox. Unlike ResolveDirectChild it allows subdirectories. It
// rejects absolute inputs, parent traversal and symlink escapes, and denies
// reads under .git/ and .agent/.
func ValidateRelPath(absRoot, relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", agenterr.New(agenterr.KindPathEscape, "absolute paths are not allowed")
	}

	cleaned := filepath.Clean(relPath)
	candidate := filepath.Join(absRoot, cleaned)

	// Resolve the whole candidate if it exists, otherwise its parent, so a
	// symlinked ancestor cannot hide an escape.
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else if resolvedParent, err2 := filepath.EvalSymlinks(filepath.Dir(candidate)); err2 == nil {
		candidate = filepath.Join(resolvedParent, filepath.Base(candidate))
	}

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", agenterr.New(agenterr.KindPathEscape, "requested path resolves outside the working directory")
	}

	relClean := filepath.ToSlash(rel)
	for _, deny := range []string{".git", ".agent"} {
		if relClean == deny || strings.HasPrefix(relClean, deny+"/") {
			return "", agenterr.New(agenterr.KindPathEscape, "reads under %s/ are not allowed", deny)
		}
	}
	return candidate, nil
}
