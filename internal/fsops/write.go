package fsops

import (
	"os"

	"github.com/petasbytes/frontogether/internal/agenterr"
	"github.com/petasbytes/frontogether/internal/safety"
)

// WriteFile writes content to name directly inside root, creating or
// truncating it. No directories are created. Path violations come back as
// PathEscape errors from safety; filesystem failures as IO errors. The
// resolved path is opened without following a final symlink, so a link
// swapped in after resolution fails instead of redirecting the write.
func WriteFile(root, name, content string) error {
	absPath, err := safety.ResolveDirectChild(root, name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC|noFollow, 0o644)
	if err != nil {
		return agenterr.Wrap(agenterr.KindIO, err, "write %s", name)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return agenterr.Wrap(agenterr.KindIO, err, "write %s", name)
	}
	if err := f.Close(); err != nil {
		return agenterr.Wrap(agenterr.KindIO, err, "write %s", name)
	}
	return nil
}
