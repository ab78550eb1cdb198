package telemetry

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// EventsFile is the file name inside Settings.Dir.
const EventsFile = "events.jsonl"

// Emit writes a single JSON line to <dir>/events.jsonl when enabled.
// It augments fields with RFC3339Nano time and the event name. Failures are
// logged and otherwise ignored.
func Emit(name string, fields map[string]any) {
	s := Current()
	if !s.Enabled {
		return
	}

	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		slog.Warn("telemetry: marshal", "event", name, "err", err)
		return
	}

	// Serialise writers so concurrent sessions never interleave lines.
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		slog.Warn("telemetry: mkdir", "dir", s.Dir, "err", err)
		return
	}
	path := filepath.Join(s.Dir, EventsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Warn("telemetry: open", "path", path, "err", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		slog.Warn("telemetry: write", "path", path, "err", err)
	}
}
