// Package telemetry appends structured JSONL events describing turns, streaming
// calls and tool executions. Events carry sizes and durations, never payloads.
package telemetry

import "sync"

// Settings controls event emission.
type Settings struct {
	// Enabled gates every write.
	Enabled bool
	// Dir holds events.jsonl; created on first write.
	Dir string
}

// DefaultDir is used when Settings.Dir is empty.
const DefaultDir = ".agent"

var (
	mu      sync.Mutex
	current = Settings{Dir: DefaultDir}
)

// Configure replaces the process-wide settings.
func Configure(s Settings) {
	if s.Dir == "" {
		s.Dir = DefaultDir
	}
	mu.Lock()
	current = s
	mu.Unlock()
}

// Current returns the active settings.
func Current() Settings {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Enabled reports whether events are written.
func Enabled() bool { return Current().Enabled }
