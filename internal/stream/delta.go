// Package stream turns the incremental output of one streaming completion
// call into a finalized assistant message.
//
// Fragments arrive as Deltas. A tool fragment that carries an id opens a new
// tool call; a fragment without an id extends the most recently opened call.
// Text and tool fragments may interleave freely.
package stream

// Delta is one unit of a response stream. Empty fields are absent.
type Delta struct {
	Text string
	Tool *ToolFragment
}

// ToolFragment is a piece of a tool call. ID and Name are set only on the
// fragment that starts the call.
type ToolFragment struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// TextDelta is a convenience constructor for a text-only delta.
func TextDelta(s string) Delta { return Delta{Text: s} }

// ToolStart returns a delta that opens tool call id.
func ToolStart(index int, id, name string) Delta {
	return Delta{Tool: &ToolFragment{Index: index, ID: id, Name: name}}
}

// ArgsDelta returns an id-less delta that continues the current tool call.
func ArgsDelta(index int, fragment string) Delta {
	return Delta{Tool: &ToolFragment{Index: index, Arguments: fragment}}
}
