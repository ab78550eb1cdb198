package stream

import "github.com/petasbytes/frontogether/internal/conversation"

// Event is a progress notification. The set of variants is closed:
// TextFragment, ToolStarted, ToolProgress, Finalized, ToolResult and
// TurnFinished.
type Event interface {
	isEvent()
}

// TextFragment carries assistant text exactly as it arrived.
type TextFragment struct {
	Text string
}

// ToolStarted is emitted when a fragment opens a new tool call.
type ToolStarted struct {
	Index int
	ID    string
	Name  string
}

// ToolProgress is emitted for each argument fragment of the current call.
type ToolProgress struct {
	Index    int
	Fragment string
}

// Finalized carries the complete assistant message for one streaming call.
type Finalized struct {
	Message conversation.AssistantMessage
}

// ToolResult reports a dispatched tool call and the message appended for it.
type ToolResult struct {
	Message conversation.ToolMessage
}

// TurnFinished is the last event of a turn. Err is nil on success.
type TurnFinished struct {
	Messages []conversation.Message
	Cost     float64
	Err      error
}

func (TextFragment) isEvent() {}
func (ToolStarted) isEvent()  {}
func (ToolProgress) isEvent() {}
func (Finalized) isEvent()    {}
func (ToolResult) isEvent()   {}
func (TurnFinished) isEvent() {}
