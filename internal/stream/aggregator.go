package stream

import (
	"strings"

	"github.com/petasbytes/frontogether/internal/agenterr"
	"github.com/petasbytes/frontogether/internal/conversation"
)

// Aggregator rebuilds one assistant message from the deltas of a single
// streaming call. Use a fresh Aggregator per call.
type Aggregator struct {
	text  strings.Builder
	calls []*toolBuilder
}

type toolBuilder struct {
	id   string
	name string
	args strings.Builder
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add folds d into the message under construction and returns the progress
// events it produced, in order. An argument fragment that arrives before any
// tool call was opened fails with a protocol order error.
func (a *Aggregator) Add(d Delta) ([]Event, error) {
	var events []Event
	if d.Text != "" {
		a.text.WriteString(d.Text)
		events = append(events, TextFragment{Text: d.Text})
	}
	if d.Tool == nil {
		return events, nil
	}

	f := d.Tool
	if f.ID != "" {
		a.calls = append(a.calls, &toolBuilder{id: f.ID, name: f.Name})
		events = append(events, ToolStarted{Index: f.Index, ID: f.ID, Name: f.Name})
		if f.Arguments != "" {
			a.calls[len(a.calls)-1].args.WriteString(f.Arguments)
			events = append(events, ToolProgress{Index: f.Index, Fragment: f.Arguments})
		}
		return events, nil
	}

	if f.Arguments == "" {
		// Keep-alive fragments with neither id nor arguments carry nothing.
		return events, nil
	}
	if len(a.calls) == 0 {
		return events, agenterr.New(agenterr.KindProtocolOrder,
			"argument fragment for tool index %d arrived before any tool call id", f.Index)
	}
	a.calls[len(a.calls)-1].args.WriteString(f.Arguments)
	events = append(events, ToolProgress{Index: f.Index, Fragment: f.Arguments})
	return events, nil
}

// Finalize returns the assistant message built so far. Tool calls keep the
// order in which their ids first appeared.
func (a *Aggregator) Finalize() conversation.AssistantMessage {
	msg := conversation.AssistantMessage{Text: a.text.String()}
	if len(a.calls) > 0 {
		msg.ToolCalls = make([]conversation.ToolCall, len(a.calls))
		for i := range a.calls {
			msg.ToolCalls[i] = conversation.ToolCall{
				ID:        a.calls[i].id,
				Name:      a.calls[i].name,
				Arguments: a.calls[i].args.String(),
			}
		}
	}
	return msg
}
