package conversation

import "fmt"

// Log is an ordered, append-only record of a conversation.
//
// A Log is a value: Append returns a new Log and never writes into the
// receiver's backing array, so a Log handed to a turn cannot be altered by it.
type Log struct {
	msgs []Message
}

// NewLog returns a Log holding a copy of msgs.
func NewLog(msgs ...Message) Log {
	return Log{}.Append(msgs...)
}

// Append returns a new Log with msgs added at the end.
func (l Log) Append(msgs ...Message) Log {
	if len(msgs) == 0 {
		return l
	}
	out := make([]Message, 0, len(l.msgs)+len(msgs))
	out = append(out, l.msgs...)
	for _, m := range msgs {
		if a, ok := m.(AssistantMessage); ok {
			m = a.Clone()
		}
		out = append(out, m)
	}
	return Log{msgs: out}
}

// Len returns the number of messages.
func (l Log) Len() int { return len(l.msgs) }

// Messages returns a copy of the messages in order.
func (l Log) Messages() []Message {
	return append([]Message(nil), l.msgs...)
}

// Since returns the messages appended after the first n.
func (l Log) Since(n int) []Message {
	if n >= len(l.msgs) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	return append([]Message(nil), l.msgs[n:]...)
}

// Validate checks that every ToolMessage answers a call id of the nearest
// preceding AssistantMessage, with only tool messages in between.
func (l Log) Validate() error {
	var open map[string]struct{}
	for i, m := range l.msgs {
		switch v := m.(type) {
		case AssistantMessage:
			open = make(map[string]struct{}, len(v.ToolCalls))
			for _, c := range v.ToolCalls {
				open[c.ID] = struct{}{}
			}
		case ToolMessage:
			if _, ok := open[v.CallID]; !ok {
				return fmt.Errorf("message %d: tool result %q does not answer the preceding assistant message", i, v.CallID)
			}
		case SystemMessage, UserMessage:
			open = nil
		default:
			return fmt.Errorf("message %d: unknown message type %T", i, m)
		}
	}
	return nil
}
