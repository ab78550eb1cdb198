package metrics

import "github.com/petasbytes/frontogether/internal/conversation"

// LogStats summarises a run of messages for telemetry.
type LogStats struct {
	Messages    int
	ToolCalls   int
	ToolResults int
	ToolErrors  int
	// TextBytes counts all text, tool result content and argument bytes.
	TextBytes int
	// Reply measures assistant text only.
	Reply Features
}

// CountLog computes LogStats over msgs.
func CountLog(msgs []conversation.Message) LogStats {
	var s LogStats
	for _, m := range msgs {
		s.Messages++
		switch v := m.(type) {
		case conversation.AssistantMessage:
			s.TextBytes += len(v.Text)
			s.Reply = s.Reply.Add(CountFeatures(v.Text))
			s.ToolCalls += len(v.ToolCalls)
			for _, c := range v.ToolCalls {
				s.TextBytes += len(c.Arguments)
			}
		case conversation.ToolMessage:
			s.ToolResults++
			if v.IsError {
				s.ToolErrors++
			}
			s.TextBytes += len(v.Content)
		case conversation.UserMessage:
			s.TextBytes += len(v.Text)
		case conversation.SystemMessage:
			s.TextBytes += len(v.Text)
		}
	}
	return s
}

// Fields renders s as telemetry fields.
func (s LogStats) Fields() map[string]any {
	return map[string]any{
		"messages":     s.Messages,
		"tool_calls":   s.ToolCalls,
		"tool_results": s.ToolResults,
		"tool_errors":  s.ToolErrors,
		"text_bytes":   s.TextBytes,
		"reply":        s.Reply.Fields(),
	}
}
