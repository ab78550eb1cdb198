package conversation

import (
	"encoding/json"
	"fmt"
)

// envelope is the on-disk shape of a Message. Fields not used by a role are
// omitted.
type envelope struct {
	Role       Role           `json:"role"`
	Text       string         `json:"text,omitempty"`
	Attachment *Attachment    `json:"attachment,omitempty"`
	ToolCalls  []toolCallJSON `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
	Content    string         `json:"content,omitempty"`
	IsError    bool           `json:"is_error,omitempty"`
}

type toolCallJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// MarshalMessage encodes m with a role tag.
func MarshalMessage(m Message) ([]byte, error) {
	var env envelope
	switch v := m.(type) {
	case SystemMessage:
		env = envelope{Role: RoleSystem, Text: v.Text, Attachment: v.Attachment}
	case UserMessage:
		env = envelope{Role: RoleUser, Text: v.Text, Attachment: v.Attachment}
	case AssistantMessage:
		env = envelope{Role: RoleAssistant, Text: v.Text}
		for _, c := range v.ToolCalls {
			env.ToolCalls = append(env.ToolCalls, toolCallJSON(c))
		}
	case ToolMessage:
		env = envelope{Role: RoleTool, ToolCallID: v.CallID, Name: v.Name, Content: v.Content, IsError: v.IsError}
	default:
		return nil, fmt.Errorf("marshal message: unknown type %T", m)
	}
	return json.Marshal(env)
}

// UnmarshalMessage decodes a message produced by MarshalMessage.
func UnmarshalMessage(b []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	switch env.Role {
	case RoleSystem:
		return SystemMessage{Text: env.Text, Attachment: env.Attachment}, nil
	case RoleUser:
		return UserMessage{Text: env.Text, Attachment: env.Attachment}, nil
	case RoleAssistant:
		msg := AssistantMessage{Text: env.Text}
		for _, c := range env.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, ToolCall(c))
		}
		return msg, nil
	case RoleTool:
		return ToolMessage{CallID: env.ToolCallID, Name: env.Name, Content: env.Content, IsError: env.IsError}, nil
	default:
		return nil, fmt.Errorf("unmarshal message: unknown role %q", env.Role)
	}
}

// MarshalMessages encodes msgs as a JSON array of envelopes.
func MarshalMessages(msgs []Message) ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		b, err := MarshalMessage(m)
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	return json.MarshalIndent(raw, "", " ")
}

// UnmarshalMessages decodes the output of MarshalMessages.
func UnmarshalMessages(b []byte) ([]Message, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(raw))
	for i, r := range raw {
		m, err := UnmarshalMessage(r)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}
