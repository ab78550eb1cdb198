// Package conversation holds the message types exchanged with the model and
// the append-only log they accumulate in.
package conversation

// Role identifies which side of the conversation a message belongs to.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one of SystemMessage, UserMessage, AssistantMessage or
// ToolMessage. The set is closed.
type Message interface {
	Role() Role
	isMessage()
}

// Attachment is an inline image sent alongside user or system text.
type Attachment struct {
	MediaType string `json:"media_type"`
	// Data is the base64-encoded image payload.
	Data string `json:"data"`
}

// DataURL renders the attachment as a data: URL.
func (a Attachment) DataURL() string {
	return "data:" + a.MediaType + ";base64," + a.Data
}

// PNG returns a PNG attachment for already base64-encoded data.
func PNG(base64Data string) *Attachment {
	return &Attachment{MediaType: "image/png", Data: base64Data}
}

type SystemMessage struct {
	Text       string
	Attachment *Attachment
}

type UserMessage struct {
	Text       string
	Attachment *Attachment
}

// AssistantMessage is one finalized model reply. ToolCalls keeps the order in
// which the calls were first seen on the stream.
type AssistantMessage struct {
	Text      string
	ToolCalls []ToolCall
}

// ToolMessage answers the ToolCall with id CallID from the preceding
// AssistantMessage.
type ToolMessage struct {
	CallID  string
	Name    string
	Content string
	// IsError marks a failed dispatch reported back to the model.
	IsError bool
}

// ToolCall is a model-requested function invocation. Arguments is the JSON
// text assembled from the stream.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

func (SystemMessage) Role() Role    { return RoleSystem }
func (UserMessage) Role() Role      { return RoleUser }
func (AssistantMessage) Role() Role { return RoleAssistant }
func (ToolMessage) Role() Role      { return RoleTool }

func (SystemMessage) isMessage()    {}
func (UserMessage) isMessage()      {}
func (AssistantMessage) isMessage() {}
func (ToolMessage) isMessage()      {}

// HasToolCalls reports whether the reply asks for any tool to run.
func (m AssistantMessage) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// Clone returns a copy that shares no slices with m.
func (m AssistantMessage) Clone() AssistantMessage {
	out := m
	if m.ToolCalls != nil {
		out.ToolCalls = append([]ToolCall(nil), m.ToolCalls...)
	}
	return out
}
