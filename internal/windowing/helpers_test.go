package windowing_test

import (
	"github.com/petasbytes/frontogether/internal/conversation"
	"github.com/petasbytes/frontogether/internal/windowing"
)

func User(text string) conversation.Message { return conversation.UserMessage{Text: text} }

func Sys(text string) conversation.Message { return conversation.SystemMessage{Text: text} }

func Text(text string) conversation.Message { return conversation.AssistantMessage{Text: text} }

// Calls builds an assistant message requesting one call per id, with empty arguments.
func Calls(ids ...string) conversation.Message {
	m := conversation.AssistantMessage{}
	for _, id := range ids {
		m.ToolCalls = append(m.ToolCalls, conversation.ToolCall{ID: id, Name: "write_file"})
	}
	return m
}

// Result answers call id with content s.
func Result(id, s string) conversation.Message {
	return conversation.ToolMessage{CallID: id, Name: "write_file", Content: s}
}

func ErrResult(id, s string) conversation.Message {
	return conversation.ToolMessage{CallID: id, Name: "write_file", Content: s, IsError: true}
}

func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
