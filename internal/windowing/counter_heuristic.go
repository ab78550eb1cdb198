package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/frontogether/internal/conversation"
)

// TokenCounter estimates input-token cost for messages or groups.
type TokenCounter interface {
	CountMessage(m conversation.Message) int
	CountGroup(g Group, all []conversation.Message) int
}

// HeuristicCounter is the default deterministic estimator.
// Rules:
//   - system and user messages: rune count of the text, plus one block
//     overhead for the text and one per attachment
//   - assistant messages: text runes (when present) and the argument runes of
//     every tool call, each with a block overhead
//   - tool messages: rune count of the content plus overhead
type HeuristicCounter struct{}

// Fixed per-block overhead for deterministic counts; changing this requires updating the guard test.
const blockOverhead = 4

func (HeuristicCounter) CountMessage(m conversation.Message) int {
	switch v := m.(type) {
	case conversation.SystemMessage:
		return textBlock(v.Text) + attachmentBlock(v.Attachment)
	case conversation.UserMessage:
		return textBlock(v.Text) + attachmentBlock(v.Attachment)
	case conversation.AssistantMessage:
		total := 0
		if v.Text != "" {
			total += textBlock(v.Text)
		}
		for _, c := range v.ToolCalls {
			total += utf8.RuneCountInString(c.Arguments) + blockOverhead
		}
		return total
	case conversation.ToolMessage:
		return textBlock(v.Content)
	}
	return blockOverhead
}

func (h HeuristicCounter) CountGroup(g Group, all []conversation.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}

func textBlock(s string) int {
	return utf8.RuneCountInString(s) + blockOverhead
}

// Images contribute overhead only in this minimal heuristic.
func attachmentBlock(a *conversation.Attachment) int {
	if a == nil {
		return 0
	}
	return blockOverhead
}
