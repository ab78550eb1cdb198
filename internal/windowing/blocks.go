// Package windowing selects the newest part of a conversation that fits an
// input-token budget without separating tool calls from their results.
package windowing

import (
	"log/slog"

	"github.com/petasbytes/frontogether/internal/conversation"
)

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	// GroupPair is an assistant message with tool calls plus the tool
	// messages answering every one of them.
	GroupPair
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into msgs
	End   int // exclusive index into msgs
}

// GroupBlocks groups messages into atomic units that preserve tool exchanges.
// Invariants:
//   - A pair starts with an assistant message carrying tool calls and is
//     followed directly by tool messages only.
//   - Completeness: every call id is answered, and no tool message answers an
//     id the assistant did not issue.
//   - Error results (IsError) group the same as successful ones.
func GroupBlocks(msgs []conversation.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		if a, ok := msgs[i].(conversation.AssistantMessage); ok && a.HasToolCalls() {
			end := i + 1
			results := make(map[string]struct{})
			for end < len(msgs) {
				tm, ok := msgs[end].(conversation.ToolMessage)
				if !ok {
					break
				}
				results[tm.CallID] = struct{}{}
				end++
			}
			calls := callIDs(a)
			switch {
			case end == i+1:
				slog.Debug("windowing: exclude pair", "reason", "not_followed_by_results", "idx", i)
			case !coversAll(results, calls):
				slog.Debug("windowing: exclude pair", "reason", "missing_results", "idx", i)
			case !noExtraResults(results, calls):
				slog.Debug("windowing: exclude pair", "reason", "extra_results", "idx", i)
			default:
				groups = append(groups, Group{Kind: GroupPair, Start: i, End: end})
				i = end
				continue
			}
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

func callIDs(m conversation.AssistantMessage) map[string]struct{} {
	ids := make(map[string]struct{}, len(m.ToolCalls))
	for _, c := range m.ToolCalls {
		if c.ID != "" {
			ids[c.ID] = struct{}{}
		}
	}
	return ids
}

// coversAll checks that every id in required is present in have.
func coversAll(have, required map[string]struct{}) bool {
	for id := range required {
		if _, ok := have[id]; !ok {
			return false
		}
	}
	return true
}

// noExtraResults reports whether have holds only ids from allowed.
func noExtraResults(have, allowed map[string]struct{}) bool {
	for id := range have {
		if _, ok := allowed[id]; !ok {
			return false
		}
	}
	return true
}
