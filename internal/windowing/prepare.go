package windowing

import (
	"log/slog"

	"github.com/petasbytes/frontogether/internal/conversation"
)

// Stats summarizes the result of window preparation.
//
// Fields:
//   - Total: estimated tokens for the pinned message and included groups.
//   - Budget: the input token budget used.
//   - Pinned: 1 when a leading system message was kept unconditionally.
//   - IncludedGroups: number of groups included.
//   - SkippedGroups: total groups minus IncludedGroups.
//   - OverBudgetNewest: true when the newest single group alone does not fit.
type Stats struct {
	Total            int
	Budget           int
	Pinned           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// Fields renders s as telemetry fields.
func (s Stats) Fields() map[string]any {
	return map[string]any{
		"budget":             s.Budget,
		"total_estimated":    s.Total,
		"pinned":             s.Pinned,
		"included_groups":    s.IncludedGroups,
		"skipped_groups":     s.SkippedGroups,
		"over_budget_newest": s.OverBudgetNewest,
	}
}

// PrepareSendWindow returns the messages (oldest→newest) that fit within
// budget using the TokenCounter, without splitting groups.
//
// Rules:
//   - A leading system message is always kept and its cost is charged first.
//   - Include whole groups scanning newest→oldest while total ≤ budget.
//   - If the newest group alone does not fit, return an empty window and set OverBudgetNewest.
//   - If budget ≤ 0, return an empty window (OverBudgetNewest set when any groups exist).
func PrepareSendWindow(msgs []conversation.Message, budget int, c TokenCounter) ([]conversation.Message, Stats) {
	if len(msgs) == 0 {
		return nil, Stats{Budget: budget}
	}

	var pinned []conversation.Message
	pinnedCost := 0
	if sys, ok := msgs[0].(conversation.SystemMessage); ok {
		pinned = []conversation.Message{sys}
		pinnedCost = c.CountMessage(sys)
		msgs = msgs[1:]
	}

	groups := GroupBlocks(msgs)
	base := Stats{Budget: budget, Pinned: len(pinned), SkippedGroups: len(groups)}

	if budget <= 0 {
		base.OverBudgetNewest = len(groups) > 0
		return nil, base
	}

	total := pinnedCost
	included := 0
	startIdx := len(groups) // exclusive sentinel; lowered when a group is included

	for gi := len(groups) - 1; gi >= 0; gi-- {
		cost := c.CountGroup(groups[gi], msgs)
		if included == 0 && total+cost > budget {
			slog.Debug("windowing: newest group over budget", "budget", budget, "cost", cost, "pinned_cost", pinnedCost)
			base.OverBudgetNewest = true
			return nil, base
		}
		if total+cost > budget {
			break
		}
		total += cost
		included++
		startIdx = gi
	}

	if included == 0 {
		// Only a pinned message was present.
		base.Total = total
		return append([]conversation.Message(nil), pinned...), base
	}

	window := make([]conversation.Message, 0, len(pinned)+len(msgs)-groups[startIdx].Start)
	window = append(window, pinned...)
	window = append(window, msgs[groups[startIdx].Start:]...)

	return window, Stats{
		Total:          total,
		Budget:         budget,
		Pinned:         len(pinned),
		IncludedGroups: included,
		SkippedGroups:  len(groups) - included,
	}
}
