package windowing_test

import (
	"testing"

	"github.com/petasbytes/frontogether/internal/conversation"
	"github.com/petasbytes/frontogether/internal/windowing"
)

func TestPrepareSendWindow_BudgetRespected_OrderPreserved(t *testing.T) {
	msgs := []conversation.Message{
		User("old"),      // G0: 3 + 4 = 7
		Calls("a"),       // G1: 4
		Result("a", "r"), //     1 + 4 = 5
		User("tail"),     // G2: 4 + 4 = 8
	}
	budget := 17 // G2(8) + G1(9)

	window, stats := windowing.PrepareSendWindow(msgs, budget, windowing.HeuristicCounter{})

	if stats.Budget != budget || stats.Total != 17 || stats.IncludedGroups != 2 || stats.OverBudgetNewest {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(window) != 3 {
		t.Fatalf("unexpected window length: got %d want=3", len(window))
	}
	if window[0].Role() != conversation.RoleAssistant || window[1].Role() != conversation.RoleTool || window[2].Role() != conversation.RoleUser {
		t.Fatalf("unexpected roles order in window: %v", window)
	}
}

func TestPrepareSendWindow_NewestGroupOverBudget(t *testing.T) {
	msgs := []conversation.Message{
		User("old"),
		Calls("a"),
		Result("a", "xxxxxx"), // G1 total 4 + 10 = 14 (newest)
	}
	window, stats := windowing.PrepareSendWindow(msgs, 10, windowing.HeuristicCounter{})

	if len(window) != 0 {
		t.Fatalf("expected empty window; got=%d", len(window))
	}
	if !stats.OverBudgetNewest || stats.IncludedGroups != 0 || stats.SkippedGroups == 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPrepareSendWindow_NoCapacityBudget_WithGroups(t *testing.T) {
	window, stats := windowing.PrepareSendWindow([]conversation.Message{User("x")}, 0, windowing.HeuristicCounter{})
	if len(window) != 0 || !stats.OverBudgetNewest || stats.SkippedGroups != 1 || stats.IncludedGroups != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPrepareSendWindow_EmptyMsgs(t *testing.T) {
	window, stats := windowing.PrepareSendWindow(nil, 123, windowing.HeuristicCounter{})
	if window != nil || stats.Budget != 123 || stats.Total != 0 || stats.OverBudgetNewest {
		t.Fatalf("unexpected result: window=%v stats=%+v", window, stats)
	}
}

func TestPrepareSendWindow_AllFitIncludingOldest(t *testing.T) {
	msgs := []conversation.Message{
		User("oldest"), // 10
		User("mid"),    // 7
		User("new"),    // 7
	}
	window, stats := windowing.PrepareSendWindow(msgs, 24, windowing.HeuristicCounter{})
	if stats.OverBudgetNewest || stats.IncludedGroups != 3 || stats.SkippedGroups != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(window) != len(msgs) {
		t.Fatalf("window size: got=%d want=%d", len(window), len(msgs))
	}
}

func TestPrepareSendWindow_ExactlyOneOlderAlsoFits(t *testing.T) {
	msgs := []conversation.Message{
		User("a"),    // 5
		User("bbbb"), // 8
		User("cc"),   // 6 (newest)
	}
	counter := windowing.HeuristicCounter{}
	window, stats := windowing.PrepareSendWindow(msgs, 14, counter)
	if stats.IncludedGroups != 2 || stats.SkippedGroups != 1 || stats.Total != 14 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(window) != 2 || window[0] != msgs[1] || window[1] != msgs[2] {
		t.Fatalf("unexpected window %v", window)
	}
}

func TestPrepareSendWindow_SystemMessagePinned(t *testing.T) {
	msgs := []conversation.Message{
		Sys("rules"), // 9, always kept
		User("old"),  // 7
		User("new"),  // 7
	}
	window, stats := windowing.PrepareSendWindow(msgs, 16, windowing.HeuristicCounter{})
	if stats.Pinned != 1 || stats.IncludedGroups != 1 || stats.Total != 16 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(window) != 2 || window[0] != msgs[0] || window[1] != msgs[2] {
		t.Fatalf("unexpected window %v", window)
	}
}

func TestPrepareSendWindow_PinnedCostCountsTowardNewest(t *testing.T) {
	msgs := []conversation.Message{Sys("a long system prompt"), User("hi")}
	_, stats := windowing.PrepareSendWindow(msgs, 10, windowing.HeuristicCounter{})
	if !stats.OverBudgetNewest {
		t.Fatalf("expected newest over budget once pinned cost is charged: %+v", stats)
	}
}
