package runner_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petasbytes/frontogether/internal/agenterr"
	"github.com/petasbytes/frontogether/internal/conversation"
	"github.com/petasbytes/frontogether/internal/cost"
	"github.com/petasbytes/frontogether/internal/runner"
	"github.com/petasbytes/frontogether/internal/stream"
	"github.com/petasbytes/frontogether/tools"
)

var prices = cost.NewTable(map[string]cost.Rate{"test-model": {InputPerMillion: 1e6, OutputPerMillion: 2e6}})

func newRunner(t *testing.T, p *scripted, root string, opts runner.Options) *runner.Runner {
	t.Helper()
	defs, err := tools.Registry(root, "write_file")
	if err != nil {
		t.Fatal(err)
	}
	d, err := tools.NewDispatcher(defs...)
	if err != nil {
		t.Fatal(err)
	}
	opts.Model = "test-model"
	opts.Prices = prices
	return runner.New(p, d, opts)
}

func userLog(text string) conversation.Log {
	return conversation.NewLog(conversation.UserMessage{Text: text})
}

func TestRun_TwoCallChain(t *testing.T) {
	root := t.TempDir()
	p := &scripted{replies: []reply{
		{deltas: writeCall("c1", `{"filename":"a.txt","content":"hi"}`), usage: cost.Usage{InputTokens: 1, OutputTokens: 1}},
		{deltas: text("wrote it"), usage: cost.Usage{InputTokens: 2, OutputTokens: 0}},
	}}
	r := newRunner(t, p, root, runner.Options{})

	res, err := r.Run(context.Background(), userLog("write a.txt"), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Messages) != 3 {
		t.Fatalf("expected 3 new messages, got %d", len(res.Messages))
	}
	if a, ok := res.Messages[0].(conversation.AssistantMessage); !ok || len(a.ToolCalls) != 1 {
		t.Fatalf("message 0 = %#v", res.Messages[0])
	}
	if tm, ok := res.Messages[1].(conversation.ToolMessage); !ok || tm.CallID != "c1" || tm.Name != "write_file" || tm.Content != tools.WriteFileResult {
		t.Fatalf("message 1 = %#v", res.Messages[1])
	}
	if a, ok := res.Messages[2].(conversation.AssistantMessage); !ok || a.Text != "wrote it" || a.HasToolCalls() {
		t.Fatalf("message 2 = %#v", res.Messages[2])
	}
	// (1 + 2) + (2 + 0)
	if math.Abs(res.Cost-5) > 1e-9 {
		t.Fatalf("cost = %v, want 5", res.Cost)
	}
	if res.Calls != 2 || p.calls() != 2 {
		t.Fatalf("calls = %d (provider saw %d)", res.Calls, p.calls())
	}
	b, err := os.ReadFile(filepath.Join(root, "a.txt"))
	if err != nil || string(b) != "hi" {
		t.Fatalf("a.txt = %q, %v", b, err)
	}

	// The second request carries the tool exchange.
	second := p.requests[1].Messages
	if len(second) != 3 {
		t.Fatalf("second request has %d messages", len(second))
	}
	if _, ok := second[2].(conversation.ToolMessage); !ok {
		t.Fatalf("second request should end with the tool result, got %T", second[2])
	}
}

func TestRun_InputLogUnchanged(t *testing.T) {
	p := &scripted{replies: []reply{
		{deltas: writeCall("c1", `{"filename":"a.txt","content":"x"}`)},
		{deltas: text("ok")},
	}}
	r := newRunner(t, p, t.TempDir(), runner.Options{})
	log := userLog("go")
	if _, err := r.Run(context.Background(), log, nil); err != nil {
		t.Fatal(err)
	}
	if log.Len() != 1 {
		t.Fatalf("input log grew to %d", log.Len())
	}
}

func TestRun_DepthExceeded(t *testing.T) {
	var replies []reply
	for i := 0; i < 5; i++ {
		replies = append(replies, reply{deltas: writeCall("c", `{"filename":"loop.txt","content":"x"}`)})
	}
	p := &scripted{replies: replies}
	r := newRunner(t, p, t.TempDir(), runner.Options{MaxDepth: 3})

	res, err := r.Run(context.Background(), userLog("loop"), nil)
	if !errors.Is(err, agenterr.ErrTurnDepthExceeded) {
		t.Fatalf("expected TurnDepthExceeded, got %v", err)
	}
	if p.calls() != 3 || res.Calls != 3 {
		t.Fatalf("expected exactly 3 calls, provider saw %d", p.calls())
	}
}

func TestRun_ToolErrorsAbortByDefault(t *testing.T) {
	cases := []struct {
		name string
		call []stream.Delta
		want error
	}{
		{"unknown tool", []stream.Delta{stream.ToolStart(0, "x", "rm_rf"), stream.ArgsDelta(0, "{}")}, agenterr.ErrUnknownTool},
		{"bad json", writeCall("x", "{not json"), agenterr.ErrArgumentParse},
		{"escape", writeCall("x", `{"filename":"../evil.txt","content":"x"}`), agenterr.ErrPathEscape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &scripted{replies: []reply{{deltas: tc.call}, {deltas: text("never")}}}
			r := newRunner(t, p, t.TempDir(), runner.Options{})
			_, err := r.Run(context.Background(), userLog("go"), nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if p.calls() != 1 {
				t.Fatalf("turn continued after tool failure: %d calls", p.calls())
			}
		})
	}
}

func TestRun_UnknownToolNamesFunction(t *testing.T) {
	p := &scripted{replies: []reply{{deltas: []stream.Delta{stream.ToolStart(0, "x", "rm_rf")}}}}
	r := newRunner(t, p, t.TempDir(), runner.Options{})
	_, err := r.Run(context.Background(), userLog("go"), nil)
	var ae *agenterr.Error
	if !errors.As(err, &ae) || ae.Message != "invalid tool: rm_rf" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestRun_NilDispatcherHasNoTools(t *testing.T) {
	p := &scripted{replies: []reply{{deltas: []stream.Delta{stream.ToolStart(0, "x", "write_file")}}}}
	r := runner.New(p, nil, runner.Options{Model: "test-model", Prices: prices})
	_, err := r.Run(context.Background(), userLog("go"), nil)
	if !errors.Is(err, agenterr.ErrUnknownTool) {
		t.Fatalf("expected UnknownTool, got %v", err)
	}
	if n := len(p.requests[0].Tools); n != 0 {
		t.Fatalf("request advertised %d tools", n)
	}
}

func TestRun_FeedbackModeReportsToolErrors(t *testing.T) {
	p := &scripted{replies: []reply{
		{deltas: writeCall("x", `{"filename":"../evil.txt","content":"x"}`)},
		{deltas: text("sorry")},
	}}
	r := newRunner(t, p, t.TempDir(), runner.Options{FeedbackToolErrors: true})
	res, err := r.Run(context.Background(), userLog("go"), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	tm, ok := res.Messages[1].(conversation.ToolMessage)
	if !ok || !tm.IsError {
		t.Fatalf("expected error tool result, got %#v", res.Messages[1])
	}
	if !strings.Contains(tm.Content, string(agenterr.KindPathEscape)) {
		t.Fatalf("tool content should carry the error code, got %q", tm.Content)
	}
	if p.calls() != 2 {
		t.Fatalf("calls = %d", p.calls())
	}
}

func TestRun_ProviderErrorClassified(t *testing.T) {
	p := &scripted{replies: []reply{{err: errors.New("502 bad gateway")}}}
	r := newRunner(t, p, t.TempDir(), runner.Options{})
	_, err := r.Run(context.Background(), userLog("go"), nil)
	if !errors.Is(err, agenterr.ErrProvider) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestRun_ProtocolErrorNotReclassified(t *testing.T) {
	p := &scripted{replies: []reply{{deltas: []stream.Delta{stream.ArgsDelta(0, "{")}}}}
	r := newRunner(t, p, t.TempDir(), runner.Options{})
	_, err := r.Run(context.Background(), userLog("go"), nil)
	if !errors.Is(err, agenterr.ErrProtocolOrder) || errors.Is(err, agenterr.ErrProvider) {
		t.Fatalf("expected ProtocolOrderError only, got %v", err)
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &scripted{}
	r := newRunner(t, p, t.TempDir(), runner.Options{})
	_, err := r.Run(ctx, userLog("go"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if p.calls() != 0 {
		t.Fatalf("request issued after cancel")
	}
}

func TestRun_EventsInOrder(t *testing.T) {
	p := &scripted{replies: []reply{
		{deltas: append(text("ok "), writeCall("c1", `{"filename":"a.txt","content":"x"}`)...)},
		{deltas: text("done")},
	}}
	r := newRunner(t, p, t.TempDir(), runner.Options{})
	events := make(chan stream.Event, 32)
	if _, err := r.Run(context.Background(), userLog("go"), events); err != nil {
		t.Fatal(err)
	}
	close(events)

	var got []string
	for ev := range events {
		switch ev.(type) {
		case stream.TextFragment:
			got = append(got, "text")
		case stream.ToolStarted:
			got = append(got, "started")
		case stream.ToolProgress:
			got = append(got, "progress")
		case stream.Finalized:
			got = append(got, "final")
		case stream.ToolResult:
			got = append(got, "result")
		}
	}
	want := []string{"text", "started", "progress", "final", "result", "text", "final"}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestRun_WindowOverBudgetSendsNothing(t *testing.T) {
	p := &scripted{}
	r := newRunner(t, p, t.TempDir(), runner.Options{TokenBudget: 1})
	_, err := r.Run(context.Background(), userLog("this will not fit in one token"), nil)
	if !errors.Is(err, runner.ErrWindowOverBudget) {
		t.Fatalf("expected ErrWindowOverBudget, got %v", err)
	}
	if p.calls() != 0 {
		t.Fatal("request sent despite over-budget window")
	}
}

func TestRun_WindowDropsOldGroups(t *testing.T) {
	p := &scripted{replies: []reply{{deltas: text("hi")}}}
	r := newRunner(t, p, t.TempDir(), runner.Options{TokenBudget: 12})
	log := conversation.NewLog(
		conversation.SystemMessage{Text: "s"},
		conversation.UserMessage{Text: "an old message that is long enough to be dropped from the window"},
		conversation.AssistantMessage{Text: "old reply that is also long enough to be dropped"},
		conversation.UserMessage{Text: "new"},
	)
	if _, err := r.Run(context.Background(), log, nil); err != nil {
		t.Fatal(err)
	}
	sent := p.requests[0].Messages
	if len(sent) != 2 {
		t.Fatalf("expected system + newest user, got %d messages", len(sent))
	}
	if _, ok := sent[0].(conversation.SystemMessage); !ok {
		t.Fatalf("system message not pinned: %T", sent[0])
	}
}
