package provider

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/petasbytes/frontogether/internal/conversation"
)

func TestAnthropic_StreamsTextToolUseAndUsage(t *testing.T) {
	body := namedSSE(
		"message_start", `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"claude-3-7-sonnet-latest","stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":20,"output_tokens":1}}}`,
		"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
		"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"On it"}}`,
		"content_block_stop", `{"type":"content_block_stop","index":0}`,
		"content_block_start", `{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_1","name":"write_file","input":{}}}`,
		"content_block_delta", `{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"filename\":"}}`,
		"content_block_delta", `{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"\"a.txt\"}"}}`,
		"content_block_stop", `{"type":"content_block_stop","index":1}`,
		"message_delta", `{"type":"message_delta","delta":{"stop_reason":"tool_use","stop_sequence":null},"usage":{"output_tokens":30}}`,
		"message_stop", `{"type":"message_stop"}`,
	)
	p := newTestProvider("anthropic", &sseTransport{body: body})
	s, err := p.Stream(context.Background(), Request{Model: DefaultAnthropicModel})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer s.Close()

	got := drain(t, s)
	if len(got) != 4 {
		t.Fatalf("expected 4 deltas, got %d: %#v", len(got), got)
	}
	if got[0].Text != "On it" {
		t.Fatalf("text delta = %#v", got[0])
	}
	if got[1].Tool == nil || got[1].Tool.ID != "toolu_1" || got[1].Tool.Name != "write_file" || got[1].Tool.Arguments != "" {
		t.Fatalf("tool start = %#v", got[1].Tool)
	}
	if got[2].Tool.Arguments+got[3].Tool.Arguments != `{"filename":"a.txt"}` {
		t.Fatalf("argument fragments = %q %q", got[2].Tool.Arguments, got[3].Tool.Arguments)
	}
	if u := s.Usage(); u.InputTokens != 20 || u.OutputTokens != 30 {
		t.Fatalf("usage = %+v", u)
	}
}

func TestAnthropicMessages_FoldsToolResultsAndSplitsSystem(t *testing.T) {
	msgs := []conversation.Message{
		conversation.SystemMessage{Text: "sys"},
		conversation.UserMessage{Text: "go"},
		conversation.AssistantMessage{Text: "ok", ToolCalls: []conversation.ToolCall{
			{ID: "a", Name: "write_file", Arguments: `{"filename":"x","content":"1"}`},
			{ID: "b", Name: "write_file", Arguments: `{"filename":`},
		}},
		conversation.ToolMessage{CallID: "a", Name: "write_file", Content: "true"},
		conversation.ToolMessage{CallID: "b", Name: "write_file", Content: "bad args", IsError: true},
	}
	system, out := anthropicMessages(msgs)
	if len(system) != 1 || system[0].Text != "sys" {
		t.Fatalf("system = %+v", system)
	}
	if len(out) != 3 {
		t.Fatalf("expected user, assistant, user; got %d messages", len(out))
	}

	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded []struct {
		Role    string `json:"role"`
		Content []struct {
			Type      string          `json:"type"`
			ID        string          `json:"id"`
			Input     json.RawMessage `json:"input"`
			ToolUseID string          `json:"tool_use_id"`
			IsError   bool            `json:"is_error"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	asst := decoded[1]
	if asst.Role != "assistant" || len(asst.Content) != 3 {
		t.Fatalf("assistant = %+v", asst)
	}
	if string(asst.Content[2].Input) != "{}" {
		t.Fatalf("malformed arguments should replay as {}, got %s", asst.Content[2].Input)
	}
	results := decoded[2]
	if results.Role != "user" || len(results.Content) != 2 {
		t.Fatalf("tool results not folded: %+v", results)
	}
	if results.Content[0].ToolUseID != "a" || results.Content[1].ToolUseID != "b" || !results.Content[1].IsError {
		t.Fatalf("tool results = %+v", results.Content)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(Options{Name: "bogus"}); err == nil {
		t.Fatal("expected error")
	}
}
