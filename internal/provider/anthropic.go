package provider

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/frontogether/internal/conversation"
	"github.com/petasbytes/frontogether/internal/cost"
	"github.com/petasbytes/frontogether/internal/stream"
	"github.com/petasbytes/frontogether/tools"
)

// DefaultAnthropicModel is used when provider=anthropic and no model is set.
const DefaultAnthropicModel = "claude-3-7-sonnet-latest"

// Anthropic streams the Messages API.
type Anthropic struct {
	client anthropic.Client
}

// NewAnthropic returns an Anthropic provider. The API key falls back to
// ANTHROPIC_API_KEY inside the SDK when not passed as an option.
func NewAnthropic(opts ...option.RequestOption) *Anthropic {
	return &Anthropic{client: anthropic.NewClient(opts...)}
}

func (p *Anthropic) Name() string { return "anthropic" }

func (p *Anthropic) Stream(ctx context.Context, req Request) (Stream, error) {
	system, messages := anthropicMessages(req.Messages)
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(req.Tools) > 0 {
		params.Tools = anthropicTools(req.Tools)
	}

	s := p.client.Messages.NewStreaming(ctx, params)
	return &chunkStream[anthropic.MessageStreamEventUnion]{src: s, convert: anthropicDeltas}, nil
}

func anthropicDeltas(event anthropic.MessageStreamEventUnion, u *cost.Usage) []stream.Delta {
	switch ev := event.AsAny().(type) {
	case anthropic.MessageStartEvent:
		u.InputTokens = int(ev.Message.Usage.InputTokens)
		u.OutputTokens = int(ev.Message.Usage.OutputTokens)
	case anthropic.MessageDeltaEvent:
		if ev.Usage.InputTokens > 0 {
			u.InputTokens = int(ev.Usage.InputTokens)
		}
		if ev.Usage.OutputTokens > 0 {
			u.OutputTokens = int(ev.Usage.OutputTokens)
		}
	case anthropic.ContentBlockStartEvent:
		// The start block's input is always an empty object; arguments
		// arrive as input_json_delta fragments.
		if block, ok := ev.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
			return []stream.Delta{stream.ToolStart(int(ev.Index), block.ID, block.Name)}
		}
	case anthropic.ContentBlockDeltaEvent:
		switch d := ev.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			if d.Text != "" {
				return []stream.Delta{stream.TextDelta(d.Text)}
			}
		case anthropic.InputJSONDelta:
			if d.PartialJSON != "" {
				return []stream.Delta{stream.ArgsDelta(int(ev.Index), d.PartialJSON)}
			}
		}
	}
	return nil
}

func anthropicTools(defs []tools.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Name,
			Description: anthropic.String(d.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: d.InputSchema.PropertyMap(),
				Required:   d.InputSchema.Required,
			},
		}})
	}
	return out
}

// anthropicMessages splits system text out of msgs and folds consecutive tool
// results into a single user message, as the Messages API requires.
func anthropicMessages(msgs []conversation.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var out []anthropic.MessageParam
	var results []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(results) > 0 {
			out = append(out, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, m := range msgs {
		switch v := m.(type) {
		case conversation.SystemMessage:
			if v.Attachment != nil {
				slog.Debug("anthropic: system attachments are not supported; dropped")
			}
			system = append(system, anthropic.TextBlockParam{Text: v.Text})
		case conversation.UserMessage:
			flush()
			blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(v.Text)}
			if v.Attachment != nil {
				blocks = append(blocks, anthropicImage(*v.Attachment))
			}
			out = append(out, anthropic.NewUserMessage(blocks...))
		case conversation.AssistantMessage:
			flush()
			var blocks []anthropic.ContentBlockParamUnion
			if v.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(v.Text))
			}
			for _, c := range v.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(c.ID, toolInput(c.Arguments), c.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case conversation.ToolMessage:
			results = append(results, anthropic.NewToolResultBlock(v.CallID, v.Content, v.IsError))
		}
	}
	flush()
	return system, out
}

func anthropicImage(a conversation.Attachment) anthropic.ContentBlockParamUnion {
	return anthropic.ContentBlockParamUnion{OfImage: &anthropic.ImageBlockParam{
		Source: anthropic.ImageBlockParamSourceUnion{
			OfBase64: &anthropic.Base64ImageSourceParam{
				Data:      a.Data,
				MediaType: anthropic.Base64ImageSourceMediaType(a.MediaType),
			},
		},
	}}
}

// toolInput returns arguments as raw JSON. Empty or malformed arguments are
// replayed as an empty object; the API rejects anything else.
func toolInput(args string) json.RawMessage {
	if args == "" || !json.Valid([]byte(args)) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(args)
}
