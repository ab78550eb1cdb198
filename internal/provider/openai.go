package provider

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/petasbytes/frontogether/internal/conversation"
	"github.com/petasbytes/frontogether/internal/cost"
	"github.com/petasbytes/frontogether/internal/stream"
	"github.com/petasbytes/frontogether/tools"
)

// OpenAI streams Chat Completions.
type OpenAI struct {
	client openai.Client
}

// NewOpenAI returns an OpenAI provider. The API key falls back to
// OPENAI_API_KEY inside the SDK when not passed as an option.
func NewOpenAI(opts ...option.RequestOption) *OpenAI {
	return &OpenAI{client: openai.NewClient(opts...)}
}

func (p *OpenAI) Name() string { return "openai" }

func (p *OpenAI) Stream(ctx context.Context, req Request) (Stream, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: openAIMessages(req.Messages),
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if len(req.Tools) > 0 {
		params.Tools = openAITools(req.Tools)
	}

	s := p.client.Chat.Completions.NewStreaming(ctx, params)
	return &chunkStream[openai.ChatCompletionChunk]{src: s, convert: openAIDeltas}, nil
}

func openAIDeltas(chunk openai.ChatCompletionChunk, u *cost.Usage) []stream.Delta {
	if chunk.Usage.PromptTokens > 0 || chunk.Usage.CompletionTokens > 0 {
		u.InputTokens = int(chunk.Usage.PromptTokens)
		u.OutputTokens = int(chunk.Usage.CompletionTokens)
	}
	if len(chunk.Choices) == 0 {
		return nil
	}
	delta := chunk.Choices[0].Delta
	var out []stream.Delta
	if delta.Content != "" {
		out = append(out, stream.TextDelta(delta.Content))
	}
	for _, tc := range delta.ToolCalls {
		out = append(out, stream.Delta{Tool: &stream.ToolFragment{
			Index:     int(tc.Index),
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}
	return out
}

func openAITools(defs []tools.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        d.Name,
				Description: openai.String(d.Description),
				Parameters:  openai.FunctionParameters(d.InputSchema.Object()),
			},
		})
	}
	return out
}

func openAIMessages(msgs []conversation.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch v := m.(type) {
		case conversation.SystemMessage:
			out = append(out, openai.SystemMessage(v.Text))
		case conversation.UserMessage:
			if v.Attachment == nil {
				out = append(out, openai.UserMessage(v.Text))
				continue
			}
			out = append(out, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(v.Text),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: v.Attachment.DataURL(),
				}),
			}))
		case conversation.AssistantMessage:
			asst := openai.ChatCompletionAssistantMessageParam{}
			if v.Text != "" {
				asst.Content.OfString = openai.String(v.Text)
			}
			for _, c := range v.ToolCalls {
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: c.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      c.Name,
						Arguments: c.Arguments,
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		case conversation.ToolMessage:
			out = append(out, openai.ToolMessage(v.Content, v.CallID))
		}
	}
	return out
}
