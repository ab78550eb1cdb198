package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/petasbytes/frontogether/internal/agenterr"
	"github.com/petasbytes/frontogether/internal/conversation"
	"github.com/petasbytes/frontogether/internal/cost"
	"github.com/petasbytes/frontogether/internal/metrics"
	"github.com/petasbytes/frontogether/internal/provider"
	"github.com/petasbytes/frontogether/internal/stream"
	"github.com/petasbytes/frontogether/internal/telemetry"
	"github.com/petasbytes/frontogether/internal/windowing"
	"github.com/petasbytes/frontogether/tools"
)

// DefaultMaxDepth bounds the streaming calls of one turn when Options.MaxDepth
// is unset.
const DefaultMaxDepth = 20

// ErrWindowOverBudget is returned when the newest message group alone does not
// fit Options.TokenBudget. No request is sent.
var ErrWindowOverBudget = errors.New("windowing: newest group exceeds token budget; raise token_budget")

// Options tune a Runner.
type Options struct {
	Model     string
	MaxTokens int
	// MaxDepth is the most streaming calls a single turn may issue.
	MaxDepth int
	// TokenBudget > 0 sends only the newest groups that fit.
	TokenBudget int
	Counter     windowing.TokenCounter
	// FeedbackToolErrors reports tool failures to the model as error results
	// instead of aborting the turn.
	FeedbackToolErrors bool
	Prices             cost.Table
}

// Runner executes turns against one provider and tool set. A Runner holds no
// per-conversation state and may serve many sessions.
type Runner struct {
	provider provider.Provider
	tools    *tools.Dispatcher
	opts     Options
}

// New returns a Runner. Zero options fall back to defaults.
func New(p provider.Provider, d *tools.Dispatcher, opts Options) *Runner {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Counter == nil {
		opts.Counter = windowing.HeuristicCounter{}
	}
	if d == nil {
		d = &tools.Dispatcher{}
	}
	return &Runner{provider: p, tools: d, opts: opts}
}

// Result is the outcome of one turn.
type Result struct {
	// Messages are the messages the turn appended, not the full log.
	Messages []conversation.Message
	Cost     float64
	Usage    cost.Usage
	// Calls is the number of streaming calls issued.
	Calls int
}

// Run executes one turn over log, which must already end with the user's
// message. Progress is sent on events (which may be nil). On error the
// returned Result still reports the messages and cost accrued so far.
func (r *Runner) Run(ctx context.Context, log conversation.Log, events chan<- stream.Event) (Result, error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	start := time.Now()
	telemetry.Emit("turn_started", map[string]any{
		"turn_id":  turnID,
		"provider": r.provider.Name(),
		"model":    r.opts.Model,
		"log_len":  log.Len(),
	})

	res, err := r.run(ctx, turnID, log, events)

	fields := metrics.CountLog(res.Messages).Fields()
	fields["turn_id"] = turnID
	fields["calls"] = res.Calls
	fields["cost"] = res.Cost
	fields["input_tokens"] = res.Usage.InputTokens
	fields["output_tokens"] = res.Usage.OutputTokens
	fields["duration_ms"] = time.Since(start).Milliseconds()
	fields["error"] = errorCode(err)
	telemetry.Emit("turn_finished", fields)
	return res, err
}

func (r *Runner) run(ctx context.Context, turnID string, log conversation.Log, events chan<- stream.Event) (Result, error) {
	var (
		ledger  cost.Ledger
		working = log
		res     Result
	)
	done := func(err error) (Result, error) {
		res.Cost = ledger.Total()
		res.Usage = ledger.Usage()
		return res, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return done(err)
		}
		if res.Calls >= r.opts.MaxDepth {
			return done(agenterr.New(agenterr.KindTurnDepthExceeded,
				"turn exceeded %d streaming calls without a final answer", r.opts.MaxDepth))
		}
		res.Calls++

		msg, usage, err := r.streamCall(ctx, turnID, res.Calls, working.Messages(), events)
		ledger.Record(r.opts.Prices, r.opts.Model, usage)
		if err != nil {
			return done(err)
		}

		working = working.Append(msg)
		res.Messages = append(res.Messages, msg)
		if err := stream.Send(ctx, events, stream.Finalized{Message: msg}); err != nil {
			return done(err)
		}
		if !msg.HasToolCalls() {
			return done(nil)
		}

		// Tools run one at a time in the order the model issued them.
		for _, call := range msg.ToolCalls {
			tm, err := r.execTool(ctx, turnID, call)
			if err != nil {
				return done(err)
			}
			working = working.Append(tm)
			res.Messages = append(res.Messages, tm)
			if err := stream.Send(ctx, events, stream.ToolResult{Message: tm}); err != nil {
				return done(err)
			}
		}
	}
}

// streamCall issues one streaming request and aggregates its deltas.
func (r *Runner) streamCall(ctx context.Context, turnID string, n int, msgs []conversation.Message, events chan<- stream.Event) (conversation.AssistantMessage, cost.Usage, error) {
	window := msgs
	if r.opts.TokenBudget > 0 {
		var stats windowing.Stats
		window, stats = windowing.PrepareSendWindow(msgs, r.opts.TokenBudget, r.opts.Counter)
		fields := stats.Fields()
		fields["turn_id"] = turnID
		fields["model"] = r.opts.Model
		telemetry.Emit("window_prepared", fields)
		slog.Debug("window prepared", "turn_id", turnID, "budget", stats.Budget, "est_total", stats.Total,
			"groups_in", stats.IncludedGroups, "groups_skip", stats.SkippedGroups)
		if stats.OverBudgetNewest {
			return conversation.AssistantMessage{}, cost.Usage{}, ErrWindowOverBudget
		}
	}

	slog.Debug("streaming call", "turn_id", turnID, "call", n, "provider", r.provider.Name(), "model", r.opts.Model, "messages", len(window))
	start := time.Now()

	s, err := r.provider.Stream(ctx, provider.Request{
		Model:     r.opts.Model,
		Messages:  window,
		Tools:     r.tools.Definitions(),
		MaxTokens: r.opts.MaxTokens,
	})
	if err != nil {
		return conversation.AssistantMessage{}, cost.Usage{}, providerError(ctx, err, n)
	}
	defer s.Close()

	msg, err := stream.Collect(ctx, s, events)
	usage := s.Usage()
	telemetry.Emit("stream_call", map[string]any{
		"turn_id":       turnID,
		"call":          n,
		"model":         r.opts.Model,
		"messages":      len(window),
		"input_tokens":  usage.InputTokens,
		"output_tokens": usage.OutputTokens,
		"tool_calls":    len(msg.ToolCalls),
		"duration_ms":   time.Since(start).Milliseconds(),
		"error":         errorCode(err),
	})
	if err != nil {
		return conversation.AssistantMessage{}, usage, providerError(ctx, err, n)
	}
	return msg, usage, nil
}

// execTool dispatches call and builds the tool message fed back to the model.
// In abort mode any dispatch failure is returned; in feedback mode tool
// failures become error results and only cancellation is returned.
func (r *Runner) execTool(ctx context.Context, turnID string, call conversation.ToolCall) (conversation.ToolMessage, error) {
	start := time.Now()
	out, err := r.tools.Dispatch(ctx, call)

	// Sizes only; raw arguments and results never reach telemetry.
	fields := map[string]any{
		"turn_id":     turnID,
		"tool_name":   call.Name,
		"duration_ms": time.Since(start).Milliseconds(),
		"input_size":  len(call.Arguments),
		"output_size": len(out),
		"error":       errorCode(err),
	}
	telemetry.Emit("tool_exec", fields)
	slog.Debug("tool dispatched", "turn_id", turnID, "tool", call.Name, "call_id", call.ID, "err", err)

	if err == nil {
		return conversation.ToolMessage{CallID: call.ID, Name: call.Name, Content: out}, nil
	}
	if ctx.Err() != nil || !r.opts.FeedbackToolErrors {
		return conversation.ToolMessage{}, err
	}
	return conversation.ToolMessage{CallID: call.ID, Name: call.Name, Content: err.Error(), IsError: true}, nil
}

// providerError keeps cancellation and classified failures as they are and
// marks everything else as a provider failure.
func providerError(ctx context.Context, err error, n int) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if _, ok := agenterr.KindOf(err); ok {
		return err
	}
	return agenterr.Wrap(agenterr.KindProvider, err, "streaming call %d", n)
}

// errorCode renders err for telemetry without its message, which may quote
// model output.
func errorCode(err error) any {
	if err == nil {
		return nil
	}
	if k, ok := agenterr.KindOf(err); ok {
		return string(k)
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	case errors.Is(err, ErrWindowOverBudget):
		return "window_over_budget"
	}
	return fmt.Sprintf("%T", err)
}
