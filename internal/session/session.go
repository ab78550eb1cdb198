// Package session holds one conversation's log and runs its turns, one at a
// time, against a shared Runner.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petasbytes/frontogether/internal/conversation"
	"github.com/petasbytes/frontogether/internal/prompt"
	"github.com/petasbytes/frontogether/internal/runner"
	"github.com/petasbytes/frontogether/internal/stream"
	"github.com/petasbytes/frontogether/internal/telemetry"
	"github.com/petasbytes/frontogether/memory"
)

// Input is what the user submits for one turn.
type Input struct {
	Text string
	// Attachment is an optional image sent with the text.
	Attachment *conversation.Attachment
}

// Options configure Open.
type Options struct {
	// ID names the session; a random id is used when empty.
	ID     string
	Runner *runner.Runner
	// Prompt renders user input; nil sends input text unchanged.
	Prompt prompt.Builder
	// Store persists completed turns; nil keeps the log in memory only.
	Store memory.Store
}

// Session is a conversation log plus the collaborators that extend it. Turns
// on one Session are serialized.
type Session struct {
	id     string
	runner *runner.Runner
	prompt prompt.Builder
	store  memory.Store

	mu  sync.Mutex
	log conversation.Log
}

// Open loads the stored log, checks it, and seeds a system message when the
// log is empty and the prompt builder supplies one.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Runner == nil {
		return nil, fmt.Errorf("session: nil runner")
	}
	s := &Session{id: opts.ID, runner: opts.Runner, prompt: opts.Prompt, store: opts.Store}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.store == nil {
		s.store = memory.Nop{}
	}

	log, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", s.id, err)
	}
	if err := log.Validate(); err != nil {
		return nil, fmt.Errorf("session %s: stored log is inconsistent: %w", s.id, err)
	}
	if log.Len() == 0 && s.prompt != nil {
		if text := s.prompt.SystemText(); text != "" {
			sys := conversation.SystemMessage{Text: text}
			if err := s.store.Append(ctx, sys); err != nil {
				slog.Warn("session: persist system prompt", "session", s.id, "err", err)
			}
			log = log.Append(sys)
		}
	}
	s.log = log
	slog.Debug("session opened", "session", s.id, "messages", log.Len())
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Log returns the current log. The value is a snapshot; later turns do not
// change it.
func (s *Session) Log() conversation.Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log
}

// Answer runs one turn for in. Progress is sent on events, which may be nil.
// The log is extended only when the turn succeeds; a failed turn leaves it as
// it was and the returned Result reports what was spent.
func (s *Session) Answer(ctx context.Context, in Input, events chan<- stream.Event) (runner.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := in.Text
	if s.prompt != nil {
		var err error
		if text, err = s.prompt.UserText(in.Text); err != nil {
			return runner.Result{}, fmt.Errorf("build prompt: %w", err)
		}
	}
	user := conversation.UserMessage{Text: text, Attachment: in.Attachment}

	ctx, turnID := telemetry.EnsureTurnID(ctx)
	telemetry.EmitLocalFeatures(ctx, in.Text)

	working := s.log.Append(user)
	res, err := s.runner.Run(ctx, working, events)
	if err != nil {
		slog.Debug("turn failed", "session", s.id, "turn_id", turnID, "err", err)
		return res, err
	}

	added := append([]conversation.Message{user}, res.Messages...)
	if perr := s.store.Append(ctx, added...); perr != nil {
		slog.Warn("session: persist turn", "session", s.id, "turn_id", turnID, "err", perr)
	}
	s.log = working.Append(res.Messages...)
	return res, nil
}

// finishGrace is how long a cancelled turn waits for room to deliver its
// TurnFinished event.
var finishGrace = 2 * time.Second

// Submit runs Answer on a new goroutine and returns its event stream. The
// last event is a TurnFinished, after which the channel is closed. Callers
// should drain the channel. If ctx is cancelled and nothing reads for
// finishGrace, the TurnFinished is dropped and the channel is closed anyway.
func (s *Session) Submit(ctx context.Context, in Input) <-chan stream.Event {
	events := make(chan stream.Event, 64)
	go func() {
		defer close(events)
		res, err := s.Answer(ctx, in, events)
		finish(ctx, events, stream.TurnFinished{Messages: res.Messages, Cost: res.Cost, Err: err})
	}()
	return events
}

func finish(ctx context.Context, events chan<- stream.Event, ev stream.TurnFinished) {
	select {
	case events <- ev:
		return
	case <-ctx.Done():
	}
	timer := time.NewTimer(finishGrace)
	defer timer.Stop()
	select {
	case events <- ev:
	case <-timer.C:
		slog.Debug("session: no reader for TurnFinished; dropped", "err", ev.Err)
	}
}

// Close releases the store.
func (s *Session) Close() error {
	return s.store.Close()
}
