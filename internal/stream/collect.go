package stream

import (
	"context"
	"errors"
	"io"

	"github.com/petasbytes/frontogether/internal/conversation"
)

// Source yields deltas until io.EOF.
type Source interface {
	Recv() (Delta, error)
}

// Collect drains src through a fresh Aggregator, forwarding progress events to
// events (which may be nil). ctx is checked before every read so a cancelled
// turn stops between deltas. Errors from src are returned unchanged.
func Collect(ctx context.Context, src Source, events chan<- Event) (conversation.AssistantMessage, error) {
	agg := NewAggregator()
	for {
		if err := ctx.Err(); err != nil {
			return conversation.AssistantMessage{}, err
		}
		d, err := src.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return conversation.AssistantMessage{}, err
		}
		evs, err := agg.Add(d)
		for _, ev := range evs {
			if serr := Send(ctx, events, ev); serr != nil {
				return conversation.AssistantMessage{}, serr
			}
		}
		if err != nil {
			return conversation.AssistantMessage{}, err
		}
	}
	return agg.Finalize(), nil
}

// Send delivers ev on events unless events is nil. It gives up when ctx is
// done so a consumer that stopped reading cannot wedge the producer.
func Send(ctx context.Context, events chan<- Event, ev Event) error {
	if events == nil {
		return nil
	}
	select {
	case events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SliceSource replays a fixed delta sequence. It is useful for tests and for
// providers that buffer a whole response.
type SliceSource struct {
	deltas []Delta
	pos    int
}

// NewSliceSource returns a Source over deltas.
func NewSliceSource(deltas ...Delta) *SliceSource {
	return &SliceSource{deltas: deltas}
}

func (s *SliceSource) Recv() (Delta, error) {
	if s.pos >= len(s.deltas) {
		return Delta{}, io.EOF
	}
	d := s.deltas[s.pos]
	s.pos++
	return d, nil
}
