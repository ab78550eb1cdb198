package runner_test

import (
	"context"
	"sync"

	"github.com/petasbytes/frontogether/internal/conversation"
	"github.com/petasbytes/frontogether/internal/cost"
	"github.com/petasbytes/frontogether/internal/provider"
	"github.com/petasbytes/frontogether/internal/stream"
)

// reply is one scripted streaming call.
type reply struct {
	deltas []stream.Delta
	usage  cost.Usage
	err    error // returned from Stream
}

// scripted replays replies in order and records every request.
type scripted struct {
	mu       sync.Mutex
	replies  []reply
	requests []provider.Request
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) Stream(ctx context.Context, req provider.Request) (provider.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.Messages = append([]conversation.Message(nil), req.Messages...)
	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return &scriptedStream{Source: stream.NewSliceSource(stream.TextDelta("done"))}, nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	if r.err != nil {
		return nil, r.err
	}
	return &scriptedStream{Source: stream.NewSliceSource(r.deltas...), usage: r.usage}, nil
}

func (s *scripted) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

type scriptedStream struct {
	stream.Source
	usage cost.Usage
}

func (s *scriptedStream) Usage() cost.Usage { return s.usage }
func (s *scriptedStream) Close() error      { return nil }

func writeCall(id, args string) []stream.Delta {
	return []stream.Delta{stream.ToolStart(0, id, "write_file"), stream.ArgsDelta(0, args)}
}

func text(s string) []stream.Delta { return []stream.Delta{stream.TextDelta(s)} }
