// Package provider adapts streaming chat APIs to the Delta stream consumed by
// the turn runner.
package provider

import (
	"context"
	"io"

	"github.com/petasbytes/frontogether/internal/conversation"
	"github.com/petasbytes/frontogether/internal/cost"
	"github.com/petasbytes/frontogether/internal/stream"
	"github.com/petasbytes/frontogether/tools"
)

// Request is one streaming completion call.
type Request struct {
	Model     string
	Messages  []conversation.Message
	Tools     []tools.ToolDefinition
	MaxTokens int
}

// Stream yields the deltas of one call. Recv returns io.EOF after the last
// delta; Usage is complete once Recv has returned io.EOF.
type Stream interface {
	stream.Source
	Usage() cost.Usage
	Close() error
}

// Provider opens streaming completion calls.
type Provider interface {
	Name() string
	Stream(ctx context.Context, req Request) (Stream, error)
}

// sdkStream is the iterator shape shared by the SDKs' SSE streams.
type sdkStream[T any] interface {
	Next() bool
	Current() T
	Err() error
	Close() error
}

// chunkStream turns an SDK event iterator into deltas. convert maps one SDK
// event to zero or more deltas and may record usage.
type chunkStream[T any] struct {
	src     sdkStream[T]
	convert func(T, *cost.Usage) []stream.Delta
	pending []stream.Delta
	usage   cost.Usage
}

func (s *chunkStream[T]) Recv() (stream.Delta, error) {
	for len(s.pending) == 0 {
		if !s.src.Next() {
			if err := s.src.Err(); err != nil {
				return stream.Delta{}, err
			}
			return stream.Delta{}, io.EOF
		}
		s.pending = s.convert(s.src.Current(), &s.usage)
	}
	d := s.pending[0]
	s.pending = s.pending[1:]
	return d, nil
}

func (s *chunkStream[T]) Usage() cost.Usage { return s.usage }

func (s *chunkStream[T]) Close() error { return s.src.Close() }
