package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/petasbytes/frontogether/internal/conversation"
)

// Store loads and extends one session's log.
type Store interface {
	Load(ctx context.Context) (conversation.Log, error)
	Append(ctx context.Context, msgs ...conversation.Message) error
	Close() error
}

// Nop keeps nothing.
type Nop struct{}

func (Nop) Load(context.Context) (conversation.Log, error)         { return conversation.Log{}, nil }
func (Nop) Append(context.Context, ...conversation.Message) error { return nil }
func (Nop) Close() error                                          { return nil }

// LoadConversation reads a JSON log written by SaveConversation. A missing
// file yields a nil slice.
func LoadConversation(path string) ([]conversation.Message, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return conversation.UnmarshalMessages(b)
}

// SaveConversation writes msgs to path, replacing it atomically.
func SaveConversation(path string, msgs []conversation.Message) error {
	b, err := conversation.MarshalMessages(msgs)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// FileStore keeps the log as a JSON array in a single file.
type FileStore struct {
	path string

	mu   sync.Mutex
	msgs []conversation.Message
}

// NewFileStore returns a store backed by path. The file is created on the
// first Append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (conversation.Log, error) {
	if err := ctx.Err(); err != nil {
		return conversation.Log{}, err
	}
	msgs, err := LoadConversation(s.path)
	if err != nil {
		return conversation.Log{}, fmt.Errorf("load %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.msgs = msgs
	s.mu.Unlock()
	return conversation.NewLog(msgs...), nil
}

func (s *FileStore) Append(ctx context.Context, msgs ...conversation.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(append([]conversation.Message(nil), s.msgs...), msgs...)
	if err := SaveConversation(s.path, next); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	s.msgs = next
	return nil
}

func (s *FileStore) Close() error { return nil }
