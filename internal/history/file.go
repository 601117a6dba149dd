package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "newsrelay/pkg/logx"
)

// fileStore keeps the history as a pretty-printed JSON array of URLs.
//
// Writes go to <path>.tmp and are renamed into place so a crash mid-save
// never leaves a truncated file behind.
type fileStore struct {
	log   logx.Logger
	path  string
	limit int

	mu     sync.Mutex
	closed bool
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("history.path is required for file driver")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &fileStore{log: log, path: path, limit: limitOrDefault(cfg.Limit)}, nil
}

// Load reads the history. A missing file is an empty history; so is an
// unreadable one, which is logged and overwritten on the next Save.
func (s *fileStore) Load(ctx context.Context) (*Set, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewSet(nil), nil
	}
	if err != nil {
		s.log.Warn("history file unreadable; starting empty", logx.String("path", s.path), logx.Err(err))
		return NewSet(nil), nil
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return NewSet(nil), nil
	}

	var urls []string
	if err := json.Unmarshal(b, &urls); err != nil {
		s.log.Warn("history file corrupt; starting empty", logx.String("path", s.path), logx.Err(err))
		return NewSet(nil), nil
	}
	return NewSet(urls), nil
}

func (s *fileStore) Save(ctx context.Context, set *Set) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	urls := set.Tail(s.limit)
	if urls == nil {
		urls = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(urls); err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
