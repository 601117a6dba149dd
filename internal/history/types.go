package history

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnknownDriver = errors.New("history: unknown driver")
	ErrClosed        = errors.New("history: store closed")
)

// DefaultLimit is how many URLs survive a Save.
const DefaultLimit = 500

// Config configures the history store.
//
// Driver values:
//   - "file": JSON file at Path
//   - "sqlite": SQLite database file at Path
//   - "postgres": Path is a PostgreSQL connection string
type Config struct {
	Driver      string
	Path        string
	Limit       int           // 0 means DefaultLimit
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store loads and saves the pushed-URL set.
type Store interface {
	Load(ctx context.Context) (*Set, error)
	// Save replaces the stored history with the most recent Limit entries of s.
	Save(ctx context.Context, s *Set) error
	Close() error
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return n
}
