package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logx "newsrelay/pkg/logx"

	_ "modernc.org/sqlite"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

type sqliteStore struct {
	db    *sql.DB
	log   logx.Logger
	limit int
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("history.path is required for sqlite driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = time.Second
	}
	_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()))
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.ExecContext(context.Background(), sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: migrate sqlite: %w", err)
	}
	return &sqliteStore{db: db, log: log, limit: limitOrDefault(cfg.Limit)}, nil
}

func (s *sqliteStore) Load(ctx context.Context) (*Set, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM pushed ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	return NewSet(urls), nil
}

func (s *sqliteStore) Save(ctx context.Context, set *Set) (err error) {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	keep := set.Tail(s.limit)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, u := range keep {
		if _, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO pushed(url, pushed_at) VALUES(?, ?)`, u, now); err != nil {
			return fmt.Errorf("history: insert: %w", err)
		}
	}

	var res sql.Result
	if len(keep) == 0 {
		res, err = tx.ExecContext(ctx, `DELETE FROM pushed`)
	} else {
		// keep is a suffix of the stored order, so everything older than its
		// first entry falls outside the limit.
		var minSeq int64
		if err = tx.QueryRowContext(ctx, `SELECT seq FROM pushed WHERE url = ?`, keep[0]).Scan(&minSeq); err != nil {
			return fmt.Errorf("history: locate oldest kept entry: %w", err)
		}
		res, err = tx.ExecContext(ctx, `DELETE FROM pushed WHERE seq < ?`, minSeq)
	}
	if err != nil {
		return fmt.Errorf("history: prune: %w", err)
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n > 0 {
		s.log.Debug("history pruned", logx.Int64("rows", n), logx.Int("kept", len(keep)))
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
