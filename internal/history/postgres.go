package history

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	logx "newsrelay/pkg/logx"
)

//go:embed schema_postgres.sql
var postgresSchema string

const postgresConnectTimeout = 10 * time.Second

type postgresStore struct {
	conn  *pgx.Conn
	log   logx.Logger
	limit int
}

func openPostgres(cfg Config, log logx.Logger) (Store, error) {
	dsn := strings.TrimSpace(cfg.Path)
	if dsn == "" {
		return nil, errors.New("history.path (connection string) is required for postgres driver")
	}

	ctx, cancel := context.WithTimeout(context.Background(), postgresConnectTimeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("history: connect postgres: %w", err)
	}
	if _, err := conn.Exec(ctx, postgresSchema); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("history: migrate postgres: %w", err)
	}
	return &postgresStore{conn: conn, log: log, limit: limitOrDefault(cfg.Limit)}, nil
}

func (s *postgresStore) Load(ctx context.Context) (*Set, error) {
	if s == nil || s.conn == nil {
		return nil, ErrClosed
	}
	rows, err := s.conn.Query(ctx, `SELECT url FROM pushed ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	return NewSet(urls), nil
}

func (s *postgresStore) Save(ctx context.Context, set *Set) error {
	if s == nil || s.conn == nil {
		return ErrClosed
	}
	keep := set.Tail(s.limit)

	return pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		for _, u := range keep {
			if _, err := tx.Exec(ctx, `INSERT INTO pushed(url) VALUES($1) ON CONFLICT (url) DO NOTHING`, u); err != nil {
				return fmt.Errorf("history: insert: %w", err)
			}
		}
		if len(keep) == 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM pushed`); err != nil {
				return fmt.Errorf("history: prune: %w", err)
			}
			return nil
		}
		var minSeq int64
		if err := tx.QueryRow(ctx, `SELECT seq FROM pushed WHERE url = $1`, keep[0]).Scan(&minSeq); err != nil {
			return fmt.Errorf("history: locate oldest kept entry: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM pushed WHERE seq < $1`, minSeq); err != nil {
			return fmt.Errorf("history: prune: %w", err)
		}
		return nil
	})
}

func (s *postgresStore) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.conn.Close(ctx)
	s.conn = nil
	return err
}
