// Package store opens the storage backend selected at startup and exposes
// it through narrow seams that repos bind against
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rektwatch/internal/platform/logger"
)

// Store holds the single opened backend. The seams for the others stay nil.
// The memory backend opens nothing.
type Store struct {
	Log logger.Logger

	Backend Backend

	// PG is the postgres seam
	PG TxRunner

	// CH is the clickhouse seam
	CH Clickhouse

	// Lite is the sqlite handle
	Lite *sql.DB
}

// Row is the single-row scan contract
type Row interface {
	Scan(dest ...any) error
}

// Rows is the result set contract
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports what a write did
type CommandTag interface {
	RowsAffected() int64
}

// RowQuerier is the sql surface repos use
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner runs fn inside a transaction, rolling back when fn errors
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam
type Clickhouse interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	// Insert sends rows as one batch; each row lists values in table column order
	Insert(ctx context.Context, table string, rows [][]any) error
	Close() error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open opens the backend named by cfg.Backend
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Backend: cfg.Backend}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Str("backend", string(cfg.Backend)).Logger()

	var err error
	switch cfg.Backend {
	case BackendMemory, "":
		s.Backend = BackendMemory
	case BackendPostgres:
		s.PG, err = openPG(ctx, cfg, s)
	case BackendClickhouse:
		s.CH, err = openCH(ctx, cfg)
	case BackendSQLite:
		s.Lite, err = openSQLite(ctx, cfg)
	default:
		err = fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Guard pings the opened backend
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	if p, ok := s.PG.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("pg: %w", err))
		}
	}
	if p, ok := s.CH.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("ch: %w", err))
		}
	}
	if s.Lite != nil {
		if err := s.Lite.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("sqlite: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close releases whatever was opened
func (s *Store) Close(_ context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.CH != nil {
		if err := s.CH.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Lite != nil {
		if err := s.Lite.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
