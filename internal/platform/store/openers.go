package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	chx "rektwatch/internal/platform/store/ch"
	"rektwatch/internal/platform/store/pg"
	"rektwatch/internal/platform/store/sqlite"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// pingPolicy retries a failed ping with capped exponential backoff
func pingPolicy(attempts int) retrypolicy.RetryPolicy[any] {
	return retrypolicy.NewBuilder[any]().
		WithBackoff(150*time.Millisecond, 2*time.Second).
		WithMaxRetries(attempts - 1).
		Build()
}

// openPG builds the pool and publishes the adapter only once a ping succeeds
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		AppName:  cfg.AppName,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.PingAttempts
	if attempts <= 0 {
		attempts = 20
	}
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	err = failsafe.With[any](pingPolicy(attempts)).WithContext(ctx).Run(func() error {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return p.Pool.Ping(pctx)
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, err)
	}
	return newPGAdapter(p), nil
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.AppName, LogSQL: cfg.CH.LogSQL})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}

func openSQLite(ctx context.Context, cfg Config) (*sql.DB, error) {
	return sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path})
}
