package store

import (
	"context"
	"testing"

	kit "rektwatch/internal/platform/testkit"
)

func TestOpen_MemoryOpensNothing(t *testing.T) {
	s, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Backend != BackendMemory || s.PG != nil || s.CH != nil || s.Lite != nil {
		t.Fatalf("unexpected store: %+v", s)
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), Config{Backend: "influx"}); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func TestOpen_PGBadURL(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: BackendPostgres, PG: PGConfig{URL: "://bad"}})
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOpen_SQLiteMemory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{Backend: BackendSQLite, SQLite: SQLiteConfig{Path: ":memory:"}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Lite == nil {
		t.Fatalf("Lite not set")
	}
	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestGuard_NilStore(t *testing.T) {
	var s *Store
	if err := s.Guard(context.Background()); err == nil {
		t.Fatalf("expected error for nil store")
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close(nil) = %v", err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("default memory", func(t *testing.T) {
		cfg := ConfigFromEnv("rektwatch-api")
		if cfg.Backend != BackendMemory || cfg.AppName != "rektwatch-api" {
			t.Fatalf("cfg = %+v", cfg)
		}
	})

	t.Run("postgres requires url", func(t *testing.T) {
		t.Setenv("CORE_STORE_BACKEND", "postgres")
		kit.MustPanic(t, func() { _ = ConfigFromEnv("x") })

		t.Setenv("SERVICE_PGSQL_DBURL", "postgres://u:p@db:5432/rekt")
		t.Setenv("SERVICE_PGSQL_MAX_CONNS", "4")
		t.Setenv("SERVICE_PGSQL_LOG_SQL", "true")
		cfg := ConfigFromEnv("x")
		if cfg.PG.URL != "postgres://u:p@db:5432/rekt" || cfg.PG.MaxConns != 4 || !cfg.PG.LogSQL || cfg.PG.SlowQueryMs != 200 {
			t.Fatalf("pg cfg = %+v", cfg.PG)
		}
	})

	t.Run("clickhouse requires url", func(t *testing.T) {
		t.Setenv("CORE_STORE_BACKEND", "ClickHouse")
		kit.MustPanic(t, func() { _ = ConfigFromEnv("x") })
		t.Setenv("SERVICE_CLICKHOUSE_DBURL", "clickhouse://localhost:9000/rekt")
		if cfg := ConfigFromEnv("x"); cfg.Backend != BackendClickhouse || cfg.CH.URL == "" {
			t.Fatalf("ch cfg = %+v", cfg)
		}
	})

	t.Run("sqlite default path", func(t *testing.T) {
		t.Setenv("CORE_STORE_BACKEND", "sqlite")
		if cfg := ConfigFromEnv("x"); cfg.SQLite.Path != "rektwatch.db" {
			t.Fatalf("sqlite cfg = %+v", cfg.SQLite)
		}
	})

	t.Run("invalid backend panics", func(t *testing.T) {
		t.Setenv("CORE_STORE_BACKEND", "mongo")
		kit.MustPanic(t, func() { _ = ConfigFromEnv("x") })
	})
}
