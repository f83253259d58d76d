package store

import (
	"context"
	"errors"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

type fakeCH struct {
	execSQL  string
	table    string
	inserted [][]any
	pingErr  error
	queryErr error
	closed   bool
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error { f.execSQL = sql; return nil }
func (f *fakeCH) Query(context.Context, string, ...any) (driver.Rows, error) {
	return nil, f.queryErr
}
func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table, f.inserted = table, rows
	return nil
}
func (f *fakeCH) Ping(context.Context) error { return f.pingErr }
func (f *fakeCH) Close() error { f.closed = true; return nil }

func TestCHAdapter_Delegates(t *testing.T) {
	ctx := context.Background()
	f := &fakeCH{}
	a := newCHAdapter(f)

	if err := a.Exec(ctx, "CREATE TABLE rekt_events"); err != nil || f.execSQL != "CREATE TABLE rekt_events" {
		t.Fatalf("Exec = %v (%q)", err, f.execSQL)
	}
	if err := a.Insert(ctx, "rekt_events", [][]any{{"a"}, {"b"}}); err != nil || f.table != "rekt_events" || len(f.inserted) != 2 {
		t.Fatalf("Insert = %v table=%q rows=%d", err, f.table, len(f.inserted))
	}
	if err := a.Ping(ctx); err != nil {
		t.Fatalf("Ping = %v", err)
	}
	if err := a.Close(); err != nil || !f.closed {
		t.Fatalf("Close = %v closed=%v", err, f.closed)
	}
}

func TestCHAdapter_Errors(t *testing.T) {
	ctx := context.Background()
	f := &fakeCH{pingErr: errors.New("down"), queryErr: errors.New("syntax")}
	a := newCHAdapter(f)
	if _, err := a.Query(ctx, "SELECT"); err == nil {
		t.Fatalf("expected query error")
	}

	s := &Store{CH: a}
	if err := s.Guard(ctx); err == nil {
		t.Fatalf("Guard should surface ping error")
	}

	var nilAdapter *clickhouseAdapter
	if err := nilAdapter.Ping(ctx); err == nil {
		t.Fatalf("nil adapter ping should fail")
	}
}
