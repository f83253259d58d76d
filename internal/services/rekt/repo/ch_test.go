package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rektwatch/internal/core/classify"
	perr "rektwatch/internal/platform/errors"
	"rektwatch/internal/platform/store"

	"github.com/google/uuid"
)

// fakeCH answers count() queries from the rows it was handed
type fakeCH struct {
	execs   []string
	queries []string
	inserts [][]any
	failIns error
	failQ   error
}

type countRows struct {
	n    uint64
	done bool
}

func (r *countRows) Next() bool {
	if r.done {
		return false
	}
	r.done = true
	return true
}
func (r *countRows) Scan(dest ...any) error { *(dest[0].(*uint64)) = r.n; return nil }
func (r *countRows) Err() error             { return nil }
func (r *countRows) Close()                 {}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execs = append(f.execs, sql)
	return nil
}

func (f *fakeCH) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.queries = append(f.queries, sql)
	if f.failQ != nil {
		return nil, f.failQ
	}
	var n uint64
	for _, row := range f.inserts {
		if len(args) == 1 && row[1] == args[0] {
			n++
		}
	}
	return &countRows{n: n}, nil
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	if f.failIns != nil {
		return f.failIns
	}
	if table != chTable {
		return errors.New("wrong table " + table)
	}
	f.inserts = append(f.inserts, rows...)
	return nil
}

func (f *fakeCH) Close() error { return nil }

func TestCHMigrate(t *testing.T) {
	f := &fakeCH{}
	if err := NewCH(f).Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if len(f.execs) != 1 || !strings.Contains(f.execs[0], "ENGINE = MergeTree") {
		t.Fatalf("execs = %q", f.execs)
	}
}

func TestCHInsertChecksFirst(t *testing.T) {
	f := &fakeCH{}
	r := NewCH(f)
	ctx := context.Background()

	ok, err := r.InsertIfAbsent(ctx, ev("e1", classify.Long, base))
	if err != nil || !ok {
		t.Fatalf("insert = %v, %v", ok, err)
	}
	if ok, err := r.InsertIfAbsent(ctx, ev("e1", classify.Short, base)); err != nil || ok {
		t.Fatalf("duplicate insert = %v, %v; want false, nil", ok, err)
	}
	if len(f.inserts) != 1 {
		t.Fatalf("inserts = %d, want 1", len(f.inserts))
	}
	row := f.inserts[0]
	if _, isUUID := row[0].(uuid.UUID); !isUUID || row[2] != "long" || row[4] != 1000.0 {
		t.Fatalf("row = %#v", row)
	}
	if ok, err := r.Exists(ctx, "e1"); err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
}

func TestCHReadsCollapseRepeats(t *testing.T) {
	f := &fakeCH{failQ: errors.New("connection reset")}
	r := NewCH(f)
	_, err := r.InRange(context.Background(), base, base)
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("err = %v, want db error", err)
	}
	_, _ = r.All(context.Background())
	for _, q := range f.queries {
		if !strings.Contains(q, "LIMIT 1 BY source_event_id") {
			t.Fatalf("read without LIMIT 1 BY: %s", q)
		}
	}
}

func TestCHInsertFailure(t *testing.T) {
	f := &fakeCH{failIns: errors.New("too many parts")}
	ok, err := NewCH(f).InsertIfAbsent(context.Background(), ev("e1", classify.Long, base))
	if ok || !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("insert = %v, %v; want false, db error", ok, err)
	}
}
