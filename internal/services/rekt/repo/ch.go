package repo

import (
	"context"
	_ "embed"
	"time"

	"rektwatch/internal/platform/store"
	"rektwatch/internal/services/rekt/domain"

	"github.com/google/uuid"
)

//go:embed schema/ch.sql
var chSchema string

const chTable = "rekt_events"

// CH stores events in a MergeTree. There is no unique key, so inserts
// check first and reads collapse repeats with LIMIT 1 BY; two writers
// racing on the same id can both land a row, and only one is ever read.
type CH struct{ c store.Clickhouse }

var _ domain.Store = (*CH)(nil)

// NewCH binds to c
func NewCH(c store.Clickhouse) *CH { return &CH{c: c} }

// Migrate creates the table when missing
func (r *CH) Migrate(ctx context.Context) error {
	for _, stmt := range statements(chSchema) {
		if err := r.c.Exec(ctx, stmt); err != nil {
			return dbErr(err, "schema")
		}
	}
	return nil
}

const chSelect = `SELECT id, source_event_id, kind, content, usd_amount, ts FROM rekt_events`

func scanCH(row store.Row) (domain.Event, error) {
	var (
		e    domain.Event
		id   uuid.UUID
		kind string
	)
	if err := row.Scan(&id, &e.SourceEventID, &kind, &e.Content, &e.USD, &e.Timestamp); err != nil {
		return domain.Event{}, err
	}
	k, err := kindOf(kind)
	if err != nil {
		return domain.Event{}, err
	}
	e.ID, e.Kind, e.Timestamp = id.String(), k, e.Timestamp.UTC()
	return e, nil
}

func (r *CH) many(ctx context.Context, op, sql string, args ...any) ([]domain.Event, error) {
	rows, err := r.c.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbErr(err, op)
	}
	out, err := store.Collect(rows, scanCH)
	return out, dbErr(err, op)
}

// Exists implements domain.Store
func (r *CH) Exists(ctx context.Context, sourceID string) (bool, error) {
	rows, err := r.c.Query(ctx, `SELECT count() FROM rekt_events WHERE source_event_id = ?`, sourceID)
	if err != nil {
		return false, dbErr(err, "exists")
	}
	defer rows.Close()
	var n uint64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return false, dbErr(err, "exists")
		}
	}
	return n > 0, dbErr(rows.Err(), "exists")
}

// InsertIfAbsent implements domain.Store
func (r *CH) InsertIfAbsent(ctx context.Context, e domain.Event) (bool, error) {
	if err := checkEvent(e); err != nil {
		return false, err
	}
	dup, err := r.Exists(ctx, e.SourceEventID)
	if err != nil || dup {
		return false, err
	}
	id, err := uuid.Parse(e.ID)
	if err != nil {
		id = uuid.New()
	}
	row := []any{id, e.SourceEventID, string(e.Kind), e.Content, e.USD, e.Timestamp.UTC()}
	if err := r.c.Insert(ctx, chTable, [][]any{row}); err != nil {
		return false, dbErr(err, "insert")
	}
	return true, nil
}

// InRange implements domain.Store
func (r *CH) InRange(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
	return r.many(ctx, "range query",
		chSelect+` WHERE ts >= ? AND ts < ? ORDER BY ts, source_event_id LIMIT 1 BY source_event_id`,
		start.UTC(), end.UTC())
}

// All implements domain.Store
func (r *CH) All(ctx context.Context) ([]domain.Event, error) {
	return r.many(ctx, "query", chSelect+` ORDER BY ts, source_event_id LIMIT 1 BY source_event_id`)
}

// Count implements domain.Store
func (r *CH) Count(ctx context.Context) (int64, error) {
	rows, err := r.c.Query(ctx, `SELECT uniqExact(source_event_id) FROM rekt_events`)
	if err != nil {
		return 0, dbErr(err, "count")
	}
	defer rows.Close()
	var n uint64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, dbErr(err, "count")
		}
	}
	return int64(n), dbErr(rows.Err(), "count")
}
