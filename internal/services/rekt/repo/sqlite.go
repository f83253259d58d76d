package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"rektwatch/internal/platform/store/sqlite"
	"rektwatch/internal/services/rekt/domain"

	"github.com/google/uuid"
)

//go:embed schema/sqlite_0001_init.sql
var sqliteInit string

var sqliteMigrations = []sqlite.Migration{
	{Version: 1, Name: "rekt_messages", SQL: sqliteInit},
}

// SQLite stores events in rekt_messages with ts as unix milliseconds
type SQLite struct{ db *sql.DB }

var _ domain.Store = (*SQLite)(nil)

// NewSQLite binds to db
func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

// Migrate applies pending migrations
func (r *SQLite) Migrate(ctx context.Context) error {
	return dbErr(sqlite.Migrate(ctx, r.db, sqliteMigrations), "migrate")
}

const liteSelect = `SELECT id, nostr_event_id, kind, content, usd_amount, ts FROM rekt_messages`

func (r *SQLite) many(ctx context.Context, op, q string, args ...any) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, dbErr(err, op)
	}
	defer rows.Close()

	out := []domain.Event{}
	for rows.Next() {
		var (
			e    domain.Event
			kind string
			ms   int64
		)
		if err := rows.Scan(&e.ID, &e.SourceEventID, &kind, &e.Content, &e.USD, &ms); err != nil {
			return nil, dbErr(err, op)
		}
		if e.Kind, err = kindOf(kind); err != nil {
			return nil, err
		}
		e.Timestamp = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	return out, dbErr(rows.Err(), op)
}

// Exists implements domain.Store
func (r *SQLite) Exists(ctx context.Context, sourceID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rekt_messages WHERE nostr_event_id = ?`, sourceID).Scan(&n)
	return n > 0, dbErr(err, "exists")
}

// InsertIfAbsent implements domain.Store
func (r *SQLite) InsertIfAbsent(ctx context.Context, e domain.Event) (bool, error) {
	if err := checkEvent(e); err != nil {
		return false, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO rekt_messages (id, nostr_event_id, kind, content, usd_amount, ts)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (nostr_event_id) DO NOTHING`,
		e.ID, e.SourceEventID, string(e.Kind), e.Content, e.USD, e.Timestamp.UnixMilli(),
	)
	if err != nil {
		return false, dbErr(err, "insert")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbErr(err, "insert")
	}
	return n == 1, nil
}

// InRange implements domain.Store
func (r *SQLite) InRange(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
	return r.many(ctx, "range query",
		liteSelect+` WHERE ts >= ? AND ts < ? ORDER BY ts, nostr_event_id`, start.UnixMilli(), end.UnixMilli())
}

// All implements domain.Store
func (r *SQLite) All(ctx context.Context) ([]domain.Event, error) {
	return r.many(ctx, "query", liteSelect+` ORDER BY ts, nostr_event_id`)
}

// Count implements domain.Store
func (r *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rekt_messages`).Scan(&n)
	return n, dbErr(err, "count")
}
