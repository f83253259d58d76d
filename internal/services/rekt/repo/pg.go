package repo

import (
	"context"
	_ "embed"
	"time"

	"rektwatch/internal/modkit/repokit"
	perr "rektwatch/internal/platform/errors"
	"rektwatch/internal/platform/store"
	"rektwatch/internal/services/rekt/domain"
)

//go:embed schema/pg.sql
var pgSchema string

// PG stores events in rekt_messages; the unique nostr_event_id makes the
// insert idempotent
type PG struct{ q repokit.Queryer }

var _ domain.Store = (*PG)(nil)

// NewPG binds to q
func NewPG(q repokit.Queryer) *PG { return &PG{q: q} }

// Migrate creates the table and index when missing, in one transaction
// when q can run one
func (r *PG) Migrate(ctx context.Context) error {
	apply := func(q repokit.Queryer) error {
		for _, stmt := range statements(pgSchema) {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return perr.FromPostgres(err, "rekt schema")
			}
		}
		return nil
	}
	if tx, ok := r.q.(repokit.TxRunner); ok {
		return repokit.WithTx(ctx, tx, apply)
	}
	return apply(r.q)
}

const pgSelect = `SELECT id::text, nostr_event_id, kind, content, usd_amount, ts FROM rekt_messages`

func scanPG(row store.Row) (domain.Event, error) {
	var (
		e    domain.Event
		kind string
	)
	if err := row.Scan(&e.ID, &e.SourceEventID, &kind, &e.Content, &e.USD, &e.Timestamp); err != nil {
		return domain.Event{}, err
	}
	k, err := kindOf(kind)
	if err != nil {
		return domain.Event{}, err
	}
	e.Kind = k
	e.Timestamp = e.Timestamp.UTC()
	return e, nil
}

// Exists implements domain.Store
func (r *PG) Exists(ctx context.Context, sourceID string) (bool, error) {
	ok, err := store.Scalar[bool](ctx, r.q,
		`SELECT EXISTS (SELECT 1 FROM rekt_messages WHERE nostr_event_id = $1)`, sourceID)
	return ok, perr.FromPostgres(err, "rekt exists failed")
}

// InsertIfAbsent implements domain.Store; the id comes from gen_random_uuid
func (r *PG) InsertIfAbsent(ctx context.Context, e domain.Event) (bool, error) {
	if err := checkEvent(e); err != nil {
		return false, err
	}
	ct, err := r.q.Exec(ctx, `
		INSERT INTO rekt_messages (nostr_event_id, kind, content, usd_amount, ts)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (nostr_event_id) DO NOTHING`,
		e.SourceEventID, string(e.Kind), e.Content, e.USD, e.Timestamp.UTC(),
	)
	if err != nil {
		return false, perr.FromPostgres(err, "rekt insert failed")
	}
	return ct.RowsAffected() == 1, nil
}

// InRange implements domain.Store
func (r *PG) InRange(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
	out, err := store.Many(ctx, r.q, scanPG,
		pgSelect+` WHERE ts >= $1 AND ts < $2 ORDER BY ts, nostr_event_id`, start.UTC(), end.UTC())
	return out, perr.FromPostgres(err, "rekt range query failed")
}

// All implements domain.Store
func (r *PG) All(ctx context.Context) ([]domain.Event, error) {
	out, err := store.Many(ctx, r.q, scanPG, pgSelect+` ORDER BY ts, nostr_event_id`)
	return out, perr.FromPostgres(err, "rekt query failed")
}

// Count implements domain.Store
func (r *PG) Count(ctx context.Context) (int64, error) {
	n, err := store.Scalar[int64](ctx, r.q, `SELECT count(*) FROM rekt_messages`)
	return n, perr.FromPostgres(err, "rekt count failed")
}
