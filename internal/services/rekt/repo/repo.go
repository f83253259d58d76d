// Package repo implements the rekt event store on each storage backend
package repo

import (
	"context"
	"fmt"
	"strings"

	"rektwatch/internal/core/classify"
	perr "rektwatch/internal/platform/errors"
	"rektwatch/internal/platform/store"
	"rektwatch/internal/services/rekt/domain"
)

// FromStore binds the domain store to whatever backend st opened and
// applies its schema. A nil store is in-memory.
func FromStore(ctx context.Context, st *store.Store) (domain.Store, error) {
	if st == nil {
		return NewMemory(), nil
	}
	switch st.Backend {
	case store.BackendMemory, "":
		return NewMemory(), nil
	}

	var r interface {
		domain.Store
		Migrate(context.Context) error
	}
	switch st.Backend {
	case store.BackendPostgres:
		r = NewPG(st.PG)
	case store.BackendClickhouse:
		r = NewCH(st.CH)
	case store.BackendSQLite:
		r = NewSQLite(st.Lite)
	default:
		return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "no rekt repo for backend %q", st.Backend)
	}
	if err := r.Migrate(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// statements splits a schema file on semicolons that end a line
func statements(schema string) []string {
	var out []string
	for _, s := range strings.Split(schema, ";\n") {
		if s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";")); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// kindOf maps a stored kind column back to classify.Kind
func kindOf(s string) (classify.Kind, error) {
	k, ok := classify.Parse(s)
	if !ok || !k.Valid() {
		return classify.None, perr.Newf(perr.ErrorCodeDB, "unexpected kind %q in store", s)
	}
	return k, nil
}

func checkEvent(e domain.Event) error {
	if e.SourceEventID == "" {
		return perr.WithField(perr.InvalidArgf("event without source id"), "source_event_id")
	}
	if !e.Kind.Valid() {
		return perr.WithField(perr.InvalidArgf("cannot store kind %s", e.Kind), "kind")
	}
	return nil
}

func dbErr(err error, op string) error {
	if err == nil {
		return nil
	}
	return perr.WithOp(perr.Wrap(err, perr.ErrorCodeDB, fmt.Sprintf("rekt %s failed", op)), op)
}
