package repo

import (
	"context"
	"testing"
	"time"

	"rektwatch/internal/core/classify"
	"rektwatch/internal/services/rekt/domain"
)

var base = time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

func ev(id string, k classify.Kind, at time.Time) domain.Event {
	return domain.Event{SourceEventID: id, Kind: k, Content: string(k) + " rekt: $1K", Timestamp: at, USD: 1000}
}

func ids(evs []domain.Event) []string {
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.SourceEventID
	}
	return out
}

func sameIDs(got []domain.Event, want ...string) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

// exerciseStore runs the behaviour every backend must share
func exerciseStore(t *testing.T, s domain.Store) {
	t.Helper()
	ctx := context.Background()

	ok, err := s.InsertIfAbsent(ctx, ev("b", classify.Long, base))
	if err != nil || !ok {
		t.Fatalf("first insert = %v, %v; want true, nil", ok, err)
	}
	again := ev("b", classify.Short, base.Add(time.Hour))
	again.Content = "overwritten"
	if ok, err := s.InsertIfAbsent(ctx, again); err != nil || ok {
		t.Fatalf("duplicate insert = %v, %v; want false, nil", ok, err)
	}

	for _, e := range []domain.Event{
		ev("a", classify.Short, base),
		ev("c", classify.Long, base.Add(time.Hour)),
		ev("d", classify.Short, base.Add(-time.Hour)),
	} {
		if ok, err := s.InsertIfAbsent(ctx, e); err != nil || !ok {
			t.Fatalf("insert %s = %v, %v", e.SourceEventID, ok, err)
		}
	}

	if ok, err := s.Exists(ctx, "b"); err != nil || !ok {
		t.Fatalf("Exists(b) = %v, %v", ok, err)
	}
	if ok, err := s.Exists(ctx, "zzz"); err != nil || ok {
		t.Fatalf("Exists(zzz) = %v, %v", ok, err)
	}
	if n, err := s.Count(ctx); err != nil || n != 4 {
		t.Fatalf("Count = %d, %v; want 4", n, err)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if !sameIDs(all, "d", "a", "b", "c") {
		t.Fatalf("All order = %v, want [d a b c]", ids(all))
	}
	b := all[2]
	if b.Kind != classify.Long || b.Content != "long rekt: $1K" || !b.Timestamp.Equal(base) {
		t.Fatalf("first write lost: %+v", b)
	}
	if b.USD != 1000 || b.ID == "" {
		t.Fatalf("stored event = %+v", b)
	}

	got, err := s.InRange(ctx, base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("InRange: %v", err)
	}
	if !sameIDs(got, "a", "b") {
		t.Fatalf("InRange = %v, want [a b]", ids(got))
	}
	if got, err := s.InRange(ctx, base.Add(2*time.Hour), base.Add(3*time.Hour)); err != nil || len(got) != 0 {
		t.Fatalf("empty InRange = %v, %v", ids(got), err)
	}

	if _, err := s.InsertIfAbsent(ctx, ev("x", classify.None, base)); err == nil {
		t.Fatalf("insert of unclassified event should fail")
	}
	if _, err := s.InsertIfAbsent(ctx, ev("", classify.Long, base)); err == nil {
		t.Fatalf("insert without source id should fail")
	}
}
