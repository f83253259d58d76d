package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"rektwatch/internal/core/aggregate"
	perr "rektwatch/internal/platform/errors"
	"rektwatch/internal/platform/metrics"
	dom "rektwatch/internal/services/rekt/domain"
	"rektwatch/internal/services/rekt/repo"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type failingStore struct{ dom.Store }

var errDown = errors.New("connection refused")

func (failingStore) Exists(context.Context, string) (bool, error) { return false, nil }
func (failingStore) InsertIfAbsent(context.Context, dom.Event) (bool, error) {
	return false, errDown
}
func (failingStore) InRange(context.Context, time.Time, time.Time) ([]dom.Event, error) {
	return nil, errDown
}
func (failingStore) Count(context.Context) (int64, error) { return 0, errDown }

func postCount(t *testing.T, m *metrics.Metrics, path string, out dom.Outcome) float64 {
	t.Helper()
	mfs, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "rektwatch_posts_total" {
			continue
		}
		for _, mt := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range mt.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["path"] == path && labels["outcome"] == string(out) {
				return mt.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestIngestOutcomes(t *testing.T) {
	m := metrics.New("test", "abc")
	s := New(repo.NewMemory(), m, clock)
	ctx := context.Background()

	cases := []struct {
		name string
		post dom.RawPost
		want dom.Outcome
	}{
		{"long", dom.RawPost{SourceEventID: "1", Content: "Long Rekt: $250K @ 96,432", CreatedAt: now.Add(-time.Hour)}, dom.OutcomeStored},
		{"short", dom.RawPost{SourceEventID: "2", Content: "short rekt $1.5M", CreatedAt: now.Add(-2 * time.Hour)}, dom.OutcomeStored},
		{"unmatched", dom.RawPost{SourceEventID: "3", Content: "gm frens", CreatedAt: now}, dom.OutcomeUnmatched},
		{"duplicate", dom.RawPost{SourceEventID: "1", Content: "Short Rekt: $1", CreatedAt: now}, dom.OutcomeDuplicate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Ingest(ctx, dom.PathBackfill, tc.post)
			if err != nil {
				t.Fatalf("Ingest: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Ingest = %q, want %q", got, tc.want)
			}
		})
	}

	if v := postCount(t, m, dom.PathBackfill, dom.OutcomeStored); v != 2 {
		t.Fatalf("stored metric = %v, want 2", v)
	}
	if v := postCount(t, m, dom.PathBackfill, dom.OutcomeDuplicate); v != 1 {
		t.Fatalf("duplicate metric = %v, want 1", v)
	}

	sum, err := s.Stats(ctx, aggregate.Range24h)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if sum.TotalLong != 1 || sum.TotalShort != 1 || sum.Ratio != 1 {
		t.Fatalf("Stats = %+v", sum)
	}
	if sum.TotalLongUSD != 250_000 || sum.TotalShortUSD != 1_500_000 {
		t.Fatalf("Stats usd = %+v", sum)
	}
}

func TestIngestStoresSanitizedContent(t *testing.T) {
	st := repo.NewMemory()
	s := New(st, nil, clock)
	ctx := context.Background()
	if _, err := s.Ingest(ctx, dom.PathLive, dom.RawPost{SourceEventID: "n", Content: "Long\x00 Rekt: $2M", CreatedAt: now}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	evs, err := st.All(ctx)
	if err != nil || len(evs) != 1 {
		t.Fatalf("All = %v, %v", evs, err)
	}
	if evs[0].Content != "Long Rekt: $2M" || evs[0].USD != 2_000_000 {
		t.Fatalf("stored = %+v", evs[0])
	}
}

func TestIngestStorageFailure(t *testing.T) {
	s := New(failingStore{}, nil, clock)
	got, err := s.Ingest(context.Background(), dom.PathLive, dom.RawPost{SourceEventID: "x", Content: "Long Rekt"})
	if got != dom.OutcomeFailed || !errors.Is(err, errDown) {
		t.Fatalf("Ingest = %q, %v; want failed, %v", got, err, errDown)
	}
}

func TestTimeseriesBuckets(t *testing.T) {
	s := New(repo.NewMemory(), nil, clock)
	ctx := context.Background()
	posts := []dom.RawPost{
		// start is inclusive
		{SourceEventID: "a", Content: "Long Rekt", CreatedAt: now.Add(-24 * time.Hour)},
		{SourceEventID: "b", Content: "Short Rekt", CreatedAt: now.Add(-90 * time.Minute)},
		// end is exclusive
		{SourceEventID: "c", Content: "Long Rekt", CreatedAt: now},
		{SourceEventID: "d", Content: "Long Rekt", CreatedAt: now.Add(-24*time.Hour - time.Second)},
	}
	for _, p := range posts {
		if _, err := s.Ingest(ctx, dom.PathLive, p); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}

	bs, err := s.Timeseries(ctx, aggregate.Range24h)
	if err != nil {
		t.Fatalf("Timeseries: %v", err)
	}
	if len(bs) != 24 {
		t.Fatalf("len = %d, want 24", len(bs))
	}
	if bs[0].Long != 1 || !bs[0].Start.Equal(now.Add(-24*time.Hour)) {
		t.Fatalf("first bucket = %+v", bs[0])
	}
	if bs[22].Short != 1 {
		t.Fatalf("bucket 22 = %+v", bs[22])
	}
	total := 0
	for _, b := range bs {
		total += b.Long + b.Short
	}
	if total != 2 {
		t.Fatalf("bucketed %d events, want 2", total)
	}

	week, err := s.Timeseries(ctx, aggregate.Range7d)
	if err != nil || len(week) != 28 {
		t.Fatalf("7d buckets = %d, %v", len(week), err)
	}
}

func TestTimeseriesTimestampsAreUTC(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)
	for name, c := range map[string]func() time.Time{
		"default": nil,
		"local":   func() time.Time { return now.In(berlin) },
	} {
		t.Run(name, func(t *testing.T) {
			s := New(repo.NewMemory(), nil, c)
			bs, err := s.Timeseries(context.Background(), aggregate.Range24h)
			if err != nil || len(bs) != 24 {
				t.Fatalf("Timeseries = %d, %v", len(bs), err)
			}
			for _, b := range bs {
				if b.Start.Location() != time.UTC {
					t.Fatalf("bucket %v in %v, want UTC", b.Start, b.Start.Location())
				}
			}
		})
	}
}

func TestStatus(t *testing.T) {
	s := New(repo.NewMemory(), nil, clock)
	ctx := context.Background()

	st, err := s.Status(ctx)
	if err != nil || st.Status != dom.StatusConnecting || st.MessageCount != 0 {
		t.Fatalf("empty Status = %+v, %v", st, err)
	}
	_, _ = s.Ingest(ctx, dom.PathLive, dom.RawPost{SourceEventID: "a", Content: "Long Rekt", CreatedAt: now})
	st, err = s.Status(ctx)
	if err != nil || st.Status != dom.StatusLive || st.MessageCount != 1 {
		t.Fatalf("Status = %+v, %v", st, err)
	}
}

func TestQueryFailuresAreGeneric(t *testing.T) {
	s := New(failingStore{}, nil, clock)
	ctx := context.Background()

	_, err := s.Stats(ctx, aggregate.Range24h)
	checkGeneric(t, err)
	_, err = s.Timeseries(ctx, aggregate.Range30d)
	checkGeneric(t, err)
	_, err = s.Status(ctx)
	checkGeneric(t, err)
}

func checkGeneric(t *testing.T, err error) {
	t.Helper()
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("err = %v, want db code", err)
	}
	if w := perr.WireFrom(err); w.Message != ErrStorageQuery {
		t.Fatalf("wire message = %q, want %q", w.Message, ErrStorageQuery)
	}
}
