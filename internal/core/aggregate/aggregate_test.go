package aggregate

import (
	"testing"
	"time"

	"rektwatch/internal/core/classify"
)

var now = time.Date(2026, 10, 14, 12, 30, 0, 0, time.UTC)

func TestParseRange(t *testing.T) {
	cases := []struct {
		in   string
		want Range
		ok   bool
	}{
		{"24h", Range24h, true},
		{"7d", Range7d, true},
		{" 30D ", Range30d, true},
		{"", Range24h, false},
		{"1y", Range24h, false},
	}
	for _, tc := range cases {
		got, ok := ParseRange(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseRange(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
	if Range("bogus").Window() != Range24h.Window() {
		t.Fatalf("unknown range should use the 24h window")
	}
}

func TestWindowCounts(t *testing.T) {
	want := map[Range]int{Range24h: 24, Range7d: 28, Range30d: 30}
	for _, r := range Ranges() {
		if got := r.Window().Count(); got != want[r] {
			t.Fatalf("%s buckets = %d, want %d", r, got, want[r])
		}
	}
	if got := (Window{Lookback: 25 * time.Hour, Width: 6 * time.Hour}).Count(); got != 5 {
		t.Fatalf("ceil count = %d, want 5", got)
	}
}

func TestRatio(t *testing.T) {
	cases := []struct {
		long, short int
		want        float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 1, 1},
		{2, 3, 0.67},
		{10, 4, 2.5},
		{0, 7, 0},
	}
	for _, tc := range cases {
		if got := Ratio(tc.long, tc.short); got != tc.want {
			t.Fatalf("Ratio(%d,%d) = %v, want %v", tc.long, tc.short, got, tc.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Point{
		{Kind: classify.Long, USD: 250_000},
		{Kind: classify.Long, USD: 100_000},
		{Kind: classify.Short, USD: 1_200_000},
		{Kind: classify.None, USD: 5},
	})
	if s.TotalLong != 2 || s.TotalShort != 1 || s.Ratio != 2 {
		t.Fatalf("Summary = %+v", s)
	}
	if s.TotalLongUSD != 350_000 || s.TotalShortUSD != 1_200_000 {
		t.Fatalf("USD totals = %v/%v", s.TotalLongUSD, s.TotalShortUSD)
	}
	if z := Summarize(nil); z != (Summary{}) {
		t.Fatalf("empty Summary = %+v", z)
	}
}

func TestBuckets24h(t *testing.T) {
	w := Range24h.Window()
	start := now.Add(-24 * time.Hour)

	pts := []Point{
		{Kind: classify.Long, At: start},                                     // first slot, inclusive
		{Kind: classify.Short, At: start.Add(59 * time.Minute)},              // still slot 0
		{Kind: classify.Long, At: start.Add(time.Hour)},                      // slot 1, exclusive end of 0
		{Kind: classify.Short, At: now.Add(-time.Nanosecond)},                // last slot
		{Kind: classify.Long, At: now},                                       // end is exclusive
		{Kind: classify.Long, At: start.Add(-time.Nanosecond)},               // before window
		{Kind: classify.None, At: start.Add(2 * time.Hour)},                  // ignored
		{Kind: classify.Short, At: start.Add(10*time.Hour + 30*time.Minute)}, // slot 10
	}
	b := Buckets(pts, w, now)

	if len(b) != 24 {
		t.Fatalf("len = %d, want 24", len(b))
	}
	for i := 1; i < len(b); i++ {
		if got := b[i].Start.Sub(b[i-1].Start); got != time.Hour {
			t.Fatalf("bucket %d step = %v, want 1h", i, got)
		}
	}
	if !b[0].Start.Equal(start) {
		t.Fatalf("first bucket = %v, want %v", b[0].Start, start)
	}

	check := func(i, long, short int) {
		t.Helper()
		if b[i].Long != long || b[i].Short != short {
			t.Fatalf("bucket %d = %d/%d, want %d/%d", i, b[i].Long, b[i].Short, long, short)
		}
	}
	check(0, 1, 1)
	check(1, 1, 0)
	check(2, 0, 0)
	check(10, 0, 1)
	check(23, 0, 1)

	total := 0
	for _, x := range b {
		total += x.Long + x.Short
	}
	if total != 5 {
		t.Fatalf("total bucketed = %d, want 5", total)
	}
}

func TestBucketsEmptyIsGapFilled(t *testing.T) {
	for _, r := range Ranges() {
		w := r.Window()
		b := Buckets(nil, w, now)
		if len(b) != w.Count() {
			t.Fatalf("%s len = %d, want %d", r, len(b), w.Count())
		}
		for _, x := range b {
			if x.Long != 0 || x.Short != 0 {
				t.Fatalf("%s empty window has counts", r)
			}
		}
		if last := b[len(b)-1].Start.Add(w.Width); !last.Equal(now) {
			t.Fatalf("%s last bucket ends %v, want %v", r, last, now)
		}
	}
}
