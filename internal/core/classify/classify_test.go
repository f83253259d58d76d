package classify

import (
	"sync"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{"Long Rekt: $250K @ 96,432", Long},
		{"Short Rekt: $180K @ 96,890", Short},
		{"long rekt", Long},
		{"  SHORT REKT on ETH", Short},
		{"Long BTC liquidated", Long},
		{"short squeeze incoming", Short},
		{"Market update: BTC at 97,000", None},
		{"longer term view", None},
		{"shorts rekt everywhere", None},
		{"A long rekt and a short rekt", Long},
		{"😱 LONG REKT: $1.2M", Long},
		{"", None},
		{"   ", None},
		{"long", None},
	}
	for _, tc := range cases {
		if got := Classify(tc.in); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassifyConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if Classify("Long Rekt: $1") != Long || Classify("Short Rekt: $1") != Short {
					t.Errorf("concurrent classify mismatch")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestKind(t *testing.T) {
	if !Long.Valid() || !Short.Valid() || None.Valid() {
		t.Fatalf("Valid() wrong")
	}
	if None.String() != "none" || Long.String() != "long" {
		t.Fatalf("String() wrong")
	}
	if k, ok := Parse(" Short "); !ok || k != Short {
		t.Fatalf("Parse(Short) = %q %v", k, ok)
	}
	if _, ok := Parse("sideways"); ok {
		t.Fatalf("Parse(sideways) should fail")
	}
}

func TestParseUSD(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"Long Rekt: $250K @ 96,432", 250_000, true},
		{"Short Rekt: $1.2M @ 99,123", 1_200_000, true},
		{"Long Rekt: $1,234,567 @ 90,000", 1_234_567, true},
		{"Short Rekt: $2b total", 2_000_000_000, true},
		{"Long Rekt: $75K", 75_000, true},
		{"$12.", 12, true},
		{"no dollars here", 0, false},
		{"just a $ sign then $ again", 0, false},
		{"price $ 100", 0, false},
		{"first $5K then $9M", 5_000, true},
	}
	for _, tc := range cases {
		got, ok := ParseUSD(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseUSD(%q) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Long Rekt: $250K @ 96,432", "Long Rekt: $250K @ 96,432"},
		{"Short\x00 Rekt", "Short Rekt"},
		{"line one\nline\ttwo\r\n", "line one\nline\ttwo\r\n"},
		{"bell\x07 del\x7f c1\u0085 end", "bell del c1 end"},
		{"bad \xff\xfe utf8 🚀", "bad  utf8 🚀"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
