package strings

import (
	"reflect"
	"testing"

	kit "rektwatch/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	if got := IfEmpty([]int{1, 2}, []int{9}); len(got) != 2 {
		t.Fatalf("IfEmpty(non-empty) = %v", got)
	}
	if got := IfEmpty(nil, []string{"GET"}); len(got) != 1 || got[0] != "GET" {
		t.Fatalf("IfEmpty(nil) = %v", got)
	}
}

func TestMustPrefix(t *testing.T) {
	cases := map[string]string{
		"meta":     "/meta",
		"/meta/":   "/meta",
		" //x// ":  "/x",
		"/api/v1/": "/api/v1",
	}
	for in, want := range cases {
		if got := MustPrefix(in); got != want {
			t.Fatalf("MustPrefix(%q) = %q, want %q", in, got, want)
		}
	}
	kit.MustPanic(t, func() { _ = MustPrefix(" / ") })
	kit.MustPanic(t, func() { _ = MustPrefix("") })
}

func TestCompact(t *testing.T) {
	in := []string{" wss://nos.lol ", "", "wss://relay.damus.io", "wss://nos.lol", "  "}
	want := []string{"wss://nos.lol", "wss://relay.damus.io"}
	if got := Compact(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("Compact = %#v, want %#v", got, want)
	}
	if got := Compact(nil); len(got) != 0 {
		t.Fatalf("Compact(nil) = %#v", got)
	}
}

func TestOr(t *testing.T) {
	if got := Or("  ", "stats"); got != "stats" {
		t.Fatalf("Or(blank) = %q, want %q", got, "stats")
	}
	if got := Or("meta", "stats"); got != "meta" {
		t.Fatalf("Or(meta) = %q, want %q", got, "meta")
	}
}
