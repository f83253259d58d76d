package config

import (
	"testing"
	"time"

	kit "rektwatch/internal/platform/testkit"
)

func TestPrefixAndName(t *testing.T) {
	nostr := New().Prefix("CORE_").Prefix("NOSTR_")
	if got := nostr.Name("RELAYS"); got != "CORE_NOSTR_RELAYS" {
		t.Fatalf("Name() = %q, want %q", got, "CORE_NOSTR_RELAYS")
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("SERVICE_PGSQL_")
	t.Setenv("SERVICE_PGSQL_DBURL", "  postgres://x ")
	if got := c.MustString("DBURL"); got != "postgres://x" {
		t.Fatalf("MustString = %q, want %q", got, "postgres://x")
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })

	t.Setenv("SERVICE_PGSQL_BLANK", "   ")
	kit.MustPanic(t, func() { _ = c.MustString("BLANK") })
}

func TestMustIntAndDuration(t *testing.T) {
	c := New().Prefix("M_")
	t.Setenv("M_N", " 12 ")
	t.Setenv("M_D", "30s")
	t.Setenv("M_BAD", "x")
	if got := c.MustInt("N"); got != 12 {
		t.Fatalf("MustInt = %d, want 12", got)
	}
	if got := c.MustDuration("D"); got != 30*time.Second {
		t.Fatalf("MustDuration = %v, want 30s", got)
	}
	kit.MustPanic(t, func() { _ = c.MustInt("BAD") })
	kit.MustPanic(t, func() { _ = c.MustDuration("BAD") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("REQ_")
	t.Setenv("REQ_A", "x")
	kit.MustNotPanic(t, func() { c.Require("A") })
	kit.MustPanic(t, func() { c.Require("A", "B") })
}

func TestMayFallbacks(t *testing.T) {
	c := New().Prefix("CORE_BACKFILL_")
	t.Setenv("CORE_BACKFILL_LIMIT", "250")
	t.Setenv("CORE_BACKFILL_SEED", "true")
	t.Setenv("CORE_BACKFILL_TIMEOUT", "45s")
	t.Setenv("CORE_BACKFILL_BAD_INT", "many")
	t.Setenv("CORE_BACKFILL_BAD_BOOL", "perhaps")
	t.Setenv("CORE_BACKFILL_BAD_DUR", "soon")

	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q", got)
	}
	if got := c.MayInt("LIMIT", 1000); got != 250 {
		t.Fatalf("MayInt = %d, want 250", got)
	}
	if got := c.MayInt("BAD_INT", 1000); got != 1000 {
		t.Fatalf("MayInt invalid = %d, want default 1000", got)
	}
	if !c.MayBool("SEED", false) {
		t.Fatalf("MayBool = false, want true")
	}
	if c.MayBool("BAD_BOOL", false) {
		t.Fatalf("MayBool invalid should fall back to false")
	}
	if got := c.MayDuration("TIMEOUT", time.Second); got != 45*time.Second {
		t.Fatalf("MayDuration = %v, want 45s", got)
	}
	if got := c.MayDuration("BAD_DUR", 30*time.Second); got != 30*time.Second {
		t.Fatalf("MayDuration invalid = %v, want default", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CORE_NOSTR_")
	def := []string{"wss://relay.damus.io"}

	if got := c.MayCSV("RELAYS", def); len(got) != 1 || got[0] != def[0] {
		t.Fatalf("MayCSV default = %#v", got)
	}

	t.Setenv("CORE_NOSTR_RELAYS", " wss://a , ,wss://b,, ")
	got := c.MayCSV("RELAYS", def)
	if len(got) != 2 || got[0] != "wss://a" || got[1] != "wss://b" {
		t.Fatalf("MayCSV = %#v", got)
	}

	t.Setenv("CORE_NOSTR_RELAYS", " , , ")
	if got := c.MayCSV("RELAYS", def); len(got) != 1 {
		t.Fatalf("MayCSV all blank should use default, got %#v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("CORE_STORE_")
	allowed := []string{"memory", "postgres", "clickhouse", "sqlite"}

	if got := c.MayEnum("BACKEND", "memory", allowed...); got != "memory" {
		t.Fatalf("MayEnum default = %q", got)
	}

	t.Setenv("CORE_STORE_BACKEND", "Postgres")
	if got := c.MayEnum("BACKEND", "memory", allowed...); got != "postgres" {
		t.Fatalf("MayEnum should return the canonical allowed spelling, got %q", got)
	}

	t.Setenv("CORE_STORE_BACKEND", "influx")
	kit.MustPanic(t, func() { _ = c.MayEnum("BACKEND", "memory", allowed...) })
}
