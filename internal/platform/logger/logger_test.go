package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "rektwatch/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"panic", "panic"},
		{"", "info"},
		{"   nonsense   ", "info"},
	}
	for _, c := range cases {
		if got := strings.ToLower(parseLevel(c.in).String()); got != c.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInit_Get_Named_C(t *testing.T) {
	var buf bytes.Buffer

	Init(Options{
		Level:        "info",
		Format:       "console",
		Service:      "rektwatch-collector",
		Component:    "root",
		Writer:       &buf,
		WithCaller:   true,
		SampleEvery:  2,
		StaticFields: map[string]string{"build": "test"},
	})

	// resample to N=1 so every line is emitted
	rv := Get().Sample(&zerolog.BasicSampler{N: 1})
	rp := &rv
	rp.Info().Str("k", "v").Msg("root-msg")

	nv := Named("backfill").Sample(&zerolog.BasicSampler{N: 1})
	np := &nv
	np.Info().Msg("named-msg")

	ctx := WithRelay(WithRequest(context.Background(), "req-123"), "wss://relay.damus.io")
	cv := C(ctx).Sample(&zerolog.BasicSampler{N: 1})
	cp := &cv
	cp.Info().Msg("ctx-msg")

	out := buf.String()
	kit.MustContain(t, out, "root-msg")
	kit.MustContain(t, out, "named-msg")
	kit.MustContain(t, out, "backfill")
	kit.MustContain(t, out, "ctx-msg")
	kit.MustContain(t, out, "req-123")
	kit.MustContain(t, out, "wss://relay.damus.io")
	kit.MustContain(t, out, "build=")
	kit.MustContain(t, out, "rektwatch-collector")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "rektwatch-api")
	t.Setenv("LOG_COMPONENT", "http")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	opt := FromEnv()
	if opt.Level != "warn" {
		t.Fatalf("Level = %q, want warn", opt.Level)
	}
	if opt.Format != "json" || opt.Service != "rektwatch-api" || opt.Component != "http" {
		t.Fatalf("fields mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 5 {
		t.Fatalf("caller/sample mismatch: %+v", opt)
	}
}

func TestWithRequest_EmptyValuesLeaveContext(t *testing.T) {
	base := context.Background()
	if WithRequest(base, "") != base || WithRelay(base, "") != base {
		t.Fatalf("empty values should return the same context")
	}
}
