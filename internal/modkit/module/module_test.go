package module

import (
	"strings"
	"sync"
	"testing"

	phttp "rektwatch/internal/platform/net/http"
)

type StatusPort interface{ MessageCount() int }

type statusImpl struct{ n int }

func (s statusImpl) MessageCount() int { return s.n }

type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string             { return m.name }
func (m fakeModule) Ports() any               { return m.ports }
func (m fakeModule) MountRoutes(phttp.Router) {}

func TestPortsOf(t *testing.T) {
	type bundle struct {
		Status StatusPort
		Other  int
	}
	type hidden struct{ status StatusPort }

	cases := []struct {
		name  string
		ports any
		ok    bool
		want  int
	}{
		{"nil", nil, false, 0},
		{"direct", StatusPort(statusImpl{n: 3}), true, 3},
		{"struct field", bundle{Status: statusImpl{n: 7}, Other: 1}, true, 7},
		{"pointer to struct", &bundle{Status: statusImpl{n: 9}}, true, 9},
		{"unexported field ignored", hidden{status: statusImpl{n: 1}}, false, 0},
		{"non struct", 42, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PortsOf[StatusPort](fakeModule{name: tc.name, ports: tc.ports})
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got.MessageCount() != tc.want {
				t.Fatalf("MessageCount = %d, want %d", got.MessageCount(), tc.want)
			}
		})
	}
}

func TestMustPortsOfPanicsWithModuleName(t *testing.T) {
	defer func() {
		msg, _ := recover().(string)
		if !strings.Contains(msg, "collector") {
			t.Fatalf("panic = %q, want module name", msg)
		}
	}()
	_ = MustPortsOf[StatusPort](fakeModule{name: "collector"})
}

func TestRegistry(t *testing.T) {
	Reset()
	defer Reset()

	Register("rekt", statusImpl{n: 1})
	Register("rekt", statusImpl{n: 2})

	got, ok := PortsAs[statusImpl]("rekt")
	if !ok || got.n != 2 {
		t.Fatalf("PortsAs = %v %v, want overwritten value", got, ok)
	}
	if _, ok := PortsAs[int]("rekt"); ok {
		t.Fatalf("type mismatch should report false")
	}
	if _, ok := PortsAs[statusImpl]("missing"); ok {
		t.Fatalf("missing name should report false")
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) { defer wg.Done(); Register("c", statusImpl{n: i}) }(i)
		go func() { defer wg.Done(); _, _ = PortsAs[statusImpl]("c") }()
	}
	wg.Wait()
}
