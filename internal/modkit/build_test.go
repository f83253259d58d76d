package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "rektwatch/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestBuildDefaults(t *testing.T) {
	b := Build()
	if b.Name != "" || b.Prefix != "" || b.Ports != nil || len(b.Mw) != 0 {
		t.Fatalf("zero Build = %+v", b)
	}
	if b.Register == nil {
		t.Fatalf("Register must default to a no-op")
	}
	if got := Build(WithPrefix("stats/")).Prefix; got != "/stats" {
		t.Fatalf("Prefix = %q, want %q", got, "/stats")
	}
	if got := Build(WithPrefix("/")).Prefix; got != "" {
		t.Fatalf("root prefix = %q, want empty", got)
	}
}

func TestBuildMount(t *testing.T) {
	var order []string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "mw")
			next.ServeHTTP(w, r)
		})
	}
	b := Build(
		WithName("stats"),
		WithPrefix("/stats"),
		WithMiddlewares(mw),
		WithPorts(42),
		WithRegister(func(r phttp.Router) {
			r.Get("/extra", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
		}),
	)
	if b.Name != "stats" || b.Ports != 42 {
		t.Fatalf("Build = %+v", b)
	}

	mux := chi.NewRouter()
	b.Mount(phttp.AdaptChi(mux), func(r phttp.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) { order = append(order, "h") })
	})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/stats/", nil))
	if len(order) != 2 || order[0] != "mw" || order[1] != "h" {
		t.Fatalf("order = %v", order)
	}
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/stats/extra", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("extra route = %d, want 202", rr.Code)
	}
}

func TestDepsClock(t *testing.T) {
	if (Deps{}).Clock() == nil {
		t.Fatalf("Clock must default to the wall clock")
	}
	if loc := (Deps{}).Clock()().Location(); loc != time.UTC {
		t.Fatalf("default clock location = %v, want UTC", loc)
	}
}
