package version

import "testing"

func TestInfo(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	defer func() { Version = old }()

	bi := Info("rektwatch-api")
	if bi.Service != "rektwatch-api" || bi.Version != "v9.9.9" {
		t.Fatalf("Info = %+v", bi)
	}
	if got := Info("").Service; got != "rektwatch" {
		t.Fatalf("default service = %q, want %q", got, "rektwatch")
	}
}
