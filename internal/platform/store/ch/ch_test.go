package ch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rektwatch/internal/platform/testkit"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

func TestOpen_BadDSN(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "::not a dsn"}); err == nil {
		t.Fatalf("expected dsn error")
	}
}

func TestOpen_OpenErrorAndClientInfo(t *testing.T) {
	testkit.Serial(t)

	var seen *clickhouse.Options
	testkit.Swap(t, &openConn, func(o *clickhouse.Options) (driver.Conn, error) {
		seen = o
		return nil, errors.New("refused")
	})

	_, err := Open(context.Background(), Config{URL: "clickhouse://default:pw@localhost:9000/rekt", Role: "rektwatch-api"})
	if err == nil || !strings.Contains(err.Error(), "refused") {
		t.Fatalf("err = %v", err)
	}
	if seen == nil || seen.Auth.Database != "rekt" {
		t.Fatalf("options not parsed: %+v", seen)
	}
	var role string
	for _, p := range seen.ClientInfo.Products {
		if p.Name == "role" {
			role = p.Version
		}
	}
	if role != "rektwatch-api" {
		t.Fatalf("client info role = %q", role)
	}
}

func TestBuildClientInfo(t *testing.T) {
	ci := BuildClientInfo(" rektwatch-collector ", " 1.2.3 ")
	if len(ci.Products) != 5 {
		t.Fatalf("products = %d", len(ci.Products))
	}
	if ci.Products[0].Name != "rektwatch" || ci.Products[0].Version != "1.2.3" {
		t.Fatalf("first product = %+v", ci.Products[0])
	}
	if ci.Products[1].Version != "rektwatch-collector" {
		t.Fatalf("role = %+v", ci.Products[1])
	}
}

func TestInsert_EmptyIsNoop(t *testing.T) {
	c := &CH{}
	if err := c.Insert(context.Background(), "rekt_events", nil); err != nil {
		t.Fatalf("Insert(nil) = %v", err)
	}
}
