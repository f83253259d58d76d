package store

import (
	"time"

	"rektwatch/internal/platform/config"
)

// Backend names a storage engine
type Backend string

// Backends selectable with CORE_STORE_BACKEND
const (
	BackendMemory     Backend = "memory"
	BackendPostgres   Backend = "postgres"
	BackendClickhouse Backend = "clickhouse"
	BackendSQLite     Backend = "sqlite"
)

// Config is the backend selection plus per-backend settings
type Config struct {
	AppName string
	Backend Backend

	PG     PGConfig
	CH     CHConfig
	SQLite SQLiteConfig
}

// PGConfig configures the postgres pool and query tracing
type PGConfig struct {
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	PingAttempts int           // default 20
	PingTimeout  time.Duration // default 3s
}

// CHConfig configures clickhouse
type CHConfig struct {
	URL    string
	LogSQL bool
}

// SQLiteConfig configures the sqlite file
type SQLiteConfig struct {
	Path string
}

// ConfigFromEnv reads CORE_STORE_BACKEND and the matching SERVICE_* block.
// The URL of the selected backend is required; the others are not read.
func ConfigFromEnv(appName string) Config {
	root := config.New()
	cfg := Config{
		AppName: appName,
		Backend: Backend(root.Prefix("CORE_STORE_").MayEnum("BACKEND", string(BackendMemory),
			string(BackendMemory), string(BackendPostgres), string(BackendClickhouse), string(BackendSQLite))),
	}

	switch cfg.Backend {
	case BackendPostgres:
		pg := root.Prefix("SERVICE_PGSQL_")
		cfg.PG = PGConfig{
			URL:         pg.MustString("DBURL"),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 8)),
			LogSQL:      pg.MayBool("LOG_SQL", false),
			SlowQueryMs: pg.MayInt("SLOW_MS", 200),
		}
	case BackendClickhouse:
		ch := root.Prefix("SERVICE_CLICKHOUSE_")
		cfg.CH = CHConfig{
			URL:    ch.MustString("DBURL"),
			LogSQL: ch.MayBool("LOG_SQL", false),
		}
	case BackendSQLite:
		cfg.SQLite = SQLiteConfig{Path: root.Prefix("SERVICE_SQLITE_").MayString("PATH", "rektwatch.db")}
	}
	return cfg
}
