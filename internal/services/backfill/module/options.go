package module

import (
	"time"

	"rektwatch/internal/platform/config"
)

// Options holds configuration options for the backfill service
type Options struct {
	Lookback      time.Duration
	Limit         int
	FallbackLimit int
	Timeout       time.Duration
	IngestTimeout time.Duration
	Seed          bool
	ProgressEvery int
}

// FromConfig reads the backfill options from config with CORE_BACKFILL_ prefix
func FromConfig(cfg config.Conf) Options {
	bf := cfg.Prefix("CORE_BACKFILL_")
	return Options{
		Lookback:      bf.MayDuration("LOOKBACK", 168*time.Hour),
		Limit:         bf.MayInt("LIMIT", 1000),
		FallbackLimit: bf.MayInt("FALLBACK_LIMIT", 100),
		Timeout:       bf.MayDuration("TIMEOUT", 30*time.Second),
		IngestTimeout: bf.MayDuration("INGEST_TIMEOUT", 5*time.Second),
		Seed:          bf.MayBool("SEED", false),
		ProgressEvery: bf.MayInt("PROGRESS_EVERY", 50),
	}
}
