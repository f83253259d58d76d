// Package modkit provides module wiring and core deps
package modkit

import (
	"time"

	"rektwatch/internal/platform/config"
	"rektwatch/internal/platform/metrics"
	"rektwatch/internal/platform/store"
)

// Deps holds core dependencies passed to modules. Zero values are safe:
// a nil Store means in-memory, a nil Metrics records nothing.
type Deps struct {
	Cfg     config.Conf
	Store   *store.Store
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Clock returns Now or the UTC wall clock
func (d Deps) Clock() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return func() time.Time { return time.Now().UTC() }
}
