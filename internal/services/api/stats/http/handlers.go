// Package http serves the liquidation reads
package http

import (
	stdhttp "net/http"

	"rektwatch/internal/core/aggregate"
	"rektwatch/internal/modkit/httpkit"
	"rektwatch/internal/platform/logger"
	phttp "rektwatch/internal/platform/net/http"
	"rektwatch/internal/services/api/stats/domain"
	rekt "rektwatch/internal/services/rekt/domain"
)

// Register mounts /stats and /timeseries on r
func Register(r httpkit.Router, q rekt.QueryPort) {
	h := &handlers{q: q}

	// totals and long/short ratio over the window
	phttp.GetQuery(r, "/stats", h.stats)

	// gap-filled buckets over the window
	phttp.GetQuery(r, "/timeseries", h.timeseries)
}

type handlers struct{ q rekt.QueryPort }

// swagger:route GET /stats Stats statsSummary
// @Summary Liquidation totals and long/short ratio
// @Tags Stats
// @Produce json
// @Param range query string false "Window" Enums(24h, 7d, 30d)
// @Success 200 {object} domain.StatsResponse "ok"
// @Router /stats [get]
func (h *handlers) stats(r *stdhttp.Request, in domain.RangeQuery, bindErr error) (any, error) {
	return h.q.Stats(r.Context(), rangeOf(r, in, bindErr))
}

// swagger:route GET /timeseries Stats statsTimeseries
// @Summary Liquidation counts per bucket
// @Tags Stats
// @Produce json
// @Param range query string false "Window" Enums(24h, 7d, 30d)
// @Success 200 {array} domain.BucketResponse "ok"
// @Router /timeseries [get]
func (h *handlers) timeseries(r *stdhttp.Request, in domain.RangeQuery, bindErr error) (any, error) {
	return h.q.Timeseries(r.Context(), rangeOf(r, in, bindErr))
}

// rangeOf resolves the requested window; anything unusable is 24h
func rangeOf(r *stdhttp.Request, in domain.RangeQuery, bindErr error) aggregate.Range {
	if bindErr != nil {
		logger.C(r.Context()).Debug().Err(bindErr).Str("range", r.URL.Query().Get("range")).Msg("range fallback")
		return aggregate.DefaultRange
	}
	rg, _ := aggregate.ParseRange(in.Range)
	return rg
}
