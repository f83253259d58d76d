// Package http serves the collector status
package http

import (
	stdhttp "net/http"

	"rektwatch/internal/modkit/httpkit"
	phttp "rektwatch/internal/platform/net/http"
	rekt "rektwatch/internal/services/rekt/domain"
)

// Register mounts /status on r
func Register(r httpkit.Router, q rekt.QueryPort) {
	h := &handlers{q: q}
	phttp.GetJSON(r, "/status", h.status)
}

type handlers struct{ q rekt.QueryPort }

// swagger:route GET /status Status collectorStatus
// @Summary Collector status and stored message count
// @Description status is live once at least one event is stored, connecting otherwise
// @Tags Status
// @Produce json
// @Success 200 {object} domain.Status "ok"
// @Router /status [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	return h.q.Status(r.Context())
}
