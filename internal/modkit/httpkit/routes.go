// Package httpkit mounts module routes with shared middleware stacks
package httpkit

import (
	"net/http"

	phttp "rektwatch/internal/platform/net/http"
)

// Router is the platform routing seam
type Router = phttp.Router

// MountUnder mounts a subrouter at prefix and applies per-module middlewares
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}
