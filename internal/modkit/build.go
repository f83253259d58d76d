package modkit

import (
	"net/http"

	phttp "rektwatch/internal/platform/net/http"
	str "rektwatch/internal/platform/strings"
)

// Built is a plain struct with the fields modules care about
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(phttp.Router)
}

// Build applies opts and returns the result; Register is never nil
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.register == nil {
		c.register = func(phttp.Router) {}
	}
	prefix := ""
	if c.prefix != "" && c.prefix != "/" {
		prefix = str.MustPrefix(c.prefix)
	}
	return Built{
		Name:     c.name,
		Prefix:   prefix,
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:    c.ports,
		Register: c.register,
	}
}

// Mount mounts register under b.Prefix with b.Mw, then b.Register.
// An empty prefix mounts in a group on r itself.
func (b Built) Mount(r phttp.Router, register func(phttp.Router)) {
	body := func(rr phttp.Router) {
		if len(b.Mw) > 0 {
			rr.Use(b.Mw...)
		}
		register(rr)
		b.Register(rr)
	}
	if b.Prefix == "" {
		r.Group(body)
		return
	}
	r.Route(b.Prefix, body)
}
