package http

import (
	"net/http"

	"rektwatch/internal/platform/net/http/bind"
)

// GetJSON mounts fn for GET and wraps its result in the envelope
func GetJSON(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Get(path, Handle(func(req *http.Request) Response {
		out, err := fn(req)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	}))
}

// GetQuery mounts fn for GET with the query string bound into T. Binding
// errors are handed to fn together with the zero-filled portion of T so a
// handler can choose to fall back instead of failing.
func GetQuery[T any](r Router, path string, fn func(*http.Request, T, error) (any, error)) {
	r.Get(path, Handle(func(req *http.Request) Response {
		in, bindErr := bind.ParseQuery[T](req)
		out, err := fn(req, in, bindErr)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	}))
}
