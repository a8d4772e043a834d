package http

import (
	"net/http"

	"github.com/km-arc/go-resolver/framework/routing"
	"github.com/km-arc/go-resolver/framework/validation"
)

// Request wraps *http.Request with input helpers.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// ── Input helpers ────────────────────────────────────────────────────────────

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// All returns the query string as a flat map, first value per key.
func (req *Request) All() map[string]string {
	out := make(map[string]string)
	for k, v := range req.raw.URL.Query() {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// RouteParam returns a URL route parameter.
func (req *Request) RouteParam(key string) string {
	return routing.Param(req.raw, key)
}

// Validate checks the query string against rules and returns the error bag,
// or nil when every rule passes.
func (req *Request) Validate(rules validation.Rules) *validation.Errors {
	v := validation.Make(req.All(), rules)
	if v.Passes() {
		return nil
	}
	return v.Errors()
}
