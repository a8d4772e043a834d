package routing_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func newRouter() *routing.Router {
	return routing.New(log.New(&bytes.Buffer{}))
}

func do(t *testing.T, router http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// ── HTTP verbs ────────────────────────────────────────────────────────────────

func TestRouter_Verbs(t *testing.T) {
	r := newRouter()
	r.Get("/components", okHandler)
	r.Post("/reload", okHandler)
	r.Get("/components/{name}", okHandler)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/components", http.StatusOK},
		{http.MethodPost, "/reload", http.StatusOK},
		{http.MethodGet, "/components/db", http.StatusOK},
		{http.MethodPost, "/components", http.StatusMethodNotAllowed},
		{http.MethodGet, "/not-registered", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, r, tt.method, tt.path).Code)
		})
	}
}

// ── Route params ─────────────────────────────────────────────────────────────

func TestRouter_Param(t *testing.T) {
	r := newRouter()
	r.Get("/components/{name}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(routing.Param(req, "name")))
	})

	rr := do(t, r, http.MethodGet, "/components/db-primary")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "db-primary", rr.Body.String())
}

// ── Group ────────────────────────────────────────────────────────────────────

func TestRouter_Group_Middleware(t *testing.T) {
	called := false
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	r := newRouter()
	r.Group(func(g *routing.Router) {
		g.Middleware(mw)
		g.Get("/protected", okHandler)
	})
	r.Get("/open", okHandler)

	do(t, r, http.MethodGet, "/open")
	assert.False(t, called, "middleware must stay inside its group")

	do(t, r, http.MethodGet, "/protected")
	assert.True(t, called)
}

// ── Default middleware ───────────────────────────────────────────────────────

func TestRouter_RecoversPanics(t *testing.T) {
	r := newRouter()
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })

	assert.Equal(t, http.StatusInternalServerError, do(t, r, http.MethodGet, "/panic").Code)
}

func TestRouter_LogsRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	r := routing.New(logger)
	r.Get("/healthz", okHandler)

	do(t, r, http.MethodGet, "/healthz")

	assert.Contains(t, buf.String(), "path=/healthz")
	assert.Contains(t, buf.String(), "status=200")
}

func TestRouter_HandlerInterface(t *testing.T) {
	r := newRouter()
	r.Get("/ping", okHandler)
	assert.Equal(t, http.StatusOK, do(t, r.Handler(), http.MethodGet, "/ping").Code)
}
