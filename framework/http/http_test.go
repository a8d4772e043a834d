package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gohttp "github.com/km-arc/go-resolver/framework/http"
	"github.com/km-arc/go-resolver/framework/validation"
)

// ── Request ──────────────────────────────────────────────────────────────────

func TestRequest_Query(t *testing.T) {
	req := gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/?state=failed&state=resolved", nil))

	assert.Equal(t, "failed", req.Query("state"))
	assert.Equal(t, "all", req.Query("missing", "all"))
	assert.Equal(t, map[string]string{"state": "failed"}, req.All())
}

func TestRequest_RouteParam(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Get("/components/{name}", func(w http.ResponseWriter, raw *http.Request) {
		got = gohttp.NewRequest(raw).RouteParam("name")
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/components/db", nil))

	assert.Equal(t, "db", got)
}

func TestRequest_Validate(t *testing.T) {
	rules := validation.Rules{"limit": "sometimes|max:3"}

	ok := gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/?limit=10", nil))
	assert.Nil(t, ok.Validate(rules))

	bad := gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/?limit=10000", nil))
	errs := bad.Validate(rules)
	require.NotNil(t, errs)
	assert.Equal(t, "The limit may not be greater than 3 characters.", errs.First("limit"))
}

// ── Response ─────────────────────────────────────────────────────────────────

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&m))
	return m
}

func TestResponse_Envelopes(t *testing.T) {
	tests := []struct {
		name   string
		send   func(*gohttp.Response)
		status int
		key    string
		want   any
	}{
		{"success", func(r *gohttp.Response) { r.Success("v") }, http.StatusOK, "data", "v"},
		{"accepted", func(r *gohttp.Response) { r.Accepted("v") }, http.StatusAccepted, "data", "v"},
		{"error", func(r *gohttp.Response) { r.Error(http.StatusConflict, "busy") }, http.StatusConflict, "message", "busy"},
		{"not found default", func(r *gohttp.Response) { r.NotFound() }, http.StatusNotFound, "message", "Not found."},
		{"not found custom", func(r *gohttp.Response) { r.NotFound("gone") }, http.StatusNotFound, "message", "gone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.send(gohttp.NewResponse(rr))

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tt.want, decode(t, rr)[tt.key])
		})
	}
}

func TestResponse_ValidationError(t *testing.T) {
	v := validation.Make(map[string]string{"name": ""}, validation.Rules{"name": "required"})
	require.True(t, v.Fails())

	rr := httptest.NewRecorder()
	gohttp.NewResponse(rr).ValidationError(v.Errors())

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	errs := decode(t, rr)["errors"].(map[string]any)
	assert.Equal(t, []any{"The name field is required."}, errs["name"])
}
