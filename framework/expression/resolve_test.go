package expression_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/expression"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// recorder is a lookup that returns nil for anything numeric and records
// every name it was asked for.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) lookup(_ context.Context, alt expression.Alternative) (any, error) {
	r.mu.Lock()
	r.calls = append(r.calls, alt.Name)
	r.mu.Unlock()
	if _, err := strconv.Atoi(alt.Name); err == nil {
		return nil, nil
	}
	return alt.Name, nil
}

// ── Expression.Resolve ───────────────────────────────────────────────────────

func TestResolve_SingleValue(t *testing.T) {
	r := &recorder{}
	v, err := expression.Resolve(context.Background(), "string1", r.lookup)

	require.NoError(t, err)
	assert.Equal(t, "string1", v)
	assert.Equal(t, []string{"string1"}, r.calls)
}

func TestResolve_ShortCircuits(t *testing.T) {
	r := &recorder{}
	v, err := expression.Resolve(context.Background(), "1|2|3|non numeric string|5|6", r.lookup)

	require.NoError(t, err)
	assert.Equal(t, "non numeric string", v)
	assert.Equal(t, []string{"1", "2", "3", "non numeric string"}, r.calls)
}

func TestResolve_EscapedPipes(t *testing.T) {
	r := &recorder{}
	v, err := expression.Resolve(context.Background(), "1|2|3|non/|numeric/|string|5|6", r.lookup)

	require.NoError(t, err)
	assert.Equal(t, "non|numeric|string", v)
	assert.Len(t, r.calls, 4)
}

func TestResolve_Optional(t *testing.T) {
	r := &recorder{}
	v, err := expression.Resolve(context.Background(), "1|2?", r.lookup)

	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, []string{"1", "2"}, r.calls)
}

func TestResolve_Unresolved(t *testing.T) {
	r := &recorder{}
	_, err := expression.Resolve(context.Background(), "1|2", r.lookup)

	var unresolved *expression.UnresolvedDependencyError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "1|2", unresolved.Expression)
	assert.Empty(t, unresolved.Causes)
}

func TestResolve_ErrorsFallThrough(t *testing.T) {
	boom := errors.New("boom")
	var calls []string
	lookup := func(_ context.Context, alt expression.Alternative) (any, error) {
		calls = append(calls, alt.Name)
		if _, err := strconv.Atoi(alt.Name); err == nil {
			return nil, boom
		}
		return alt.Name, nil
	}

	v, err := expression.Resolve(context.Background(), "1|2|3|non///?numeric/?//string|5|6", lookup)

	require.NoError(t, err)
	assert.Equal(t, "non/?numeric?/string", v)
	assert.Equal(t, []string{"1", "2", "3", "non/?numeric?/string"}, calls)
}

func TestResolve_UnresolvedKeepsCauses(t *testing.T) {
	boom := errors.New("boom")
	lookup := func(_ context.Context, alt expression.Alternative) (any, error) {
		if alt.Name == "a" {
			return nil, boom
		}
		return nil, expression.ErrNotFound
	}

	_, err := expression.Resolve(context.Background(), "a|b", lookup)

	require.ErrorIs(t, err, boom)
	var unresolved *expression.UnresolvedDependencyError
	require.ErrorAs(t, err, &unresolved)
	assert.Len(t, unresolved.Causes, 1)
}

func TestResolve_ZeroValuesAreDefined(t *testing.T) {
	values := map[string]any{"zero": 0, "empty": "", "no": false}
	lookup := func(_ context.Context, alt expression.Alternative) (any, error) {
		return values[alt.Name], nil
	}

	for name, want := range values {
		t.Run(name, func(t *testing.T) {
			v, err := expression.Resolve(context.Background(), name+"|fallback", lookup)
			require.NoError(t, err)
			assert.Equal(t, want, v)
		})
	}
}

func TestResolve_PassesParams(t *testing.T) {
	var got expression.Alternative
	lookup := func(_ context.Context, alt expression.Alternative) (any, error) {
		got = alt
		return true, nil
	}

	_, err := expression.Resolve(context.Background(), "component#alpha#be/#ta", lookup)

	require.NoError(t, err)
	assert.Equal(t, "component", got.Name)
	assert.Equal(t, []string{"alpha", "be#ta"}, got.Params)
	assert.Equal(t, "component#alpha#be/#ta", got.Raw)
	assert.True(t, got.Sole)
}

func TestResolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &recorder{}
	_, err := expression.Resolve(ctx, "a", r.lookup)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.calls)
}

// ── compound values ──────────────────────────────────────────────────────────

func TestResolve_Scalars(t *testing.T) {
	r := &recorder{}
	for _, v := range []any{42, 3.5, true, nil} {
		got, err := expression.Resolve(context.Background(), v, r.lookup)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	assert.Empty(t, r.calls)
}

func TestResolve_Compound(t *testing.T) {
	r := &recorder{}
	in := map[string]any{
		"host":  "1|localhost",
		"port":  8080,
		"tags":  []any{"a", "2|b", map[string]any{"deep": "3|c"}},
		"maybe": "4?",
	}

	v, err := expression.Resolve(context.Background(), in, r.lookup)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"host":  "localhost",
		"port":  8080,
		"tags":  []any{"a", "b", map[string]any{"deep": "c"}},
		"maybe": nil,
	}, v)
	assert.Equal(t, "1|localhost", in["host"], "input must not be mutated")
}

func TestResolve_CompoundFailure(t *testing.T) {
	r := &recorder{}
	_, err := expression.Resolve(context.Background(), map[string]any{"ok": "a", "bad": "1"}, r.lookup)

	var unresolved *expression.UnresolvedDependencyError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "1", unresolved.Expression)
}

func TestResolve_TypedContainers(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"string map", map[string]string{"host": "1|localhost", "maybe": "4?"}, map[string]string{"host": "localhost", "maybe": ""}},
		{"int map", map[string]int{"port": 8080}, map[string]int{"port": 8080}},
		{"string slice", []string{"a", "2|b"}, []string{"a", "b"}},
		{"array", [2]string{"3|c", "d"}, [2]string{"c", "d"}},
		{"nested", []map[string]string{{"k": "5|v"}}, []map[string]string{{"k": "v"}}},
		{"nil map", map[string]string(nil), map[string]string(nil)},
		{"int keys", map[int]string{1: "6|x"}, map[int]string{1: "6|x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			got, err := expression.Resolve(context.Background(), tt.in, r.lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_TypedContainerMismatch(t *testing.T) {
	lookup := func(context.Context, expression.Alternative) (any, error) { return 7, nil }

	_, err := expression.Resolve(context.Background(), map[string]string{"n": "seven"}, lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `key "n"`)
	assert.Contains(t, err.Error(), "does not fit element type string")
}
