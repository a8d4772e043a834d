package expression

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrNotFound may be returned by a LookupFunc to report that an alternative
// has no value. Returning a nil value with a nil error means the same.
var ErrNotFound = errors.New("expression: not found")

// LookupFunc resolves one alternative. The alternative counts as resolved
// only when it returns a non-nil value and a nil error. Zero values such as
// 0, "" and false are legitimate results.
type LookupFunc func(ctx context.Context, alt Alternative) (any, error)

// UnresolvedDependencyError reports that no alternative of a non-optional
// expression resolved to a value.
type UnresolvedDependencyError struct {
	Expression string
	// Causes holds the error of every alternative that failed with one.
	Causes []error
}

func (e *UnresolvedDependencyError) Error() string {
	msg := fmt.Sprintf("expression %q could not be resolved to a defined value, use ? if this is acceptable", e.Expression)
	if len(e.Causes) == 0 {
		return msg
	}
	causes := make([]string, len(e.Causes))
	for i, c := range e.Causes {
		causes[i] = c.Error()
	}
	return msg + ": " + strings.Join(causes, "; ")
}

func (e *UnresolvedDependencyError) Unwrap() []error { return e.Causes }

// Resolve evaluates the expression, trying each alternative in order until
// one yields a value. Later alternatives are never looked up once one
// succeeds.
func (e *Expression) Resolve(ctx context.Context, lookup LookupFunc) (any, error) {
	var causes []error
	for _, alt := range e.Alternatives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := lookup(ctx, alt)
		if err == nil && v != nil {
			return v, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			causes = append(causes, err)
		}
	}
	if e.Optional {
		return nil, nil
	}
	return nil, &UnresolvedDependencyError{Expression: e.Raw, Causes: causes}
}

// Resolve resolves v. Strings are parsed and evaluated as expressions.
// Maps with string keys, slices and arrays are copied and every element is
// resolved concurrently; the copy keeps the type of v and is returned once
// all elements have settled, or the first failure is returned. An element
// that resolves to nothing becomes the zero value of the element type. Any
// other value resolves to itself.
func Resolve(ctx context.Context, v any, lookup LookupFunc) (any, error) {
	switch t := v.(type) {
	case string:
		expr, err := Parse(t)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", t, err)
		}
		return expr.Resolve(ctx, lookup)
	case map[string]any:
		return resolveMap(ctx, t, lookup)
	case []any:
		return resolveAll(ctx, t, indexLabel, lookup)
	case nil:
		return nil, nil
	}
	return resolveReflect(ctx, reflect.ValueOf(v), lookup)
}

func indexLabel(i int) string { return fmt.Sprintf("index %d", i) }

func resolveMap(ctx context.Context, m map[string]any, lookup LookupFunc) (map[string]any, error) {
	keys := make([]string, 0, len(m))
	values := make([]any, 0, len(m))
	for k, v := range m {
		keys = append(keys, k)
		values = append(values, v)
	}
	resolved, err := resolveAll(ctx, values, func(i int) string { return fmt.Sprintf("key %q", keys[i]) }, lookup)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(m))
	for i, k := range keys {
		out[k] = resolved[i]
	}
	return out, nil
}

// resolveAll resolves every element of values concurrently, in place of a
// copy. label names an element in error messages.
func resolveAll(ctx context.Context, values []any, label func(int) string, lookup LookupFunc) ([]any, error) {
	var g errgroup.Group
	out := make([]any, len(values))
	for i, v := range values {
		g.Go(func() error {
			resolved, err := Resolve(ctx, v, lookup)
			if err != nil {
				return fmt.Errorf("%s: %w", label(i), err)
			}
			out[i] = resolved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// resolveReflect handles typed containers such as map[string]string or
// []string.
func resolveReflect(ctx context.Context, rv reflect.Value, lookup LookupFunc) (any, error) {
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
			return rv.Interface(), nil
		}
		keys := rv.MapKeys()
		values := make([]any, len(keys))
		for i, k := range keys {
			values[i] = rv.MapIndex(k).Interface()
		}
		resolved, err := resolveAll(ctx, values, func(i int) string { return fmt.Sprintf("key %q", keys[i].String()) }, lookup)
		if err != nil {
			return nil, err
		}
		out := reflect.MakeMapWithSize(rv.Type(), len(keys))
		for i, k := range keys {
			ev, err := element(resolved[i], rv.Type().Elem())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k.String(), err)
			}
			out.SetMapIndex(k, ev)
		}
		return out.Interface(), nil

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return rv.Interface(), nil
		}
		values := make([]any, rv.Len())
		for i := range values {
			values[i] = rv.Index(i).Interface()
		}
		resolved, err := resolveAll(ctx, values, indexLabel, lookup)
		if err != nil {
			return nil, err
		}
		var out reflect.Value
		if rv.Kind() == reflect.Slice {
			out = reflect.MakeSlice(rv.Type(), len(values), len(values))
		} else {
			out = reflect.New(rv.Type()).Elem()
		}
		for i := range resolved {
			ev, err := element(resolved[i], rv.Type().Elem())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out.Interface(), nil
	}
	return rv.Interface(), nil
}

// element fits a resolved value back into a container of element type t.
func element(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("resolved %T does not fit element type %s", v, t)
	}
	return rv, nil
}
