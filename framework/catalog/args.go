package catalog

import "fmt"

// Arg returns deps[i] as a T. A nil dependency (an unresolved optional one)
// yields the zero T without error.
func Arg[T any](deps []any, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(deps) {
		return zero, fmt.Errorf("catalog: dependency #%d out of range (%d declared)", i+1, len(deps))
	}
	if deps[i] == nil {
		return zero, nil
	}
	v, ok := deps[i].(T)
	if !ok {
		return zero, fmt.Errorf("catalog: dependency #%d is %T, want %T", i+1, deps[i], zero)
	}
	return v, nil
}
