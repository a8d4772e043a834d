// Package expression parses and evaluates dependency expressions.
//
// # Grammar
//
//	expression := alt ('|' alt)* '?'?
//	alt        := name ('#' param)*
//	escape     := '/' one of '/', '|', '?', '#'
//
// Modifiers, in the order they bind:
//
//   - # (parameter) passes positional parameters to the named component
//   - | (or) picks the first alternative that resolves to a defined value
//   - ? (optional) yields nil instead of an error when nothing resolves
//
// A '/' escapes the character after it, so "non/|numeric/|string" is a single
// alternative whose name is "non|numeric|string".
//
// # Resolving
//
//	v, err := expression.Resolve(ctx, "db-primary|db-replica?", func(ctx context.Context, alt expression.Alternative) (any, error) {
//	    return registry[alt.Name], nil
//	})
//
// Strings are evaluated as expressions. Maps and slices are cloned and every
// leaf is resolved; any other value resolves to itself.
package expression
