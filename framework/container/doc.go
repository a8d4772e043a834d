// Package container resolves dependency expressions into component instances.
//
// # Overview
//
// A Container reads component descriptors from a Catalog, resolves their
// declared dependencies, calls their factories and memoizes the results. It
// is the per-context state of a resolver: discard it and every instance goes
// with it.
//
// # Resolving
//
//	c := container.New(cat, unload.New(logger))
//
//	// Untyped
//	raw, err := c.Resolve(ctx, "cache")
//
//	// Generic
//	cache, err := container.Resolve[*RedisCache](ctx, c, "redis|memory-cache")
//
//	// Compound: every leaf is an expression
//	deps, err := c.Resolve(ctx, map[string]any{"db": "db", "tracer": "tracer?"})
//
// # Cache keys
//
// Every alternative is cached under its raw text, parameters included, so
// "conf#alpha" and "conf#beta" are two instances of "conf" while two requests
// for "conf#alpha" share one. The entry is created before the dependencies
// of the component resolve, so concurrent requesters never build twice.
//
// # Reserved dependencies
//
//	"options"  the descriptor's Settings resolved as expressions, "{n}" being
//	           the n-th parameter of the requesting alternative
//	"unload"   an unload.RegisterFunc for teardown callbacks
//
// # Circular dependencies
//
// A cycle requested plainly fails with CircularDependencyError. Requesting
// one side with a trailing '!' ("peer!") hands out a *PendingRef to the
// in-flight construction instead of waiting on it:
//
//	cat.Component("peer-b").Needs("peer-a!").Provide(func(ctx context.Context, deps []any) (any, error) {
//	    ref := deps[0].(*container.PendingRef)
//	    b := &B{}
//	    go func() { a, _ := container.Await[*A](context.Background(), ref); b.SetPeer(a) }()
//	    return b, nil
//	})
package container
