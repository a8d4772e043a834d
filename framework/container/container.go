package container

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/expression"
	"github.com/km-arc/go-resolver/framework/unload"
)

// ImmediateModifier, written after a component name, asks for a PendingRef
// on the component's construction instead of its value.
const ImmediateModifier = "!"

// Catalog is the descriptor source a Container builds from.
type Catalog interface {
	Get(name string) (*catalog.Descriptor, bool)
	StartupDependencies() []string
}

// State describes a cache entry.
type State string

const (
	StatePending  State = "pending"
	StateResolved State = "resolved"
	StateFailed   State = "failed"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container resolves dependency expressions against a catalog and memoizes
// every construction by cache key: the raw alternative text, parameters
// included. Two requests with the same key share one instance; requests that
// differ only in parameters get distinct instances.
type Container struct {
	catalog  Catalog
	unloader *unload.Sequencer
	logger   *log.Logger

	mu sync.Mutex

	// cache key → construction, inserted before its dependencies resolve
	tasks map[string]*task

	// waiter key → awaited key → count; the wait-for graph used to refuse
	// cycles instead of deadlocking on them
	edges map[string]map[string]int

	// resolved callbacks: []func(key, instance)
	afterResolving []func(string, any)
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Container) { c.logger = l }
}

// New creates a container over cat whose "unload" dependency registers with
// unloader.
func New(cat Catalog, unloader *unload.Sequencer, opts ...Option) *Container {
	c := &Container{
		catalog:  cat,
		unloader: unloader,
		tasks:    make(map[string]*task),
		edges:    make(map[string]map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default().WithPrefix("resolver/container")
	}
	if c.unloader == nil {
		c.unloader = unload.New(c.logger)
	}
	return c
}

// Unloader returns the sequencer behind the "unload" dependency.
func (c *Container) Unloader() *unload.Sequencer { return c.unloader }

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve resolves a dependency expression, or a map/slice of them.
//
//	db, err := c.Resolve(ctx, "db-primary|db-replica")
//	cfg, err := c.Resolve(ctx, map[string]any{"cache": "redis?", "store": "db"})
func (c *Container) Resolve(ctx context.Context, expr any) (any, error) {
	return expression.Resolve(ctx, expr, c.lookup)
}

type ownerKey struct{}

// owner returns the cache key of the construction ctx belongs to, if any.
func owner(ctx context.Context) string {
	key, _ := ctx.Value(ownerKey{}).(string)
	return key
}

// lookup resolves one alternative of an expression.
func (c *Container) lookup(ctx context.Context, alt expression.Alternative) (any, error) {
	name, immediate := strings.CutSuffix(alt.Name, ImmediateModifier)
	d, ok := c.catalog.Get(name)
	if !ok {
		if alt.Sole {
			c.logger.Error("unknown component", "name", name)
		} else {
			c.logger.Debug("unknown component, trying next alternative", "name", name)
		}
		return nil, &UnknownComponentError{Name: name}
	}
	key := alt.Raw
	if immediate {
		key = strings.TrimSuffix(alt.RawName, ImmediateModifier) + alt.Raw[len(alt.RawName):]
	}
	waiter := owner(ctx)

	c.mu.Lock()
	t, inFlight := c.tasks[key]
	if inFlight && immediate {
		c.mu.Unlock()
		c.logger.Debug("handing out pending reference", "key", key, "to", waiter)
		return &PendingRef{t: t}, nil
	}
	if waiter != "" {
		if chain := c.cycle(waiter, key); chain != nil {
			c.mu.Unlock()
			return nil, &CircularDependencyError{Chain: chain}
		}
		c.addEdge(waiter, key)
		defer c.removeEdge(waiter, key)
	}
	if !inFlight {
		t = newTask(key)
		c.tasks[key] = t
	}
	c.mu.Unlock()

	if !inFlight {
		// Requesters may give up on ctx; the construction itself carries on
		// so that one cancelled caller cannot poison the cache for the rest.
		go c.build(context.WithoutCancel(ctx), t, d, alt.Params)
	}
	v, err := t.wait(ctx)
	if err != nil {
		return nil, err
	}
	if immediate {
		return &PendingRef{t: t}, nil
	}
	return v, nil
}

// build runs the construction behind t and settles it.
func (c *Container) build(ctx context.Context, t *task, d *catalog.Descriptor, params []string) {
	ctx = context.WithValue(ctx, ownerKey{}, t.key)
	c.logger.Debug("building", "key", t.key, "dependencies", d.Dependencies)

	deps, err := c.resolveDependencies(ctx, d, params)
	if err != nil {
		c.logger.Debug("dependencies failed", "key", t.key, "err", err)
		t.settle(nil, fmt.Errorf("container: dependencies of [%s]: %w", t.key, err))
		return
	}

	v, err := invoke(ctx, d.Factory, deps)
	if err != nil {
		t.settle(nil, &FactoryError{Key: t.key, Err: err})
		return
	}
	if v == nil {
		c.logger.Warn("factory returned nil, the component counts as unresolved", "key", t.key)
	} else {
		c.fireAfterResolving(t.key, v)
	}
	t.settle(v, nil)
	c.logger.Debug("built", "key", t.key)
}

// resolveDependencies resolves every declared dependency in parallel and
// returns them in declaration order. A failure does not cancel siblings.
func (c *Container) resolveDependencies(ctx context.Context, d *catalog.Descriptor, params []string) ([]any, error) {
	deps := make([]any, len(d.Dependencies))
	var g errgroup.Group
	for i, dep := range d.Dependencies {
		switch dep {
		case catalog.OptionsDependency:
			g.Go(func() error {
				v, err := expression.Resolve(ctx, d.Settings, optionsLookup(params))
				if err != nil {
					return fmt.Errorf("options: %w", err)
				}
				deps[i] = v
				return nil
			})
		case catalog.UnloadDependency:
			deps[i] = c.unloader.Func()
		default:
			g.Go(func() error {
				v, err := c.Resolve(ctx, dep)
				if err != nil {
					return fmt.Errorf("%q: %w", dep, err)
				}
				deps[i] = v
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return deps, nil
}

func invoke(ctx context.Context, f catalog.Factory, deps []any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f(ctx, deps)
}

var placeholder = regexp.MustCompile(`^\{([0-9]+)\}$`)

// optionsLookup resolves options template leaves: a whole-token "{n}" is the
// n-th (1-based) parameter of the requesting expression, anything else is
// itself. A missing parameter is not found, so "{2}|{1}" falls back.
func optionsLookup(params []string) expression.LookupFunc {
	return func(_ context.Context, alt expression.Alternative) (any, error) {
		m := placeholder.FindStringSubmatch(alt.Name)
		if m == nil {
			return alt.Name, nil
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(params) {
			return nil, expression.ErrNotFound
		}
		return params[n-1], nil
	}
}

// ── Wait-for graph ────────────────────────────────────────────────────────────

// cycle returns the cycle that waiter → key would close, or nil (must hold mu).
func (c *Container) cycle(waiter, key string) []string {
	if key == waiter {
		return []string{waiter, key}
	}
	visited := map[string]bool{}
	var path []string
	var walk func(from string) bool
	walk = func(from string) bool {
		if from == waiter {
			return true
		}
		if visited[from] {
			return false
		}
		visited[from] = true
		for next := range c.edges[from] {
			path = append(path, next)
			if walk(next) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	if !walk(key) {
		return nil
	}
	return append([]string{waiter, key}, path...)
}

func (c *Container) addEdge(from, to string) {
	if c.edges[from] == nil {
		c.edges[from] = make(map[string]int)
	}
	c.edges[from][to]++
}

func (c *Container) removeEdge(from, to string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edges[from][to]--
	if c.edges[from][to] <= 0 {
		delete(c.edges[from], to)
	}
	if len(c.edges[from]) == 0 {
		delete(c.edges, from)
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Resolved returns true if the cache key has been built successfully.
func (c *Container) Resolved(key string) bool {
	c.mu.Lock()
	t, ok := c.tasks[key]
	c.mu.Unlock()
	return ok && t.settled() && t.err == nil
}

// Keys returns the cache keys of every successful construction, sorted.
func (c *Container) Keys() []string {
	var out []string
	for key, state := range c.States() {
		if state == StateResolved {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// States reports the state of every cache entry.
func (c *Container) States() map[string]State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]State, len(c.tasks))
	for key, t := range c.tasks {
		switch {
		case !t.settled():
			out[key] = StatePending
		case t.err != nil:
			out[key] = StateFailed
		default:
			out[key] = StateResolved
		}
	}
	return out
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after every successful
// construction, before any requester receives the instance. Callbacks must
// not resolve from the container.
func (c *Container) AfterResolving(cb func(key string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(key string, instance any) {
	c.mu.Lock()
	cbs := c.afterResolving
	c.mu.Unlock()
	for _, cb := range cbs {
		cb(key, instance)
	}
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve resolves expr and asserts the result to T.
//
//	db, err := container.Resolve[*sql.DB](ctx, c, "db")
func Resolve[T any](ctx context.Context, c *Container, expr string) (T, error) {
	var zero T
	v, err := c.Resolve(ctx, expr)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%T]: [%s] resolved to %T", zero, expr, v)
	}
	return typed, nil
}
