// Package app holds the Resolver kernel: the owner of the current resolution
// context and of the load, unload and reload lifecycle.
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/unload"
)

// ComponentName is the name the Resolver answers to inside its own catalog,
// so components can depend on the kernel that built them.
const ComponentName = catalog.ResolverDependency

// ErrSuperseded is returned by Load when Unload or Reload replaced the
// resolution context while the load was still running.
var ErrSuperseded = errors.New("resolution context superseded")

// resolverContext is one generation of constructed components together with
// the teardowns they registered.
type resolverContext struct {
	generation uint64
	container  *container.Container
	unloader   *unload.Sequencer
}

// Resolver is the top-level kernel. It owns the current resolution context
// and swaps it out on Unload, so the next Load constructs everything afresh
// from the same catalog.
type Resolver struct {
	catalog *catalog.Catalog
	logger  *log.Logger

	mu      sync.Mutex
	current *resolverContext
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger shared by the kernel and every context it creates.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver over cat. The first context is ready immediately;
// nothing is constructed until Load or Resolve asks for it.
func New(cat *catalog.Catalog, opts ...Option) *Resolver {
	r := &Resolver{catalog: cat}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.Default().WithPrefix("resolver")
	}
	r.current = r.newContext(1)
	return r
}

func (r *Resolver) newContext(generation uint64) *resolverContext {
	unloader := unload.New(r.logger.WithPrefix("resolver/unload"))
	return &resolverContext{
		generation: generation,
		unloader:   unloader,
		container: container.New(
			&kernelCatalog{Catalog: r.catalog, self: r},
			unloader,
			container.WithLogger(r.logger.WithPrefix("resolver/container")),
		),
	}
}

func (r *Resolver) context() *resolverContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// Load resolves every startup component in parallel on the current context.
// The first failure is returned; components that did construct stay cached
// and are torn down by the next Unload.
func (r *Resolver) Load(ctx context.Context) (*Resolver, error) {
	rc := r.context()
	deps := r.catalog.StartupDependencies()
	r.logger.Info("loading", "generation", rc.generation, "startup", len(deps))

	g, gctx := errgroup.WithContext(ctx)
	for _, dep := range deps {
		g.Go(func() error {
			_, err := rc.container.Resolve(gctx, dep)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Error("load failed", "generation", rc.generation, "err", err)
		return r, err
	}

	if r.context() != rc {
		r.logger.Warn("load finished on a discarded context", "generation", rc.generation)
		return r, ErrSuperseded
	}
	r.logger.Info("loaded", "generation", rc.generation)
	return r, nil
}

// Unload runs the current context's teardowns, most recent first, then
// installs a fresh context. Teardown failures are logged and never abort
// the unload.
func (r *Resolver) Unload(ctx context.Context) {
	rc := r.context()
	r.logger.Info("unloading", "generation", rc.generation)
	failures := rc.unloader.Unload(ctx)

	r.mu.Lock()
	if r.current == rc {
		r.current = r.newContext(rc.generation + 1)
	}
	next := r.current.generation
	r.mu.Unlock()

	r.logger.Info("unloaded", "generation", rc.generation, "failed", len(failures), "next", next)
}

// Reload tears the current context down and loads a new one.
func (r *Resolver) Reload(ctx context.Context) (*Resolver, error) {
	r.Unload(ctx)
	return r.Load(ctx)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve resolves expr on the current context.
func (r *Resolver) Resolve(ctx context.Context, expr any) (any, error) {
	return r.context().container.Resolve(ctx, expr)
}

// Container returns the current context's container.
func (r *Resolver) Container() *container.Container { return r.context().container }

// Generation counts contexts: 1 for the first, incremented by every Unload.
func (r *Resolver) Generation() uint64 { return r.context().generation }

// Catalog returns the catalog the Resolver builds from.
func (r *Resolver) Catalog() *catalog.Catalog { return r.catalog }

// kernelCatalog serves the Resolver itself under ComponentName and defers
// everything else to the user's catalog.
type kernelCatalog struct {
	*catalog.Catalog
	self *Resolver
}

func (k *kernelCatalog) Get(name string) (*catalog.Descriptor, bool) {
	if name == ComponentName {
		return &catalog.Descriptor{Name: ComponentName, Factory: catalog.Value(k.self)}, true
	}
	return k.Catalog.Get(name)
}
