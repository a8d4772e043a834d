package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/km-arc/go-resolver/framework/app"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/expression"
	"github.com/km-arc/go-resolver/framework/routing"
	"github.com/km-arc/go-resolver/framework/validation"
)

// ComponentView is the JSON shape of one catalog component.
type ComponentView struct {
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Startup      bool     `json:"startup"`
	// Instances maps every cache key built from this component to its state.
	Instances map[string]container.State `json:"instances,omitempty"`
}

var listRules = validation.Rules{
	"state": "sometimes|in:" + string(container.StatePending) + "," +
		string(container.StateResolved) + "," + string(container.StateFailed),
}

// Admin serves the introspection and lifecycle endpoints of a Resolver.
//
//	GET  /healthz
//	GET  /components[?state=pending|resolved|failed]
//	GET  /components/{name}
//	POST /reload
//	POST /unload
//
// Reload and unload run in the background and answer 202 straight away: the
// admin server is usually a component of the Resolver it controls, and its
// own shutdown waits for in-flight requests.
type Admin struct {
	resolver *app.Resolver
	logger   *log.Logger
	timeout  time.Duration

	busy atomic.Bool
	wg   sync.WaitGroup
}

// NewAdmin creates the handlers. timeout bounds each background reload or
// unload; zero means no bound.
func NewAdmin(r *app.Resolver, logger *log.Logger, timeout time.Duration) *Admin {
	if logger == nil {
		logger = log.Default().WithPrefix("resolver/admin")
	}
	return &Admin{resolver: r, logger: logger, timeout: timeout}
}

// Routes registers the endpoints on router. Their responses describe the
// live state of the Resolver and are marked uncacheable.
func (a *Admin) Routes(router *routing.Router) {
	router.Group(func(r *routing.Router) {
		r.Middleware(noStore)
		r.Get("/healthz", a.health)
		r.Get("/components", a.list)
		r.Get("/components/{name}", a.show)
		r.Post("/reload", a.reload)
		r.Post("/unload", a.unload)
	})
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// Wait blocks until background operations started so far have finished.
func (a *Admin) Wait() { a.wg.Wait() }

// ── Handlers ──────────────────────────────────────────────────────────────────

func (a *Admin) health(w http.ResponseWriter, _ *http.Request) {
	NewResponse(w).Success(map[string]any{
		"status":     "ok",
		"generation": a.resolver.Generation(),
		"busy":       a.busy.Load(),
	})
}

func (a *Admin) list(w http.ResponseWriter, r *http.Request) {
	req, res := NewRequest(r), NewResponse(w)
	if errs := req.Validate(listRules); errs != nil {
		res.ValidationError(errs)
		return
	}
	state := container.State(req.Query("state"))

	views := a.components()
	out := make([]*ComponentView, 0, len(views))
	for _, name := range a.resolver.Catalog().Names() {
		v := views[name]
		if state != "" && !hasState(v, state) {
			continue
		}
		out = append(out, v)
	}
	res.Success(out)
}

func (a *Admin) show(w http.ResponseWriter, r *http.Request) {
	req, res := NewRequest(r), NewResponse(w)
	d, ok := a.resolver.Catalog().Get(req.RouteParam("name"))
	if !ok {
		res.NotFound("Unknown component.")
		return
	}
	res.Success(a.components()[d.Name])
}

func (a *Admin) reload(w http.ResponseWriter, r *http.Request) {
	a.background(w, r, "reload", func(ctx context.Context) error {
		_, err := a.resolver.Reload(ctx)
		return err
	})
}

func (a *Admin) unload(w http.ResponseWriter, r *http.Request) {
	a.background(w, r, "unload", func(ctx context.Context) error {
		a.resolver.Unload(ctx)
		return nil
	})
}

// background runs op after the response, one operation at a time.
func (a *Admin) background(w http.ResponseWriter, r *http.Request, name string, op func(context.Context) error) {
	res := NewResponse(w)
	if !a.busy.CompareAndSwap(false, true) {
		res.Error(http.StatusConflict, "Another reload or unload is running.")
		return
	}
	from := a.resolver.Generation()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.busy.Store(false)

		ctx := context.WithoutCancel(r.Context())
		if a.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.timeout)
			defer cancel()
		}
		a.logger.Info("admin "+name+" started", "generation", from)
		if err := op(ctx); err != nil {
			a.logger.Error("admin "+name+" failed", "err", err)
			return
		}
		a.logger.Info("admin "+name+" finished", "generation", a.resolver.Generation())
	}()

	res.Accepted(map[string]any{"operation": name, "generation": from})
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// components builds a view of every catalog component, keyed by canonical
// name, with the cache entries of the current context attached.
func (a *Admin) components() map[string]*ComponentView {
	cat := a.resolver.Catalog()
	views := make(map[string]*ComponentView)
	for _, name := range cat.Names() {
		d, _ := cat.Get(name)
		views[name] = &ComponentView{
			Name:         d.Name,
			Aliases:      cat.AliasesOf(name),
			Dependencies: d.Dependencies,
			Startup:      d.Startup,
		}
	}
	for key, state := range a.resolver.Container().States() {
		expr, err := expression.Parse(key)
		if err != nil || len(expr.Alternatives) == 0 {
			continue
		}
		d, ok := cat.Get(expr.Alternatives[0].Name)
		if !ok {
			continue
		}
		v := views[d.Name]
		if v.Instances == nil {
			v.Instances = make(map[string]container.State)
		}
		v.Instances[key] = state
	}
	return views
}

func hasState(v *ComponentView, state container.State) bool {
	for _, s := range v.Instances {
		if s == state {
			return true
		}
	}
	return false
}
