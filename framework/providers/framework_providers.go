package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/km-arc/go-resolver/framework/app"
	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/config"
	gohttp "github.com/km-arc/go-resolver/framework/http"
	"github.com/km-arc/go-resolver/framework/routing"
	"github.com/km-arc/go-resolver/framework/unload"
)

// Component names registered by the framework providers.
const (
	ConfigComponent = "config"
	LoggerComponent = "logger"
	RouterComponent = "router"
	AdminComponent  = "admin-server"
)

// Framework returns the core providers in registration order.
func Framework(cfg *config.Config, base *log.Logger) []catalog.ServiceProvider {
	return []catalog.ServiceProvider{
		&ConfigServiceProvider{Config: cfg},
		&LoggerServiceProvider{Base: base},
		&RoutingServiceProvider{},
		&AdminServiceProvider{Enabled: cfg.Admin.Enabled},
	}
}

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider makes the application configuration a component.
//
// Registered components:
//   - "config" → *config.Config (alias "configuration")
//
// A nil Config is loaded from EnvFiles on first resolution.
type ConfigServiceProvider struct {
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(c *catalog.Catalog) error {
	b := c.Component(ConfigComponent).Alias("configuration")
	if p.Config != nil {
		return b.ProvideValue(p.Config)
	}
	envFiles := p.EnvFiles
	return b.Provide(func(context.Context, []any) (any, error) {
		return config.Load(envFiles...), nil
	})
}

// ── LoggerServiceProvider ─────────────────────────────────────────────────────

// LoggerServiceProvider registers the application logger, prefixed with the
// application name and levelled from RESOLVER_LOG_LEVEL.
//
// Registered components:
//   - "logger" → *log.Logger
type LoggerServiceProvider struct {
	Base *log.Logger
}

func (p *LoggerServiceProvider) Register(c *catalog.Catalog) error {
	base := p.Base
	if base == nil {
		base = log.Default()
	}
	return c.Component(LoggerComponent).Needs(ConfigComponent).
		Provide(func(_ context.Context, deps []any) (any, error) {
			cfg, err := catalog.Arg[*config.Config](deps, 0)
			if err != nil {
				return nil, err
			}
			level, err := log.ParseLevel(cfg.Resolver.LogLevel)
			if err != nil {
				return nil, fmt.Errorf("RESOLVER_LOG_LEVEL: %w", err)
			}
			logger := base.WithPrefix(cfg.App.Name)
			logger.SetLevel(level)
			return logger, nil
		})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Registered components:
//   - "router" → *routing.Router
type RoutingServiceProvider struct{}

func (p *RoutingServiceProvider) Register(c *catalog.Catalog) error {
	return c.Component(RouterComponent).Needs(LoggerComponent).
		Provide(func(_ context.Context, deps []any) (any, error) {
			logger, err := catalog.Arg[*log.Logger](deps, 0)
			if err != nil {
				return nil, err
			}
			return routing.New(logger.WithPrefix("http")), nil
		})
}

// ── AdminServiceProvider ──────────────────────────────────────────────────────

// AdminServiceProvider registers the admin HTTP server. It listens as soon as
// it is constructed and shuts down gracefully on unload, so a reload closes
// the old listener before the new generation binds the address again.
//
// Registered components:
//   - "admin-server" → *AdminServer (a startup component when Enabled)
type AdminServiceProvider struct {
	Enabled bool
}

func (p *AdminServiceProvider) Register(c *catalog.Catalog) error {
	b := c.Component(AdminComponent).Needs(
		ConfigComponent, RouterComponent, app.ComponentName, LoggerComponent, catalog.UnloadDependency,
	)
	if p.Enabled {
		b = b.Startup()
	}
	return b.Provide(newAdminServer)
}

// AdminServer is a running admin endpoint.
type AdminServer struct {
	*gohttp.Admin
	server *http.Server
	addr   string
}

// Addr is the address the server listens on.
func (s *AdminServer) Addr() string { return s.addr }

func newAdminServer(_ context.Context, deps []any) (any, error) {
	cfg, err := catalog.Arg[*config.Config](deps, 0)
	if err != nil {
		return nil, err
	}
	router, err := catalog.Arg[*routing.Router](deps, 1)
	if err != nil {
		return nil, err
	}
	resolver, err := catalog.Arg[*app.Resolver](deps, 2)
	if err != nil {
		return nil, err
	}
	logger, err := catalog.Arg[*log.Logger](deps, 3)
	if err != nil {
		return nil, err
	}
	onUnload, err := catalog.Arg[unload.RegisterFunc](deps, 4)
	if err != nil {
		return nil, err
	}
	logger = logger.WithPrefix("admin")

	admin := gohttp.NewAdmin(resolver, logger, cfg.Resolver.LoadTimeout)
	admin.Routes(router)

	ln, err := net.Listen("tcp", cfg.Admin.Addr)
	if err != nil {
		return nil, fmt.Errorf("admin listen %s: %w", cfg.Admin.Addr, err)
	}
	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("admin server stopped", "err", err)
		}
	}()
	logger.Info("admin server listening", "addr", ln.Addr().String())

	onUnload(func(ctx context.Context) error {
		if cfg.Admin.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Admin.ShutdownTimeout)
			defer cancel()
		}
		logger.Info("admin server shutting down", "addr", ln.Addr().String())
		return srv.Shutdown(ctx)
	})

	return &AdminServer{Admin: admin, server: srv, addr: ln.Addr().String()}, nil
}
