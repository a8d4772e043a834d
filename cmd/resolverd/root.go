package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/providers"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFiles []string
	catalog  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "resolverd",
		Short: "Resolve, run and tear down a catalog of components",
		Long: `resolverd builds components from a YAML catalog. Every component is
constructed at most once per set of parameters, its dependencies are
resolved in parallel, and teardowns run in reverse construction order.

Configuration comes from the environment and .env files (APP_*,
RESOLVER_*, ADMIN_*); flags override it.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringSliceVar(&flags.envFiles, "env", nil, "env files to load (default .env)")
	root.PersistentFlags().StringVar(&flags.catalog, "catalog", "", "catalog file (overrides RESOLVER_CATALOG)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (overrides RESOLVER_LOG_LEVEL)")

	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newCheckCmd(flags))
	root.AddCommand(newResolveCmd(flags))
	return root
}

// bootstrap loads the configuration and the catalog, with the framework
// providers registered after the catalog file's own entries.
func (f *globalFlags) bootstrap(logOut io.Writer) (*config.Config, *log.Logger, *catalog.Catalog, error) {
	cfg := config.Load(f.envFiles...)
	if f.catalog != "" {
		cfg.Resolver.Catalog = f.catalog
	}
	if f.logLevel != "" {
		cfg.Resolver.LogLevel = f.logLevel
	}

	level, err := log.ParseLevel(cfg.Resolver.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("log level %q: %w", cfg.Resolver.LogLevel, err)
	}
	logger := log.NewWithOptions(logOut, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})

	cat, err := catalog.LoadFile(cfg.Resolver.Catalog, providers.Kinds())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cat.Use(providers.Framework(cfg, logger)...); err != nil {
		return nil, nil, nil, err
	}
	logger.Debug("catalog loaded", "path", cfg.Resolver.Catalog, "components", len(cat.Names()))
	return cfg, logger, cat, nil
}
