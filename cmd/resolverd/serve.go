package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-resolver/framework/app"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the startup components and run until interrupted",
		Long: `serve resolves every startup component of the catalog, then waits.
SIGHUP reloads: everything is torn down and constructed again from the
same catalog. SIGINT or SIGTERM tears everything down and exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, cat, err := flags.bootstrap(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			r := app.New(cat, app.WithLogger(logger.WithPrefix("resolver")))
			defer func() {
				// the signal context is already done here
				uctx, cancel := context.WithTimeout(context.Background(), cfg.Resolver.LoadTimeout)
				defer cancel()
				r.Unload(uctx)
			}()

			lctx, cancel := context.WithTimeout(ctx, cfg.Resolver.LoadTimeout)
			_, err = r.Load(lctx)
			cancel()
			if err != nil {
				return err
			}
			logger.Info("ready", "app", cfg.App.Name, "env", cfg.App.Env, "generation", r.Generation())

			for {
				select {
				case <-ctx.Done():
					logger.Info("shutting down")
					return nil
				case <-hup:
					rctx, cancel := context.WithTimeout(ctx, cfg.Resolver.LoadTimeout)
					if _, err := r.Reload(rctx); err != nil {
						logger.Error("reload failed", "generation", r.Generation(), "err", err)
					} else {
						logger.Info("reloaded", "generation", r.Generation())
					}
					cancel()
				}
			}
		},
	}
}
