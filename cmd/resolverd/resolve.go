package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-resolver/framework/app"
)

func newResolveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <expression>...",
		Short: "Resolve dependency expressions once and print the results",
		Long: `resolve constructs what each expression needs without loading the
startup components, prints the results and tears everything down again.`,
		Example: `  resolverd resolve banner
  resolverd resolve "banner#hello" "cache?" "db-primary|db-replica"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, cat, err := flags.bootstrap(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			r := app.New(cat, app.WithLogger(logger.WithPrefix("resolver")))
			defer r.Unload(context.WithoutCancel(cmd.Context()))

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Resolver.LoadTimeout)
			defer cancel()
			for _, expr := range args {
				v, err := r.Resolve(ctx, expr)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", expr, v)
			}
			return nil
		},
	}
}
