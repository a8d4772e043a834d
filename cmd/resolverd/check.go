package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-resolver/framework/app"
	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/expression"
)

func newCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog and list its components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, cat, err := flags.bootstrap(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSTARTUP\tDEPENDENCIES\tALIASES")
			for _, name := range cat.Names() {
				d, _ := cat.Get(name)
				startup := ""
				if d.Startup {
					startup = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, startup,
					strings.Join(d.Dependencies, ", "), strings.Join(cat.AliasesOf(name), ", "))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			problems := dangling(cat)
			for _, p := range problems {
				fmt.Fprintln(out, "warning:", p)
			}
			return nil
		},
	}
}

// dangling reports dependency alternatives naming components the catalog
// does not have. They are warnings: a later alternative or "?" may cover them.
func dangling(cat *catalog.Catalog) []string {
	var out []string
	for _, name := range cat.Names() {
		d, _ := cat.Get(name)
		for _, dep := range d.Dependencies {
			if dep == catalog.OptionsDependency || dep == catalog.UnloadDependency {
				continue
			}
			expr, err := expression.Parse(dep)
			if err != nil {
				out = append(out, fmt.Sprintf("%s: dependency %q: %v", name, dep, err))
				continue
			}
			for _, alt := range expr.Alternatives {
				target := strings.TrimSuffix(alt.Name, container.ImmediateModifier)
				if target == app.ComponentName {
					continue
				}
				if _, ok := cat.Get(target); !ok {
					out = append(out, fmt.Sprintf("%s: dependency %q names unknown component %q", name, dep, target))
				}
			}
		}
	}
	return out
}
