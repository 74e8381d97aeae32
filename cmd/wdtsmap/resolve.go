package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/wdtsmap/pkg/resolve"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		year   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "resolve NAME...",
		Short:   "Resolve institution names against one year's reference table",
		Example: `  wdtsmap resolve --year 2019 "SUNY Stony Brook" "Ohio State University"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = a.cfg.CurrentYear
			}
			outcomes, err := a.resolveNames(args, year)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(outcomes)
			}
			printOutcomes(cmd.OutOrStdout(), outcomes)
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "reference year (default: current_year from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print outcomes as JSON")
	return cmd
}

func (a *app) resolveNames(names []string, year int) ([]resolve.Outcome, error) {
	r, err := a.resolver()
	if err != nil {
		return nil, err
	}
	t, err := a.catalog().Table(year)
	if err != nil {
		return nil, err
	}
	outcomes := make([]resolve.Outcome, len(names))
	for i, name := range names {
		outcomes[i] = r.Resolve(t, name, year)
	}
	return outcomes, nil
}

func printOutcomes(w io.Writer, outcomes []resolve.Outcome) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tSTAGE\tINSTITUTION\tLOCATION")
	for _, out := range outcomes {
		if !out.Found() {
			fmt.Fprintf(tw, "%s\t%s\t(tried %q)\t-\n", out.Input, out.Stage, out.Attempted)
			continue
		}
		inst := out.Institution
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s, %s\n", out.Input, out.Stage, inst.Name, inst.City, inst.State)
	}
	tw.Flush()
}
