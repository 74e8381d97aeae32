package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/wdtsmap/pkg/audit"
	"github.com/hazyhaar/wdtsmap/pkg/resolve"
)

func newAuditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the resolution outcomes recorded by scrape runs",
		Long: `Every scrape run records each resolution outcome in audit_db. Use these
commands to see which names failed to resolve and what the cascade tried.
RUN defaults to the most recent run.`,
	}

	withStore := func(fn func(w io.Writer, store *audit.Store, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if a.cfg.AuditDB == "" {
				return errors.New("audit_db is not configured")
			}
			store, err := audit.Open(a.cfg.AuditDB, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()
			return fn(cmd.OutOrStdout(), store, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "runs",
			Short: "List recorded runs, newest first",
			RunE:  withStore(printRuns),
		},
		&cobra.Command{
			Use:   "summary [RUN]",
			Short: "Count a run's outcomes by cascade stage",
			Args:  cobra.MaximumNArgs(1),
			RunE:  withStore(printSummary),
		},
		&cobra.Command{
			Use:   "not-found [RUN]",
			Short: "List a run's unresolved names, most frequent first",
			Args:  cobra.MaximumNArgs(1),
			RunE:  withStore(printNotFound),
		},
	)
	return cmd
}

// runID returns the run named in args, or the latest run.
func runID(store *audit.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	runs, err := store.Runs()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs recorded")
	}
	return runs[0].ID, nil
}

func printRuns(w io.Writer, store *audit.Store, _ []string) error {
	runs, err := store.Runs()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tSTARTED\tFINISHED\tRESOLUTIONS")
	for _, r := range runs {
		finished := "-"
		if r.FinishedAt != nil {
			finished = time.Unix(*r.FinishedAt, 0).Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", r.ID, r.Label, time.Unix(r.StartedAt, 0).Format(time.DateTime), finished, r.Total)
	}
	return tw.Flush()
}

func printSummary(w io.Writer, store *audit.Store, args []string) error {
	id, err := runID(store, args)
	if err != nil {
		return err
	}
	counts, err := store.Summary(id)
	if err != nil {
		return err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Fprintf(w, "Run %s\n", id)
	for _, stage := range []resolve.Stage{resolve.StageExact, resolve.StageAlias, resolve.StageRule, resolve.StageNotFound} {
		fmt.Fprintf(w, "  %-10s %d\n", stage, counts[stage])
	}
	fmt.Fprintf(w, "  %-10s %d\n", "total", total)
	return nil
}

func printNotFound(w io.Writer, store *audit.Store, args []string) error {
	id, err := runID(store, args)
	if err != nil {
		return err
	}
	misses, err := store.NotFound(id)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNT\tYEAR\tINPUT\tATTEMPTED")
	for _, m := range misses {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", m.Count, m.Year, m.Input, m.Attempted)
	}
	return tw.Flush()
}
