package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/wdtsmap/pkg/importer"
)

func newSourcesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Inspect and edit the reference data source URLs",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List sources with their last import and availability check",
			RunE: func(cmd *cobra.Command, args []string) error {
				sdb, err := a.openSources()
				if err != nil {
					return err
				}
				defer sdb.Close()
				return listSources(cmd.OutOrStdout(), sdb)
			},
		},
		&cobra.Command{
			Use:     "set-url SOURCE URL",
			Short:   "Point a source at a new download URL",
			Example: `  wdtsmap sources set-url edge-2019 https://example.org/EDGE_GEOCODE_POSTSECONDARYSCH_1920.zip`,
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := importer.Get(args[0]); err != nil {
					return err
				}
				sdb, err := a.openSources()
				if err != nil {
					return err
				}
				defer sdb.Close()
				if err := sdb.SetURL(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] -> %s\n", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "check",
			Short: "HEAD-check every source and compare it with the local backing files",
			RunE: func(cmd *cobra.Command, args []string) error {
				sdb, err := a.openSources()
				if err != nil {
					return err
				}
				defer sdb.Close()
				importer.NewChecker(sdb, a.cfg.SchoolsDir, a.cfg.loadOptions(a.logger), 0).CheckAll(cmd.Context())
				return listSources(cmd.OutOrStdout(), sdb)
			},
		},
	)
	return cmd
}
