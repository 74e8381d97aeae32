// CLAUDE:SUMMARY CLI subcommand that downloads NCES EDGE school locations and builds the per-year backing files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/wdtsmap/pkg/importer"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		years []int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Download reference school locations into schools_dir",
		Long: `Downloads the NCES EDGE postsecondary school locations of the given years
and writes the CSV and gob backing files the resolver loads. Source URLs are
kept in sources_db and can be changed with "wdtsmap sources set-url".
Without --year or --all, lists the available sources.`,
		Example: `  wdtsmap import --year 2019 --year 2020
  wdtsmap import --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sdb, err := a.openSources()
			if err != nil {
				return err
			}
			defer sdb.Close()

			if !all && len(years) == 0 {
				return listSources(cmd.OutOrStdout(), sdb)
			}

			var selected []importer.Adapter
			if all {
				selected = importer.All()
			}
			for _, y := range years {
				ad, err := importer.ForYear(y)
				if err != nil {
					return err
				}
				selected = append(selected, ad)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Hour)
			defer cancel()

			failed := 0
			for _, ad := range selected {
				n, err := a.importOne(ctx, sdb, ad)
				if err != nil {
					a.logger.Error("import failed", "source", ad.ID(), "error", err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] OK %d rows -> %s\n", ad.ID(), n, a.cfg.SchoolsDir)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d imports failed", failed, len(selected))
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVarP(&years, "year", "y", nil, "reference year to import (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "import every available year")
	return cmd
}

// importOne imports ad's archive and records the row count in sdb.
func (a *app) importOne(ctx context.Context, sdb *importer.SourceDB, ad importer.Adapter) (int, error) {
	url, err := sdb.GetURL(ad.ID())
	if err != nil {
		return 0, fmt.Errorf("source url: %w", err)
	}
	a.logger.Info("import started", "source", ad.ID(), "year", ad.Year(), "url", url)
	n, err := ad.Import(ctx, url, a.cfg.SchoolsDir, a.cfg.loadOptions(a.logger))
	if err != nil {
		return 0, err
	}
	if err := sdb.RecordImport(ad.ID(), n, time.Now()); err != nil {
		return n, err
	}
	return n, nil
}

// openSources opens sources_db and seeds it with the registered adapters.
func (a *app) openSources() (*importer.SourceDB, error) {
	if dir := filepath.Dir(a.cfg.SourcesDB); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	sdb, err := importer.OpenSourceDB(a.cfg.SourcesDB)
	if err != nil {
		return nil, err
	}
	if err := sdb.Seed(importer.All()); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("seed sources: %w", err)
	}
	return sdb, nil
}

func listSources(w io.Writer, sdb *importer.SourceDB) error {
	sources, err := sdb.ListSources()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Available sources:")
	fmt.Fprintln(w)
	for _, src := range sources {
		imported := "never imported"
		if src.ImportedAt != nil && src.ImportedRows != nil {
			imported = fmt.Sprintf("%d rows on %s", *src.ImportedRows,
				time.Unix(*src.ImportedAt, 0).Format(time.DateOnly))
		}
		status := src.State()
		if src.LastStatus != nil {
			status = fmt.Sprintf("%s [%d]", status, *src.LastStatus)
		}
		fmt.Fprintf(w, "  %-10s  %d  %-11s  %-28s  %s\n", src.AdapterID, src.Year, status, imported, src.SourceURL)
	}
	return nil
}
