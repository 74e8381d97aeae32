package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/wdtsmap/pkg/audit"
	"github.com/hazyhaar/wdtsmap/pkg/export"
	"github.com/hazyhaar/wdtsmap/pkg/layout"
	"github.com/hazyhaar/wdtsmap/pkg/participant"
	"github.com/hazyhaar/wdtsmap/pkg/resolve"
)

type scrapeFlags struct {
	files   []string
	types   []string
	years   []int
	formats []string
	output  string
	label   string
	noLines bool
	topic   bool
	strict  bool
}

// scrapeResult summarizes one scrape run.
type scrapeResult struct {
	RunID      string
	People     []participant.Participant
	Unresolved int
	Malformed  int
	Files      []string
}

func newScrapeCmd(a *app) *cobra.Command {
	var f scrapeFlags

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Extract participants from WDTS reports and export them",
		Long: `Parses the participant tables of one or more WDTS reports, resolves every
home institution against the reference table of the report year, and writes
the requested exports. Each --file needs a matching --type and --year; every
(program, year) pair is checked before any report is read.`,
		Example: `  wdtsmap scrape -f data/WDTS-SULI-CCI-VFP-Summer-2021.pdf -t VFP -y 2021
  wdtsmap scrape -c configs/all-programs-2021.yaml -F geojson,parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := f.inputs(a.cfg.Inputs)
			if err != nil {
				return err
			}
			a.applyScrapeFlags(cmd, &f)
			res, err := a.scrape(cmd.Context(), inputs, f)
			if err != nil {
				return err
			}
			printScrapeResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&f.files, "file", "f", nil, "report to scrape (repeatable)")
	cmd.Flags().StringSliceVarP(&f.types, "type", "t", nil, "program of each report: VFP, SULI, CCI or SCGSR")
	cmd.Flags().IntSliceVarP(&f.years, "year", "y", nil, "year of each report")
	cmd.Flags().StringSliceVarP(&f.formats, "formats", "F", nil, "export formats: "+strings.Join(export.Formats, ", "))
	cmd.Flags().StringVarP(&f.output, "output-path", "O", "", "directory for the exports")
	cmd.Flags().StringVar(&f.label, "label", "", "label of the audit run")
	cmd.Flags().BoolVarP(&f.noLines, "no-lines", "n", false, "omit institution to laboratory lines from the GeoJSON export")
	cmd.Flags().BoolVarP(&f.topic, "filter-by-topic", "T", false, "keep only participants whose topic matches the configured topics")
	cmd.Flags().BoolVarP(&f.strict, "strict-filtering", "S", false, "with --filter-by-topic, also drop participants with no topic")

	return cmd
}

// inputs pairs the file, type and year flags, or falls back to the
// configured inputs when no file is given.
func (f scrapeFlags) inputs(configured []layout.Input) ([]layout.Input, error) {
	if len(f.files) == 0 {
		return configured, nil
	}
	if len(f.types) != len(f.files) || len(f.years) != len(f.files) {
		return nil, fmt.Errorf("the number of files (%d), types (%d) and years (%d) must be the same",
			len(f.files), len(f.types), len(f.years))
	}
	inputs := make([]layout.Input, len(f.files))
	for i, path := range f.files {
		p, err := layout.ParseProgram(f.types[i])
		if err != nil {
			return nil, err
		}
		inputs[i] = layout.Input{Path: path, Program: p, Year: f.years[i]}
	}
	return inputs, nil
}

// applyScrapeFlags fills unset flags from the config file.
func (a *app) applyScrapeFlags(cmd *cobra.Command, f *scrapeFlags) {
	if len(f.formats) == 0 {
		f.formats = a.cfg.Formats
	}
	if f.output == "" {
		f.output = a.cfg.OutputDir
	}
	if !cmd.Flags().Changed("no-lines") {
		f.noLines = a.cfg.NoLines
	}
	if !cmd.Flags().Changed("filter-by-topic") {
		f.topic = a.cfg.FilterByTopic
	}
	if !cmd.Flags().Changed("strict-filtering") {
		f.strict = a.cfg.StrictFilter
	}
}

func (a *app) scrape(ctx context.Context, inputs []layout.Input, f scrapeFlags) (scrapeResult, error) {
	var res scrapeResult

	reg := layout.DefaultRegistry()
	if err := reg.Validate(inputs); err != nil {
		return res, err
	}
	for _, format := range f.formats {
		if !slices.Contains(export.Formats, strings.ToLower(format)) {
			return res, fmt.Errorf("unsupported format %q (supported: %s)", format, strings.Join(export.Formats, ", "))
		}
	}

	var opts []resolve.Option
	if a.cfg.AuditDB != "" {
		store, err := audit.Open(a.cfg.AuditDB, a.logger)
		if err != nil {
			return res, err
		}
		defer store.Close()
		label := f.label
		if label == "" {
			label = "scrape " + time.Now().Format(time.DateTime)
		}
		if res.RunID, err = store.BeginRun(label); err != nil {
			return res, err
		}
		defer func() {
			if err := store.FinishRun(res.RunID); err != nil {
				a.logger.Error("finish audit run", "run", res.RunID, "error", err)
			}
		}()
		opts = append(opts, resolve.WithObserver(store.Observer(res.RunID)))
	}
	opts = append(opts, resolve.WithObserver(func(out resolve.Outcome) {
		if !out.Found() {
			res.Unresolved++
		}
	}))

	r, err := a.resolver(opts...)
	if err != nil {
		return res, err
	}
	labs, err := a.labs()
	if err != nil {
		return res, err
	}
	asm := &participant.Assembler{
		Resolver: r,
		Tables:   a.catalog(),
		Labs:     labs,
		Logger:   a.logger,
	}

	for _, in := range inputs {
		strategy, _ := reg.Lookup(in.Program, in.Year)
		a.logger.Info("processing report", "file", in.Path, "program", in.Program, "year", in.Year, "layout", strategy.Name())

		doc, err := layout.ReadFile(ctx, in.Path)
		if err != nil {
			return res, err
		}
		fields, bad := strategy.Parse(doc, in.Year, []string{string(in.Program)})
		for _, m := range bad {
			a.logger.Warn("malformed row skipped", "file", in.Path, "page", m.Page, "reason", m.Reason, "row", strings.Join(m.Cells, " | "))
		}
		res.Malformed += len(bad)

		people, err := asm.AssembleAll(fields)
		if err != nil {
			return res, fmt.Errorf("%s: %w", in.Path, err)
		}
		res.People = append(res.People, people...)
	}

	if f.topic {
		res.People, err = participant.FilterByTopic(res.People, f.strict, a.cfg.Topics)
		if err != nil {
			return res, err
		}
	}
	participant.SortByJob(res.People)

	now := time.Now()
	for _, format := range f.formats {
		format = strings.ToLower(format)
		path := export.FormattedFilename(f.output, "wdts_participants", format, now)
		if err := export.WriteFile(path, format, res.People, !f.noLines); err != nil {
			return res, fmt.Errorf("export %s: %w", format, err)
		}
		a.logger.Info("export written", "format", format, "path", path, "participants", len(res.People))
		res.Files = append(res.Files, path)
	}
	return res, nil
}

func printScrapeResult(w io.Writer, res scrapeResult) {
	fmt.Fprintf(w, "Participants:  %d\n", len(res.People))
	fmt.Fprintf(w, "Unresolved:    %d institution lookups\n", res.Unresolved)
	if res.Malformed > 0 {
		fmt.Fprintf(w, "Malformed:     %d rows skipped\n", res.Malformed)
	}
	if res.RunID != "" {
		fmt.Fprintf(w, "Audit run:     %s\n", res.RunID)
	}
	for _, path := range res.Files {
		fmt.Fprintf(w, "Wrote:         %s\n", path)
	}
}
