package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/wdtsmap/pkg/lab"
	"github.com/hazyhaar/wdtsmap/pkg/resolve"
	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	debug      bool
	logOut     io.Writer

	cfg    config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logOut: os.Stderr}

	cmd := &cobra.Command{
		Use:   "wdtsmap",
		Short: "Map WDTS program participants to their home institutions",
		Long: `wdtsmap extracts participant tables from DOE WDTS program reports, resolves
each participant's home institution against the NCES postsecondary school
locations of the report year, and exports the result.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "wdtsmap.yaml", "path to config file (env WDTSMAP_CONFIG)")
	cmd.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "log debug output, including every unresolved institution")

	cmd.AddCommand(
		newScrapeCmd(a),
		newResolveCmd(a),
		newServeCmd(a),
		newImportCmd(a),
		newSourcesCmd(a),
		newAuditCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.logOut, &slog.HandlerOptions{Level: level}))

	path := a.configPath
	if env := os.Getenv("WDTSMAP_CONFIG"); env != "" && !cmd.Flags().Changed("config") {
		path = env
	}
	cfg, err := loadConfig(path, a.logger)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) resolver(opts ...resolve.Option) (*resolve.Resolver, error) {
	rc, err := resolve.LoadConfig(a.cfg.Aliases, a.cfg.Rules)
	if err != nil {
		return nil, err
	}
	opts = append([]resolve.Option{resolve.WithLogger(a.logger), resolve.WithVerbose(a.debug)}, opts...)
	return resolve.New(rc, opts...), nil
}

func (a *app) labs() (*lab.Registry, error) {
	if a.cfg.Labs == "" {
		return lab.Default(), nil
	}
	data, err := os.ReadFile(a.cfg.Labs)
	if err != nil {
		return nil, fmt.Errorf("read labs: %w", err)
	}
	return lab.Parse(data)
}

func (a *app) catalog() *schools.Catalog {
	return schools.NewCatalog(a.cfg.SchoolsDir, a.cfg.loadOptions(a.logger))
}
