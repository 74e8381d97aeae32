package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/wdtsmap/pkg/api"
	"github.com/hazyhaar/wdtsmap/pkg/importer"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		stdio bool
		check time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolution API over HTTP and MCP",
		Long: `Starts the HTTP JSON API with the MCP tools mounted at /mcp and Prometheus
metrics at /metrics. With --stdio the MCP tools are served on stdin/stdout
instead. SIGHUP starts a new session: reference tables are reloaded from
schools_dir on next use.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Addr = addr
			}
			return a.serve(cmd.Context(), stdio, check)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: addr from config)")
	cmd.Flags().BoolVar(&stdio, "stdio", false, "serve MCP on stdin/stdout instead of HTTP")
	cmd.Flags().DurationVar(&check, "check-sources", 0, "HEAD-check the source URLs at this interval (0 disables)")
	return cmd
}

func (a *app) serve(ctx context.Context, stdio bool, check time.Duration) error {
	logger := a.logger

	r, err := a.resolver()
	if err != nil {
		return err
	}
	labs, err := a.labs()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	svc := api.NewService(r, a.catalog(), labs, api.NewMetrics(reg), a.cfg.CurrentYear)
	mcpSrv := api.NewMCPServer(svc, logger, version)

	if stdio {
		logger.Info("serving MCP on stdio")
		return server.ServeStdio(mcpSrv)
	}

	if check > 0 {
		sdb, err := a.openSources()
		if err != nil {
			return err
		}
		defer sdb.Close()
		go importer.NewChecker(sdb, a.cfg.SchoolsDir, a.cfg.loadOptions(logger), check).Start(ctx)
	}

	srv := &http.Server{
		Addr:    a.cfg.Addr,
		Handler: api.NewRouter(svc, api.RouterOptions{Logger: logger, Gatherer: reg, MCP: mcpSrv}),
	}

	// SIGHUP: new session, tables reloaded on next use.
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, starting a new session", "schools_dir", a.cfg.SchoolsDir)
			svc.Swap(a.catalog())
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("wdtsmap listening", "addr", a.cfg.Addr, "current_year", svc.CurrentYear())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
