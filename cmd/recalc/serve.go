package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/recalc/internal/config"
	"github.com/vango-dev/recalc/internal/errors"
	"github.com/vango-dev/recalc/pkg/inspect"
	"github.com/vango-dev/recalc/pkg/metrics"
	"github.com/vango-dev/recalc/pkg/recalc"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr      string
		sheetPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live scope over HTTP",
		Long: `Start the inspection server.

Routes:
  GET  /vars           list variables with values and edges
  GET  /vars/{name}    one variable (dotted names address nested scopes)
  PUT  /vars/{name}    set content from an expression document
  GET  /functions      the function catalog
  GET  /ws             WebSocket feed of value changes
  GET  /metrics        Prometheus metrics (when enabled)

Examples:
  recalc serve
  recalc serve --addr=127.0.0.1:9000 --sheet=sheet.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), cfg, sheetPath, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&sheetPath, "sheet", "", "Sheet file to load before serving")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, sheetPath string, out, errOut io.Writer) error {
	tracer, shutdown, err := setupTracing(cfg.Tracing, errOut)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	var (
		observers []recalc.Observer
		gatherer  prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observers = append(observers, metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(reg),
		))
		gatherer = reg
	}

	scope := recalc.NewScope(newEngine(cfg, tracer, observers...), "root")
	if sheetPath != "" {
		sh, err := readSheet(sheetPath)
		if err != nil {
			return err
		}
		failed, err := loadSheet(ctx, scope, sh, errOut)
		if err != nil {
			return err
		}
		info(out, "loaded %d variables from %s (%d rejected)", len(sh)-failed, sheetPath, failed)
	}

	srv := inspect.New(scope, inspect.Config{
		Gatherer: gatherer,
		Logger:   slog.Default(),
		Tracer:   tracer,
	})
	success(out, "serving on %s", cfg.Server.Addr)
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		return errors.New("E021").
			WithSubject(cfg.Server.Addr).
			WithDetail(fmt.Sprintf("The server on %s stopped unexpectedly.", cfg.Server.Addr)).
			Wrap(err)
	}
	return nil
}
