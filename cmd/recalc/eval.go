package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/recalc/internal/config"
	"github.com/vango-dev/recalc/internal/errors"
	"github.com/vango-dev/recalc/pkg/exprjson"
	"github.com/vango-dev/recalc/pkg/function"
	"github.com/vango-dev/recalc/pkg/recalc"
)

func evalCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <sheet>",
		Short: "Evaluate a sheet file",
		Long: `Evaluate a sheet file and print every variable.

A sheet maps variable names to expression documents, as JSON or YAML.
Dotted names place variables in nested scopes.

Example sheet (sheet.yaml):

  A1: {number: "2"}
  B1: {call: add, args: [{ref: [A1]}, {number: "3"}]}

Examples:
  recalc eval sheet.yaml
  recalc eval --log-level=debug sheet.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runEval(cmd.Context(), cfg, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	return cmd
}

func runEval(ctx context.Context, cfg *config.Config, path string, out, errOut io.Writer) error {
	sh, err := readSheet(path)
	if err != nil {
		return err
	}

	tracer, shutdown, err := setupTracing(cfg.Tracing, errOut)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	engine := newEngine(cfg, tracer)
	scope := recalc.NewScope(engine, "sheet")
	failed, err := loadSheet(ctx, scope, sh, errOut)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	walk(scope, "", func(name string, v *recalc.Variable) {
		fmt.Fprintf(tw, "%s\t%s\n", name, function.Display(v.Value()))
	})
	if err := tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return errors.New("E020").
			WithSubject(path).
			WithDetail(fmt.Sprintf("%d of %d variables were rejected", failed, len(sh)))
	}
	return nil
}

// loadSheet sets every sheet entry in scope. Rejected entries are printed
// to errOut and counted.
func loadSheet(ctx context.Context, scope *recalc.Scope, sh sheet, errOut io.Writer) (int, error) {
	names := sh.names()
	dec := &exprjson.Decoder{Scope: scope, Functions: function.Builtins()}
	dec.Declare(names...)

	// Every entry exists before any expression binds, so forward references
	// into nested scopes find their targets.
	vars := make([]*recalc.Variable, len(names))
	for i, name := range names {
		v, err := define(scope, name)
		if err != nil {
			return 0, errors.New("E003").WithSubject(name).Wrap(err)
		}
		vars[i] = v
	}

	failed := 0
	for i, name := range names {
		v := vars[i]
		expr, err := dec.Build(sh[name])
		if err != nil {
			errors.Fprint(errOut, errors.Classify(err).WithSubject(name))
			failed++
			continue
		}
		if err := v.SetContent(ctx, expr); err != nil {
			errors.Fprint(errOut, errors.Classify(err))
			failed++
		}
	}
	return failed, nil
}

// newEngine builds an engine from the engine section.
func newEngine(cfg *config.Config, tracer trace.Tracer, observers ...recalc.Observer) *recalc.Engine {
	opts := cfg.EngineOptions()
	opts = append(opts,
		recalc.WithLogger(slog.Default().With("component", "recalc")),
		recalc.WithTracer(tracer),
	)
	if len(observers) > 0 {
		opts = append(opts, recalc.WithObserver(recalc.Observers(observers)))
	}
	return recalc.New(opts...)
}

// walk visits the variables of s and its descendants with dotted names.
func walk(s *recalc.Scope, prefix string, fn func(string, *recalc.Variable)) {
	for _, v := range s.Variables() {
		fn(prefix+v.Name(), v)
	}
	for _, c := range s.Children() {
		walk(c, prefix+c.Name()+".", fn)
	}
}
