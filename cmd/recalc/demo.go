package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/recalc/internal/config"
	"github.com/vango-dev/recalc/internal/errors"
	"github.com/vango-dev/recalc/pkg/function"
	"github.com/vango-dev/recalc/pkg/recalc"
	"github.com/vango-dev/recalc/pkg/value"
)

func demoCmd(flags *globalFlags) *cobra.Command {
	var trace bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through propagation, cycle rejection and overloads",
		Long: `Run a scripted session against a fresh engine.

The demo sets literal content, propagates a change through a reference,
rejects an edit that would close a cycle, evaluates a function with good
and bad arity, and reads properties of a vector.

Examples:
  recalc demo
  recalc demo --trace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if trace {
				cfg.Tracing.Enabled = true
				cfg.Tracing.Exporter = "stdout"
			}
			return runDemo(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&trace, "trace", false, "Print engine spans to stderr")

	return cmd
}

func runDemo(ctx context.Context, cfg *config.Config, out, errOut io.Writer) error {
	tracer, shutdown, err := setupTracing(cfg.Tracing, errOut)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	scope := recalc.NewScope(newEngine(cfg, tracer), "demo")
	v1 := scope.Define("V1")
	v2 := scope.Define("V2")

	fmt.Fprintln(out, "1. Literal content")
	if err := v1.SetContent(ctx, recalc.Lit(value.Int(2))); err != nil {
		return err
	}
	info(out, "V1 = %s", v1.Value())

	fmt.Fprintln(out, "2. Propagation")
	if err := v2.SetContent(ctx, recalc.Call(function.Add, recalc.Ref(v1), recalc.Lit(value.Int(3)))); err != nil {
		return err
	}
	info(out, "V2 = V1 + 3 = %s", v2.Value())
	if err := v1.SetContent(ctx, recalc.Lit(value.Int(10))); err != nil {
		return err
	}
	info(out, "V1 = 10, V2 = %s", v2.Value())

	fmt.Fprintln(out, "3. Cycle rejection")
	err = v1.SetContent(ctx, recalc.Ref(v2))
	if err == nil {
		return errors.New("E020").WithDetail("cycle was not rejected")
	}
	info(out, "rejected: %s", errors.Classify(err).FormatCompact())
	info(out, "V1 = %s, V2 = %s", v1.Content(), v2.Content())

	fmt.Fprintln(out, "4. Overload resolution")
	info(out, "abs(-5) = %s", function.Abs.Evaluate([]value.Value{value.Int(-5)}))
	info(out, "abs(1, 2) = %s", function.Abs.Evaluate([]value.Value{value.Int(1), value.Int(2)}))

	fmt.Fprintln(out, "5. Vector properties")
	vec := value.Vec(value.Text("a"), value.Text("b"), value.Text("c"))
	for _, name := range []string{"length", "min", "max"} {
		p, _ := vec.TryGetProperty(name)
		info(out, "%s.%s = %s", vec, name, p.PropertyValue())
	}

	success(out, "demo complete")
	return nil
}
