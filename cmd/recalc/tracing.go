package main

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/recalc/internal/config"
	"github.com/vango-dev/recalc/internal/errors"
)

// setupTracing installs a tracer provider for the tracing section. The
// returned shutdown flushes pending spans. With tracing disabled it
// returns the global tracer and a no-op shutdown.
func setupTracing(cfg config.TracingConfig, w io.Writer) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.Enabled {
		return otel.Tracer("recalc"), func(context.Context) error { return nil }, nil
	}

	var opts []sdktrace.TracerProviderOption
	if cfg.Exporter == "stdout" {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, nil, errors.New("E022").Wrap(err)
		}
		opts = append(opts, sdktrace.WithSyncer(exp))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp.Tracer("recalc"), tp.Shutdown, nil
}
