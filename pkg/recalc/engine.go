package recalc

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/recalc/pkg/value"
)

// Default tracer name for recalc spans.
const defaultTracerName = "recalc"

// DefaultMaxPropagationDepth bounds how many generations a single wave may
// span before it is abandoned.
const DefaultMaxPropagationDepth = 10000

// Observer receives engine events. Implementations must be safe for
// concurrent use; see pkg/metrics for a Prometheus implementation.
type Observer interface {
	// UpdateObserved is called after every Update.
	UpdateObserved(v *Variable, changed bool, elapsed time.Duration)

	// CycleRejected is called when SetContent refuses a circular mutation.
	CycleRejected(v *Variable, path []*Variable)

	// ErrorValueProduced is called when a Variable's value changes to an
	// Error value.
	ErrorValueProduced(v *Variable, e value.Error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) UpdateObserved(*Variable, bool, time.Duration) {}
func (NopObserver) CycleRejected(*Variable, []*Variable)          {}
func (NopObserver) ErrorValueProduced(*Variable, value.Error)     {}

// Observers fans events out to several observers.
type Observers []Observer

func (os Observers) UpdateObserved(v *Variable, changed bool, elapsed time.Duration) {
	for _, o := range os {
		o.UpdateObserved(v, changed, elapsed)
	}
}

func (os Observers) CycleRejected(v *Variable, path []*Variable) {
	for _, o := range os {
		o.CycleRejected(v, path)
	}
}

func (os Observers) ErrorValueProduced(v *Variable, e value.Error) {
	for _, o := range os {
		o.ErrorValueProduced(v, e)
	}
}

// Engine holds the settings shared by a family of Variables: logging,
// tracing, observation and fan-out limits. Variables of different engines
// may reference each other.
type Engine struct {
	logger      *slog.Logger
	tracer      trace.Tracer
	observer    Observer
	maxParallel int
	maxDepth    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
// Default: slog.Default() with component=recalc.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer used for SetContent and Update spans.
// Default: the global OpenTelemetry provider's "recalc" tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithMaxParallelism caps the goroutines used to notify the listeners of one
// changed Variable. Zero or negative means one goroutine per listener.
func WithMaxParallelism(n int) Option {
	return func(e *Engine) {
		e.maxParallel = n
	}
}

// WithMaxPropagationDepth sets the wave depth guard.
// Default: DefaultMaxPropagationDepth.
func WithMaxPropagationDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   slog.Default().With("component", "recalc"),
		tracer:   otel.Tracer(defaultTracerName),
		observer: NopObserver{},
		maxDepth: DefaultMaxPropagationDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// defaultEngine backs the package-level constructors.
var defaultEngine = New()

// NewVariable creates a Variable bound to the default engine.
func NewVariable(name string) *Variable {
	return defaultEngine.NewVariable(name)
}

// NewVariable creates a Variable bound to e. Its value is Null until
// content is set.
func (e *Engine) NewVariable(name string) *Variable {
	v := &Variable{
		id:      nextID(),
		name:    name,
		engine:  e,
		content: Lit(value.Null),
		value:   value.Null,
	}
	return v
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// waveDepthKey carries the propagation depth through a wave.
type waveDepthKey struct{}

func waveDepth(ctx context.Context) int {
	d, _ := ctx.Value(waveDepthKey{}).(int)
	return d
}

// notify delivers a change of src to every listener and waits for all of
// them. Listeners run concurrently; a single listener runs inline.
func (e *Engine) notify(ctx context.Context, src *Variable, listeners []Listener) {
	if len(listeners) == 0 {
		return
	}
	ctx = context.WithValue(ctx, waveDepthKey{}, waveDepth(ctx)+1)

	if len(listeners) == 1 {
		listeners[0].SourceChanged(ctx, src)
		return
	}

	var g errgroup.Group
	if e.maxParallel > 0 {
		g.SetLimit(e.maxParallel)
	}
	for _, l := range listeners {
		l := l
		g.Go(func() error {
			l.SourceChanged(ctx, src)
			return nil
		})
	}
	_ = g.Wait()
}
