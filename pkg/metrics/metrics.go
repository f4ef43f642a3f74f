// Package metrics exports recalc engine activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/recalc/pkg/recalc"
	"github.com/vango-dev/recalc/pkg/value"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "recalc").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for update duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the update duration buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "recalc",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer implements recalc.Observer on top of Prometheus collectors.
//
// Metrics collected:
//   - recalc_updates_total: Counter of updates by result (changed, unchanged)
//   - recalc_update_duration_seconds: Histogram of update duration, wave included
//   - recalc_cycle_rejections_total: Counter of rejected circular mutations
//   - recalc_cycle_length: Histogram of rejected cycle lengths
//   - recalc_error_values_total: Counter of error values produced, by kind
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	engine := recalc.New(recalc.WithObserver(metrics.New(metrics.WithRegistry(reg))))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
type Observer struct {
	updatesTotal    *prometheus.CounterVec
	updateDuration  prometheus.Histogram
	cycleRejections prometheus.Counter
	cycleLength     prometheus.Histogram
	errorValues     *prometheus.CounterVec
}

var _ recalc.Observer = (*Observer)(nil)

// New registers the engine metrics and returns an observer feeding them.
// It panics if the metrics are already registered with the registry.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Observer{
		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of variable updates",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		updateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "update_duration_seconds",
			Help:        "Variable update duration in seconds, including downstream propagation",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		cycleRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cycle_rejections_total",
			Help:        "Total number of content changes rejected as circular",
			ConstLabels: config.ConstLabels,
		}),

		cycleLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cycle_length",
			Help:        "Number of variables in rejected cycles",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 3, 5, 10, 25, 100},
		}),

		errorValues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "error_values_total",
			Help:        "Total number of error values produced, by error kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}
}

// UpdateObserved implements recalc.Observer.
func (o *Observer) UpdateObserved(_ *recalc.Variable, changed bool, elapsed time.Duration) {
	result := "unchanged"
	if changed {
		result = "changed"
	}
	o.updatesTotal.WithLabelValues(result).Inc()
	o.updateDuration.Observe(elapsed.Seconds())
}

// CycleRejected implements recalc.Observer.
func (o *Observer) CycleRejected(_ *recalc.Variable, path []*recalc.Variable) {
	o.cycleRejections.Inc()
	o.cycleLength.Observe(float64(len(path)))
}

// ErrorValueProduced implements recalc.Observer.
func (o *Observer) ErrorValueProduced(_ *recalc.Variable, e value.Error) {
	o.errorValues.WithLabelValues(e.ErrorKind().String()).Inc()
}
