package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/recalc/pkg/function"
	"github.com/vango-dev/recalc/pkg/recalc"
	"github.com/vango-dev/recalc/pkg/value"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestObserverCountsEngineEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(WithRegistry(reg))
	e := recalc.New(recalc.WithObserver(obs))
	ctx := context.Background()

	a := e.NewVariable("a")
	b := e.NewVariable("b")
	if err := a.SetContent(ctx, recalc.Lit(value.Int(1))); err != nil {
		t.Fatal(err)
	}
	if err := b.SetContent(ctx, recalc.Call(function.Div, recalc.Lit(value.Int(1)), recalc.Ref(a))); err != nil {
		t.Fatal(err)
	}
	if err := a.SetContent(ctx, recalc.Lit(value.Int(0))); err != nil {
		t.Fatal(err)
	}
	if err := a.SetContent(ctx, recalc.Lit(value.Int(0))); err != nil {
		t.Fatal(err)
	}
	if err := a.SetContent(ctx, recalc.Ref(b)); err == nil {
		t.Fatal("cycle accepted")
	}

	if got := counterValue(t, obs.updatesTotal.WithLabelValues("changed")); got != 4 {
		t.Errorf("updates_total(changed) = %v, want 4", got)
	}
	if got := counterValue(t, obs.updatesTotal.WithLabelValues("unchanged")); got != 1 {
		t.Errorf("updates_total(unchanged) = %v, want 1", got)
	}
	if got := histogramCount(t, obs.updateDuration); got != 5 {
		t.Errorf("update_duration_seconds count = %d, want 5", got)
	}
	if got := counterValue(t, obs.cycleRejections); got != 1 {
		t.Errorf("cycle_rejections_total = %v, want 1", got)
	}
	if got := histogramCount(t, obs.cycleLength); got != 1 {
		t.Errorf("cycle_length count = %d, want 1", got)
	}
	if got := counterValue(t, obs.errorValues.WithLabelValues(value.ErrArithmetic.String())); got != 1 {
		t.Errorf("error_values_total(arithmetic) = %v, want 1", got)
	}
}

func TestObserverNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(WithRegistry(reg), WithNamespace("sheet"), WithSubsystem("engine"),
		WithConstLabels(prometheus.Labels{"instance": "t"}), WithBuckets([]float64{0.1}))
	obs.UpdateObserved(nil, true, 0)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "sheet_engine_updates_total" {
			found = true
			if l := f.GetMetric()[0].GetLabel(); len(l) != 2 {
				t.Errorf("labels = %v, want instance and result", l)
			}
		}
	}
	if !found {
		t.Fatal("sheet_engine_updates_total not registered")
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(WithRegistry(reg))
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	New(WithRegistry(reg))
}
