package inspect

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollectorGather(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Register("cart", newTestUnit(t)); err != nil {
		t.Fatal(err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(NewCollector(registry, WithNamespace("testns")))

	families, err := promReg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	got := make(map[string]bool, len(families))
	for _, mf := range families {
		got[mf.GetName()] = true
	}
	for _, want := range []string{
		"testns_watcher_runs_total",
		"testns_evaluations_total",
		"testns_notifications_total",
		"testns_teardowns_total",
		"testns_active_watchers",
		"testns_inspected_units",
	} {
		if !got[want] {
			t.Errorf("missing metric %s in %v", want, got)
		}
	}
}

func TestCollectorCountsRegisteredUnits(t *testing.T) {
	registry := NewRegistry()
	release, err := registry.Register("cart", newTestUnit(t))
	if err != nil {
		t.Fatal(err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(NewCollector(registry, WithNamespace("countns")))

	value := func() float64 {
		families, err := promReg.Gather()
		if err != nil {
			t.Fatalf("gather: %v", err)
		}
		for _, mf := range families {
			if mf.GetName() == "countns_inspected_units" {
				return mf.GetMetric()[0].GetGauge().GetValue()
			}
		}
		t.Fatal("gauge not found")
		return 0
	}

	if got := value(); got != 1 {
		t.Errorf("expected 1 inspected unit, got %v", got)
	}
	release()
	if got := value(); got != 0 {
		t.Errorf("expected 0 after release, got %v", got)
	}
}
