package inspect

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/reago-dev/reago/pkg/reactive"
)

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reago").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels
}

// MetricsOption configures the Prometheus collector.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// defaultMetricsConfig returns the default collector configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reago",
	}
}

// Collector exposes the dependency-graph counters as Prometheus metrics.
// Counters are read from the graph on every scrape, so the collector has
// no recording hooks to wire; registering it is enough.
type Collector struct {
	registry *Registry

	watcherRuns    *prometheus.Desc
	evaluations    *prometheus.Desc
	notifications  *prometheus.Desc
	teardowns      *prometheus.Desc
	activeWatchers *prometheus.Desc
	inspectedUnits *prometheus.Desc
}

// NewCollector creates a collector over the graph counters and, when a
// registry is given, the inspected-unit count.
func NewCollector(registry *Registry, opts ...MetricsOption) *Collector {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	name := func(n string) string {
		return prometheus.BuildFQName(config.Namespace, config.Subsystem, n)
	}

	return &Collector{
		registry: registry,
		watcherRuns: prometheus.NewDesc(
			name("watcher_runs_total"),
			"Total number of non-lazy watcher executions",
			nil, config.ConstLabels),
		evaluations: prometheus.NewDesc(
			name("evaluations_total"),
			"Total number of lazy derived-value recomputations",
			nil, config.ConstLabels),
		notifications: prometheus.NewDesc(
			name("notifications_total"),
			"Total number of dependency notification fan-outs",
			nil, config.ConstLabels),
		teardowns: prometheus.NewDesc(
			name("teardowns_total"),
			"Total number of watchers torn down",
			nil, config.ConstLabels),
		activeWatchers: prometheus.NewDesc(
			name("active_watchers"),
			"Number of currently live watchers",
			nil, config.ConstLabels),
		inspectedUnits: prometheus.NewDesc(
			name("inspected_units"),
			"Number of units registered for inspection",
			nil, config.ConstLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.watcherRuns
	ch <- c.evaluations
	ch <- c.notifications
	ch <- c.teardowns
	ch <- c.activeWatchers
	ch <- c.inspectedUnits
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := reactive.Stats()

	ch <- prometheus.MustNewConstMetric(c.watcherRuns,
		prometheus.CounterValue, float64(stats.WatcherRuns))
	ch <- prometheus.MustNewConstMetric(c.evaluations,
		prometheus.CounterValue, float64(stats.Evaluations))
	ch <- prometheus.MustNewConstMetric(c.notifications,
		prometheus.CounterValue, float64(stats.Notifications))
	ch <- prometheus.MustNewConstMetric(c.teardowns,
		prometheus.CounterValue, float64(stats.Teardowns))
	ch <- prometheus.MustNewConstMetric(c.activeWatchers,
		prometheus.GaugeValue, float64(stats.ActiveWatchers))

	units := 0
	if c.registry != nil {
		units = c.registry.Len()
	}
	ch <- prometheus.MustNewConstMetric(c.inspectedUnits,
		prometheus.GaugeValue, float64(units))
}
