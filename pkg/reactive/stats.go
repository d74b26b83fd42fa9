package reactive

import "sync/atomic"

// Graph-wide counters. Cheap atomics so the hot paths stay lock-free;
// consumed by the inspector's metrics collector.
var (
	statRuns           atomic.Int64
	statEvaluations    atomic.Int64
	statNotifies       atomic.Int64
	statTeardowns      atomic.Int64
	statActiveWatchers atomic.Int64
)

// StatsSnapshot is a point-in-time view of the dependency graph counters.
type StatsSnapshot struct {
	// WatcherRuns counts non-lazy watcher executions.
	WatcherRuns int64

	// Evaluations counts lazy (derived-value) recomputations.
	Evaluations int64

	// Notifications counts dep notify fan-outs.
	Notifications int64

	// Teardowns counts watchers torn down.
	Teardowns int64

	// ActiveWatchers is the number of currently live watchers.
	ActiveWatchers int64
}

// Stats returns the current graph counters.
func Stats() StatsSnapshot {
	return StatsSnapshot{
		WatcherRuns:    statRuns.Load(),
		Evaluations:    statEvaluations.Load(),
		Notifications:  statNotifies.Load(),
		Teardowns:      statTeardowns.Load(),
		ActiveWatchers: statActiveWatchers.Load(),
	}
}
