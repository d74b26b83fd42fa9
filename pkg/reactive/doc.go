// Package reactive provides the dependency-tracking substrate that the
// state package builds on.
//
// The model is pull-based with push invalidation. A Dep is the subscriber
// registry for one tracked property. A Watcher evaluates a getter while
// registered as the current tracking target; every Dep read during the
// evaluation records the watcher as a dependent. When a tracked property
// changes, its Dep notifies every dependent watcher.
//
// # Core Types
//
// Store is a tracked key/value container (a storage object):
//
//	s := reactive.NewStore()
//	s.Define("count", 0, nil)
//	v := s.Get("count") // subscribes the current target, if any
//	s.Set("count", 5)   // notifies dependents on change
//
// Watcher evaluates an expression and re-runs when its dependencies change:
//
//	w := reactive.NewWatcher(scope, getter, callback, reactive.WatcherOptions{})
//
// Lazy watchers back memoized derived values: they never run eagerly, they
// only flip a dirty flag and recompute on the next Evaluate.
//
// # Tracking Context
//
// The current tracking target is held in a per-goroutine context. At most
// one watcher collects dependencies at any instant; nested evaluations are
// supported through a target stack. All scoped operations (WithTarget,
// Untracked, WithoutObserving, Batch) restore prior state on every exit
// path, including panics.
package reactive
