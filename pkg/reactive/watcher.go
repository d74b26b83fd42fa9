package reactive

import (
	"fmt"
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
)

// WatcherOptions configures a Watcher at creation time.
type WatcherOptions struct {
	// Lazy makes the watcher a memoizing subscriber: it never runs its
	// callback, it only flips the dirty flag when a dependency changes and
	// recomputes on the next Evaluate. Used for derived values.
	Lazy bool

	// Deep traverses the evaluated value so nested tracked properties are
	// collected as dependencies too.
	Deep bool

	// Sync fires the callback immediately on change, bypassing any open
	// batch.
	Sync bool

	// User marks the watcher as user-originated. Panics raised by the
	// getter or callback are routed to OnError instead of propagating.
	User bool

	// Expression is a label for diagnostics (the watched path or "fn").
	Expression string

	// OnError receives failures from user getters and callbacks.
	OnError func(err error, context string)
}

// Watcher evaluates a getter, records every tracked property read during
// the evaluation, and reacts when any of them changes.
//
// Non-lazy watchers run their callback with (newValue, oldValue) on change.
// Lazy watchers only invalidate: callers check Dirty and call Evaluate.
type Watcher struct {
	id     uint64
	getter func() any
	cb     func(newVal, oldVal any)
	scope  *Scope

	// deps are the deps collected by the last evaluation; newDeps are the
	// ones collected by the evaluation in progress. The ID sets mirror the
	// slices for O(1) dedup, and are swapped wholesale after each run.
	deps      []*Dep
	newDeps   []*Dep
	depIDs    mapset.Set[uint64]
	newDepIDs mapset.Set[uint64]
	depMu     sync.Mutex

	// value is the result of the last evaluation.
	value any

	// dirty is meaningful for lazy watchers only: true means the cached
	// value may be stale and the next Evaluate must recompute.
	dirty atomic.Bool

	// active is false after Teardown. Teardown is idempotent.
	active atomic.Bool

	lazy       bool
	deep       bool
	sync       bool
	user       bool
	expression string
	onError    func(err error, context string)
}

// NewWatcher creates a watcher for getter. If scope is non-nil the watcher
// is registered with it and torn down when the scope is disposed.
//
// Non-lazy watchers evaluate immediately so their dependency set and
// current value are established before NewWatcher returns. Lazy watchers
// start dirty and unevaluated.
func NewWatcher(scope *Scope, getter func() any, cb func(newVal, oldVal any), opts WatcherOptions) *Watcher {
	w := &Watcher{
		id:         nextID(),
		getter:     getter,
		cb:         cb,
		scope:      scope,
		depIDs:     mapset.NewThreadUnsafeSet[uint64](),
		newDepIDs:  mapset.NewThreadUnsafeSet[uint64](),
		lazy:       opts.Lazy,
		deep:       opts.Deep,
		sync:       opts.Sync,
		user:       opts.User,
		expression: opts.Expression,
		onError:    opts.OnError,
	}
	w.active.Store(true)

	if scope != nil {
		scope.register(w)
	}

	statActiveWatchers.Add(1)

	if w.lazy {
		w.dirty.Store(true)
	} else {
		w.value = w.get()
	}
	return w
}

// ID returns the unique identifier for this watcher.
func (w *Watcher) ID() uint64 {
	return w.id
}

// Expression returns the diagnostic label for this watcher.
func (w *Watcher) Expression() string {
	return w.expression
}

// Value returns the cached result of the last evaluation without
// re-evaluating or subscribing.
func (w *Watcher) Value() any {
	return w.value
}

// Dirty reports whether a lazy watcher needs re-evaluation.
func (w *Watcher) Dirty() bool {
	return w.dirty.Load()
}

// get evaluates the getter with this watcher as the tracking target.
// The target stack and the dependency sets are restored/swapped on every
// exit path, including panics raised by the getter.
func (w *Watcher) get() any {
	pushTarget(w)
	defer func() {
		popTarget()
		w.cleanupDeps()
	}()

	var value any
	if w.user {
		func() {
			defer func() {
				if r := recover(); r != nil {
					w.reportError(r, fmt.Sprintf("getter for watcher %q", w.expression))
				}
			}()
			value = w.getter()
		}()
	} else {
		value = w.getter()
	}

	if w.deep {
		traverse(value)
	}
	return value
}

// addDep records a dep read during the current evaluation and subscribes
// this watcher to it unless the previous evaluation already did.
func (w *Watcher) addDep(d *Dep) {
	w.depMu.Lock()
	defer w.depMu.Unlock()

	id := d.ID()
	if w.newDepIDs.Contains(id) {
		return
	}
	w.newDepIDs.Add(id)
	w.newDeps = append(w.newDeps, d)
	if !w.depIDs.Contains(id) {
		d.addSub(w)
	}
}

// cleanupDeps unsubscribes from deps the latest evaluation no longer read
// and promotes the newly collected set to current.
func (w *Watcher) cleanupDeps() {
	w.depMu.Lock()
	defer w.depMu.Unlock()

	for _, d := range w.deps {
		if !w.newDepIDs.Contains(d.ID()) {
			d.removeSub(w)
		}
	}

	w.deps, w.newDeps = w.newDeps, w.deps[:0]
	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	w.newDepIDs.Clear()
}

// Depend re-registers every dep of this watcher on the current tracking
// target. This is how a derived value's reads become dependencies of the
// outer watcher that read the derived value.
func (w *Watcher) Depend() {
	w.depMu.Lock()
	deps := make([]*Dep, len(w.deps))
	copy(deps, w.deps)
	w.depMu.Unlock()

	for _, d := range deps {
		d.Depend()
	}
}

// update reacts to a dependency change. Lazy watchers only flip the dirty
// flag; sync watchers run immediately; everything else goes through the
// batch queue when one is open.
func (w *Watcher) update() {
	switch {
	case w.lazy:
		w.dirty.Store(true)
	case w.sync:
		w.Run()
	default:
		if batchActive() {
			queuePendingRun(w)
		} else {
			w.Run()
		}
	}
}

// Run re-evaluates the watcher and fires the callback when warranted.
// The callback fires when the value changed, when the value is a container
// (its contents may have mutated in place), or for deep watchers.
func (w *Watcher) Run() {
	if !w.active.Load() {
		return
	}

	statRuns.Add(1)

	value := w.get()
	if !valueEquals(value, w.value) || isContainerValue(value) || w.deep {
		oldValue := w.value
		w.value = value
		w.invokeCallback(value, oldValue)
	}
}

// invokeCallback calls the callback, shielding user callbacks so a panic
// in one observer cannot break the notifying write.
func (w *Watcher) invokeCallback(newVal, oldVal any) {
	if w.cb == nil {
		return
	}
	if w.user {
		defer func() {
			if r := recover(); r != nil {
				w.reportError(r, fmt.Sprintf("callback for watcher %q", w.expression))
			}
		}()
	}
	w.cb(newVal, oldVal)
}

// Evaluate computes the value of a lazy watcher and clears the dirty flag.
// Only called by the cached-accessor path for derived values.
func (w *Watcher) Evaluate() {
	statEvaluations.Add(1)
	w.value = w.get()
	w.dirty.Store(false)
}

// Teardown removes this watcher from every dep it subscribed to, making it
// permanently inert. Safe to call more than once.
func (w *Watcher) Teardown() {
	if !w.active.Swap(false) {
		return
	}

	w.depMu.Lock()
	deps := w.deps
	w.deps = nil
	w.newDeps = nil
	w.depMu.Unlock()

	for _, d := range deps {
		d.removeSub(w)
	}

	if w.scope != nil {
		w.scope.remove(w)
	}

	statTeardowns.Add(1)
	statActiveWatchers.Add(-1)
}

// reportError routes a recovered panic to the error sink, or repanics when
// no sink is configured.
func (w *Watcher) reportError(r any, context string) {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	if w.onError != nil {
		w.onError(err, context)
		return
	}
	panic(r)
}
