package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for a goroutine.
// Each goroutine has its own context so that concurrent unit construction
// and watcher evaluation never share a target stack.
type trackingContext struct {
	// targets is the stack of watchers currently collecting dependencies.
	// The top entry receives dependency registrations from Dep.Depend.
	// A nil top entry disables collection (see Untracked).
	targets []*Watcher

	// observing controls whether Observe and Store.Set instrument nested
	// values. Suspended while binding input values owned by a parent unit.
	observing bool

	// batchDepth tracks nested Batch() calls.
	// When > 0, watcher updates queue instead of running immediately.
	batchDepth int

	// pendingRuns accumulates watchers to run when the batch completes.
	// Deduplicated by ID before running.
	pendingRuns []*Watcher
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// getGoroutineID returns a unique identifier for the current goroutine,
// parsed from the runtime stack header. Implementation detail; not exposed.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> ".
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current goroutine,
// creating one if needed.
func getTrackingContext() *trackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{observing: true}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// currentTarget returns the watcher currently collecting dependencies.
// Returns nil if no tracking is active or collection is suspended.
func currentTarget() *Watcher {
	ctx := getTrackingContext()
	if len(ctx.targets) == 0 {
		return nil
	}
	return ctx.targets[len(ctx.targets)-1]
}

// HasTarget reports whether a watcher is currently collecting dependencies.
func HasTarget() bool {
	return currentTarget() != nil
}

// pushTarget makes w the current tracking target. A nil w suspends
// collection for the duration of the frame.
func pushTarget(w *Watcher) {
	ctx := getTrackingContext()
	ctx.targets = append(ctx.targets, w)
}

// popTarget removes the top tracking target, restoring the previous one.
func popTarget() {
	ctx := getTrackingContext()
	if n := len(ctx.targets); n > 0 {
		ctx.targets[n-1] = nil
		ctx.targets = ctx.targets[:n-1]
	}
}

// WithTarget runs fn with w as the current tracking target.
// The previous target is restored even if fn panics.
func WithTarget(w *Watcher, fn func()) {
	pushTarget(w)
	defer popTarget()
	fn()
}

// Untracked runs fn with dependency collection suspended. Reads performed
// inside fn are not attributed to any active watcher.
//
// Example:
//
//	reactive.Untracked(func() {
//	    v := store.Get("count") // no subscription created
//	    _ = v
//	})
func Untracked(fn func()) {
	pushTarget(nil)
	defer popTarget()
	fn()
}

// isObserving reports whether nested-value instrumentation is enabled
// for the current goroutine.
func isObserving() bool {
	return getTrackingContext().observing
}

// setObserving toggles nested-value instrumentation and returns the
// previous setting so callers can restore it.
func setObserving(on bool) bool {
	ctx := getTrackingContext()
	old := ctx.observing
	ctx.observing = on
	return old
}

// WithoutObserving runs fn with nested-value instrumentation disabled.
// The previous setting is restored unconditionally, including on panic.
// Used while binding input values already instrumented by a parent unit,
// so re-observation does not create duplicate tracking graphs.
func WithoutObserving(fn func()) {
	old := setObserving(false)
	defer setObserving(old)
	fn()
}
