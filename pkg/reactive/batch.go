package reactive

import mapset "github.com/deckarep/golang-set/v2"

// Batch groups multiple tracked writes into a single notification phase.
// Watcher runs triggered inside the batch are queued, deduplicated by
// watcher ID, and executed once when the outermost batch completes.
//
// Lazy watchers are unaffected: invalidation is a flag flip and needs no
// batching. Sync watchers bypass the queue by design.
//
// Batches can be nested; the queue drains only when the outermost batch
// ends, and it drains even if fn panics.
//
// Example:
//
//	reactive.Batch(func() {
//	    store.Set("first", "Ada")
//	    store.Set("last", "Lovelace")
//	})
//	// A watcher reading both fields runs once, not twice.
func Batch(fn func()) {
	ctx := getTrackingContext()
	ctx.batchDepth++

	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth == 0 {
			drainPendingRuns(ctx)
		}
	}()

	fn()
}

// batchActive reports whether a batch is open on the current goroutine.
func batchActive() bool {
	return getTrackingContext().batchDepth > 0
}

// queuePendingRun defers a watcher run until the current batch completes.
func queuePendingRun(w *Watcher) {
	ctx := getTrackingContext()
	ctx.pendingRuns = append(ctx.pendingRuns, w)
}

// drainPendingRuns runs queued watchers, deduplicated by ID in queue order.
// Runs may themselves write tracked values; those notifications execute
// immediately since no batch is open anymore.
func drainPendingRuns(ctx *trackingContext) {
	runs := ctx.pendingRuns
	ctx.pendingRuns = nil
	if len(runs) == 0 {
		return
	}

	seen := mapset.NewThreadUnsafeSet[uint64]()
	for _, w := range runs {
		if seen.Contains(w.ID()) {
			continue
		}
		seen.Add(w.ID())
		w.Run()
	}
}
