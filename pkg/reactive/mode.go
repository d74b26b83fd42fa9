package reactive

import "sync/atomic"

// serverMode selects the no-caching derived-value path: in a render-free
// server evaluation context a unit is built, read once and discarded, so
// memoizing watchers would only add overhead.
var serverMode atomic.Bool

// SetServerMode toggles server execution mode for the whole process.
// Intended to be set once at startup.
func SetServerMode(on bool) {
	serverMode.Store(on)
}

// IsServerMode reports whether server execution mode is active.
func IsServerMode() bool {
	return serverMode.Load()
}
