package reactive

import "sort"

// Observe converts a plain map into a store of tracked properties,
// recursing into nested maps. Values that are already stores are returned
// as-is, making the operation idempotent.
//
// Returns nil when observation is suspended (see WithoutObserving) or the
// value is nil. Slices are left untracked: element mutation interception
// is not part of this substrate.
//
// Keys are defined in sorted order so store enumeration is deterministic
// regardless of map iteration order.
//
// asRoot marks the map as a unit's root data object; root stores count as
// state containers for diagnostics but tracking behaves identically.
func Observe(m map[string]any, asRoot bool) *Store {
	if m == nil || !isObserving() {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	store := NewStore()
	store.root = asRoot
	for _, k := range keys {
		store.Define(k, m[k], nil)
	}
	return store
}

// ObserveStore is the idempotent entry point for values that may already
// be instrumented.
func ObserveStore(value any, asRoot bool) *Store {
	switch v := value.(type) {
	case *Store:
		return v
	case map[string]any:
		return Observe(v, asRoot)
	default:
		return nil
	}
}
