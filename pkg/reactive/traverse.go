package reactive

import mapset "github.com/deckarep/golang-set/v2"

// traverse walks a value depth-first, reading every tracked property it
// contains so they register on the current tracking target. Used by deep
// watchers to depend on nested state, not just the top-level reference.
func traverse(value any) {
	seen := mapset.NewThreadUnsafeSet[uint64]()
	traverseValue(value, seen)
}

func traverseValue(value any, seen mapset.Set[uint64]) {
	switch v := value.(type) {
	case *Store:
		// Guard against cycles through shared child stores.
		if seen.Contains(v.ID()) {
			return
		}
		seen.Add(v.ID())
		for _, k := range v.Keys() {
			traverseValue(v.Get(k), seen)
		}
	case map[string]any:
		for _, e := range v {
			traverseValue(e, seen)
		}
	case []any:
		for _, e := range v {
			traverseValue(e, seen)
		}
	}
}
