package reactive

import "reflect"

// valueEquals provides type-appropriate equality for tracked values.
// Uses == for common scalar types and reflect.DeepEqual for the rest.
// Stores compare by identity: a store equals only itself.
func valueEquals(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int8:
		bv, ok := b.(int8)
		return ok && av == bv
	case int16:
		bv, ok := b.(int16)
		return ok && av == bv
	case int32:
		bv, ok := b.(int32)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case uint:
		bv, ok := b.(uint)
		return ok && av == bv
	case uint8:
		bv, ok := b.(uint8)
		return ok && av == bv
	case uint16:
		bv, ok := b.(uint16)
		return ok && av == bv
	case uint32:
		bv, ok := b.(uint32)
		return ok && av == bv
	case uint64:
		bv, ok := b.(uint64)
		return ok && av == bv
	case float32:
		bv, ok := b.(float32)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case *Store:
		bv, ok := b.(*Store)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}

// isContainerValue reports whether a value can mutate in place without its
// identity changing, which forces watcher callbacks to fire even when the
// top-level comparison says "unchanged".
func isContainerValue(v any) bool {
	switch v.(type) {
	case *Store, map[string]any, []any:
		return true
	default:
		return false
	}
}
