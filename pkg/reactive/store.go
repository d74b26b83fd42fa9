package reactive

import "sync"

// Store is a storage object: an ordered set of tracked properties.
// Reading a key through Get registers the current tracking target as a
// dependent; writing a changed value through Set notifies all dependents.
//
// Stores hold the actual state for a unit; the state package forwards
// instance-level accessors onto them.
type Store struct {
	id uint64

	// root marks the store as a unit's root data object.
	root bool

	mu     sync.RWMutex
	keys   []string
	values map[string]any
	deps   map[string]*Dep
	hooks  map[string]func(newVal any)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		id:     nextID(),
		values: make(map[string]any),
		deps:   make(map[string]*Dep),
		hooks:  make(map[string]func(any)),
	}
}

// ID returns the unique identifier for this store.
func (s *Store) ID() uint64 {
	return s.id
}

// Root reports whether this store is a unit's root data object.
func (s *Store) Root() bool {
	return s.root
}

// Define creates a tracked property. Nested map values are instrumented
// unless observation is currently suspended. onWrite, if non-nil, is
// invoked before every subsequent Set of the key that changes the value;
// it may flag the write but cannot block it.
func (s *Store) Define(key string, value any, onWrite func(newVal any)) {
	value = observeValue(value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
		s.deps[key] = NewDep()
	}
	s.values[key] = value
	if onWrite != nil {
		s.hooks[key] = onWrite
	}
}

// Get returns the value for key and registers the current tracking target
// as a dependent of it. Returns nil for undefined keys.
func (s *Store) Get(key string) any {
	s.mu.RLock()
	value, ok := s.values[key]
	dep := s.deps[key]
	s.mu.RUnlock()

	if !ok {
		return nil
	}
	dep.Depend()
	return value
}

// Peek returns the value for key without registering a dependency.
func (s *Store) Peek(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set writes a value. Keys not yet defined become tracked properties.
// Dependents are notified only when the value actually changed.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	old, exists := s.values[key]
	if !exists {
		s.mu.Unlock()
		s.Define(key, value, nil)
		return
	}

	changed := !valueEquals(old, value)
	var dep *Dep
	var hook func(any)
	if changed {
		s.values[key] = observeValueLocked(value)
		dep = s.deps[key]
		hook = s.hooks[key]
	}
	s.mu.Unlock()

	// Unchanged writes are invisible: no hook, no notification.
	if hook != nil {
		hook(value)
	}
	if changed {
		dep.Notify()
	}
}

// Has reports whether key is a defined tracked property.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Keys returns the property names in definition order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Snapshot returns a plain-map copy of the store, converting nested stores
// back to plain maps. The copy is detached: mutating it has no effect on
// tracked state.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.keys))
	for _, k := range s.keys {
		if child, ok := s.values[k].(*Store); ok {
			out[k] = child.Snapshot()
		} else {
			out[k] = s.values[k]
		}
	}
	return out
}

// observeValue instruments a nested plain map as a child store when
// observation is enabled. Non-map values pass through unchanged.
func observeValue(value any) any {
	if m, ok := value.(map[string]any); ok {
		if child := Observe(m, false); child != nil {
			return child
		}
	}
	return value
}

// observeValueLocked is observeValue for callers already holding s.mu.
// Observe never touches the parent store, so this is the same operation
// under a clarifying name.
func observeValueLocked(value any) any {
	return observeValue(value)
}
