package reactive

import (
	"sync"
	"sync/atomic"
)

// Scope owns watchers and cleanup functions for one stateful unit.
// Disposing a scope tears down everything it owns, in reverse creation
// order, so a unit's subscriptions never outlive the unit.
//
// Scopes form a hierarchy mirroring unit ownership: disposing a parent
// disposes all children first.
type Scope struct {
	id uint64

	parent *Scope

	children   []*Scope
	childrenMu sync.Mutex

	watchers   []*Watcher
	watchersMu sync.Mutex

	cleanups   []func()
	cleanupsMu sync.Mutex

	disposed atomic.Bool
}

// NewScope creates a scope under parent. A nil parent creates a root scope.
func NewScope(parent *Scope) *Scope {
	s := &Scope{
		id:     nextID(),
		parent: parent,
	}
	if parent != nil {
		parent.addChild(s)
	}
	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsDisposed reports whether Dispose has been called.
func (s *Scope) IsDisposed() bool {
	return s.disposed.Load()
}

func (s *Scope) addChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()
	s.children = append(s.children, child)
}

func (s *Scope) removeChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()

	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// register adds a watcher to this scope's bookkeeping.
func (s *Scope) register(w *Watcher) {
	if s.disposed.Load() {
		return
	}
	s.watchersMu.Lock()
	defer s.watchersMu.Unlock()
	s.watchers = append(s.watchers, w)
}

// remove drops a watcher from bookkeeping after an explicit teardown.
// Skipped during disposal: the dispose loop owns the slice then.
func (s *Scope) remove(w *Watcher) {
	if s.disposed.Load() {
		return
	}
	s.watchersMu.Lock()
	defer s.watchersMu.Unlock()

	for i, existing := range s.watchers {
		if existing == w {
			s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
			return
		}
	}
}

// OnCleanup registers a function to run when the scope is disposed.
// If the scope is already disposed, fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed.Load() {
		fn()
		return
	}
	s.cleanupsMu.Lock()
	defer s.cleanupsMu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// WatcherCount returns the number of live watchers owned by this scope.
func (s *Scope) WatcherCount() int {
	s.watchersMu.Lock()
	defer s.watchersMu.Unlock()
	return len(s.watchers)
}

// Dispose tears down all child scopes, watchers and cleanups owned by this
// scope, in reverse creation order. Idempotent.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	s.childrenMu.Lock()
	children := make([]*Scope, len(s.children))
	copy(children, s.children)
	s.children = nil
	s.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	s.watchersMu.Lock()
	watchers := s.watchers
	s.watchers = nil
	s.watchersMu.Unlock()

	for i := len(watchers) - 1; i >= 0; i-- {
		watchers[i].Teardown()
	}

	s.cleanupsMu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
