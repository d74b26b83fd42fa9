package reactive

import (
	"sort"
	"sync"
)

// Dep is the subscriber registry for a single tracked property.
// Watchers register through Depend while evaluating; Notify marks every
// registered watcher for re-run or invalidation.
type Dep struct {
	id uint64

	// subs are the watchers subscribed to this dep.
	subs  []*Watcher
	subMu sync.Mutex
}

// NewDep creates an empty dependency registry.
func NewDep() *Dep {
	return &Dep{id: nextID()}
}

// ID returns the unique identifier for this dep.
func (d *Dep) ID() uint64 {
	return d.id
}

// Depend registers the current tracking target as a dependent of this dep.
// No-op when no target is active.
func (d *Dep) Depend() {
	if w := currentTarget(); w != nil {
		w.addDep(d)
	}
}

// addSub adds a watcher to this dep's subscribers.
// Called by Watcher.addDep; the watcher's dep-ID set already deduplicates.
func (d *Dep) addSub(w *Watcher) {
	d.subMu.Lock()
	d.subs = append(d.subs, w)
	d.subMu.Unlock()
}

// removeSub removes a watcher from this dep's subscribers.
func (d *Dep) removeSub(w *Watcher) {
	d.subMu.Lock()
	defer d.subMu.Unlock()

	for i, sub := range d.subs {
		if sub == w {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Notify marks every subscribed watcher as updated.
// Subscribers are copied before notification so callbacks may subscribe or
// tear down without deadlocking, and sorted by ID so watchers fire in
// creation order.
func (d *Dep) Notify() {
	d.subMu.Lock()
	subs := make([]*Watcher, len(d.subs))
	copy(subs, d.subs)
	d.subMu.Unlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })

	statNotifies.Add(1)
	for _, sub := range subs {
		sub.update()
	}
}
