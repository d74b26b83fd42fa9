package inspect

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/reago-dev/reago/pkg/reactive"
	"github.com/reago-dev/reago/pkg/state"
)

// Registry tracks named units so external tooling can inspect them.
// Names are unique; registering a taken name fails rather than silently
// replacing a live unit.
type Registry struct {
	mu    sync.RWMutex
	units map[string]*state.Unit
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[string]*state.Unit)}
}

// Register adds a unit under a name. The returned release function
// removes the entry and may be called more than once.
func (r *Registry) Register(name string, u *state.Unit) (func(), error) {
	if u == nil {
		return nil, fmt.Errorf("inspect: register %q: nil unit", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.units[name]; taken {
		return nil, fmt.Errorf("inspect: unit name %q already registered", name)
	}
	r.units[name] = u

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.units, name)
			r.mu.Unlock()
		})
	}, nil
}

// Lookup returns the unit registered under a name.
func (r *Registry) Lookup(name string) (*state.Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[name]
	return u, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.units))
	for name := range r.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}

// UnitSnapshot is the externally visible view of one unit.
type UnitSnapshot struct {
	Name        string         `json:"name"`
	Declaration string         `json:"declaration,omitempty"`
	Destroyed   bool           `json:"destroyed"`
	Inputs      map[string]any `json:"inputs"`
	Fields      map[string]any `json:"fields"`
	Derived     map[string]any `json:"derived"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
	Digest      string         `json:"digest"`
	CapturedAt  time.Time      `json:"captured_at"`
}

// Snapshot captures a unit's current state as a detached view.
// Derived values are read without subscribing, so taking a snapshot
// never joins the dependency graph.
func Snapshot(name string, u *state.Unit) UnitSnapshot {
	snap := UnitSnapshot{
		Name:       name,
		Destroyed:  u.Destroyed(),
		Inputs:     u.PropsSnapshot(),
		Fields:     u.DataSnapshot(),
		Derived:    make(map[string]any),
		CapturedAt: time.Now(),
	}
	if decl := u.Declaration(); decl != nil {
		snap.Declaration = decl.Name
		reactive.Untracked(func() {
			for _, spec := range decl.Derived {
				snap.Derived[spec.Name] = u.Get(spec.Name)
			}
		})
	}
	for _, d := range u.Diagnostics() {
		snap.Diagnostics = append(snap.Diagnostics, d.String())
	}
	snap.Digest = digest(snap)
	return snap
}

// digest hashes the state-bearing parts of a snapshot so consumers can
// cheaply detect no-op updates. Capture time is excluded.
func digest(s UnitSnapshot) string {
	h := xxhash.New()
	enc := json.NewEncoder(h)
	enc.Encode(s.Inputs)
	enc.Encode(s.Fields)
	enc.Encode(s.Derived)
	enc.Encode(s.Destroyed)
	return fmt.Sprintf("%016x", h.Sum64())
}
