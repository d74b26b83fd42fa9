package state

import (
	"sync/atomic"

	"github.com/reago-dev/reago/internal/diag"
	"github.com/reago-dev/reago/pkg/reactive"
)

// Storage object keys for the property forwarder.
const (
	storageProps = "$props"
	storageData  = "$data"
)

// accessor is one per-instance named accessor.
type accessor struct {
	get func() any
	set func(value any)
}

// Unit is a stateful unit: the owner of all bound state.
//
// State lives in two storage objects, the props store for inputs and the
// data store for local fields, and is exposed through instance-level
// accessors installed by the binders. Derived values are backed by lazy
// watchers held per unit; every watcher the unit creates is owned by its
// scope and torn down on Destroy.
type Unit struct {
	decl   *Declaration
	name   string
	parent *Unit
	scope  *reactive.Scope

	props *reactive.Store
	data  *reactive.Store

	// propKeys caches declared input names so bulk operations iterate a
	// fixed list instead of re-enumerating the declaration.
	propKeys []string

	// derived maps derived-value names to their lazy watchers.
	// Empty in no-caching execution mode.
	derived map[string]*reactive.Watcher

	// accessors is the per-instance accessor table; the declaration's
	// template table is consulted when a name is not found here.
	accessors map[string]accessor

	// methods holds bound method closures.
	methods map[string]Method

	supplied map[string]any

	reporter  diag.Reporter
	collected *diag.CollectReporter

	// updatingInputs silences the non-root input write interception while
	// a parent pushes fresh values through UpdateInputs.
	updatingInputs bool

	destroyed atomic.Bool
}

// Option configures unit construction.
type Option func(*Unit)

// WithName labels the unit in diagnostics.
func WithName(name string) Option {
	return func(u *Unit) { u.name = name }
}

// WithParent marks the unit as owned by parent. Non-root units suspend
// nested instrumentation while binding inputs and flag direct input
// writes.
func WithParent(parent *Unit) Option {
	return func(u *Unit) { u.parent = parent }
}

// WithInputs supplies the actual input values handed in by the parent
// scope, validated against the declared input specs.
func WithInputs(values map[string]any) Option {
	return func(u *Unit) { u.supplied = values }
}

// WithReporter routes diagnostics to a custom reporter in addition to the
// unit's own collected list.
func WithReporter(r diag.Reporter) Option {
	return func(u *Unit) { u.reporter = r }
}

// NewUnit binds a declaration into a live unit.
//
// Binders run in a fixed order (inputs, methods, local fields, derived
// values, watches) because later binders detect collisions against
// earlier-bound namespaces. Binding is synchronous and completes for every
// declared entry regardless of individual failures.
func NewUnit(decl *Declaration, opts ...Option) *Unit {
	u := &Unit{
		decl:      decl,
		name:      decl.Name,
		accessors: make(map[string]accessor),
		methods:   make(map[string]Method),
		derived:   make(map[string]*reactive.Watcher),
		collected: &diag.CollectReporter{},
	}
	for _, opt := range opts {
		opt(u)
	}

	var parentScope *reactive.Scope
	if u.parent != nil {
		parentScope = u.parent.scope
	}
	u.scope = reactive.NewScope(parentScope)

	if u.reporter == nil {
		u.reporter = diag.NewSlogReporter(nil)
	}

	decl.compile()

	u.bindInputs()
	u.bindMethods()
	u.bindFields()
	u.bindDerived()
	u.bindWatches()

	return u
}

// Name returns the unit's diagnostic label.
func (u *Unit) Name() string {
	return u.name
}

// Parent returns the owning unit, or nil for a root unit.
func (u *Unit) Parent() *Unit {
	return u.parent
}

// IsRoot reports whether the unit is the root of its ownership hierarchy.
func (u *Unit) IsRoot() bool {
	return u.parent == nil
}

// Scope returns the unit's lifecycle scope.
func (u *Unit) Scope() *reactive.Scope {
	return u.scope
}

// Declaration returns the template this unit was bound from.
func (u *Unit) Declaration() *Declaration {
	return u.decl
}

// storage resolves a storage-object key to the backing store.
func (u *Unit) storage(key string) *reactive.Store {
	if key == storageProps {
		return u.props
	}
	return u.data
}

// boundOnInstance reports whether name is held by this instance itself:
// a per-instance accessor or a bound method. Template-level accessors are
// excluded; a binder consults this to decide whether forwarding would
// clobber something the instance already owns.
func (u *Unit) boundOnInstance(name string) bool {
	if _, ok := u.accessors[name]; ok {
		return true
	}
	_, ok := u.methods[name]
	return ok
}

// definedOnInstance reports whether name resolves on the instance surface:
// a per-instance accessor, a template-level accessor, or a bound method.
func (u *Unit) definedOnInstance(name string) bool {
	if _, ok := u.accessors[name]; ok {
		return true
	}
	if _, ok := u.decl.template[name]; ok {
		return true
	}
	_, ok := u.methods[name]
	return ok
}

// Get reads a named member through the two-tier accessor lookup:
// per-instance accessors first, then the declaration's template table,
// then bound methods. Reads register the current tracking target as a
// dependent. Unknown names return nil.
func (u *Unit) Get(name string) any {
	switch name {
	case storageData:
		return u.data
	case storageProps:
		return u.props
	}
	if a, ok := u.accessors[name]; ok {
		return a.get()
	}
	if ta, ok := u.decl.template[name]; ok {
		return ta.get(u)
	}
	if m, ok := u.methods[name]; ok {
		return m
	}
	return nil
}

// Set writes a named member. Writes to the storage views are rejected:
// a storage object is never replaced wholesale, only its individual
// tracked properties may be written. Unknown names become new tracked
// properties on the data store.
func (u *Unit) Set(name string, value any) {
	switch name {
	case storageData, storageProps:
		u.report(diag.Diagnostic{
			Code:      diag.CodeStorageReplace,
			Category:  diag.CategoryUsage,
			Construct: name,
			Message:   "replacing " + name + " is not permitted; write individual fields instead",
		})
		return
	}
	if a, ok := u.accessors[name]; ok {
		a.set(value)
		return
	}
	if ta, ok := u.decl.template[name]; ok {
		ta.set(u, value)
		return
	}
	u.data.Set(name, value)
	u.forward(storageData, name)
}

// Has reports whether name resolves on the instance surface.
func (u *Unit) Has(name string) bool {
	return u.definedOnInstance(name)
}

// Method returns the bound method with the given name.
func (u *Unit) Method(name string) (Method, bool) {
	m, ok := u.methods[name]
	return m, ok
}

// Call invokes a bound method. Unknown names return nil.
func (u *Unit) Call(name string, args ...any) any {
	if m, ok := u.methods[name]; ok {
		return m(args...)
	}
	return nil
}

// Int reads a member as int, accepting the common numeric widths.
func (u *Unit) Int(name string) int {
	switch v := u.Get(name).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Float64 reads a member as float64.
func (u *Unit) Float64(name string) float64 {
	switch v := u.Get(name).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// String reads a member as string.
func (u *Unit) String(name string) string {
	s, _ := u.Get(name).(string)
	return s
}

// Bool reads a member as bool.
func (u *Unit) Bool(name string) bool {
	b, _ := u.Get(name).(bool)
	return b
}

// DataStore returns the data storage object (read-only view).
func (u *Unit) DataStore() *reactive.Store {
	return u.data
}

// PropsStore returns the props storage object (read-only view).
func (u *Unit) PropsStore() *reactive.Store {
	return u.props
}

// DataSnapshot returns a detached plain-map copy of the data store.
func (u *Unit) DataSnapshot() map[string]any {
	return u.data.Snapshot()
}

// PropsSnapshot returns a detached plain-map copy of the props store.
func (u *Unit) PropsSnapshot() map[string]any {
	return u.props.Snapshot()
}

// PropKeys returns the declared input names in declaration order.
func (u *Unit) PropKeys() []string {
	keys := make([]string, len(u.propKeys))
	copy(keys, u.propKeys)
	return keys
}

// DerivedWatcher returns the lazy watcher backing a derived value, or nil
// in no-caching mode.
func (u *Unit) DerivedWatcher(name string) *reactive.Watcher {
	return u.derived[name]
}

// Diagnostics returns every diagnostic emitted for this unit so far.
func (u *Unit) Diagnostics() []diag.Diagnostic {
	return u.collected.All()
}

// Destroyed reports whether Destroy has been called.
func (u *Unit) Destroyed() bool {
	return u.destroyed.Load()
}

// Destroy tears down every subscription the unit created, including the
// lazy watchers behind derived values and all user watches. Idempotent.
func (u *Unit) Destroy() {
	if u.destroyed.Swap(true) {
		return
	}
	u.scope.Dispose()
}

// report records a diagnostic on the unit and forwards it to the
// configured reporter.
func (u *Unit) report(d diag.Diagnostic) {
	if d.Unit == "" {
		d.Unit = u.name
	}
	u.collected.Report(d)
	u.reporter.Report(d)
}
