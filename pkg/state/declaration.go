package state

import (
	"sync"

	"github.com/reago-dev/reago/internal/diag"
	"github.com/reago-dev/reago/pkg/reactive"
)

// Getter computes a value from a unit.
type Getter func(u *Unit) any

// Setter writes a value through a unit.
type Setter func(u *Unit, value any)

// Handler is a change-observation callback.
type Handler func(u *Unit, newVal, oldVal any)

// Producer computes a unit's initial local fields.
// Invoked once during binding with dependency collection disabled.
type Producer func(u *Unit) map[string]any

// Method is a method bound to its unit: callers may detach the reference
// and still observe correct binding.
type Method func(args ...any) any

// MethodFunc is the declared form of a method before binding.
type MethodFunc func(u *Unit, args ...any) any

// Kind restricts the values an input accepts.
type Kind int

const (
	KindAny Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindMap
	KindSlice
	KindFunc
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindMap:
		return "map"
	case KindSlice:
		return "slice"
	case KindFunc:
		return "func"
	default:
		return "any"
	}
}

// matchesKind reports whether a value satisfies a declared kind.
// nil satisfies every kind; absence is the required-ness check's job.
func matchesKind(v any, k Kind) bool {
	if k == KindAny || v == nil {
		return true
	}
	switch k {
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindInt:
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
		return false
	case KindFloat:
		switch v.(type) {
		case float32, float64:
			return true
		}
		return false
	case KindString:
		_, ok := v.(string)
		return ok
	case KindMap:
		switch v.(type) {
		case map[string]any, *reactive.Store:
			return true
		}
		return false
	case KindSlice:
		_, ok := v.([]any)
		return ok
	case KindFunc:
		switch v.(type) {
		case func() any, Getter, Method:
			return true
		}
		return false
	}
	return false
}

// InputSpec declares one input field: a value handed in by the owning
// parent scope, validated and defaulted at bind time.
type InputSpec struct {
	Name string

	// Type restricts accepted values; KindAny accepts everything.
	Type Kind

	// Default is used when no value is supplied. For container defaults
	// prefer DefaultFunc so each unit gets a fresh value.
	Default any

	// DefaultFunc takes precedence over Default when set.
	DefaultFunc func(u *Unit) any

	// Required reports a diagnostic when no value is supplied.
	Required bool

	// Validator is a custom acceptance check; rejection is diagnostic-only.
	Validator func(value any) bool
}

// FieldSource declares the unit's local fields: either a literal value map
// or a producer invoked at bind time. Exactly one of the two is set.
type FieldSource struct {
	Values   map[string]any
	Producer Producer
}

// Fields declares local fields from a literal map.
func Fields(values map[string]any) *FieldSource {
	return &FieldSource{Values: values}
}

// FieldsFunc declares local fields computed by a producer.
func FieldsFunc(p Producer) *FieldSource {
	return &FieldSource{Producer: p}
}

// DerivedDef is the record form of a derived-value declaration.
type DerivedDef struct {
	Get Getter
	Set Setter

	// Cache defaults to true; set to false to re-invoke the getter on
	// every read instead of memoizing.
	Cache *bool
}

// DerivedSpec declares one derived value. Exactly one of Fn (function
// form) or Def (record form) is set; resolution happens once at binder
// entry.
type DerivedSpec struct {
	Name string
	Fn   Getter
	Def  *DerivedDef
}

// Derived declares a derived value in function form.
func Derived(name string, fn Getter) DerivedSpec {
	return DerivedSpec{Name: name, Fn: fn}
}

// DerivedWith declares a derived value in record form.
func DerivedWith(name string, def DerivedDef) DerivedSpec {
	d := def
	return DerivedSpec{Name: name, Def: &d}
}

// resolve returns the spec's getter, setter and caching mode.
// ok is false when no getter was declared.
func (s DerivedSpec) resolve() (getter Getter, setter Setter, cached bool, ok bool) {
	switch {
	case s.Fn != nil:
		return s.Fn, nil, true, true
	case s.Def != nil:
		cached = s.Def.Cache == nil || *s.Def.Cache
		return s.Def.Get, s.Def.Set, cached, s.Def.Get != nil
	default:
		return nil, nil, true, false
	}
}

// MethodSpec declares one method. Fn is typed any so a mistyped
// declaration surfaces as a diagnostic instead of a compile error in
// generated or manifest-driven declarations; the binder accepts
// MethodFunc-shaped functions.
type MethodSpec struct {
	Name string
	Fn   any
}

// WatchOptions configures a change observation.
type WatchOptions struct {
	// Handler carries the embedded callback when the options record is
	// used as a declared watch handler.
	Handler any

	// Immediate invokes the callback synchronously at creation with the
	// current value.
	Immediate bool

	// Deep observes nested state, not just the top-level value.
	Deep bool

	// Sync fires the callback immediately on change, bypassing batches.
	Sync bool
}

// WatchSpec declares one change observation. Handler is one of: a Handler
// (or compatible func), a method name string, a WatchOptions record with
// an embedded handler, or a []any list of those.
type WatchSpec struct {
	Expr    string
	Handler any
}

// Declaration is the template for a unit: the ordered, read-only field
// set a unit is bound from. A Declaration may be shared by many units;
// derived-value accessors are compiled once per declaration and reused.
type Declaration struct {
	// Name labels diagnostics emitted for units of this declaration.
	Name string

	Inputs  []InputSpec
	Fields  *FieldSource
	Derived []DerivedSpec
	Methods []MethodSpec
	Watches []WatchSpec

	compileOnce sync.Once
	template    map[string]templateAccessor
	inputIndex  map[string]int
	methodIndex map[string]int
}

// templateAccessor is a declaration-level accessor shared by all units of
// the declaration, checked before per-instance accessor creation.
type templateAccessor struct {
	get func(u *Unit) any
	set func(u *Unit, value any)
}

// compile builds the shared accessor table and name indexes.
// Runs once per declaration regardless of how many units are bound.
func (d *Declaration) compile() {
	d.compileOnce.Do(func() {
		d.inputIndex = make(map[string]int, len(d.Inputs))
		for i, spec := range d.Inputs {
			d.inputIndex[spec.Name] = i
		}

		d.methodIndex = make(map[string]int, len(d.Methods))
		for i, spec := range d.Methods {
			d.methodIndex[spec.Name] = i
		}

		d.template = make(map[string]templateAccessor, len(d.Derived))
		for _, spec := range d.Derived {
			d.template[spec.Name] = compileDerivedAccessor(spec)
		}
	})
}

// hasInput reports whether name is a declared input field.
func (d *Declaration) hasInput(name string) bool {
	_, ok := d.inputIndex[name]
	return ok
}

// hasMethod reports whether name is a declared method.
func (d *Declaration) hasMethod(name string) bool {
	_, ok := d.methodIndex[name]
	return ok
}

// inputSpec returns the declared spec for an input field.
func (d *Declaration) inputSpec(name string) (InputSpec, bool) {
	i, ok := d.inputIndex[name]
	if !ok {
		return InputSpec{}, false
	}
	return d.Inputs[i], ok
}

// compileDerivedAccessor builds the shared cached accessor for a derived
// value. The getter resolves once here; the cached/uncached split is
// decided per read because server-mode units carry no lazy watcher.
func compileDerivedAccessor(spec DerivedSpec) templateAccessor {
	getter, setter, _, ok := spec.resolve()
	if !ok {
		getter = func(*Unit) any { return nil }
	}
	name := spec.Name

	acc := templateAccessor{
		get: func(u *Unit) any {
			if w := u.derived[name]; w != nil {
				if w.Dirty() {
					w.Evaluate()
				}
				if reactive.HasTarget() {
					w.Depend()
				}
				return w.Value()
			}
			// No lazy watcher: no-caching execution mode or cache:false.
			return getter(u)
		},
	}

	if setter != nil {
		acc.set = func(u *Unit, value any) {
			setter(u, value)
		}
	} else {
		acc.set = func(u *Unit, value any) {
			u.report(diag.Diagnostic{
				Code:      diag.CodeDerivedReadOnly,
				Category:  diag.CategoryUsage,
				Construct: `derived value "` + name + `"`,
				Message:   `derived value "` + name + `" has no setter and is read-only`,
			})
		}
	}
	return acc
}
