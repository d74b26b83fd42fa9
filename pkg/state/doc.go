// Package state binds a declaration of inputs, local fields, derived
// values, methods and watches into a reactive stateful unit.
//
// A Declaration is the template: an ordered description of the unit's
// shape. NewUnit runs the binders in a fixed order (inputs, methods,
// local fields, derived values, watches) so later binders can detect
// collisions against earlier-bound namespaces. Binding never fails hard:
// misdeclared entries produce coded diagnostics and a defined fallback.
//
//	decl := &state.Declaration{
//	    Inputs: []state.InputSpec{{Name: "count", Type: state.KindInt, Default: 0}},
//	    Derived: []state.DerivedSpec{state.Derived("double", func(u *state.Unit) any {
//	        return u.Int("count") * 2
//	    })},
//	}
//	u := state.NewUnit(decl, state.WithInputs(map[string]any{"count": 2}))
//	u.Int("double") // 4, memoized until count changes
//
// Derived values are backed by lazy watchers: reading one evaluates it at
// most once per invalidation, and while an outer watcher is collecting
// dependencies the derived value re-registers its own dependencies on it,
// so the outer watcher reacts to the underlying state directly.
//
// Watch subscribes a callback to an arbitrary read expression (a dotted
// path or a getter function) and returns an idempotent teardown function.
// Destroying the unit tears down every subscription it created.
package state
