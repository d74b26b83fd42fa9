package state

import (
	"fmt"
	"sort"

	"github.com/reago-dev/reago/internal/diag"
	"github.com/reago-dev/reago/pkg/reactive"
)

// bindFields resolves the unit's local-field source, forwards the
// resulting keys onto the instance surface, and hands the whole object to
// the deep-instrumentation pass as root-level state.
//
// Inputs always win over local fields: a colliding key is reported and
// never forwarded, so the instance keeps reading the input's value.
func (u *Unit) bindFields() {
	raw := u.resolveFieldSource()

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]

		if u.decl.hasMethod(key) {
			u.report(diag.Diagnostic{
				Code:      diag.CodeFieldMethodClash,
				Category:  diag.CategoryDeclaration,
				Construct: `field "` + key + `"`,
				Message:   fmt.Sprintf("local field %q is already declared as a method", key),
			})
		}
		if u.decl.hasInput(key) {
			u.report(diag.Diagnostic{
				Code:      diag.CodeFieldInputClash,
				Category:  diag.CategoryDeclaration,
				Construct: `field "` + key + `"`,
				Message: fmt.Sprintf("local field %q is already declared as an input; "+
					"the input value is used", key),
			})
			continue
		}
		if isReservedName(key) {
			continue
		}
		u.forward(storageData, key)
	}

	u.data = reactive.Observe(raw, true)
	if u.data == nil {
		u.data = reactive.NewStore()
	}
}

// resolveFieldSource evaluates the declared local-field source into a
// plain map, isolating producer failures to this binder.
func (u *Unit) resolveFieldSource() map[string]any {
	src := u.decl.Fields
	if src == nil {
		return map[string]any{}
	}

	var raw map[string]any
	var failed bool
	switch {
	case src.Producer != nil:
		// The producer may read arbitrary state while computing initial
		// values; those reads must not register on an unrelated active
		// watcher.
		reactive.Untracked(func() {
			defer func() {
				if r := recover(); r != nil {
					failed = true
					u.report(diag.Diagnostic{
						Code:      diag.CodeFieldProducer,
						Category:  diag.CategoryRuntime,
						Construct: "field producer",
						Message:   "local-field producer failed",
						Wrapped:   recoveredError(r),
					})
				}
			}()
			raw = src.Producer(u)
		})
	default:
		raw = src.Values
	}

	if failed {
		return map[string]any{}
	}
	if raw == nil {
		u.report(diag.Diagnostic{
			Code:      diag.CodeFieldNotMap,
			Category:  diag.CategoryDeclaration,
			Construct: "field source",
			Message:   "local-field source produced no object; using an empty field set",
		})
		return map[string]any{}
	}
	return raw
}

// recoveredError normalizes a recovered panic value into an error.
func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
