package state

import (
	"fmt"

	"github.com/reago-dev/reago/internal/diag"
	"github.com/reago-dev/reago/pkg/reactive"
)

// bindDerived creates the lazy watcher behind each declared derived value
// and verifies the name against the earlier-bound namespaces.
//
// The cached accessor itself lives in the declaration's template table,
// compiled once and shared by every unit of the declaration; this pass
// only supplies the per-unit watcher and the collision diagnostics. When a
// name is shadowed by a local field or input, the existing accessor is
// kept and the conflict is reported; the declaration stays usable.
func (u *Unit) bindDerived() {
	noCache := reactive.IsServerMode()

	for _, spec := range u.decl.Derived {
		name := spec.Name
		getter, _, cached, ok := spec.resolve()
		if !ok {
			u.report(diag.Diagnostic{
				Code:      diag.CodeDerivedNoGetter,
				Category:  diag.CategoryDeclaration,
				Construct: `derived value "` + name + `"`,
				Message:   fmt.Sprintf("derived value %q has no getter; it will read as nil", name),
			})
		}

		// In no-caching execution mode the accessor re-invokes the getter
		// on every read, so no watcher is created at all.
		if !noCache && cached && ok {
			g := getter
			u.derived[name] = reactive.NewWatcher(
				u.scope,
				func() any { return g(u) },
				nil,
				reactive.WatcherOptions{Lazy: true, Expression: name},
			)
		}

		if u.data.Has(name) {
			u.report(diag.Diagnostic{
				Code:      diag.CodeDerivedFieldClash,
				Category:  diag.CategoryDeclaration,
				Construct: `derived value "` + name + `"`,
				Message:   fmt.Sprintf("derived value %q is already defined as a local field", name),
			})
		} else if u.decl.hasInput(name) {
			u.report(diag.Diagnostic{
				Code:      diag.CodeDerivedInputClash,
				Category:  diag.CategoryDeclaration,
				Construct: `derived value "` + name + `"`,
				Message:   fmt.Sprintf("derived value %q is already declared as an input", name),
			})
		}
	}
}
