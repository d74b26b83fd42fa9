package state

import (
	"fmt"

	"github.com/reago-dev/reago/internal/diag"
)

// bindMethods installs each declared method as a closure bound to the
// unit, so callers may detach the method reference from its owner and
// still observe correct binding.
//
// A method colliding with an input is reported and not installed: the
// input's tracked accessor keeps the name. Shadowing a reserved instance
// member is reported but allowed.
func (u *Unit) bindMethods() {
	for _, spec := range u.decl.Methods {
		name := spec.Name

		fn, callable := spec.Fn.(func(u *Unit, args ...any) any)
		if !callable {
			if f, ok := spec.Fn.(MethodFunc); ok {
				fn, callable = f, true
			}
		}
		if !callable {
			u.report(diag.Diagnostic{
				Code:      diag.CodeMethodNotFunc,
				Category:  diag.CategoryDeclaration,
				Construct: `method "` + name + `"`,
				Message: fmt.Sprintf("method %q has type %T; expected func(*Unit, ...any) any",
					name, spec.Fn),
			})
		}

		if u.decl.hasInput(name) {
			u.report(diag.Diagnostic{
				Code:      diag.CodeMethodInputClash,
				Category:  diag.CategoryDeclaration,
				Construct: `method "` + name + `"`,
				Message:   fmt.Sprintf("method %q is already declared as an input", name),
			})
			continue
		}

		if isReservedName(name) {
			u.report(diag.Diagnostic{
				Code:      diag.CodeMethodReserved,
				Category:  diag.CategoryDeclaration,
				Construct: `method "` + name + `"`,
				Message:   fmt.Sprintf("method %q shadows a reserved instance member", name),
			})
		}

		if !callable {
			u.methods[name] = func(args ...any) any { return nil }
			continue
		}
		bound := fn
		u.methods[name] = func(args ...any) any { return bound(u, args...) }
	}
}
