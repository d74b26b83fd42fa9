package state

import (
	"fmt"
	"sort"

	"github.com/reago-dev/reago/internal/diag"
)

// Lint statically checks a declaration against the binder collision rules
// without constructing a unit. It reproduces every diagnostic that binding
// would emit for name conflicts, reserved names and handler shapes, plus
// duplicate declarations the dynamic pass cannot see.
//
// Runtime-only findings (producer failures, validator rejections) are out
// of reach for a static pass and are not reported here.
func (d *Declaration) Lint() []diag.Diagnostic {
	var out []diag.Diagnostic
	warn := func(code, construct, message string) {
		out = append(out, diag.Diagnostic{
			Code:      code,
			Category:  diag.CategoryDeclaration,
			Unit:      d.Name,
			Construct: construct,
			Message:   message,
		})
	}

	inputs := make(map[string]struct{}, len(d.Inputs))
	for _, spec := range d.Inputs {
		if _, dup := inputs[spec.Name]; dup {
			warn(diag.CodeDuplicateName, `input "`+spec.Name+`"`,
				fmt.Sprintf("input %q is declared more than once", spec.Name))
		}
		inputs[spec.Name] = struct{}{}
		if isReservedAttribute(spec.Name) {
			warn(diag.CodeReservedInput, `input "`+spec.Name+`"`,
				fmt.Sprintf("%q is a reserved attribute and cannot be used as an input name", spec.Name))
		}
	}

	methods := make(map[string]struct{}, len(d.Methods))
	for _, spec := range d.Methods {
		if _, dup := methods[spec.Name]; dup {
			warn(diag.CodeDuplicateName, `method "`+spec.Name+`"`,
				fmt.Sprintf("method %q is declared more than once", spec.Name))
		}
		methods[spec.Name] = struct{}{}

		if spec.Fn != nil && !isMethodFunc(spec.Fn) {
			warn(diag.CodeMethodNotFunc, `method "`+spec.Name+`"`,
				fmt.Sprintf("method %q has type %T; expected func(*Unit, ...any) any", spec.Name, spec.Fn))
		}
		if _, clash := inputs[spec.Name]; clash {
			warn(diag.CodeMethodInputClash, `method "`+spec.Name+`"`,
				fmt.Sprintf("method %q is already declared as an input", spec.Name))
		}
		if isReservedName(spec.Name) {
			warn(diag.CodeMethodReserved, `method "`+spec.Name+`"`,
				fmt.Sprintf("method %q shadows a reserved instance member", spec.Name))
		}
	}

	fields := make(map[string]struct{})
	if d.Fields != nil && d.Fields.Values != nil {
		keys := make([]string, 0, len(d.Fields.Values))
		for k := range d.Fields.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fields[key] = struct{}{}
			if _, clash := methods[key]; clash {
				warn(diag.CodeFieldMethodClash, `field "`+key+`"`,
					fmt.Sprintf("local field %q is already declared as a method", key))
			}
			if _, clash := inputs[key]; clash {
				warn(diag.CodeFieldInputClash, `field "`+key+`"`,
					fmt.Sprintf("local field %q is already declared as an input; the input value is used", key))
			}
		}
	}

	derived := make(map[string]struct{}, len(d.Derived))
	for _, spec := range d.Derived {
		if _, dup := derived[spec.Name]; dup {
			warn(diag.CodeDuplicateName, `derived value "`+spec.Name+`"`,
				fmt.Sprintf("derived value %q is declared more than once", spec.Name))
		}
		derived[spec.Name] = struct{}{}

		if _, _, _, ok := spec.resolve(); !ok {
			warn(diag.CodeDerivedNoGetter, `derived value "`+spec.Name+`"`,
				fmt.Sprintf("derived value %q has no getter; it will read as nil", spec.Name))
		}
		if _, clash := fields[spec.Name]; clash {
			warn(diag.CodeDerivedFieldClash, `derived value "`+spec.Name+`"`,
				fmt.Sprintf("derived value %q is already defined as a local field", spec.Name))
		} else if _, clash := inputs[spec.Name]; clash {
			warn(diag.CodeDerivedInputClash, `derived value "`+spec.Name+`"`,
				fmt.Sprintf("derived value %q is already declared as an input", spec.Name))
		}
	}

	for _, spec := range d.Watches {
		handlers := []any{spec.Handler}
		if list, ok := spec.Handler.([]any); ok {
			handlers = list
		}
		for _, h := range handlers {
			if rec, ok := h.(WatchOptions); ok {
				h = rec.Handler
			}
			name, ok := h.(string)
			if !ok {
				continue
			}
			if _, found := methods[name]; !found {
				warn(diag.CodeWatchMethodMissing, "watch "+spec.Expr,
					fmt.Sprintf("watch handler %q is not a method of this unit", name))
			}
		}
	}

	return out
}

// isMethodFunc reports whether a declared method value has a callable
// method shape.
func isMethodFunc(fn any) bool {
	switch fn.(type) {
	case func(u *Unit, args ...any) any, MethodFunc:
		return true
	default:
		return false
	}
}
