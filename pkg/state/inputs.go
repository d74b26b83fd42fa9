package state

import (
	"fmt"

	"github.com/reago-dev/reago/internal/diag"
	"github.com/reago-dev/reago/pkg/reactive"
)

// bindInputs converts the declared input fields into tracked properties on
// the props store and forwards them onto the instance surface.
//
// For non-root units, nested instrumentation is suspended for the whole
// pass: input values are already observed by the owning parent and
// re-observation would create duplicate tracking graphs. Instrumentation
// is restored unconditionally, whichever branch ran.
func (u *Unit) bindInputs() {
	u.props = reactive.NewStore()

	if u.IsRoot() {
		u.bindInputFields()
	} else {
		reactive.WithoutObserving(u.bindInputFields)
	}
}

func (u *Unit) bindInputFields() {
	for _, spec := range u.decl.Inputs {
		name := spec.Name
		u.propKeys = append(u.propKeys, name)

		value := u.validateInput(spec)

		if isReservedAttribute(name) {
			u.report(diag.Diagnostic{
				Code:      diag.CodeReservedInput,
				Category:  diag.CategoryDeclaration,
				Construct: `input "` + name + `"`,
				Message:   fmt.Sprintf("%q is a reserved attribute and cannot be used as an input name", name),
			})
		}

		// Direct writes to a non-root unit's inputs are almost always a
		// design error: the parent will overwrite them on its next update.
		// Flag them, never block them.
		var hook func(newVal any)
		if !u.IsRoot() {
			hookName := name
			hook = func(newVal any) {
				if u.updatingInputs {
					return
				}
				u.report(diag.Diagnostic{
					Code:      diag.CodeInputWrite,
					Category:  diag.CategoryUsage,
					Construct: `input "` + hookName + `"`,
					Message: fmt.Sprintf("avoid mutating input %q directly: the value will be overwritten "+
						"whenever the parent updates; use a local field or derived value instead", hookName),
				})
			}
		}
		u.props.Define(name, value, hook)

		// Skip forwarding only when a per-instance accessor or bound
		// method already holds the name. The declaration's template table
		// does not count: inputs take precedence over derived values, so
		// the instance accessor must shadow the shared derived accessor.
		if !u.boundOnInstance(name) {
			u.forward(storageProps, name)
		}
	}
}

// validateInput computes the effective value for a declared input field,
// applying defaults, required-ness, kind checks and the custom validator.
// Every failure is diagnostic-only; the supplied value (or default) is
// kept so the unit stays usable.
func (u *Unit) validateInput(spec InputSpec) any {
	value, suppliedOK := u.supplied[spec.Name]

	if !suppliedOK {
		if spec.Required {
			u.report(diag.Diagnostic{
				Code:      diag.CodeRequiredInput,
				Category:  diag.CategoryDeclaration,
				Construct: `input "` + spec.Name + `"`,
				Message:   fmt.Sprintf("required input %q was not supplied", spec.Name),
			})
		}
		if spec.DefaultFunc != nil {
			// Default producers read whatever they like; those reads must
			// not be attributed to an unrelated active watcher.
			reactive.Untracked(func() {
				value = spec.DefaultFunc(u)
			})
		} else {
			value = spec.Default
		}
	} else if !matchesKind(value, spec.Type) {
		u.report(diag.Diagnostic{
			Code:      diag.CodeInputType,
			Category:  diag.CategoryDeclaration,
			Construct: `input "` + spec.Name + `"`,
			Message: fmt.Sprintf("input %q expects kind %s, got %T",
				spec.Name, spec.Type, value),
		})
	}

	if spec.Validator != nil && !spec.Validator(value) {
		u.report(diag.Diagnostic{
			Code:      diag.CodeInputValidator,
			Category:  diag.CategoryDeclaration,
			Construct: `input "` + spec.Name + `"`,
			Message:   fmt.Sprintf("input %q failed its validator", spec.Name),
		})
	}
	return value
}

// UpdateInputs writes a fresh batch of input values through the normal
// update flow, the way an owning parent pushes new values down. Values are
// validated against the declared specs, writes are grouped into a single
// notification phase, and the direct-write interception stays silent.
// Names not declared as inputs are ignored.
func (u *Unit) UpdateInputs(values map[string]any) {
	u.updatingInputs = true
	defer func() { u.updatingInputs = false }()

	reactive.Batch(func() {
		for _, name := range u.propKeys {
			value, ok := values[name]
			if !ok {
				continue
			}
			spec, _ := u.decl.inputSpec(name)
			if !matchesKind(value, spec.Type) {
				u.report(diag.Diagnostic{
					Code:      diag.CodeInputType,
					Category:  diag.CategoryDeclaration,
					Construct: `input "` + name + `"`,
					Message: fmt.Sprintf("input %q expects kind %s, got %T",
						name, spec.Type, value),
				})
			}
			if spec.Validator != nil && !spec.Validator(value) {
				u.report(diag.Diagnostic{
					Code:      diag.CodeInputValidator,
					Category:  diag.CategoryDeclaration,
					Construct: `input "` + name + `"`,
					Message:   fmt.Sprintf("input %q failed its validator", name),
				})
			}
			u.props.Set(name, value)
		}
	})
}
