package diag

import "fmt"

// Category classifies a diagnostic.
type Category string

const (
	// CategoryDeclaration covers misdeclared fields: name collisions,
	// wrong value kinds, missing getters.
	CategoryDeclaration Category = "declaration"

	// CategoryRuntime covers failures in user code invoked during binding
	// or observation: field producers, watch callbacks.
	CategoryRuntime Category = "runtime"

	// CategoryUsage covers contract violations at the instance surface:
	// read-only writes, storage replacement attempts.
	CategoryUsage Category = "usage"
)

// Diagnostic codes. Stable identifiers; messages may change, codes do not.
const (
	CodeDuplicateName      = "E100" // name declared twice within one section
	CodeReservedInput      = "E101" // input name collides with a reserved attribute
	CodeInputWrite         = "E102" // direct write to a parent-owned input
	CodeRequiredInput      = "E103" // required input missing
	CodeInputType          = "E104" // supplied input value has the wrong kind
	CodeInputValidator     = "E105" // custom input validator rejected the value
	CodeFieldProducer      = "E110" // local-field producer panicked
	CodeFieldNotMap        = "E111" // local-field source is not a plain map
	CodeFieldMethodClash   = "E112" // local field shadows a method
	CodeFieldInputClash    = "E113" // local field shadows an input
	CodeDerivedNoGetter    = "E120" // derived value declared without a getter
	CodeDerivedFieldClash  = "E121" // derived value already defined as a local field
	CodeDerivedInputClash  = "E122" // derived value already defined as an input
	CodeDerivedReadOnly    = "E123" // write to a derived value with no setter
	CodeMethodNotFunc      = "E130" // method declaration is not callable
	CodeMethodInputClash   = "E131" // method collides with an input
	CodeMethodReserved     = "E132" // method shadows a reserved instance member
	CodeWatchHandler       = "E140" // watch handler has an unsupported shape
	CodeWatchMethodMissing = "E141" // watch handler names an unknown method
	CodeWatchCallback      = "E142" // watch callback failed
	CodeStorageReplace     = "E150" // attempt to replace a whole storage object
)

// Diagnostic is one structured finding from binding or runtime observation.
type Diagnostic struct {
	// Code is the stable identifier, e.g. "E113".
	Code string

	// Category is the diagnostic class.
	Category Category

	// Unit names the stateful unit the diagnostic belongs to.
	Unit string

	// Construct names the declared entry at fault, e.g. `data field "a"`.
	Construct string

	// Message is the human-readable description.
	Message string

	// Wrapped is the underlying error for runtime failures, if any.
	Wrapped error
}

// Error implements the error interface so diagnostics can travel through
// error-typed plumbing.
func (d Diagnostic) Error() string {
	return d.String()
}

// String formats the diagnostic the way binder warnings are logged.
func (d Diagnostic) String() string {
	prefix := fmt.Sprintf("[REAGO %s]", d.Code)
	if d.Unit != "" {
		prefix += " unit " + d.Unit + ":"
	}
	if d.Wrapped != nil {
		return fmt.Sprintf("%s %s: %v", prefix, d.Message, d.Wrapped)
	}
	return prefix + " " + d.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (d Diagnostic) Unwrap() error {
	return d.Wrapped
}
