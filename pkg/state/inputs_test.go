package state

import (
	"testing"

	"github.com/reago-dev/reago/internal/diag"
	"github.com/reago-dev/reago/pkg/reactive"
)

func TestInputDefaultAndSupplied(t *testing.T) {
	decl := &Declaration{
		Inputs: []InputSpec{
			{Name: "count", Type: KindInt, Default: 0},
			{Name: "label", Type: KindString, Default: "untitled"},
		},
	}

	u := quietUnit(t, decl, WithInputs(map[string]any{"count": 7}))

	if got := u.Int("count"); got != 7 {
		t.Errorf("supplied input: expected 7, got %d", got)
	}
	if got := u.String("label"); got != "untitled" {
		t.Errorf("defaulted input: expected %q, got %q", "untitled", got)
	}
}

func TestInputDefaultFunc(t *testing.T) {
	decl := &Declaration{
		Inputs: []InputSpec{
			{Name: "tags", DefaultFunc: func(u *Unit) any {
				return map[string]any{"fresh": true}
			}},
		},
	}

	a := quietUnit(t, decl)
	b := quietUnit(t, decl)

	sa := a.PropsSnapshot()["tags"].(map[string]any)
	if sa["fresh"] != true {
		t.Errorf("expected default factory value, got %v", sa)
	}

	// Each instance gets its own value from the factory.
	if nested, ok := a.PropsStore().Peek("tags").(*reactive.Store); ok {
		nested.Set("fresh", false)
	}
	sb := b.PropsSnapshot()["tags"].(map[string]any)
	if sb["fresh"] != true {
		t.Error("default factory value must not be shared across units")
	}
}

func TestInputWriteTriggersDependents(t *testing.T) {
	decl := &Declaration{
		Inputs: []InputSpec{{Name: "count", Type: KindInt, Default: 0}},
	}
	u := quietUnit(t, decl)

	var seen []any
	u.Watch("count", func(u *Unit, newVal, oldVal any) {
		seen = append(seen, newVal)
	}, nil)

	u.Set("count", 5)

	if got := u.PropsStore().Peek("count"); got != 5 {
		t.Errorf("write did not reach props storage: %v", got)
	}
	if len(seen) != 1 || seen[0] != 5 {
		t.Errorf("dependent not notified, seen=%v", seen)
	}
}

func TestRequiredInputMissing(t *testing.T) {
	decl := &Declaration{
		Inputs: []InputSpec{{Name: "id", Type: KindString, Required: true}},
	}
	u := quietUnit(t, decl)

	if countCode(u, diag.CodeRequiredInput) != 1 {
		t.Errorf("expected exactly one required-input diagnostic, got %v", u.Diagnostics())
	}
	// Binding continues; the field exists with its zero default.
	if !u.Has("id") {
		t.Error("field must still be bound after a required-input diagnostic")
	}
}

func TestInputKindMismatch(t *testing.T) {
	decl := &Declaration{
		Inputs: []InputSpec{{Name: "count", Type: KindInt}},
	}
	u := quietUnit(t, decl, WithInputs(map[string]any{"count": "not a number"}))

	if countCode(u, diag.CodeInputType) != 1 {
		t.Errorf("expected one kind diagnostic, got %v", u.Diagnostics())
	}
	// Diagnostic only: the supplied value is kept.
	if got := u.Get("count"); got != "not a number" {
		t.Errorf("supplied value must be kept, got %v", got)
	}
}

func TestInputValidatorRejection(t *testing.T) {
	decl := &Declaration{
		Inputs: []InputSpec{{
			Name: "percent",
			Type: KindInt,
			Validator: func(v any) bool {
				n, ok := v.(int)
				return ok && n >= 0 && n <= 100
			},
		}},
	}
	u := quietUnit(t, decl, WithInputs(map[string]any{"percent": 250}))

	if countCode(u, diag.CodeInputValidator) != 1 {
		t.Errorf("expected one validator diagnostic, got %v", u.Diagnostics())
	}
	if got := u.Int("percent"); got != 250 {
		t.Errorf("validator rejection must not block binding, got %d", got)
	}
}

func TestReservedAttributeName(t *testing.T) {
	decl := &Declaration{
		Inputs: []InputSpec{{Name: "key", Default: "k"}},
	}
	u := quietUnit(t, decl)

	if countCode(u, diag.CodeReservedInput) != 1 {
		t.Errorf("expected reserved-attribute diagnostic, got %v", u.Diagnostics())
	}
	// Never fatal: the input binds regardless.
	if got := u.String("key"); got != "k" {
		t.Errorf("reserved input still binds, got %q", got)
	}
}

func TestNonRootInputWriteFlagged(t *testing.T) {
	parentDecl := &Declaration{}
	parent := quietUnit(t, parentDecl)

	decl := &Declaration{
		Inputs: []InputSpec{{Name: "count", Type: KindInt, Default: 1}},
	}
	child := quietUnit(t, decl, WithParent(parent))

	child.Set("count", 2)

	if countCode(child, diag.CodeInputWrite) != 1 {
		t.Errorf("expected direct-write diagnostic, got %v", child.Diagnostics())
	}
	// The write itself must never be blocked.
	if got := child.Int("count"); got != 2 {
		t.Errorf("flagged write must still land, got %d", got)
	}
}

func TestNonRootInputNoOpWriteNotFlagged(t *testing.T) {
	parent := quietUnit(t, &Declaration{})
	decl := &Declaration{
		Inputs: []InputSpec{{Name: "count", Type: KindInt, Default: 1}},
	}
	child := quietUnit(t, decl, WithParent(parent))

	// Writing the value already held changes nothing and is not a
	// mutation worth flagging.
	child.Set("count", 1)

	if countCode(child, diag.CodeInputWrite) != 0 {
		t.Errorf("no-op write must not be flagged, got %v", child.Diagnostics())
	}
}

func TestRootInputWriteNotFlagged(t *testing.T) {
	decl := &Declaration{
		Inputs: []InputSpec{{Name: "count", Type: KindInt, Default: 1}},
	}
	u := quietUnit(t, decl)

	u.Set("count", 2)
	if countCode(u, diag.CodeInputWrite) != 0 {
		t.Errorf("root unit input writes are normal, got %v", u.Diagnostics())
	}
}

func TestUpdateInputsSilencesInterception(t *testing.T) {
	parent := quietUnit(t, &Declaration{})
	decl := &Declaration{
		Inputs: []InputSpec{
			{Name: "a", Type: KindInt, Default: 0},
			{Name: "b", Type: KindInt, Default: 0},
		},
	}
	child := quietUnit(t, decl, WithParent(parent))

	runs := 0
	child.Watch(func(u *Unit) any {
		return u.Int("a") + u.Int("b")
	}, func(u *Unit, newVal, oldVal any) {
		runs++
	}, nil)

	child.UpdateInputs(map[string]any{"a": 1, "b": 2})

	if countCode(child, diag.CodeInputWrite) != 0 {
		t.Errorf("parent update flow must not be flagged, got %v", child.Diagnostics())
	}
	if runs != 1 {
		t.Errorf("batched input update should notify once, got %d runs", runs)
	}
	if child.Int("a") != 1 || child.Int("b") != 2 {
		t.Errorf("update did not land: a=%d b=%d", child.Int("a"), child.Int("b"))
	}
}

func TestPropKeysCached(t *testing.T) {
	decl := &Declaration{
		Inputs: []InputSpec{{Name: "x"}, {Name: "y"}},
	}
	u := quietUnit(t, decl)

	keys := u.PropKeys()
	if len(keys) != 2 || keys[0] != "x" || keys[1] != "y" {
		t.Errorf("expected cached key list [x y], got %v", keys)
	}
}
