package state

import (
	"testing"

	"github.com/reago-dev/reago/internal/diag"
	"github.com/reago-dev/reago/pkg/reactive"
)

func TestFieldLiteralBinding(t *testing.T) {
	decl := &Declaration{
		Fields: Fields(map[string]any{"count": 0, "label": "hello"}),
	}
	u := quietUnit(t, decl)

	if u.Int("count") != 0 || u.String("label") != "hello" {
		t.Errorf("fields not bound: count=%v label=%v", u.Get("count"), u.Get("label"))
	}
}

func TestFieldProducerBinding(t *testing.T) {
	decl := &Declaration{
		Inputs: []InputSpec{{Name: "start", Type: KindInt, Default: 3}},
		Fields: FieldsFunc(func(u *Unit) map[string]any {
			return map[string]any{"count": u.Int("start") * 2}
		}),
	}
	u := quietUnit(t, decl)

	if got := u.Int("count"); got != 6 {
		t.Errorf("producer may read inputs, expected 6, got %d", got)
	}
}

func TestFieldProducerRunsUntracked(t *testing.T) {
	decl := &Declaration{
		Inputs: []InputSpec{{Name: "start", Type: KindInt, Default: 1}},
		Fields: FieldsFunc(func(u *Unit) map[string]any {
			return map[string]any{"count": u.Int("start")}
		}),
	}
	u := quietUnit(t, decl)

	runs := 0
	u.Watch("count", func(u *Unit, newVal, oldVal any) { runs++ }, nil)

	// Producer reads must not have subscribed the field to the input.
	u.Set("start", 99)
	if runs != 0 {
		t.Errorf("field must not track its producer's reads, got %d runs", runs)
	}
	if got := u.Int("count"); got != 1 {
		t.Errorf("field keeps its bound value, got %d", got)
	}
}

func TestFieldProducerPanic(t *testing.T) {
	decl := &Declaration{
		Fields: FieldsFunc(func(u *Unit) map[string]any {
			panic("boom")
		}),
	}
	u := quietUnit(t, decl)

	if countCode(u, diag.CodeFieldProducer) != 1 {
		t.Errorf("expected one producer diagnostic, got %v", u.Diagnostics())
	}
	if countCode(u, diag.CodeFieldNotMap) != 0 {
		t.Error("a panicking producer must not also be flagged as non-map")
	}
	// Binding proceeds with an empty field set.
	if u.DataStore() == nil {
		t.Fatal("data storage must exist after a producer failure")
	}
}

func TestFieldProducerNilResult(t *testing.T) {
	decl := &Declaration{
		Fields: FieldsFunc(func(u *Unit) map[string]any { return nil }),
	}
	u := quietUnit(t, decl)

	if countCode(u, diag.CodeFieldNotMap) != 1 {
		t.Errorf("expected one non-map diagnostic, got %v", u.Diagnostics())
	}
	if len(u.DataSnapshot()) != 0 {
		t.Errorf("nil producer result binds as empty, got %v", u.DataSnapshot())
	}
}

func TestFieldInputCollision(t *testing.T) {
	decl := &Declaration{
		Inputs: []InputSpec{{Name: "title", Type: KindString, Default: "from input"}},
		Fields: Fields(map[string]any{"title": "from field"}),
	}
	u := quietUnit(t, decl)

	if countCode(u, diag.CodeFieldInputClash) != 1 {
		t.Errorf("expected exactly one field/input clash, got %v", u.Diagnostics())
	}
	// The input keeps the name.
	if got := u.String("title"); got != "from input" {
		t.Errorf("input must win the collision, got %q", got)
	}
}

func TestFieldMethodCollision(t *testing.T) {
	decl := &Declaration{
		Fields: Fields(map[string]any{"reset": 0}),
		Methods: []MethodSpec{
			{Name: "reset", Fn: func(u *Unit, args ...any) any { return nil }},
		},
	}
	u := quietUnit(t, decl)

	if countCode(u, diag.CodeFieldMethodClash) != 1 {
		t.Errorf("expected one field/method clash, got %v", u.Diagnostics())
	}
	// The field still binds; name resolution prefers the accessor.
	if got := u.Get("reset"); got != 0 {
		t.Errorf("field must still be reachable, got %v", got)
	}
}

func TestFieldReservedNameSkipped(t *testing.T) {
	decl := &Declaration{
		Fields: Fields(map[string]any{"_internal": 1, "$special": 2, "plain": 3}),
	}
	u := quietUnit(t, decl)

	// Reserved-prefix names reach storage but get no instance accessor.
	if u.Get("_internal") != nil || u.Get("$special") != nil {
		t.Error("reserved-prefix fields must not get accessors")
	}
	if u.DataStore().Peek("_internal") != 1 {
		t.Error("reserved-prefix fields still live in storage")
	}
	if u.Int("plain") != 3 {
		t.Error("ordinary fields bind as usual")
	}
}

func TestFieldWriteNotifies(t *testing.T) {
	decl := &Declaration{
		Fields: Fields(map[string]any{"count": 0}),
	}
	u := quietUnit(t, decl)

	runs := 0
	u.Watch("count", func(u *Unit, newVal, oldVal any) { runs++ }, nil)

	u.Set("count", 1)
	u.Set("count", 1) // unchanged, no notification
	u.Set("count", 2)

	if runs != 2 {
		t.Errorf("expected 2 notifications, got %d", runs)
	}
}

func TestFieldNestedMapObserved(t *testing.T) {
	decl := &Declaration{
		Fields: Fields(map[string]any{
			"profile": map[string]any{"name": "ada"},
		}),
	}
	u := quietUnit(t, decl)

	runs := 0
	u.Watch("profile.name", func(u *Unit, newVal, oldVal any) { runs++ }, nil)

	nested := u.Get("profile").(*reactive.Store)
	nested.Set("name", "grace")

	if runs != 1 {
		t.Errorf("nested write must notify, got %d runs", runs)
	}
	if got := u.DataSnapshot()["profile"].(map[string]any)["name"]; got != "grace" {
		t.Errorf("snapshot must reflect the nested write, got %v", got)
	}
}
