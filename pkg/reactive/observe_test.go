package reactive

import "testing"

func TestObserveBuildsNestedStores(t *testing.T) {
	store := Observe(map[string]any{
		"name": "ada",
		"meta": map[string]any{"age": 36},
	}, true)

	if store == nil {
		t.Fatal("expected a store")
	}
	if !store.Root() {
		t.Error("expected root store")
	}

	meta, ok := store.Get("meta").(*Store)
	if !ok {
		t.Fatalf("expected nested store, got %T", store.Get("meta"))
	}
	if meta.Root() {
		t.Error("nested store should not be root")
	}
	if meta.Get("age") != 36 {
		t.Errorf("expected 36, got %v", meta.Get("age"))
	}
}

func TestObserveNilMap(t *testing.T) {
	if Observe(nil, true) != nil {
		t.Error("expected nil for nil map")
	}
}

func TestObserveSuspended(t *testing.T) {
	var store *Store
	WithoutObserving(func() {
		store = Observe(map[string]any{"a": 1}, false)
	})
	if store != nil {
		t.Error("Observe must return nil while observation is suspended")
	}
}

func TestObserveSuspensionRestoredOnPanic(t *testing.T) {
	func() {
		defer func() { recover() }()
		WithoutObserving(func() {
			panic("binding failure")
		})
	}()

	if Observe(map[string]any{"a": 1}, false) == nil {
		t.Error("observation must be re-enabled after a panic inside the suspended scope")
	}
}

func TestObserveStoreIdempotent(t *testing.T) {
	s := Observe(map[string]any{"a": 1}, true)
	if got := ObserveStore(s, true); got != s {
		t.Error("observing an instrumented store must return it unchanged")
	}
}

func TestObserveDeterministicKeyOrder(t *testing.T) {
	store := Observe(map[string]any{"c": 1, "a": 2, "b": 3}, false)
	keys := store.Keys()
	want := []string{"a", "b", "c"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected sorted keys %v, got %v", want, keys)
		}
	}
}

func TestSlicesLeftUntracked(t *testing.T) {
	store := Observe(map[string]any{"items": []any{1, 2}}, false)
	if _, ok := store.Get("items").([]any); !ok {
		t.Errorf("slices should pass through untracked, got %T", store.Get("items"))
	}
}
