package reactive

import "testing"

func TestStoreDefineGetSet(t *testing.T) {
	s := NewStore()
	s.Define("count", 0, nil)

	if got := s.Get("count"); got != 0 {
		t.Errorf("expected initial value 0, got %v", got)
	}

	s.Set("count", 5)
	if got := s.Get("count"); got != 5 {
		t.Errorf("expected value 5, got %v", got)
	}
}

func TestStoreUndefinedKey(t *testing.T) {
	s := NewStore()
	if got := s.Get("missing"); got != nil {
		t.Errorf("expected nil for undefined key, got %v", got)
	}
	if s.Has("missing") {
		t.Error("Has should be false for undefined key")
	}
}

func TestStoreSetDefinesNewKeys(t *testing.T) {
	s := NewStore()
	s.Set("fresh", "hello")
	if !s.Has("fresh") {
		t.Fatal("Set should define unknown keys as tracked properties")
	}
	if got := s.Get("fresh"); got != "hello" {
		t.Errorf("expected %q, got %v", "hello", got)
	}
}

func TestStoreNotifiesOnChange(t *testing.T) {
	s := NewStore()
	s.Define("count", 0, nil)

	runs := 0
	NewWatcher(nil, func() any {
		return s.Get("count")
	}, func(newVal, oldVal any) {
		runs++
	}, WatcherOptions{})

	s.Set("count", 1)
	if runs != 1 {
		t.Errorf("expected 1 run after change, got %d", runs)
	}

	// Same value must not notify.
	s.Set("count", 1)
	if runs != 1 {
		t.Errorf("same value should not notify, got %d runs", runs)
	}

	s.Set("count", 2)
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestStoreWriteHook(t *testing.T) {
	s := NewStore()

	var flagged []any
	s.Define("owned", 1, func(newVal any) {
		flagged = append(flagged, newVal)
	})

	s.Set("owned", 2)
	if len(flagged) != 1 || flagged[0] != 2 {
		t.Errorf("expected hook to see write of 2, got %v", flagged)
	}
	// The hook flags but never blocks.
	if got := s.Get("owned"); got != 2 {
		t.Errorf("hook must not block the write, got %v", got)
	}

	// A write of the current value is invisible to the hook.
	s.Set("owned", 2)
	if len(flagged) != 1 {
		t.Errorf("no-op write must not fire the hook, got %v", flagged)
	}
}

func TestStoreKeysOrder(t *testing.T) {
	s := NewStore()
	s.Define("b", 1, nil)
	s.Define("a", 2, nil)
	s.Define("c", 3, nil)

	keys := s.Keys()
	want := []string{"b", "a", "c"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: expected %q, got %q", i, want[i], keys[i])
		}
	}
}

func TestStoreSnapshotDetached(t *testing.T) {
	s := NewStore()
	s.Define("user", map[string]any{"name": "ada"}, nil)
	s.Define("n", 1, nil)

	snap := s.Snapshot()
	user, ok := snap["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map in snapshot, got %T", snap["user"])
	}
	if user["name"] != "ada" {
		t.Errorf("expected nested value %q, got %v", "ada", user["name"])
	}

	// Mutating the snapshot must not touch tracked state.
	snap["n"] = 99
	if got := s.Get("n"); got != 1 {
		t.Errorf("snapshot mutation leaked into store: %v", got)
	}
}

func TestStoreNestedObservation(t *testing.T) {
	s := NewStore()
	s.Define("user", map[string]any{"name": "ada"}, nil)

	child, ok := s.Get("user").(*Store)
	if !ok {
		t.Fatalf("expected nested map instrumented as *Store, got %T", s.Get("user"))
	}

	runs := 0
	NewWatcher(nil, func() any {
		return child.Get("name")
	}, func(newVal, oldVal any) {
		runs++
	}, WatcherOptions{})

	child.Set("name", "grace")
	if runs != 1 {
		t.Errorf("expected nested write to notify, got %d runs", runs)
	}
}
