package identity

import "testing"

func TestRegistryCreators(t *testing.T) {
	r := NewRegistry([]int64{1, 2})

	if !r.IsCreator(1) || !r.IsCreator(2) {
		t.Error("Configured creators not recognized")
	}
	if r.IsCreator(3) {
		t.Error("Unknown id recognized as creator")
	}
	if got := len(r.Creators()); got != 2 {
		t.Errorf("Expected 2 creators, got %d", got)
	}
}

func TestRegistryNameDefaults(t *testing.T) {
	r := NewRegistry(nil)
	if got := r.Name(42); got != "Unknown User" {
		t.Errorf("Expected default name, got %q", got)
	}

	r.Observe(42, "Alice")
	if got := r.Name(42); got != "Alice" {
		t.Errorf("Expected observed name, got %q", got)
	}
}

func TestRegistryObserveDoesNotGrantCreator(t *testing.T) {
	r := NewRegistry([]int64{1})
	r.Observe(99, "Mallory")
	if r.IsCreator(99) {
		t.Error("Observe must never elevate")
	}
}

func TestRegistryAddWithElevation(t *testing.T) {
	r := NewRegistry([]int64{1})
	r.Add(50, "Bob", true)

	who := r.Lookup(50)
	if who.Name != "Bob" || !who.IsCreator {
		t.Errorf("Unexpected identity: %+v", who)
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	r := NewRegistry(nil)
	who := r.Lookup(7)
	if who.ID != 7 || who.Name != "Unknown User" || who.IsCreator {
		t.Errorf("Unexpected identity: %+v", who)
	}
}
