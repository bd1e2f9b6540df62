package catalog

import (
	"reflect"
	"testing"
)

func TestToggleTwiceIsIdentity(t *testing.T) {
	tr := NewTracker()

	if !tr.Toggle(42) {
		t.Fatal("first toggle should track")
	}
	if !tr.Tracked(42) {
		t.Fatal("item not tracked after toggle")
	}
	if tr.Toggle(42) {
		t.Fatal("second toggle should untrack")
	}
	if tr.Tracked(42) {
		t.Fatal("item still tracked after toggle-toggle")
	}
	if tr.Len() != 0 {
		t.Fatalf("len = %d, want 0", tr.Len())
	}
}

func TestTrackerIDsSorted(t *testing.T) {
	tr := NewTracker()
	for _, id := range []int64{9, 3, 7} {
		tr.Toggle(id)
	}
	if got, want := tr.IDs(), []int64{3, 7, 9}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}
