package catalog

import (
	"reflect"
	"testing"

	"github.com/xyths/roplace-sniper/roplace"
)

func int64p(v int64) *int64       { return &v }
func float64p(v float64) *float64 { return &v }

func testItems() []roplace.Item {
	return []roplace.Item{
		{ID: 1, Name: "Dominus Aureus", Price: 1000, Change: 2.5, Available: 3, Rarity: roplace.RarityLegendary, Views: 5000,
			PriceHistory: []roplace.PricePoint{{Timestamp: 100, Price: 900}, {Timestamp: 200, Price: 1000}}},
		{ID: 2, Name: "Golden Crown", Price: 500, Available: 0, Rarity: roplace.RarityRare, Views: 1200},
		{ID: 3, Name: "Valkyrie Helm", Price: 750, Available: 10, Rarity: roplace.RarityUncommon, Views: 800},
	}
}

func TestStoreStatusTransitions(t *testing.T) {
	s := NewStore()
	if status, _ := s.Status(); status != StatusLoading {
		t.Fatalf("new store status = %s, want loading", status)
	}

	s.Fail("fetch failed")
	status, msg := s.Status()
	if status != StatusError || msg != "fetch failed" {
		t.Fatalf("after Fail: status = %s msg = %q", status, msg)
	}

	// error state only recovers through a fresh load
	s.Load(testItems())
	if status, msg = s.Status(); status != StatusReady || msg != "" {
		t.Fatalf("after Load: status = %s msg = %q", status, msg)
	}
}

func TestMergeChangesOnlyNamedFields(t *testing.T) {
	s := NewStore()
	s.Load(testItems())

	if !s.Merge(roplace.ItemUpdate{ItemID: 1, Price: int64p(800), Available: int64p(2)}) {
		t.Fatal("merge for known item not applied")
	}

	got := s.Snapshot()
	want := testItems()
	want[0].Price = 800
	want[0].Available = 2
	if !reflect.DeepEqual(got, want) {
		t.Errorf("snapshot after merge = %v, want %v", got, want)
	}
	// position in the ordered sequence unchanged
	if got[0].ID != 1 || got[1].ID != 2 || got[2].ID != 3 {
		t.Errorf("item order changed: %v", got)
	}
}

func TestMergeUnknownItemIsNoop(t *testing.T) {
	s := NewStore()
	s.Load(testItems())
	before := s.Snapshot()

	if s.Merge(roplace.ItemUpdate{ItemID: 99, Price: int64p(1)}) {
		t.Fatal("merge for unknown item reported applied")
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Error("snapshot changed after unknown-item merge")
	}
	if status, _ := s.Status(); status != StatusReady {
		t.Errorf("status = %s, want ready", status)
	}
}

func TestMergeOrderLastWriteWins(t *testing.T) {
	s := NewStore()
	s.Load(testItems())

	s.Merge(roplace.ItemUpdate{ItemID: 2, Price: int64p(100)})
	s.Merge(roplace.ItemUpdate{ItemID: 2, Price: int64p(90)})

	item, ok := s.Get(2)
	if !ok {
		t.Fatal("item 2 missing")
	}
	if item.Price != 90 {
		t.Errorf("price = %d, want 90", item.Price)
	}
}

func TestMergeAllFields(t *testing.T) {
	s := NewStore()
	s.Load(testItems())

	s.Merge(roplace.ItemUpdate{
		ItemID:    3,
		Price:     int64p(600),
		Change:    float64p(-20),
		Available: int64p(4),
		Views:     int64p(900),
		LastSale:  int64p(700),
	})
	item, _ := s.Get(3)
	if item.Price != 600 || item.Change != -20 || item.Available != 4 || item.Views != 900 || item.LastSale != 700 {
		t.Errorf("merged item = %+v", item)
	}
	if item.Name != "Valkyrie Helm" || item.Rarity != roplace.RarityUncommon {
		t.Errorf("untouched fields changed: %+v", item)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.Load(testItems())

	snap := s.Snapshot()
	snap[0].Price = 1

	item, _ := s.Get(1)
	if item.Price != 1000 {
		t.Errorf("mutating a snapshot changed the store: price = %d", item.Price)
	}
}

func TestLoadReplacesWholesale(t *testing.T) {
	s := NewStore()
	s.Load(testItems())

	s.Load([]roplace.Item{{ID: 7, Name: "Frost Cap", Price: 50}})
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	if _, ok := s.Get(1); ok {
		t.Error("item from previous load still present")
	}
	if !s.Merge(roplace.ItemUpdate{ItemID: 7, Price: int64p(60)}) {
		t.Error("merge after reload not applied")
	}
}
