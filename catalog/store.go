// Package catalog owns the working set of limited items shown to the
// user. The store is the single writer of item state; everything else
// reads snapshots or asks for a merge.
package catalog

import (
	"github.com/xyths/roplace-sniper/roplace"
	"sync"
)

type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Store holds the current catalog snapshot. All methods are safe for
// concurrent use; a merge runs to completion before any reader observes
// the item.
type Store struct {
	mu     sync.RWMutex
	status Status
	errMsg string
	items  []roplace.Item
	index  map[int64]int // item id -> position in items
}

func NewStore() *Store {
	return &Store{
		status: StatusLoading,
		index:  make(map[int64]int),
	}
}

// Load replaces the entire working set and forces the store ready. Called
// after the initial fetch and again after a successful snipe.
func (s *Store) Load(items []roplace.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]roplace.Item, len(items))
	copy(s.items, items)
	s.index = make(map[int64]int, len(items))
	for i, item := range s.items {
		s.index[item.ID] = i
	}
	s.status = StatusReady
	s.errMsg = ""
}

// Fail records a load failure. There is no auto-recovery; only a fresh
// Load leaves the error state.
func (s *Store) Fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusError
	s.errMsg = msg
}

// Merge overwrites exactly the fields present in the update, leaving
// everything else and the item's position unchanged. An unknown itemId is
// dropped, not queued; Merge reports whether the update applied.
func (s *Store) Merge(u roplace.ItemUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[u.ItemID]
	if !ok {
		return false
	}
	item := &s.items[i]
	if u.Price != nil {
		item.Price = *u.Price
	}
	if u.Change != nil {
		item.Change = *u.Change
	}
	if u.Available != nil {
		item.Available = *u.Available
	}
	if u.Views != nil {
		item.Views = *u.Views
	}
	if u.LastSale != nil {
		item.LastSale = *u.LastSale
	}
	return true
}

// Snapshot returns a copy of the ordered working set. Callers must not
// mutate item fields in place.
func (s *Store) Snapshot() []roplace.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]roplace.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns a copy of one item.
func (s *Store) Get(id int64) (roplace.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return roplace.Item{}, false
	}
	return s.items[i], true
}

// Status returns the store state and, in the error state, the message.
func (s *Store) Status() (Status, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.errMsg
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
