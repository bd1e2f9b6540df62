package catalog

import (
	"sort"
	"sync"
)

// Tracker is the set of item ids the user opted to watch. Purely local
// state; registering a server-side alert is a separate explicit action.
type Tracker struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{ids: make(map[int64]struct{})}
}

// Toggle flips membership of id and reports the new state. Two calls in a
// row leave the set as it was.
func (t *Tracker) Toggle(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.ids[id]; ok {
		delete(t.ids, id)
		return false
	}
	t.ids[id] = struct{}{}
	return true
}

func (t *Tracker) Tracked(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.ids[id]
	return ok
}

// IDs returns all tracked ids in ascending order.
func (t *Tracker) IDs() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]int64, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ids)
}
