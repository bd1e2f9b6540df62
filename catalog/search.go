package catalog

import (
	"github.com/sahilm/fuzzy"
	"github.com/xyths/roplace-sniper/roplace"
	"sort"
)

const (
	SortLatest    = "latest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortViews     = "views"
)

// Filter narrows and orders a catalog snapshot.
type Filter struct {
	Query    string
	Rarity   string
	MinPrice int64
	MaxPrice int64 // 0 means no upper bound
	SortBy   string
}

// itemSource implements fuzzy.Source over item names.
type itemSource []roplace.Item

func (s itemSource) Len() int            { return len(s) }
func (s itemSource) String(i int) string { return s[i].Name }

// Search applies the filter to items and returns a new slice. A fuzzy
// query orders results by match relevance; the SortBy order then applies
// only when no query is set.
func Search(items []roplace.Item, f Filter) []roplace.Item {
	var out []roplace.Item
	if f.Query != "" {
		matches := fuzzy.FindFrom(f.Query, itemSource(items))
		for _, m := range matches {
			out = append(out, items[m.Index])
		}
	} else {
		out = make([]roplace.Item, len(items))
		copy(out, items)
	}

	filtered := out[:0]
	for _, item := range out {
		if f.Rarity != "" && item.Rarity != f.Rarity {
			continue
		}
		if item.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && item.Price > f.MaxPrice {
			continue
		}
		filtered = append(filtered, item)
	}
	out = filtered

	if f.Query != "" {
		return out
	}
	switch f.SortBy {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortViews:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	default:
		// latest: keep catalog order
	}
	return out
}
