package roplace

import "sort"

const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityLegendary = "legendary"
)

// PricePoint is one sample of an item's price history.
type PricePoint struct {
	Timestamp int64 `json:"timestamp" bson:"timestamp"`
	Price     int64 `json:"price" bson:"price"`
}

// Item is one limited item as the service returns it.
// Price fields are whole R$, no minor unit.
type Item struct {
	ID        int64   `json:"id" bson:"id"`
	Name      string  `json:"name" bson:"name"`
	Image     string  `json:"image" bson:"image"`
	Price     int64   `json:"price" bson:"price"`
	Change    float64 `json:"change" bson:"change"` // percent, signed
	Available int64   `json:"available" bson:"available"`
	Rarity    string  `json:"rarity" bson:"rarity"`
	Views     int64   `json:"views" bson:"views"`

	LastSale       int64 `json:"lastSale,omitempty" bson:"lastSale,omitempty"`
	MinResellPrice int64 `json:"minResellPrice,omitempty" bson:"minResellPrice,omitempty"`
	MaxResellPrice int64 `json:"maxResellPrice,omitempty" bson:"maxResellPrice,omitempty"`
	AveragePrice   int64 `json:"averagePrice,omitempty" bson:"averagePrice,omitempty"`

	PriceHistory []PricePoint `json:"priceHistory" bson:"priceHistory"`
}

// ItemUpdate is a partial update pushed over the live channel.
// Pointer fields distinguish "absent" from zero.
type ItemUpdate struct {
	ItemID    int64    `json:"itemId"`
	Price     *int64   `json:"price,omitempty"`
	Change    *float64 `json:"change,omitempty"`
	Available *int64   `json:"available,omitempty"`
	Views     *int64   `json:"views,omitempty"`
	LastSale  *int64   `json:"lastSale,omitempty"`
}

// Alert is the record returned by the alert registration API.
type Alert struct {
	ID        int64  `json:"id" bson:"id"`
	ItemID    int64  `json:"itemId" bson:"itemId"`
	MaxPrice  int64  `json:"maxPrice" bson:"maxPrice"`
	CreatedAt string `json:"createdAt" bson:"createdAt"`
}

// normalizeHistory sorts samples by timestamp and drops duplicate
// timestamps, keeping the later sample. History must end up strictly
// increasing.
func normalizeHistory(history []PricePoint) []PricePoint {
	if len(history) < 2 {
		return history
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp < history[j].Timestamp
	})
	out := history[:1]
	for _, p := range history[1:] {
		if p.Timestamp == out[len(out)-1].Timestamp {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
