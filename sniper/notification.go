package sniper

import (
	"fmt"
	"github.com/xyths/roplace-sniper/roplace"
	"math"
	"sync/atomic"
	"time"
)

const (
	NotePriceDrop = "price_drop"
	NotePriceRise = "price_rise"
	NoteAvailable = "available"
	NoteSystem    = "system"
)

// priceMovePct: a single update moving the price by at least this much
// produces a notification for tracked items.
const priceMovePct = 10.0

// Notification is one user-facing event.
type Notification struct {
	ID        int64     `bson:"id"`
	Type      string    `bson:"type"`
	Title     string    `bson:"title"`
	Message   string    `bson:"message"`
	CreatedAt time.Time `bson:"createdAt"`
	Read      bool      `bson:"read"`
}

var noteSeq int64

func newNotification(noteType, title, message string) Notification {
	return Notification{
		ID:        atomic.AddInt64(&noteSeq, 1),
		Type:      noteType,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// noteFromUpdate derives a notification from one applied merge, or nil
// when the change is not worth telling the user about. prev is the item
// as it was before the merge.
func noteFromUpdate(prev roplace.Item, u roplace.ItemUpdate, tracked bool) *Notification {
	if u.Available != nil && prev.Available == 0 && *u.Available > 0 {
		n := newNotification(NoteAvailable, "Item Available",
			fmt.Sprintf("Limited item %q is now available", prev.Name))
		return &n
	}
	if u.Price == nil || !tracked || prev.Price <= 0 {
		return nil
	}
	pct := float64(*u.Price-prev.Price) / float64(prev.Price) * 100
	if math.Abs(pct) < priceMovePct {
		return nil
	}
	if pct < 0 {
		n := newNotification(NotePriceDrop, "Price Drop Alert",
			fmt.Sprintf("%s price dropped by %.0f%%", prev.Name, -pct))
		return &n
	}
	n := newNotification(NotePriceRise, "Price Increase",
		fmt.Sprintf("Tracked item %q price increased by %.0f%%", prev.Name, pct))
	return &n
}

// format renders a notification as a Telegram/Discord text message.
func format(n Notification, item roplace.Item, options Options) string {
	content := fmt.Sprintf("%s\n%s", n.Title, n.Message)
	switch n.Type {
	case NotePriceDrop, NotePriceRise:
		content += fmt.Sprintf("\nCurrent price: R$ %d", item.Price)
	case NoteAvailable:
		content += fmt.Sprintf("\nPrice: R$ %d, %d available", item.Price, item.Available)
	}
	if options[OptionLink] && item.ID != 0 {
		content += fmt.Sprintf("\nhttps://ro.place/catalog/%d", item.ID)
	}
	return content
}
