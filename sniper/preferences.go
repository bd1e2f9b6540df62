package sniper

import "time"

const (
	CollPreferences = "preferences"

	OptionLink  = "link"
	OptionQuiet = "quiet"
)

// Configuration is one chat's dispatch preferences.
type Configuration struct {
	Bot      string    `bson:"bot"` // bot username
	ChatId   int64     `bson:"chatId"`
	ItemIds  []int64   `bson:"itemIds"` // empty means all items
	Options  Options   `bson:"options"`
	ExpireAt time.Time `bson:"expireAt"` // membership
}

type Options = map[string]bool

// wants reports whether the chat asked for updates about this item.
// An empty item list means "everything".
func (c Configuration) wants(itemId int64) bool {
	if len(c.ItemIds) == 0 {
		return true
	}
	for _, id := range c.ItemIds {
		if id == itemId {
			return true
		}
	}
	return false
}
