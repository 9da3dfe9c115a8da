// Package shop defines the upgrade catalog and the offer selection shown in
// the shop screen.
package shop

import "math/rand/v2"

// ID identifies a shop item.
type ID string

const (
	DoubleJump ID = "DOUBLE_JUMP"
	MaxLife    ID = "MAX_LIFE"
	Heal       ID = "HEAL"
	Immortal   ID = "IMMORTAL"
)

// Effect is the single state change a purchase applies.
type Effect int

const (
	EffectUnknown Effect = iota
	EffectDoubleJump
	EffectMaxLife
	EffectHeal
	EffectImmortality
)

// OfferLimit is how many items the shop shows at once.
const OfferLimit = 3

// Item is an immutable catalog entry.
type Item struct {
	ID      ID
	Name    string
	Cost    int64
	Effect  Effect
	OneTime bool
}

var catalog = [...]Item{
	{ID: DoubleJump, Name: "DOUBLE JUMP", Cost: 1000, Effect: EffectDoubleJump, OneTime: true},
	{ID: MaxLife, Name: "LIFE BOOST", Cost: 1500, Effect: EffectMaxLife},
	{ID: Heal, Name: "REPAIR KIT", Cost: 1000, Effect: EffectHeal},
	{ID: Immortal, Name: "PHASE SHIELD", Cost: 3000, Effect: EffectImmortality, OneTime: true},
}

// Catalog returns every item in catalog order.
func Catalog() []Item {
	out := make([]Item, len(catalog))
	copy(out, catalog[:])
	return out
}

// Lookup returns the item for id and whether it is known.
func Lookup(id ID) (Item, bool) {
	for _, item := range catalog {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Owned reports which permanent unlocks the player already holds.
type Owned struct {
	DoubleJump  bool
	Immortality bool
}

// Has reports whether item is a one-time unlock already held.
func (o Owned) Has(item Item) bool {
	if !item.OneTime {
		return false
	}
	switch item.Effect {
	case EffectDoubleJump:
		return o.DoubleJump
	case EffectImmortality:
		return o.Immortality
	}
	return false
}

// Offers returns up to OfferLimit purchasable items in shuffled order,
// leaving out one-time items the player already owns. A nil rng uses the
// package-level source.
func Offers(owned Owned, rng *rand.Rand) []Item {
	available := make([]Item, 0, len(catalog))
	for _, item := range catalog {
		if owned.Has(item) {
			continue
		}
		available = append(available, item)
	}

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})

	if len(available) > OfferLimit {
		available = available[:OfferLimit]
	}
	return available
}
