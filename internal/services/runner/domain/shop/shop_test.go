package shop

import (
	"math/rand/v2"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		id      ID
		cost    int64
		effect  Effect
		oneTime bool
	}{
		{DoubleJump, 1000, EffectDoubleJump, true},
		{MaxLife, 1500, EffectMaxLife, false},
		{Heal, 1000, EffectHeal, false},
		{Immortal, 3000, EffectImmortality, true},
	}
	for _, tt := range tests {
		item, ok := Lookup(tt.id)
		if !ok {
			t.Fatalf("Lookup(%s) not found", tt.id)
		}
		if item.Cost != tt.cost || item.Effect != tt.effect || item.OneTime != tt.oneTime {
			t.Fatalf("Lookup(%s) = %+v", tt.id, item)
		}
	}
	if _, ok := Lookup("JETPACK"); ok {
		t.Fatal("expected unknown item lookup to fail")
	}
}

func TestOffersLimitsAndShuffles(t *testing.T) {
	seen := map[ID]bool{}
	for seed := uint64(0); seed < 32; seed++ {
		offers := Offers(Owned{}, rand.New(rand.NewPCG(seed, seed)))
		if len(offers) != OfferLimit {
			t.Fatalf("len(offers) = %d, want %d", len(offers), OfferLimit)
		}
		dupes := map[ID]bool{}
		for _, item := range offers {
			if dupes[item.ID] {
				t.Fatalf("duplicate offer %s", item.ID)
			}
			dupes[item.ID] = true
			seen[item.ID] = true
		}
	}
	if len(seen) != len(catalog) {
		t.Fatalf("offered %d distinct items across seeds, want %d", len(seen), len(catalog))
	}
}

func TestOffersDeterministicForSeed(t *testing.T) {
	a := Offers(Owned{}, rand.New(rand.NewPCG(7, 11)))
	b := Offers(Owned{}, rand.New(rand.NewPCG(7, 11)))
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("offer %d = %s vs %s, want same order for same seed", i, a[i].ID, b[i].ID)
		}
	}
}

func TestOffersHidesOwnedOneTimeItems(t *testing.T) {
	offers := Offers(Owned{DoubleJump: true, Immortality: true}, rand.New(rand.NewPCG(1, 2)))
	if len(offers) != 2 {
		t.Fatalf("len(offers) = %d, want 2", len(offers))
	}
	for _, item := range offers {
		if item.ID == DoubleJump || item.ID == Immortal {
			t.Fatalf("owned one-time item %s offered", item.ID)
		}
	}
}

func TestCatalogReturnsCopy(t *testing.T) {
	items := Catalog()
	items[0].Cost = 1
	if item, _ := Lookup(DoubleJump); item.Cost != 1000 {
		t.Fatal("expected catalog to be immutable through Catalog()")
	}
}
