package session

import (
	"math"

	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/shop"
)

// AddScore awards amount scaled by the difficulty score multiplier and
// rounded to the nearest point. Negative and non-finite amounts award 0.
func (s *Session) AddScore(amount float64) {
	s.mutate(func() *pendingReport {
		if s.state.Status != StatusPlaying {
			return nil
		}
		s.addScoreLocked(amount)
		return nil
	})
}

// CollectGem awards value through AddScore and counts the gem.
func (s *Session) CollectGem(value float64) {
	s.mutate(func() *pendingReport {
		if s.state.Status != StatusPlaying {
			return nil
		}
		s.addScoreLocked(value)
		s.state.GemsCollected++
		return nil
	})
}

func (s *Session) addScoreLocked(amount float64) {
	scaled := math.Round(finite(amount) * s.preset.ScoreMultiplier)
	if scaled >= math.MaxInt64 {
		s.state.Score = math.MaxInt64
		return
	}
	s.state.Score = addSaturating(s.state.Score, int64(scaled))
}

// BuyItem spends cost on item id and applies its effect. It fails without
// changing anything when id is unknown or the score cannot cover cost.
// Negative costs are treated as 0.
func (s *Session) BuyItem(id shop.ID, cost int64) bool {
	var ok bool
	s.mutate(func() *pendingReport {
		if !s.inRun() {
			return nil
		}
		item, known := shop.Lookup(id)
		if !known {
			return nil
		}
		cost = max(cost, 0)
		if s.state.Score < cost {
			return nil
		}

		s.state.Score -= cost
		switch item.Effect {
		case shop.EffectDoubleJump:
			s.state.HasDoubleJump = true
		case shop.EffectMaxLife:
			s.state.MaxLives++
			s.state.Lives++
		case shop.EffectHeal:
			s.state.Lives = min(s.state.Lives+1, s.state.MaxLives)
		case shop.EffectImmortality:
			s.state.HasImmortality = true
		}
		ok = true
		return nil
	})
	return ok
}

// Owned reports the permanent unlocks used to filter shop offers.
func (st State) Owned() shop.Owned {
	return shop.Owned{DoubleJump: st.HasDoubleJump, Immortality: st.HasImmortality}
}
