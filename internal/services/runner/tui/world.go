package tui

import (
	"math/rand/v2"
	"time"

	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/session"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/shop"
)

// Kind is what occupies a track slot.
type Kind int

const (
	KindObstacle Kind = iota
	KindGem
	KindLetter
	KindPortal
)

const (
	// SpawnAhead is how far in front of the player new entities appear.
	SpawnAhead = 40.0
	// SpawnGap is the distance travelled between spawns.
	SpawnGap = 6.0
	// GemValue is the base score of one gem before difficulty scaling.
	GemValue = 50

	jumpWindow       = 600 * time.Millisecond
	doubleJumpWindow = 1100 * time.Millisecond
)

// Entity is one object on the track. Z is its distance ahead of the player.
type Entity struct {
	Kind   Kind
	Lane   int
	Z      float64
	Letter int
}

// World is the minimal track simulation that feeds collisions into a
// session. It never writes session state directly.
type World struct {
	rng       *rand.Rand
	runID     string
	distance  float64
	nextSpawn float64
	entities  []Entity
	offers    []shop.Item
}

// NewWorld returns an empty track driven by rng.
func NewWorld(rng *rand.Rand) *World {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &World{rng: rng}
}

// Entities returns the live entities.
func (w *World) Entities() []Entity {
	return w.entities
}

// Offers returns the items shown in the last shop visit.
func (w *World) Offers() []shop.Item {
	return w.offers
}

// Step advances the track by dt at the session's speed and reports
// collisions with entities that reached the player's lane.
func (w *World) Step(s *session.Session, dt time.Duration, now time.Time) {
	state := s.Snapshot()
	if state.RunID != w.runID {
		w.reset(state.RunID)
	}
	if state.Status != session.StatusPlaying || dt <= 0 {
		return
	}

	advance := state.Speed * dt.Seconds()
	w.distance += advance
	s.SetDistance(w.distance)

	kept := w.entities[:0]
	for _, entity := range w.entities {
		entity.Z -= advance
		if entity.Z > 0 {
			kept = append(kept, entity)
			continue
		}
		if entity.Lane != state.CurrentLane {
			continue
		}
		w.collide(s, state, entity, now)
	}
	w.entities = kept

	for w.distance >= w.nextSpawn {
		w.spawn(state)
		w.nextSpawn += SpawnGap
	}
}

func (w *World) reset(runID string) {
	w.runID = runID
	w.distance = 0
	w.nextSpawn = SpawnGap
	w.entities = nil
	w.offers = nil
}

func (w *World) collide(s *session.Session, state session.State, entity Entity, now time.Time) {
	switch entity.Kind {
	case KindObstacle:
		if airborne(state, now) {
			return
		}
		s.TakeDamage()
	case KindGem:
		s.CollectGem(GemValue)
	case KindLetter:
		s.CollectLetter(entity.Letter)
	case KindPortal:
		if s.OpenShop() {
			w.offers = shop.Offers(state.Owned(), w.rng)
		}
	}
}

// airborne reports whether the last jump still clears obstacles.
func airborne(state session.State, now time.Time) bool {
	if state.JumpSignal == 0 {
		return false
	}
	window := jumpWindow
	if state.HasDoubleJump {
		window = doubleJumpWindow
	}
	elapsed := now.Sub(time.UnixMilli(state.JumpSignal))
	return elapsed >= 0 && elapsed < window
}

func (w *World) spawn(state session.State) {
	limit := state.LaneCount / 2
	entity := Entity{Lane: w.rng.IntN(2*limit+1) - limit, Z: SpawnAhead}

	roll := w.rng.IntN(100)
	switch {
	case roll < 45:
		entity.Kind = KindObstacle
	case roll < 80:
		entity.Kind = KindGem
	case roll < 95:
		missing := make([]int, 0, session.TargetLength)
		for i := 0; i < session.TargetLength; i++ {
			if !state.HasLetter(i) {
				missing = append(missing, i)
			}
		}
		if len(missing) == 0 {
			entity.Kind = KindGem
			break
		}
		entity.Kind = KindLetter
		entity.Letter = missing[w.rng.IntN(len(missing))]
	default:
		entity.Kind = KindPortal
	}
	w.entities = append(w.entities, entity)
}
