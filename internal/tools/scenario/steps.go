package scenario

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/difficulty"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/session"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/shop"
)

// speedTolerance absorbs float noise in speed and distance expectations.
const speedTolerance = 0.005

func (r *Runner) runStep(state *scenarioState, step Step) error {
	s := state.session
	switch step.Kind {
	case "start":
		state.accepted = s.StartGame()
	case "restart":
		state.accepted = s.RestartGame()
	case "menu":
		state.accepted = s.ReturnToMenu()
	case "shop_open":
		state.accepted = s.OpenShop()
	case "shop_close":
		state.accepted = s.CloseShop()
	case "immortal":
		state.accepted = s.ActivateImmortality()
	case "level":
		state.accepted = s.AdvanceLevel()
	case "difficulty":
		id, err := difficulty.Parse(stringArg(step.Args, "id"))
		if err != nil {
			return err
		}
		state.accepted = s.SetDifficulty(id)
	case "status":
		state.accepted = s.SetStatus(session.Status(strings.ToUpper(stringArg(step.Args, "status"))))
	case "letter":
		index, err := intArg(step.Args, "index")
		if err != nil {
			return err
		}
		s.CollectLetter(index)
	case "letters":
		count := session.TargetLength
		if _, ok := step.Args["count"]; ok {
			n, err := intArg(step.Args, "count")
			if err != nil {
				return err
			}
			count = n
		}
		for i := range min(count, session.TargetLength) {
			s.CollectLetter(i)
		}
	case "gem":
		value, err := floatArg(step.Args, "value")
		if err != nil {
			return err
		}
		s.CollectGem(value)
	case "score":
		amount, err := floatArg(step.Args, "amount")
		if err != nil {
			return err
		}
		s.AddScore(amount)
	case "distance":
		value, err := floatArg(step.Args, "value")
		if err != nil {
			return err
		}
		s.SetDistance(value)
	case "lane":
		lane, err := intArg(step.Args, "lane")
		if err != nil {
			return err
		}
		s.SetTargetLane(lane)
	case "damage":
		times, err := intArg(step.Args, "times")
		if err != nil {
			return err
		}
		for range times {
			s.TakeDamage()
		}
	case "jump":
		if _, ok := step.Args["at"]; ok {
			at, err := intArg(step.Args, "at")
			if err != nil {
				return err
			}
			state.accepted = s.TriggerJumpAt(int64(at))
		} else {
			state.accepted = s.TriggerJump()
		}
	case "buy":
		return r.runBuy(state, step.Args)
	case "wait":
		seconds, err := floatArg(step.Args, "seconds")
		if err != nil {
			return err
		}
		if seconds < 0 || math.IsNaN(seconds) {
			return fmt.Errorf("wait seconds must be non-negative")
		}
		state.clock.Advance(time.Duration(seconds * float64(time.Second)))
	case "expect":
		return r.runExpect(state, step.Args)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
	return nil
}

func (r *Runner) runBuy(state *scenarioState, args map[string]any) error {
	id := shop.ID(strings.ToUpper(stringArg(args, "id")))
	var cost int64
	if _, ok := args["cost"]; ok {
		value, err := intArg(args, "cost")
		if err != nil {
			return err
		}
		cost = int64(value)
	} else if item, ok := shop.Lookup(id); ok {
		cost = item.Cost
	}
	state.accepted = state.session.BuyItem(id, cost)
	return nil
}

// runExpect compares every named field with the current snapshot. Fields
// are checked in name order so failures are reported deterministically.
func (r *Runner) runExpect(state *scenarioState, args map[string]any) error {
	snapshot := state.session.Snapshot()
	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		want := args[key]
		got, err := expectField(state, snapshot, key)
		if err != nil {
			return err
		}
		if !matches(got, want) {
			if err := r.assertions.Failf("%s = %v, want %v", key, got, want); err != nil {
				return err
			}
		}
	}
	return nil
}

func expectField(state *scenarioState, st session.State, key string) (any, error) {
	switch key {
	case "status":
		return string(st.Status), nil
	case "score":
		return st.Score, nil
	case "distance":
		return st.Distance, nil
	case "speed":
		return st.Speed, nil
	case "lives":
		return st.Lives, nil
	case "max_lives":
		return st.MaxLives, nil
	case "level":
		return st.Level, nil
	case "lanes":
		return st.LaneCount, nil
	case "lane":
		return st.CurrentLane, nil
	case "letters":
		return len(st.CollectedLetters), nil
	case "gems":
		return st.GemsCollected, nil
	case "double_jump":
		return st.HasDoubleJump, nil
	case "has_immortality":
		return st.HasImmortality, nil
	case "immortal":
		return st.IsImmortalityActive, nil
	case "difficulty":
		return string(st.DifficultyID), nil
	case "best_score":
		return st.BestScore, nil
	case "sessions":
		return st.SessionsPlayed, nil
	case "total_distance":
		return st.TotalDistance, nil
	case "finalized":
		return st.SessionFinalized, nil
	case "accepted":
		return state.accepted, nil
	case "reports":
		return len(state.reports()), nil
	case "last_record_status":
		records := state.reports()
		if len(records) == 0 {
			return "", nil
		}
		return records[len(records)-1].Status, nil
	case "last_record_distance":
		records := state.reports()
		if len(records) == 0 {
			return int64(0), nil
		}
		return records[len(records)-1].Distance, nil
	}
	return nil, fmt.Errorf("unknown expectation %q", key)
}

func matches(got, want any) bool {
	switch g := got.(type) {
	case float64:
		w, ok := toFloat(want)
		return ok && math.Abs(g-w) <= speedTolerance
	case int:
		w, ok := toFloat(want)
		return ok && float64(g) == w
	case int64:
		w, ok := toFloat(want)
		return ok && float64(g) == w
	case string:
		w, ok := want.(string)
		return ok && strings.EqualFold(g, w)
	case bool:
		w, ok := want.(bool)
		return ok && g == w
	}
	return false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

func intArg(args map[string]any, key string) (int, error) {
	value, ok := toFloat(args[key])
	if !ok || value != math.Trunc(value) {
		return 0, fmt.Errorf("%s must be an integer, got %v", key, args[key])
	}
	return int(value), nil
}

func floatArg(args map[string]any, key string) (float64, error) {
	value, ok := toFloat(args[key])
	if !ok {
		return 0, fmt.Errorf("%s must be a number, got %v", key, args[key])
	}
	return value, nil
}
