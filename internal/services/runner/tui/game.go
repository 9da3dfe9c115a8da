// Package tui is the terminal front end for a runner session. It reads
// session snapshots for rendering and forwards key presses and track
// collisions as session commands.
package tui

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/louisbranch/aurora-runner/internal/services/runner/app"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/difficulty"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/session"
)

// FrameInterval is the simulation and redraw cadence.
const FrameInterval = 50 * time.Millisecond

// Game binds one runtime to a track simulation.
type Game struct {
	rt    *app.Runtime
	world *World
	now   func() time.Time
}

// NewGame returns a Game for rt. A nil rng seeds from the clock.
func NewGame(rt *app.Runtime, rng *rand.Rand) *Game {
	return &Game{rt: rt, world: NewWorld(rng), now: time.Now}
}

// Run drives screen until ctx is cancelled or the player quits. The caller
// owns screen initialization and Fini.
func (g *Game) Run(ctx context.Context, screen tcell.Screen) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()
	last := g.now()

	g.Draw(screen)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if g.HandleKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			now := g.now()
			g.world.Step(g.rt.Session, now.Sub(last), now)
			last = now
		}
		g.Draw(screen)
	}
}

// HandleKey applies one key press and reports whether the player quit.
func (g *Game) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return true
	}
	s := g.rt.Session
	state := s.Snapshot()

	switch state.Status {
	case session.StatusMenu:
		switch {
		case ev.Key() == tcell.KeyLeft:
			s.SetDifficulty(difficulty.Next(state.DifficultyID, -1))
		case ev.Key() == tcell.KeyRight:
			s.SetDifficulty(difficulty.Next(state.DifficultyID, 1))
		case ev.Key() == tcell.KeyEnter:
			s.StartGame()
		case isRune(ev, 'q'):
			return true
		}
	case session.StatusPlaying:
		switch {
		case ev.Key() == tcell.KeyLeft:
			s.SetTargetLane(state.CurrentLane - 1)
		case ev.Key() == tcell.KeyRight:
			s.SetTargetLane(state.CurrentLane + 1)
		case ev.Key() == tcell.KeyUp:
			s.TriggerJumpAt(g.now().UnixMilli())
		case isRune(ev, ' '):
			s.ActivateImmortality()
		case isRune(ev, 'q'):
			return true
		}
	case session.StatusShop:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyEnter:
			s.CloseShop()
		case ev.Key() == tcell.KeyRune && ev.Rune() >= '1' && ev.Rune() <= '9':
			offers := g.world.Offers()
			index := int(ev.Rune() - '1')
			if index < len(offers) {
				item := offers[index]
				s.BuyItem(item.ID, item.Cost)
			}
		}
	case session.StatusGameOver, session.StatusVictory:
		switch {
		case isRune(ev, 'r'):
			s.RestartGame()
		case isRune(ev, 'm'):
			s.ReturnToMenu()
		case isRune(ev, 'q'):
			return true
		}
	}
	return false
}

func isRune(ev *tcell.EventKey, r rune) bool {
	return ev.Key() == tcell.KeyRune && ev.Rune() == r
}
