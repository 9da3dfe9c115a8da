package session

import "github.com/louisbranch/aurora-runner/internal/services/runner/domain/difficulty"

// SetDifficulty selects the preset used by the next run. It is accepted only
// in MENU and only for known presets.
func (s *Session) SetDifficulty(id difficulty.ID) bool {
	var ok bool
	s.mutate(func() *pendingReport {
		if s.state.Status != StatusMenu {
			return nil
		}
		if _, known := difficulty.Lookup(id); !known {
			return nil
		}
		s.state.DifficultyID = id
		ok = true
		return nil
	})
	return ok
}

// StartGame begins a run from MENU.
func (s *Session) StartGame() bool {
	var ok bool
	s.mutate(func() *pendingReport {
		if s.state.Status != StatusMenu {
			return nil
		}
		s.resetRunLocked()
		ok = true
		return nil
	})
	return ok
}

// RestartGame begins a fresh run from GAME_OVER or VICTORY.
func (s *Session) RestartGame() bool {
	var ok bool
	s.mutate(func() *pendingReport {
		if !s.state.Status.Terminal() {
			return nil
		}
		s.resetRunLocked()
		ok = true
		return nil
	})
	return ok
}

// ReturnToMenu leaves a finished run so a new difficulty can be chosen.
func (s *Session) ReturnToMenu() bool {
	return s.SetStatus(StatusMenu)
}

// OpenShop pauses the run in the shop.
func (s *Session) OpenShop() bool {
	return s.transition(StatusPlaying, StatusShop)
}

// CloseShop resumes the run from the shop.
func (s *Session) CloseShop() bool {
	return s.transition(StatusShop, StatusPlaying)
}

// SetStatus is the generic status setter. Terminal statuses are accepted
// during a run and go through finalization; MENU is accepted from a terminal
// status. PLAYING and SHOP have dedicated commands and are rejected here.
func (s *Session) SetStatus(status Status) bool {
	var ok bool
	s.mutate(func() *pendingReport {
		switch {
		case status.Terminal():
			if !s.inRun() {
				return nil
			}
			ok = true
			return s.endRunLocked(status)
		case status == StatusMenu:
			if !s.state.Status.Terminal() {
				return nil
			}
			s.state.Status = StatusMenu
			ok = true
		}
		return nil
	})
	return ok
}

func (s *Session) transition(from, to Status) bool {
	var ok bool
	s.mutate(func() *pendingReport {
		if s.state.Status != from {
			return nil
		}
		s.state.Status = to
		ok = true
		return nil
	})
	return ok
}

// resetRunLocked clears every run-scoped field, keeping aggregate stats and
// the chosen difficulty.
func (s *Session) resetRunLocked() {
	s.cancelAbilityLocked()
	s.preset = difficulty.Resolve(s.state.DifficultyID)

	runID, err := s.newID()
	if err != nil {
		s.logf("generate run id: %v", err)
		runID = ""
	}

	s.state = State{
		Status:   StatusPlaying,
		RunID:    runID,
		Speed:    BaseSpeed * s.preset.SpeedMultiplier,
		Lives:    BaseLives,
		MaxLives: BaseLives,
		Level:    1,

		LaneCount: BaseLanes,

		DifficultyID:   s.state.DifficultyID,
		BestScore:      s.state.BestScore,
		SessionsPlayed: s.state.SessionsPlayed,
		TotalDistance:  s.state.TotalDistance,
	}
}

// endRunLocked moves the run into a terminal status: the immortality timer is
// cancelled, speed drops to zero and the run is finalized.
func (s *Session) endRunLocked(status Status) *pendingReport {
	s.cancelAbilityLocked()
	s.state.Status = status
	s.state.Speed = 0
	return s.finalizeLocked()
}
