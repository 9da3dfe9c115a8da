package session

// ActivateImmortality opens the immortality window for ImmortalityDuration.
// It is a no-op without the capability, while a window is already open, or
// outside PLAYING.
func (s *Session) ActivateImmortality() bool {
	var ok bool
	s.mutate(func() *pendingReport {
		if s.state.Status != StatusPlaying || !s.state.HasImmortality || s.state.IsImmortalityActive {
			return nil
		}
		s.cancelAbilityLocked()
		s.state.IsImmortalityActive = true

		generation := s.generation
		s.timer = s.scheduler.AfterFunc(ImmortalityDuration, func() {
			s.expireAbility(generation)
		})
		ok = true
		return nil
	})
	return ok
}

// TakeDamage removes a life unless the immortality window is open. Losing
// the last life ends the run in GAME_OVER.
func (s *Session) TakeDamage() {
	s.mutate(func() *pendingReport {
		if s.state.Status != StatusPlaying || s.state.IsImmortalityActive {
			return nil
		}
		if s.state.Lives > 1 {
			s.state.Lives--
			return nil
		}
		s.state.Lives = 0
		return s.endRunLocked(StatusGameOver)
	})
}

func (s *Session) expireAbility(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return
	}
	s.state.IsImmortalityActive = false
	s.timer = nil
}

// cancelAbilityLocked stops the pending timer and invalidates any callback
// already in flight.
func (s *Session) cancelAbilityLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	s.state.IsImmortalityActive = false
}
