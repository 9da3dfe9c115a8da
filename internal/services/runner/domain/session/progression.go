package session

// CollectLetter records slot index of the target word. Out-of-range and
// already-collected indices are ignored. Completing the word advances the
// level, or wins the run at MaxLevel.
func (s *Session) CollectLetter(index int) {
	s.mutate(func() *pendingReport {
		if s.state.Status != StatusPlaying {
			return nil
		}
		if index < 0 || index >= TargetLength || s.state.HasLetter(index) {
			return nil
		}

		s.state.CollectedLetters = append(s.state.CollectedLetters, index)
		s.state.Speed += LetterSpeedStep
		if len(s.state.CollectedLetters) < TargetLength {
			return nil
		}

		if s.state.Level < MaxLevel {
			s.advanceLevelLocked()
			return nil
		}
		s.state.Score = addSaturating(s.state.Score, VictoryBonus)
		return s.endRunLocked(StatusVictory)
	})
}

// AdvanceLevel moves to the next level without completing the word. It is
// rejected outside PLAYING and at MaxLevel.
func (s *Session) AdvanceLevel() bool {
	var ok bool
	s.mutate(func() *pendingReport {
		if s.state.Status != StatusPlaying || s.state.Level >= MaxLevel {
			return nil
		}
		s.advanceLevelLocked()
		ok = true
		return nil
	})
	return ok
}

func (s *Session) advanceLevelLocked() {
	s.state.Level = min(s.state.Level+1, MaxLevel)
	s.state.CollectedLetters = nil
	s.state.LaneCount = min(s.state.LaneCount+2, MaxLanes)
	s.state.Speed += LevelSpeedStep
	s.state.Status = StatusPlaying
	s.state.CurrentLane = 0
}
