package session

// SetDistance records the distance travelled this run. Negative and
// non-finite values become 0.
func (s *Session) SetDistance(distance float64) {
	s.mutate(func() *pendingReport {
		if s.state.Status != StatusPlaying {
			return nil
		}
		s.state.Distance = finite(distance)
		return nil
	})
}

// SetTargetLane moves to lane, clamped to the current lane range. State is
// only written when the clamped lane differs from the current one.
func (s *Session) SetTargetLane(lane int) {
	s.mutate(func() *pendingReport {
		limit := s.state.LaneCount / 2
		clamped := max(-limit, min(lane, limit))
		if clamped != s.state.CurrentLane {
			s.state.CurrentLane = clamped
		}
		return nil
	})
}

// TriggerJump signals a jump stamped with the current time in milliseconds.
func (s *Session) TriggerJump() bool {
	return s.TriggerJumpAt(s.now().UnixMilli())
}

// TriggerJumpAt signals a jump at timestamp ms. Repeating the previous
// timestamp is ignored.
func (s *Session) TriggerJumpAt(ms int64) bool {
	var ok bool
	s.mutate(func() *pendingReport {
		if ms == s.state.JumpSignal {
			return nil
		}
		s.state.JumpSignal = ms
		ok = true
		return nil
	})
	return ok
}
