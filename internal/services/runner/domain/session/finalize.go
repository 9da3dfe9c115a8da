package session

import "github.com/louisbranch/aurora-runner/internal/services/shared/sessionrecord"

// finalizeLocked folds the finished run into the aggregate stats exactly once
// per run and returns the record to report, or nil when already finalized.
func (s *Session) finalizeLocked() *pendingReport {
	if s.state.SessionFinalized {
		return nil
	}

	distance := sessionrecord.FloorDistance(s.state.Distance)
	s.state.BestScore = max(s.state.BestScore, s.state.Score)
	s.state.SessionsPlayed++
	s.state.TotalDistance = addSaturating(s.state.TotalDistance, distance)
	s.state.SessionFinalized = true

	record := sessionrecord.Record{
		Score:        s.state.Score,
		Distance:     distance,
		Level:        s.state.Level,
		Status:       string(s.state.Status),
		DifficultyID: string(s.state.DifficultyID),
		EndedAt:      s.now().UTC(),
	}
	s.logf("run %s finalized: status=%s score=%d distance=%d level=%d",
		s.state.RunID, record.Status, record.Score, record.Distance, record.Level)
	return &pendingReport{runID: s.state.RunID, record: record}
}
