// Package sessionrecord defines the telemetry record a finished run produces
// and the validation both the runner and the collector apply to it.
package sessionrecord

import (
	"math"
	"time"

	apperrors "github.com/louisbranch/aurora-runner/internal/platform/errors"
)

// Terminal statuses accepted in a record.
const (
	StatusGameOver = "GAME_OVER"
	StatusVictory  = "VICTORY"
)

// RunIDHeader carries the run identifier alongside the JSON body.
const RunIDHeader = "X-Run-ID"

// Record is the immutable summary of one finished run.
type Record struct {
	Score        int64     `json:"score"`
	Distance     int64     `json:"distance"`
	Level        int       `json:"level"`
	Status       string    `json:"status"`
	DifficultyID string    `json:"difficultyId"`
	EndedAt      time.Time `json:"endedAt"`
}

// FloorDistance converts a raw run distance to the whole units reported in
// records and aggregate stats. Negative and non-finite input yields 0.
func FloorDistance(distance float64) int64 {
	if math.IsNaN(distance) || distance <= 0 {
		return 0
	}
	if math.IsInf(distance, 1) || distance >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Floor(distance))
}

// Validate reports the first schema violation in r.
func (r Record) Validate() error {
	switch {
	case r.Score < 0:
		return invalid("score", "must not be negative")
	case r.Distance < 0:
		return invalid("distance", "must not be negative")
	case r.Level < 1:
		return invalid("level", "must be at least 1")
	case r.Status != StatusGameOver && r.Status != StatusVictory:
		return invalid("status", "must be GAME_OVER or VICTORY")
	}
	return nil
}

func invalid(field, reason string) error {
	return apperrors.WithMetadata(apperrors.CodeRecordInvalid, field+" "+reason, map[string]string{
		"Field":  field,
		"Reason": reason,
	})
}

// Token claims shared by the runner signer and the collector verifier.
const (
	TokenIssuer   = "aurora-runner"
	TokenAudience = "aurora-collector"
)
