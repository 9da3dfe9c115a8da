package sessionrecord

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	apperrors "github.com/louisbranch/aurora-runner/internal/platform/errors"
)

func TestFloorDistance(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{98.8, 98},
		{0, 0},
		{-4.2, 0},
		{math.NaN(), 0},
		{math.Inf(-1), 0},
		{12, 12},
	}
	for _, tt := range tests {
		if got := FloorDistance(tt.in); got != tt.want {
			t.Fatalf("FloorDistance(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := Record{Score: 10, Distance: 3, Level: 1, Status: StatusGameOver, DifficultyID: "standard"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	tests := []struct {
		name  string
		edit  func(*Record)
		field string
	}{
		{"negative score", func(r *Record) { r.Score = -1 }, "score"},
		{"negative distance", func(r *Record) { r.Distance = -1 }, "distance"},
		{"zero level", func(r *Record) { r.Level = 0 }, "level"},
		{"menu status", func(r *Record) { r.Status = "MENU" }, "status"},
	}
	for _, tt := range tests {
		record := valid
		tt.edit(&record)
		err := record.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		if code := apperrors.CodeOf(err); code != apperrors.CodeRecordInvalid {
			t.Fatalf("%s: code = %s, want %s", tt.name, code, apperrors.CodeRecordInvalid)
		}
		if got := apperrors.MetadataOf(err)["Field"]; got != tt.field {
			t.Fatalf("%s: field = %q, want %q", tt.name, got, tt.field)
		}
	}
}

func TestRecordJSONKeys(t *testing.T) {
	record := Record{
		Score:        125,
		Distance:     98,
		Level:        2,
		Status:       StatusVictory,
		DifficultyID: "expert",
		EndedAt:      time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"score":125,"distance":98,"level":2,"status":"VICTORY","difficultyId":"expert","endedAt":"2026-10-18T12:00:00Z"}`
	if string(data) != want {
		t.Fatalf("json = %s, want %s", data, want)
	}
}
