// Package difficulty holds the static difficulty preset catalog.
package difficulty

import (
	"fmt"
	"strings"
)

// ID identifies a difficulty preset.
type ID string

const (
	Relaxed  ID = "relaxed"
	Standard ID = "standard"
	Expert   ID = "expert"
)

// Preset is an immutable catalog entry that scales run speed and score awards.
type Preset struct {
	ID              ID
	Label           string
	Description     string
	SpeedMultiplier float64
	ScoreMultiplier float64
}

var presets = [...]Preset{
	{
		ID:              Relaxed,
		Label:           "RELAXED",
		Description:     "More reaction time and gentler progression.",
		SpeedMultiplier: 0.88,
		ScoreMultiplier: 0.85,
	},
	{
		ID:              Standard,
		Label:           "STANDARD",
		Description:     "Balanced for the core experience.",
		SpeedMultiplier: 1,
		ScoreMultiplier: 1,
	},
	{
		ID:              Expert,
		Label:           "EXPERT",
		Description:     "High speed and bigger rewards.",
		SpeedMultiplier: 1.18,
		ScoreMultiplier: 1.25,
	},
}

// Presets returns the catalog in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets[:])
	return out
}

// Lookup returns the preset for id and whether it exists.
func Lookup(id ID) (Preset, bool) {
	for _, preset := range presets {
		if preset.ID == id {
			return preset, true
		}
	}
	return Preset{}, false
}

// Resolve returns the preset for id. Unknown ids resolve to Standard.
func Resolve(id ID) Preset {
	if preset, ok := Lookup(id); ok {
		return preset
	}
	return presets[1]
}

// Parse normalizes raw input (case and surrounding space) into a known ID.
func Parse(raw string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := Lookup(id); !ok {
		return "", fmt.Errorf("unknown difficulty %q", raw)
	}
	return id, nil
}

// Next returns the preset after id in display order, wrapping around.
// Step may be negative.
func Next(id ID, step int) ID {
	idx := 1
	for i, preset := range presets {
		if preset.ID == id {
			idx = i
			break
		}
	}
	n := len(presets)
	return presets[((idx+step)%n+n)%n].ID
}
