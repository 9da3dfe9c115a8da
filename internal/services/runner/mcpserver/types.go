package mcpserver

import (
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/session"
)

// NoInput is the input of tools that take no arguments.
type NoInput struct{}

// DifficultyInput represents the MCP tool input for set_difficulty.
type DifficultyInput struct {
	Difficulty string `json:"difficulty" jsonschema:"difficulty preset id (relaxed, standard, expert)"`
}

// StatusInput represents the MCP tool input for set_status.
type StatusInput struct {
	Status string `json:"status" jsonschema:"target status (MENU, GAME_OVER, VICTORY)"`
}

// AmountInput represents the MCP tool input for add_score and collect_gem.
type AmountInput struct {
	Amount float64 `json:"amount" jsonschema:"base points before the difficulty multiplier"`
}

// LetterInput represents the MCP tool input for collect_letter.
type LetterInput struct {
	Index int `json:"index" jsonschema:"zero-based slot of the target word"`
}

// DistanceInput represents the MCP tool input for set_distance.
type DistanceInput struct {
	Distance float64 `json:"distance" jsonschema:"distance travelled this run"`
}

// LaneInput represents the MCP tool input for set_target_lane.
type LaneInput struct {
	Lane int `json:"lane" jsonschema:"signed lane index, 0 is the center"`
}

// BuyInput represents the MCP tool input for buy_item.
type BuyInput struct {
	ItemID string `json:"item_id" jsonschema:"shop item id (DOUBLE_JUMP, MAX_LIFE, HEAL, IMMORTAL)"`
	Cost   *int64 `json:"cost,omitempty" jsonschema:"price to charge, defaults to the catalog price"`
}

// CommandResult is the output of every tool: the post-command snapshot
// and, for commands that can be rejected, whether it was applied.
type CommandResult struct {
	Accepted *bool    `json:"accepted,omitempty" jsonschema:"whether the command was applied"`
	Session  Snapshot `json:"session" jsonschema:"session state after the command"`
}

// Snapshot is the wire form of a session state.
type Snapshot struct {
	Status              string  `json:"status"`
	RunID               string  `json:"run_id"`
	Score               int64   `json:"score"`
	Distance            float64 `json:"distance"`
	Speed               float64 `json:"speed"`
	Lives               int     `json:"lives"`
	MaxLives            int     `json:"max_lives"`
	CollectedLetters    []int   `json:"collected_letters"`
	Level               int     `json:"level"`
	LaneCount           int     `json:"lane_count"`
	CurrentLane         int     `json:"current_lane"`
	JumpSignal          int64   `json:"jump_signal"`
	GemsCollected       int     `json:"gems_collected"`
	HasDoubleJump       bool    `json:"has_double_jump"`
	HasImmortality      bool    `json:"has_immortality"`
	IsImmortalityActive bool    `json:"is_immortality_active"`
	DifficultyID        string  `json:"difficulty_id"`
	BestScore           int64   `json:"best_score"`
	SessionsPlayed      int     `json:"sessions_played"`
	TotalDistance       int64   `json:"total_distance"`
	SessionFinalized    bool    `json:"session_finalized"`
}

// CatalogItem is one localized shop entry.
type CatalogItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
	OneTime     bool   `json:"one_time"`
}

// CatalogResult represents the MCP tool output for shop_catalog.
type CatalogResult struct {
	Locale string        `json:"locale"`
	Items  []CatalogItem `json:"items"`
}

func snapshotFrom(st session.State) Snapshot {
	return Snapshot{
		Status:              string(st.Status),
		RunID:               st.RunID,
		Score:               st.Score,
		Distance:            st.Distance,
		Speed:               st.Speed,
		Lives:               st.Lives,
		MaxLives:            st.MaxLives,
		CollectedLetters:    append([]int{}, st.CollectedLetters...),
		Level:               st.Level,
		LaneCount:           st.LaneCount,
		CurrentLane:         st.CurrentLane,
		JumpSignal:          st.JumpSignal,
		GemsCollected:       st.GemsCollected,
		HasDoubleJump:       st.HasDoubleJump,
		HasImmortality:      st.HasImmortality,
		IsImmortalityActive: st.IsImmortalityActive,
		DifficultyID:        string(st.DifficultyID),
		BestScore:           st.BestScore,
		SessionsPlayed:      st.SessionsPlayed,
		TotalDistance:       st.TotalDistance,
		SessionFinalized:    st.SessionFinalized,
	}
}
