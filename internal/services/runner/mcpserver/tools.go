package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/difficulty"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/labels"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/session"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/shop"
)

func registerTools(server *mcp.Server, s *session.Session, l labels.Resolver) {
	mcp.AddTool(server, &mcp.Tool{Name: "session_snapshot", Description: "Returns the current session state"},
		func(context.Context, *mcp.CallToolRequest, NoInput) (*mcp.CallToolResult, CommandResult, error) {
			return nil, CommandResult{Session: snapshotFrom(s.Snapshot())}, nil
		})
	mcp.AddTool(server, &mcp.Tool{Name: "shop_catalog", Description: "Lists shop items with localized names"},
		func(context.Context, *mcp.CallToolRequest, NoInput) (*mcp.CallToolResult, CatalogResult, error) {
			result := CatalogResult{Locale: l.Locale(), Items: []CatalogItem{}}
			for _, item := range shop.Catalog() {
				text := l.ShopItem(item)
				result.Items = append(result.Items, CatalogItem{
					ID:          string(item.ID),
					Name:        text.Label,
					Description: text.Description,
					Cost:        item.Cost,
					OneTime:     item.OneTime,
				})
			}
			return nil, result, nil
		})

	mcp.AddTool(server, &mcp.Tool{Name: "set_difficulty", Description: "Chooses the difficulty preset while in the menu"},
		gated(s, func(input DifficultyInput) (bool, error) {
			id, err := difficulty.Parse(input.Difficulty)
			if err != nil {
				return false, err
			}
			return s.SetDifficulty(id), nil
		}))
	mcp.AddTool(server, &mcp.Tool{Name: "start_game", Description: "Starts a run from the menu"},
		gated(s, func(NoInput) (bool, error) { return s.StartGame(), nil }))
	mcp.AddTool(server, &mcp.Tool{Name: "restart_game", Description: "Starts a new run after game over or victory"},
		gated(s, func(NoInput) (bool, error) { return s.RestartGame(), nil }))
	mcp.AddTool(server, &mcp.Tool{Name: "return_to_menu", Description: "Returns to the menu after a finished run"},
		gated(s, func(NoInput) (bool, error) { return s.ReturnToMenu(), nil }))
	mcp.AddTool(server, &mcp.Tool{Name: "open_shop", Description: "Pauses the run in the shop"},
		gated(s, func(NoInput) (bool, error) { return s.OpenShop(), nil }))
	mcp.AddTool(server, &mcp.Tool{Name: "close_shop", Description: "Resumes the run from the shop"},
		gated(s, func(NoInput) (bool, error) { return s.CloseShop(), nil }))
	mcp.AddTool(server, &mcp.Tool{Name: "set_status", Description: "Forces a status change; terminal statuses finalize the run"},
		gated(s, func(input StatusInput) (bool, error) {
			return s.SetStatus(session.Status(strings.ToUpper(strings.TrimSpace(input.Status)))), nil
		}))
	mcp.AddTool(server, &mcp.Tool{Name: "buy_item", Description: "Buys a shop item with score"},
		gated(s, func(input BuyInput) (bool, error) {
			id := shop.ID(strings.ToUpper(strings.TrimSpace(input.ItemID)))
			item, ok := shop.Lookup(id)
			if !ok {
				return false, fmt.Errorf("unknown shop item %q", input.ItemID)
			}
			cost := item.Cost
			if input.Cost != nil {
				cost = *input.Cost
			}
			return s.BuyItem(id, cost), nil
		}))
	mcp.AddTool(server, &mcp.Tool{Name: "activate_immortality", Description: "Opens the timed immortality window"},
		gated(s, func(NoInput) (bool, error) { return s.ActivateImmortality(), nil }))
	mcp.AddTool(server, &mcp.Tool{Name: "advance_level", Description: "Moves to the next level"},
		gated(s, func(NoInput) (bool, error) { return s.AdvanceLevel(), nil }))
	mcp.AddTool(server, &mcp.Tool{Name: "trigger_jump", Description: "Signals a jump"},
		gated(s, func(NoInput) (bool, error) { return s.TriggerJump(), nil }))

	mcp.AddTool(server, &mcp.Tool{Name: "add_score", Description: "Awards points scaled by difficulty"},
		command(s, func(input AmountInput) { s.AddScore(input.Amount) }))
	mcp.AddTool(server, &mcp.Tool{Name: "collect_gem", Description: "Collects a gem worth the given points"},
		command(s, func(input AmountInput) { s.CollectGem(input.Amount) }))
	mcp.AddTool(server, &mcp.Tool{Name: "collect_letter", Description: "Collects one slot of the target word"},
		command(s, func(input LetterInput) { s.CollectLetter(input.Index) }))
	mcp.AddTool(server, &mcp.Tool{Name: "set_distance", Description: "Records the distance travelled"},
		command(s, func(input DistanceInput) { s.SetDistance(input.Distance) }))
	mcp.AddTool(server, &mcp.Tool{Name: "set_target_lane", Description: "Moves to a lane, clamped to the track"},
		command(s, func(input LaneInput) { s.SetTargetLane(input.Lane) }))
	mcp.AddTool(server, &mcp.Tool{Name: "take_damage", Description: "Applies one hit"},
		command(s, func(NoInput) { s.TakeDamage() }))
}

// gated adapts a command that reports whether it was applied.
func gated[In any](s *session.Session, fn func(In) (bool, error)) mcp.ToolHandlerFor[In, CommandResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input In) (*mcp.CallToolResult, CommandResult, error) {
		accepted, err := fn(input)
		if err != nil {
			return nil, CommandResult{}, err
		}
		return nil, CommandResult{Accepted: &accepted, Session: snapshotFrom(s.Snapshot())}, nil
	}
}

func command[In any](s *session.Session, fn func(In)) mcp.ToolHandlerFor[In, CommandResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input In) (*mcp.CallToolResult, CommandResult, error) {
		fn(input)
		return nil, CommandResult{Session: snapshotFrom(s.Snapshot())}, nil
	}
}
