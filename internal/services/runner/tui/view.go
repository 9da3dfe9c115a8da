package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/difficulty"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/session"
)

var (
	styleBase   = tcell.StyleDefault
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleAccent = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleDanger = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleShield = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
)

// trackRows is how many screen rows the visible stretch of track spans.
const trackRows = 14

// Draw renders the current snapshot.
func (g *Game) Draw(screen tcell.Screen) {
	screen.Clear()
	state := g.rt.Session.Snapshot()
	switch state.Status {
	case session.StatusMenu:
		g.drawMenu(screen, state)
	case session.StatusPlaying:
		g.drawHUD(screen, state)
		g.drawTrack(screen, state)
	case session.StatusShop:
		g.drawHUD(screen, state)
		g.drawShop(screen, state)
	default:
		g.drawEnd(screen, state)
	}
	screen.Show()
}

func (g *Game) drawMenu(screen tcell.Screen, state session.State) {
	l := g.rt.Labels
	drawText(screen, 2, 1, styleTitle, l.UI("ui.menu.title"))
	drawText(screen, 2, 2, styleDim, l.UI("ui.menu.subtitle"))

	row := 4
	for _, preset := range difficulty.Presets() {
		text := l.Difficulty(preset)
		style, marker := styleBase, "  "
		if preset.ID == state.DifficultyID {
			style, marker = styleAccent, "> "
		}
		drawText(screen, 2, row, style, marker+text.Label)
		drawText(screen, 14, row, styleDim, text.Description)
		row++
	}

	row++
	drawText(screen, 2, row, styleBase, fmt.Sprintf("%s: %s", l.UI("ui.menu.best_score"), l.Number(state.BestScore)))
	drawText(screen, 2, row+1, styleBase, fmt.Sprintf("%s: %s", l.UI("ui.menu.sessions"), l.Number(int64(state.SessionsPlayed))))
	drawText(screen, 2, row+3, styleDim, l.UI("ui.menu.start"))
}

func (g *Game) drawHUD(screen tcell.Screen, state session.State) {
	l := g.rt.Labels
	drawText(screen, 1, 0, styleBase, fmt.Sprintf("%s %s  %s %d/%d  %s %d  %s %.1f  %s %s  %s %d",
		l.UI("ui.hud.score"), l.Number(state.Score),
		l.UI("ui.hud.lives"), state.Lives, state.MaxLives,
		l.UI("ui.hud.level"), state.Level,
		l.UI("ui.hud.speed"), state.Speed,
		l.UI("ui.hud.distance"), l.Number(int64(state.Distance)),
		l.UI("ui.hud.gems"), state.GemsCollected,
	))

	var word strings.Builder
	for i, r := range session.TargetWord {
		if state.HasLetter(i) {
			word.WriteRune(r)
		} else {
			word.WriteRune('_')
		}
	}
	drawText(screen, 1, 1, styleAccent, word.String())
	if state.IsImmortalityActive {
		drawText(screen, 10, 1, styleShield, l.UI("ui.hud.shield"))
	}
}

func (g *Game) drawTrack(screen tcell.Screen, state session.State) {
	limit := state.LaneCount / 2
	top := 3
	left := 4
	laneX := func(lane int) int { return left + (lane+limit)*4 + 1 }

	for row := 0; row < trackRows; row++ {
		for lane := -limit; lane <= limit+1; lane++ {
			screen.SetContent(laneX(lane)-2, top+row, '|', nil, styleDim)
		}
	}
	for _, entity := range g.world.Entities() {
		row := trackRows - 1 - int(entity.Z/SpawnAhead*float64(trackRows-1))
		if row < 0 || row >= trackRows-1 {
			continue
		}
		glyph, style := entityGlyph(entity)
		screen.SetContent(laneX(entity.Lane), top+row, glyph, nil, style)
	}

	player, style := 'A', styleAccent
	if state.IsImmortalityActive {
		player, style = '@', styleShield
	}
	screen.SetContent(laneX(state.CurrentLane), top+trackRows-1, player, nil, style)
}

func entityGlyph(entity Entity) (rune, tcell.Style) {
	switch entity.Kind {
	case KindObstacle:
		return '#', styleDanger
	case KindGem:
		return '*', styleAccent
	case KindLetter:
		return rune(session.TargetWord[entity.Letter]), styleTitle
	default:
		return '$', styleShield
	}
}

func (g *Game) drawShop(screen tcell.Screen, state session.State) {
	l := g.rt.Labels
	drawText(screen, 2, 3, styleTitle, l.UI("shop.title"))
	row := 5
	owned := state.Owned()
	for i, item := range g.world.Offers() {
		text := l.ShopItem(item)
		style := styleBase
		if state.Score < item.Cost || owned.Has(item) {
			style = styleDim
		}
		drawText(screen, 2, row, style, fmt.Sprintf("%d. %s (%s)", i+1, text.Label, l.Number(item.Cost)))
		drawText(screen, 5, row+1, styleDim, text.Description)
		row += 3
	}
	drawText(screen, 2, row, styleDim, l.UI("shop.hint"))
}

func (g *Game) drawEnd(screen tcell.Screen, state session.State) {
	l := g.rt.Labels
	title, body, style := l.UI("ui.end.loss.title"), l.UI("ui.end.loss.body"), styleDanger
	if state.Status == session.StatusVictory {
		title, body, style = l.UI("ui.end.win.title"), l.UI("ui.end.win.body"), styleTitle
	}
	drawText(screen, 2, 2, style, title)
	drawText(screen, 2, 3, styleBase, body)
	drawText(screen, 2, 5, styleBase, fmt.Sprintf("%s: %s", l.UI("ui.hud.score"), l.Number(state.Score)))
	drawText(screen, 2, 6, styleBase, fmt.Sprintf("%s: %s", l.UI("ui.hud.distance"), l.Number(int64(state.Distance))))
	drawText(screen, 2, 7, styleBase, fmt.Sprintf("%s: %s", l.UI("ui.menu.best_score"), l.Number(state.BestScore)))
	if result, ok := g.rt.LastDelivery(); ok && result.RunID == state.RunID {
		drawText(screen, 2, 9, styleDim, "telemetry: "+string(result.Outcome))
	}
	drawText(screen, 2, 11, styleDim, l.UI("ui.end.actions"))
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	width, _ := screen.Size()
	for _, r := range text {
		if x >= width {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
