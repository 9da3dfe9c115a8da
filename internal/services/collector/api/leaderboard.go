package api

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	i18ncatalog "github.com/louisbranch/aurora-runner/internal/platform/i18n/catalog"
	"github.com/louisbranch/aurora-runner/internal/services/collector/storage"
)

// LeaderboardSize is the number of rows rendered on the leaderboard page.
const LeaderboardSize = 10

// LeaderboardPage renders the top records as a standalone HTML page.
func LeaderboardPage(records []storage.SessionRecord, bundle *i18ncatalog.Bundle, locale string) templ.Component {
	t := func(key string) string {
		if value, ok := bundle.Message(locale, key); ok {
			return value
		}
		return key
	}
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		title := templ.EscapeString(t("collector.leaderboard.title"))
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="%s"><head><meta charset="utf-8"><title>%s</title></head><body><main><h1>%s</h1>`,
			templ.EscapeString(locale), title, title); err != nil {
			return err
		}
		if len(records) == 0 {
			if _, err := fmt.Fprintf(w, `<p class="empty">%s</p>`, templ.EscapeString(t("collector.leaderboard.empty"))); err != nil {
				return err
			}
			_, err := io.WriteString(w, `</main></body></html>`)
			return err
		}

		if _, err := io.WriteString(w, `<table><thead><tr>`); err != nil {
			return err
		}
		for _, key := range []string{
			"collector.leaderboard.rank",
			"collector.leaderboard.score",
			"collector.leaderboard.distance",
			"collector.leaderboard.level",
			"collector.leaderboard.status",
			"collector.leaderboard.difficulty",
			"collector.leaderboard.ended_at",
		} {
			if _, err := fmt.Fprintf(w, `<th>%s</th>`, templ.EscapeString(t(key))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tr></thead><tbody>`); err != nil {
			return err
		}
		for i, record := range records {
			cells := []string{
				strconv.Itoa(i + 1),
				strconv.FormatInt(record.Record.Score, 10),
				strconv.FormatInt(record.Record.Distance, 10),
				strconv.Itoa(record.Record.Level),
				t("collector.status." + record.Record.Status),
				difficultyLabel(bundle, locale, record.Record.DifficultyID),
				record.Record.EndedAt.UTC().Format(time.RFC3339),
			}
			if _, err := io.WriteString(w, `<tr>`); err != nil {
				return err
			}
			for _, cell := range cells {
				if _, err := fmt.Fprintf(w, `<td>%s</td>`, templ.EscapeString(cell)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</tr>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table></main></body></html>`)
		return err
	})
}

func difficultyLabel(bundle *i18ncatalog.Bundle, locale, difficultyID string) string {
	if difficultyID == "" {
		return "-"
	}
	if label, ok := bundle.Message(locale, "difficulty."+difficultyID+".label"); ok {
		return label
	}
	return difficultyID
}
