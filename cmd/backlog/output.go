package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/backlog/internal/domain"
	"github.com/mmcdole/backlog/internal/search"
	"github.com/mmcdole/backlog/internal/tui/styles"
)

// clearSpinnerLine clears the progress line from the terminal
const clearSpinnerLine = "\r\033[K"

// printGames writes games as an aligned table
func printGames(w io.Writer, games []domain.Game) {
	if len(games) == 0 {
		fmt.Fprintln(w, styles.DimStyle.Render("No games found"))
		return
	}

	idWidth := 2
	titleWidth := 5
	for _, g := range games {
		idWidth = max(idWidth, len(fmt.Sprint(g.ID)))
		titleWidth = max(titleWidth, lipgloss.Width(g.Title))
	}
	titleWidth = min(titleWidth, 60)

	header := fmt.Sprintf("%*s   %-*s  %6s  %9s  %s", idWidth, "ID", titleWidth, "TITLE", "RATING", "PLAYTIME", "PLATFORM")
	fmt.Fprintln(w, styles.DimStyle.Render(header))
	for _, g := range games {
		title := styles.Truncate(g.Title, titleWidth)
		fmt.Fprintf(w, "%*d %s %s  %6s  %9s  %s\n",
			idWidth, g.ID,
			styles.RenderCompletion(g.Completed),
			title+strings.Repeat(" ", titleWidth-lipgloss.Width(title)),
			g.FormattedRating(),
			g.FormattedPlaytime(),
			g.Platform,
		)
	}
}

// printGame writes every field of a single game
func printGame(w io.Writer, g domain.Game) {
	fmt.Fprintln(w, styles.TitleStyle.Render(g.Title))

	status := "in backlog"
	if g.Completed {
		status = styles.SuccessStyle.Render("completed")
	}
	rows := [][2]string{
		{"ID", fmt.Sprint(g.ID)},
		{"Status", status},
		{"Rating", g.FormattedRating()},
		{"Platform", g.Platform},
		{"Genre", g.Genre},
		{"Developer", g.Developer},
		{"Playtime", g.FormattedPlaytime()},
	}
	if played := g.LastPlayed(); !played.IsZero() {
		rows = append(rows, [2]string{"Last played", played.Format("2006-01-02")})
	}
	if g.AppID != 0 {
		rows = append(rows, [2]string{"Steam app", g.AppID.String()})
	}
	if g.IconRef != "" {
		rows = append(rows, [2]string{"Icon", g.IconRef})
	}
	if g.Notes != "" {
		rows = append(rows, [2]string{"Notes", g.Notes})
	}
	if g.Review != "" {
		rows = append(rows, [2]string{"Review", g.Review})
	}

	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", styles.DimStyle.Render(fmt.Sprintf("%-12s", r[0])), r[1])
	}
}

// printMatches writes fuzzy search results, highlighting the matched characters
func printMatches(w io.Writer, matches []search.Match) {
	for _, m := range matches {
		fmt.Fprintf(w, "%5d %s %s\n", m.Game.ID, styles.RenderCompletion(m.Game.Completed), highlight(m.Game.Title, m.MatchedIndexes))
	}
}

// highlight renders the runes of s at the given byte offsets in the accent color
func highlight(s string, indexes []int) string {
	if len(indexes) == 0 {
		return s
	}
	matched := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		matched[i] = true
	}

	var b strings.Builder
	for i, r := range s {
		if matched[i] {
			b.WriteString(styles.AccentStyle.Bold(true).Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
