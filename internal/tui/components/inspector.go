package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/backlog/internal/domain"
	"github.com/mmcdole/backlog/internal/tui/styles"
)

// InspectorBorderHeight is the vertical space taken by the border
const InspectorBorderHeight = 2

// Inspector displays the full record of the selected game
type Inspector struct {
	game   *domain.Game
	width  int
	height int
}

// NewInspector creates a new inspector component
func NewInspector() Inspector {
	return Inspector{}
}

// SetGame sets the game to display; nil clears the panel
func (i *Inspector) SetGame(g *domain.Game) {
	i.game = g
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
}

// HasGame returns true if there is a game to display
func (i Inspector) HasGame() bool {
	return i.game != nil
}

// View renders the component
func (i Inspector) View() string {
	contentWidth := max(i.width-4, 10)
	contentHeight := max(i.height-InspectorBorderHeight, 1)

	var lines []string
	if i.game == nil {
		lines = []string{styles.DimStyle.Render("No game selected")}
	} else {
		lines = i.render(contentWidth)
	}
	if len(lines) > contentHeight {
		lines = lines[:contentHeight]
	}

	return styles.InspectorStyle.
		Width(i.width - InspectorBorderHeight).
		Height(contentHeight).
		Render(strings.Join(lines, "\n"))
}

func (i Inspector) render(width int) []string {
	g := i.game
	lines := []string{
		styles.TitleStyle.Render(styles.Truncate(g.Title, width)),
		"",
		styles.RenderCompletion(g.Completed) + " " + completionLabel(g.Completed),
		styles.RenderStars(g.Rating),
		"",
	}

	field := func(label, value string) {
		if value == "" {
			return
		}
		lines = append(lines, styles.DimStyle.Render(fmt.Sprintf("%-10s", label))+styles.Truncate(value, width-10))
	}
	field("Platform", g.Platform)
	field("Genre", g.Genre)
	field("Developer", g.Developer)
	field("Playtime", g.FormattedPlaytime())
	if played := g.LastPlayed(); !played.IsZero() {
		field("Played", played.Format("2006-01-02"))
	}
	if g.AppID != 0 {
		field("App ID", g.AppID.String())
	}
	field("ID", fmt.Sprintf("%d", g.ID))

	for _, block := range []struct{ label, text string }{
		{"Notes", g.Notes},
		{"Review", g.Review},
	} {
		if block.text == "" {
			continue
		}
		lines = append(lines, "", styles.AccentStyle.Render(block.label))
		lines = append(lines, strings.Split(wordWrap(block.text, width), "\n")...)
	}
	return lines
}

func completionLabel(completed bool) string {
	if completed {
		return styles.SuccessStyle.Render("Completed")
	}
	return styles.SubtitleStyle.Render("In backlog")
}

// wordWrap wraps text at word boundaries
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(text) {
		wordLen := lipgloss.Width(word)
		if lineLen > 0 && lineLen+wordLen+1 > width {
			result.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}
		result.WriteString(word)
		lineLen += wordLen
	}
	return result.String()
}
