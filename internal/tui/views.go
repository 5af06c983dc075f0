package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/backlog/internal/domain"
	"github.com/mmcdole/backlog/internal/tui/styles"
)

// View renders the whole screen
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.ShowHelp {
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.renderHelp())
	}

	layout := m.calculateColumnLayout(m.Width)
	body := m.renderList(layout.listWidth, m.contentHeight())
	if layout.inspectorWidth > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.Inspector.View())
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)

	switch {
	case m.Prompt.IsOpen():
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.Prompt.View(len(m.Games)))
	case m.ConfirmDelete:
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.renderDeleteConfirmation())
	}
	return view
}

// renderHeader renders the title line with badges for the active view
func (m Model) renderHeader() string {
	parts := []string{
		styles.TitleStyle.Render("backlog"),
		styles.BadgeStyle.Render("sort: " + m.SortAxis.String()),
	}
	if m.FilterAxis != domain.FilterNone {
		parts = append(parts, styles.BadgeStyle.Render(m.FilterAxis.String()))
	} else {
		parts = append(parts, styles.DimBadgeStyle.Render("all"))
	}
	if m.Keyword != "" {
		parts = append(parts, styles.BadgeStyle.Render(fmt.Sprintf("%q", m.Keyword)))
	}
	parts = append(parts, styles.DimStyle.Render(fmt.Sprintf("%d games", len(m.Games))))

	return strings.Join(parts, " ") + "\n"
}

// renderList renders the visible window of the game list
func (m Model) renderList(width, height int) string {
	if len(m.Games) == 0 {
		msg := "No games. Press r to sync your Steam library."
		if m.Keyword != "" || m.FilterAxis != domain.FilterNone {
			msg = "No games match this view."
		}
		return styles.BrowserStyle.Width(width).Height(height).Render(styles.DimStyle.Render(msg))
	}

	const ratingWidth = 5
	const playtimeWidth = 9
	titleWidth := max(width-ratingWidth-playtimeWidth-8, 10)

	end := min(m.Offset+height, len(m.Games))
	rows := make([]string, 0, height)
	for i := m.Offset; i < end; i++ {
		g := m.Games[i]
		gold := styles.Gold
		mark := styles.IncompleteChar
		if g.Completed {
			mark = styles.CompletedChar
		}
		parts := []styles.RowPart{
			{Text: mark, Foreground: completionColor(g.Completed)},
			{Text: " " + padRight(styles.Truncate(g.Title, titleWidth), titleWidth)},
			{Text: " " + padLeft(g.FormattedRating(), ratingWidth), Foreground: &gold},
			{Text: " " + padLeft(g.FormattedPlaytime(), playtimeWidth)},
		}
		rows = append(rows, styles.RenderListRow(parts, i == m.Cursor, width))
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(rows, "\n"))
}

func completionColor(completed bool) *lipgloss.Color {
	c := styles.SteamBlue
	if completed {
		c = styles.Green
	}
	return &c
}

// renderFooter renders a single-line footer: status on the left, key hints on the right
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.Sync.Active():
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render(m.Sync.Label())
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	var hints []string
	for _, b := range Keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	right := strings.Join(hints, "  ")

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Not enough space - keep the status
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the help screen from the key map
func (m Model) renderHelp() string {
	columns := Keys.FullHelp()
	rendered := make([]string, 0, len(columns))
	for _, col := range columns {
		lines := make([]string, 0, len(col))
		for _, b := range col {
			lines = append(lines, helpLine(b))
		}
		rendered = append(rendered, lipgloss.NewStyle().MarginRight(4).Render(strings.Join(lines, "\n")))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Keys"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, rendered...),
		"",
		styles.DimStyle.Render("Press any key to close"),
	)
	return styles.ModalStyle.Render(content)
}

func helpLine(b key.Binding) string {
	h := b.Help()
	return styles.HelpKeyStyle.Render(padRight(h.Key, 8)) + styles.HelpDescStyle.Render(h.Desc)
}

// renderDeleteConfirmation renders the delete prompt for the selected game
func (m Model) renderDeleteConfirmation() string {
	g, _ := m.selected()
	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Delete "+styles.Truncate(g.Title, 40)+"?"),
		"",
		styles.HelpKeyStyle.Render("y")+styles.HelpDescStyle.Render(" delete  ")+
			styles.HelpKeyStyle.Render("n")+styles.HelpDescStyle.Render(" cancel"),
	))
}

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
}

func padRight(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}
