package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/backlog/internal/tui/styles"
)

const promptWidth = 40

// KeywordPrompt edits the title keyword of the live query. The keyword
// applies while typing; Esc restores the keyword the prompt opened with.
type KeywordPrompt struct {
	open     bool
	previous string
	input    textinput.Model
}

func NewKeywordPrompt() KeywordPrompt {
	ti := textinput.New()
	ti.Placeholder = "part of a title"
	ti.CharLimit = 80
	ti.Width = promptWidth - 4
	ti.Prompt = "/ "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	return KeywordPrompt{input: ti}
}

// Open shows the prompt seeded with the current keyword
func (p *KeywordPrompt) Open(keyword string) tea.Cmd {
	p.open = true
	p.previous = keyword
	p.input.SetValue(keyword)
	p.input.CursorEnd()
	return p.input.Focus()
}

func (p KeywordPrompt) IsOpen() bool { return p.open }

// Keyword is the text currently in the prompt
func (p KeywordPrompt) Keyword() string { return p.input.Value() }

// Update feeds a message to the prompt while it is open
func (p KeywordPrompt) Update(msg tea.Msg) (KeywordPrompt, tea.Cmd) {
	if !p.open {
		return p, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			p.close()
			return p, nil
		case tea.KeyEsc:
			p.input.SetValue(p.previous)
			p.close()
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *KeywordPrompt) close() {
	p.open = false
	p.input.Blur()
}

// View renders the prompt with the size of the current result
func (p KeywordPrompt) View(matches int) string {
	if !p.open {
		return ""
	}

	row := lipgloss.NewStyle().Width(promptWidth).Background(styles.SlateDark)
	title := row.Foreground(styles.White).Bold(true).Render("Filter by title")
	hint := row.Inherit(styles.DimStyle).Render(fmt.Sprintf("%d games · case-sensitive · enter keep · esc undo", matches))

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		row.Render(p.input.View()),
		hint,
	))
}
