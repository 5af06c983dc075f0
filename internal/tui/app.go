package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/backlog/internal/domain"
	"github.com/mmcdole/backlog/internal/tui/components"
)

// Layout constants
const (
	HeaderHeight           = 2 // Title line + blank
	FooterHeight           = 1
	InspectorColumnPercent = 40
	MinInspectorWidth      = 30
	MinSplitWidth          = 80 // Below this the inspector is hidden

	statusTimeout = 3 * time.Second
	tickInterval  = 100 * time.Millisecond
)

// Launcher starts a game outside the terminal
type Launcher interface {
	Launch(game domain.Game) error
}

// subscribeMsg asks the model to (re)open its live query
type subscribeMsg struct{}

// Model is the main Bubble Tea model for the live catalog view
type Model struct {
	// Services
	Queries  domain.CatalogQueries
	Commands domain.CatalogCommands
	Launcher Launcher
	UserID   string // steamid64 used by the sync key; empty disables it

	// Current live query
	SortAxis   domain.SortAxis
	FilterAxis domain.FilterAxis
	Keyword    string

	// Data
	Games  []domain.Game
	Cursor int
	Offset int // First visible row

	// UI Components
	Inspector components.Inspector
	Prompt    components.KeywordPrompt
	Sync      components.SyncState

	// Dimensions
	Width  int
	Height int
	Ready  bool

	// UI state
	ShowInspector bool
	ShowHelp      bool
	ConfirmDelete bool
	StatusMsg     string
	StatusIsErr   bool
	statusSeq     int
	SpinnerFrame  int

	watchGen     int
	currentWatch <-chan []domain.Game
	cancelWatch  context.CancelFunc
	cancelSync   context.CancelFunc
}

// NewModel creates a new application model
func NewModel(queries domain.CatalogQueries, commands domain.CatalogCommands, launcher Launcher, userID string) Model {
	return Model{
		Queries:       queries,
		Commands:      commands,
		Launcher:      launcher,
		UserID:        userID,
		Inspector:     components.NewInspector(),
		Prompt:        components.NewKeywordPrompt(),
		ShowInspector: true,
	}
}

// WithView sets the initial sort, filter and keyword
func (m Model) WithView(sortAxis domain.SortAxis, filterAxis domain.FilterAxis, keyword string) Model {
	if sortAxis.Valid() {
		m.SortAxis = sortAxis
	}
	if filterAxis >= domain.FilterNone && filterAxis <= domain.FilterIncomplete {
		m.FilterAxis = filterAxis
	}
	m.Keyword = keyword
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return subscribeMsg{} },
		TickCmd(tickInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case subscribeMsg:
		cmd := m.subscribe()
		return m, cmd

	case GamesMsg:
		if msg.Gen != m.watchGen {
			return m, nil // Emission from a replaced query
		}
		m.setGames(msg.Games)
		return m, waitForGamesCmd(msg.Gen, m.currentWatch)

	case WatchClosedMsg:
		return m, nil

	case SyncProgressMsg:
		m.Sync = m.Sync.Apply(msg.Progress)
		if !msg.Progress.InProgress {
			m.stopSync()
			if msg.Progress.Err != nil {
				slog.Error("sync failed", "userID", msg.Progress.UserID, "error", msg.Progress.Err)
				cmd := m.setStatus(m.Sync.Label(), true)
				return m, cmd
			}
			cmd := m.setStatus(m.Sync.Label(), false)
			return m, cmd
		}
		return m, msg.NextCmd

	case GameUpdatedMsg:
		cmd := m.setStatus(fmt.Sprintf("%s %s", msg.Game.Title, msg.Verb), false)
		return m, cmd

	case GameDeletedMsg:
		cmd := m.setStatus("Deleted "+msg.Title, false)
		return m, cmd

	case GameLaunchedMsg:
		cmd := m.setStatus("Launching "+msg.Title, false)
		return m, cmd

	case ErrMsg:
		slog.Error("tui error", "context", msg.Context, "error", msg.Err)
		cmd := m.setStatus(msg.Error(), true)
		return m, cmd

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(tickInterval)
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Keyword prompt captures all input while open
	if m.Prompt.IsOpen() {
		var cmd tea.Cmd
		m.Prompt, cmd = m.Prompt.Update(msg)
		if v := m.Prompt.Keyword(); v != m.Keyword {
			m.Keyword = v
			watch := m.subscribe()
			return m, tea.Batch(cmd, watch)
		}
		return m, cmd
	}

	if m.ConfirmDelete {
		m.ConfirmDelete = false
		if key.Matches(msg, Keys.Confirm) {
			if g, ok := m.selected(); ok {
				return m, DeleteCmd(m.Commands, g)
			}
		}
		return m, nil
	}

	if m.ShowHelp {
		m.ShowHelp = false
		if key.Matches(msg, Keys.Quit) {
			return m.quit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m.quit()

	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true

	case key.Matches(msg, Keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, Keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, Keys.HalfUp):
		m.moveCursor(-max(m.listHeight()/2, 1))
	case key.Matches(msg, Keys.HalfDown):
		m.moveCursor(max(m.listHeight()/2, 1))
	case key.Matches(msg, Keys.Home):
		m.moveCursor(-len(m.Games))
	case key.Matches(msg, Keys.End):
		m.moveCursor(len(m.Games))

	case key.Matches(msg, Keys.Sort):
		m.SortAxis = (m.SortAxis + 1) % domain.SortAxis(len(domain.SortAxes))
		cmd := m.subscribe()
		return m, cmd

	case key.Matches(msg, Keys.Filter):
		m.FilterAxis = (m.FilterAxis + 1) % domain.FilterAxis(len(domain.FilterAxes))
		cmd := m.subscribe()
		return m, cmd

	case key.Matches(msg, Keys.Keyword):
		cmd := m.Prompt.Open(m.Keyword)
		return m, cmd

	case key.Matches(msg, Keys.Escape):
		if m.Keyword != "" {
			m.Keyword = ""
			cmd := m.subscribe()
			return m, cmd
		}

	case key.Matches(msg, Keys.ToggleInspector):
		m.ShowInspector = !m.ShowInspector
		m.updateLayout()

	case key.Matches(msg, Keys.ToggleCompleted):
		if g, ok := m.selected(); ok {
			return m, SetCompletedCmd(m.Commands, g.ID, !g.Completed)
		}

	case key.Matches(msg, Keys.Rate):
		if g, ok := m.selected(); ok {
			rating, _ := strconv.ParseFloat(msg.String(), 64)
			return m, RateCmd(m.Commands, g.ID, rating)
		}

	case key.Matches(msg, Keys.Play):
		if g, ok := m.selected(); ok && m.Launcher != nil {
			return m, LaunchCmd(m.Launcher, g)
		}

	case key.Matches(msg, Keys.Delete):
		if _, ok := m.selected(); ok {
			m.ConfirmDelete = true
		}

	case key.Matches(msg, Keys.Sync):
		if m.Sync.Active() {
			return m, nil
		}
		if m.UserID == "" {
			cmd := m.setStatus("No Steam user configured (backlog config set-user)", true)
			return m, cmd
		}
		m.Sync = components.SyncState{Status: components.StatusSyncing}
		ctx, cancel := context.WithCancel(context.Background())
		m.cancelSync = cancel
		return m, SyncCmd(ctx, m.Commands, m.UserID)
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancelWatch != nil {
		m.cancelWatch()
	}
	m.stopSync()
	return m, tea.Quit
}

// stopSync cancels a running sync, if any
func (m *Model) stopSync() {
	if m.cancelSync != nil {
		m.cancelSync()
		m.cancelSync = nil
	}
}

// subscribe replaces the live query with one for the current sort, filter and keyword
func (m *Model) subscribe() tea.Cmd {
	if m.cancelWatch != nil {
		m.cancelWatch()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelWatch = cancel
	m.watchGen++
	m.currentWatch = m.Queries.Dispatch(ctx, int(m.SortAxis), int(m.FilterAxis), m.Keyword)
	return waitForGamesCmd(m.watchGen, m.currentWatch)
}

// setGames replaces the list, keeping the selection on the same game when it is still present
func (m *Model) setGames(games []domain.Game) {
	var selectedID int64
	if g, ok := m.selected(); ok {
		selectedID = g.ID
	}
	m.Games = games

	m.Cursor = min(m.Cursor, max(len(games)-1, 0))
	for i, g := range games {
		if g.ID == selectedID {
			m.Cursor = i
			break
		}
	}
	m.clampOffset()
	m.updateInspector()
}

func (m *Model) moveCursor(delta int) {
	if len(m.Games) == 0 {
		return
	}
	m.Cursor = max(0, min(len(m.Games)-1, m.Cursor+delta))
	m.clampOffset()
	m.updateInspector()
}

// clampOffset keeps the cursor within the visible window
func (m *Model) clampOffset() {
	h := m.listHeight()
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+h {
		m.Offset = m.Cursor - h + 1
	}
	m.Offset = max(0, min(m.Offset, max(len(m.Games)-h, 0)))
}

func (m Model) selected() (domain.Game, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Games) {
		return domain.Game{}, false
	}
	return m.Games[m.Cursor], true
}

func (m *Model) updateInspector() {
	if g, ok := m.selected(); ok {
		m.Inspector.SetGame(&g)
		return
	}
	m.Inspector.SetGame(nil)
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(m.statusSeq, statusTimeout)
}
