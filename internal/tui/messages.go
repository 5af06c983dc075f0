package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/backlog/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// GamesMsg carries one emission of the current live query.
// Gen identifies the subscription so emissions from a replaced query are dropped.
type GamesMsg struct {
	Gen   int
	Games []domain.Game
}

// WatchClosedMsg signals that a live query channel was closed
type WatchClosedMsg struct {
	Gen int
}

// SyncProgressMsg is sent for each progress update of a running sync
type SyncProgressMsg struct {
	Progress domain.SyncProgress
	NextCmd  tea.Cmd // Reads the next update; nil after the final one
}

// GameUpdatedMsg signals a successful edit of a single game
type GameUpdatedMsg struct {
	Game domain.Game
	Verb string // "completed", "rated", ...
}

// GameDeletedMsg signals that a game was removed
type GameDeletedMsg struct {
	Title string
}

// GameLaunchedMsg signals that the launcher started a game
type GameLaunchedMsg struct {
	Title string
}

// TickMsg is sent periodically for spinner animation
type TickMsg struct{}

// ClearStatusMsg clears a transient status message
type ClearStatusMsg struct {
	Seq int
}
