package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/backlog/internal/catalog"
	"github.com/mmcdole/backlog/internal/domain"
)

// Command factories for async operations

// waitForGamesCmd reads the next emission of a live query.
// The model re-issues it after every GamesMsg for the same generation.
func waitForGamesCmd(gen int, ch <-chan []domain.Game) tea.Cmd {
	return func() tea.Msg {
		games, ok := <-ch
		if !ok {
			return WatchClosedMsg{Gen: gen}
		}
		return GamesMsg{Gen: gen, Games: games}
	}
}

// SyncCmd imports the user's owned games with streaming progress updates.
// Uses a continuation pattern to pump all progress messages to the UI.
// Cancelling ctx aborts the sync and releases its goroutine.
func SyncCmd(ctx context.Context, cmds domain.CatalogCommands, userID string) tea.Cmd {
	return func() tea.Msg {
		syncCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)

		progressCh := make(chan domain.SyncProgress, 8)
		observer := catalog.NewChannelObserver(ctx, progressCh)

		go func() {
			defer cancel()
			_, _ = cmds.Sync(syncCtx, userID, observer)
		}()

		return readSyncProgress(ctx, progressCh)
	}
}

// readSyncProgress reads one update and attaches the continuation command
// until the final (not in progress) update arrives.
func readSyncProgress(ctx context.Context, progressCh <-chan domain.SyncProgress) tea.Msg {
	var progress domain.SyncProgress
	select {
	case progress = <-progressCh:
	case <-ctx.Done():
		return nil
	}
	msg := SyncProgressMsg{Progress: progress}
	if progress.InProgress {
		msg.NextCmd = func() tea.Msg {
			return readSyncProgress(ctx, progressCh)
		}
	}
	return msg
}

// SetCompletedCmd flips the completion flag of a game
func SetCompletedCmd(cmds domain.CatalogCommands, id int64, completed bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		g, err := cmds.SetCompleted(ctx, id, completed)
		if err != nil {
			return ErrMsg{Err: err, Context: "updating completion"}
		}
		verb := "marked incomplete"
		if completed {
			verb = "marked completed"
		}
		return GameUpdatedMsg{Game: g, Verb: verb}
	}
}

// RateCmd sets the rating of a game
func RateCmd(cmds domain.CatalogCommands, id int64, rating float64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		g, err := cmds.Rate(ctx, id, rating)
		if err != nil {
			return ErrMsg{Err: err, Context: "rating game"}
		}
		return GameUpdatedMsg{Game: g, Verb: "rated " + g.FormattedRating()}
	}
}

// DeleteCmd removes a game from the catalog
func DeleteCmd(cmds domain.CatalogCommands, game domain.Game) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := cmds.Delete(ctx, game.ID); err != nil {
			return ErrMsg{Err: err, Context: "deleting game"}
		}
		return GameDeletedMsg{Title: game.Title}
	}
}

// LaunchCmd starts a game through the launcher
func LaunchCmd(launcher Launcher, game domain.Game) tea.Cmd {
	return func() tea.Msg {
		if err := launcher.Launch(game); err != nil {
			return ErrMsg{Err: err, Context: "launching"}
		}
		return GameLaunchedMsg{Title: game.Title}
	}
}

// TickCmd returns a command that sends a tick after the given duration
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd clears status message seq after the delay, unless replaced
func ClearStatusCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
