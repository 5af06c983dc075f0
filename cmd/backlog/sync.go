package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/backlog/internal/adapter"
	"github.com/mmcdole/backlog/internal/domain"
	"github.com/mmcdole/backlog/internal/tui/styles"
)

var errNotConfigured = errors.New("no Steam Web API key configured; run 'backlog config set-key' or set BACKLOG_SOURCE_API_KEY")

func (a *app) syncCommand() *cobra.Command {
	var remember bool

	cmd := &cobra.Command{
		Use:   "sync [steamid64]",
		Short: "Import the games owned by a Steam account",
		Long: `Sync lists the games owned by a Steam account, resolves their names and
icons, and adds every title not already in the catalog. Existing entries,
including your ratings and completion flags, are never modified.

Without an argument the configured source.user_id is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := a.cfg.Source.UserID
			if len(args) == 1 {
				userID = strings.TrimSpace(args[0])
			}
			if userID == "" {
				return fmt.Errorf("%w: pass a steamid64 or run 'backlog config set-user'", domain.ErrInvalidUserID)
			}

			if !a.cfg.IsConfigured() {
				if !a.interactive() {
					return errNotConfigured
				}
				if err := a.runSetupFlow(); err != nil {
					return err
				}
			}
			if err := a.open(); err != nil {
				return err
			}

			if remember && userID != a.cfg.Source.UserID {
				a.cfg.Source.UserID = userID
				if err := adapter.SaveConfig(a.cfg, a.configFile); err != nil {
					return fmt.Errorf("failed to save config: %w", err)
				}
			}

			observer := a.progressObserver()
			result, err := a.commands.Sync(cmd.Context(), userID, observer)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			fmt.Fprintf(a.out, "%s Synced %d owned games: %d added, %d already in catalog\n",
				styles.SuccessStyle.Render("✓"), result.Owned, result.Inserted, result.Skipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remember, "remember", false, "save the steamid64 as the default user")
	return cmd
}

// runSetupFlow prompts for the Steam Web API key and saves it
func (a *app) runSetupFlow() error {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Welcome to Backlog!")
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "A Steam Web API key is required to import your library.")
	fmt.Fprintln(a.out, "Get one at https://steamcommunity.com/dev/apikey")
	fmt.Fprintln(a.out)

	key, err := a.readSecret("API key: ")
	if err != nil {
		return err
	}
	if key == "" {
		return errNotConfigured
	}

	if err := adapter.SaveAPIKey(a.cfg, key, a.configFile); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintln(a.out, "✓ Configuration saved!")
	fmt.Fprintln(a.out)
	return nil
}

// readSecret prompts for a value without echoing it
func (a *app) readSecret(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	f, ok := a.in.(*os.File)
	if !ok {
		return "", fmt.Errorf("cannot read %s from a non-terminal", strings.TrimSuffix(prompt, ": "))
	}
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.out) // Add newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// progressObserver draws a spinner line on stderr while a sync runs, or
// discards progress when stderr is not a terminal.
func (a *app) progressObserver() domain.SyncObserver {
	f, ok := a.errOut.(*os.File)
	if !ok || !a.isTerminal(int(f.Fd())) {
		return domain.NoOpObserver{}
	}
	return &progressLine{w: f}
}

// progressLine renders sync progress on a single terminal line
type progressLine struct {
	w     io.Writer
	frame int
}

func (p *progressLine) OnProgress(progress domain.SyncProgress) {
	if !progress.InProgress {
		fmt.Fprint(p.w, clearSpinnerLine)
		return
	}
	p.frame++
	frame := styles.SpinnerStyle.Render(styles.SpinnerFrames[p.frame%len(styles.SpinnerFrames)])

	text := progress.Stage.String() + "..."
	if progress.Total > 0 {
		text = fmt.Sprintf("%s %d/%d", progress.Stage, progress.Loaded, progress.Total)
	}
	fmt.Fprintf(p.w, "%s%s %s", clearSpinnerLine, frame, text)
}
