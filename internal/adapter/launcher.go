package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/mmcdole/backlog/internal/domain"
)

// Launcher starts catalog games through their steam:// URL
type Launcher struct {
	command string   // configured opener, empty for system default
	args    []string // additional arguments placed before the URL
	logger  *slog.Logger
	start   func(name string, args ...string) error
}

// NewLauncher creates a new Launcher
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: command,
		args:    args,
		logger:  logger,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start() // Start async, don't wait
		},
	}
}

// Launch starts the game in the configured opener or the system default
func (l *Launcher) Launch(game domain.Game) error {
	url := game.LaunchURL()
	if url == "" {
		return fmt.Errorf("game %q was not imported from steam and cannot be launched", game.Title)
	}

	name, args := l.commandLine(url)
	l.logger.Info("launching game", "title", game.Title, "command", name, "url", url)
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("failed to launch %q: %w", game.Title, err)
	}
	return nil
}

// commandLine returns the command and arguments used to open url
func (l *Launcher) commandLine(url string) (string, []string) {
	if l.command != "" {
		args := append([]string{}, l.args...)
		return l.command, append(args, url)
	}

	switch runtime.GOOS {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{url}
	}
}
