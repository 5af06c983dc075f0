package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/backlog/internal/adapter"
	"github.com/mmcdole/backlog/internal/adapter/source"
	"github.com/mmcdole/backlog/internal/catalog"
	"github.com/mmcdole/backlog/internal/domain"
	"github.com/mmcdole/backlog/internal/store"
)

// app holds the wiring shared by every subcommand
type app struct {
	configFile string
	cfg        *adapter.Config
	logger     *slog.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// Set by open
	store    *store.GameStore
	queries  *catalog.Queries
	commands *catalog.Commands
	launcher *adapter.Launcher

	// Overridable in tests
	newSource  func(cfg *adapter.Config, logger *slog.Logger) (domain.OwnedGamesRepository, error)
	isTerminal func(fd int) bool
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		in:         in,
		out:        out,
		errOut:     errOut,
		newSource:  source.NewClientFromConfig,
		isTerminal: term.IsTerminal,
	}
}

// execute runs the CLI with the given arguments
func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "backlog",
		Short:   "Track your game library and what you still have to play",
		Version: Version,
		Long: `Backlog keeps a local catalog of your games. It imports the games
owned by a Steam account, and lets you rate them, mark them completed,
and browse the catalog in a live terminal view.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.AddGroup(
		&cobra.Group{ID: "catalog", Title: "Catalog Commands:"},
		&cobra.Group{ID: "management", Title: "Management Commands:"},
	)

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default is ~/.config/backlog/config.yaml)")
	root.SetVersionTemplate("backlog {{.Version}}\n")

	for _, cmd := range []*cobra.Command{
		a.syncCommand(),
		a.listCommand(),
		a.showCommand(),
		a.findCommand(),
		a.addCommand(),
		a.editCommand(),
		a.completeCommand(),
		a.rateCommand(),
		a.playCommand(),
		a.watchCommand(),
	} {
		cmd.GroupID = "catalog"
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		a.deleteCommand(),
		a.clearCommand(),
		a.configCommand(),
	} {
		cmd.GroupID = "management"
		root.AddCommand(cmd)
	}
	return root
}

// setup loads configuration and logging before any command runs
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.cfg == nil {
		cfg, err := adapter.LoadConfig(a.configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.cfg = cfg
	}

	if a.logger == nil {
		logger, err := adapter.SetupLogger(&a.cfg.Logging)
		if err != nil {
			// Fall back to null logger if file logging fails
			logger = adapter.NullLogger()
		}
		a.logger = logger
	}
	slog.SetDefault(a.logger)

	a.logger.Debug("starting backlog", "version", Version, "command", cmd.CommandPath())
	return nil
}

// open opens the catalog and builds the services. Commands that touch the
// catalog call it first.
func (a *app) open() error {
	if a.store != nil {
		return nil
	}

	s, err := store.NewGameStore(a.cfg.Store.Path, a.logger)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	a.store = s

	// A missing API key only matters to sync
	var repo domain.OwnedGamesRepository
	if a.cfg.IsConfigured() {
		repo, err = a.newSource(a.cfg, a.logger)
		if err != nil {
			return fmt.Errorf("failed to create owned-games source: %w", err)
		}
	}

	a.queries = catalog.NewQueries(s)
	a.commands = catalog.NewCommands(repo, s, a.logger)
	a.launcher = adapter.NewLauncher(a.cfg.Launcher.Command, a.cfg.Launcher.Args, a.logger)
	return nil
}

// close releases the catalog, if open
func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// interactive reports whether stdin and stdout are both terminals
func (a *app) interactive() bool {
	in, ok := a.in.(*os.File)
	if !ok {
		return false
	}
	out, ok := a.out.(*os.File)
	if !ok {
		return false
	}
	return a.isTerminal(int(in.Fd())) && a.isTerminal(int(out.Fd()))
}
