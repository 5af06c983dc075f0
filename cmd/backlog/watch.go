package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/backlog/internal/domain"
	"github.com/mmcdole/backlog/internal/tui"
)

func (a *app) watchCommand() *cobra.Command {
	var (
		sortName   string
		filterName string
		keyword    string
	)

	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"ui"},
		Short:   "Browse the catalog in a live terminal view",
		Long: `Watch opens a full-screen view of the catalog that updates as games are
synced, rated, completed or deleted. Press ? inside the view for keys.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.interactive() {
				return errors.New("watch needs an interactive terminal; use 'backlog list' instead")
			}

			sortAxis := a.cfg.UI.DefaultSort
			if cmd.Flags().Changed("sort") {
				v, err := parseSort(sortName)
				if err != nil {
					return err
				}
				sortAxis = v
			}
			filterAxis := a.cfg.UI.DefaultFilter
			if cmd.Flags().Changed("filter") {
				v, err := parseFilter(filterName)
				if err != nil {
					return err
				}
				filterAxis = v
			}

			if err := a.open(); err != nil {
				return err
			}

			model := tui.NewModel(a.queries, a.commands, a.launcher, a.cfg.Source.UserID).
				WithView(domain.SortAxis(sortAxis), domain.FilterAxis(filterAxis), keyword)

			p := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(a.in),
				tea.WithOutput(a.out),
			)
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sortName, "sort", "s", "title", "initial sort order")
	cmd.Flags().StringVarP(&filterName, "filter", "f", "all", "initial completion filter")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "initial title keyword")
	return cmd
}
