package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/backlog/internal/domain"
	"github.com/mmcdole/backlog/internal/search"
	"github.com/mmcdole/backlog/internal/tui/styles"
)

func (a *app) listCommand() *cobra.Command {
	var (
		sortName   string
		filterName string
		keyword    string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List games in the catalog",
		Long: `List prints the catalog in the requested order.

Sort: title, title-desc, rating, rating-desc (or 0-3)
Filter: all, completed, incomplete (or 0-2)
The keyword is a case-sensitive title substring.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			games, err := a.queries.List(sortAxis, filterAxis, keyword)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.out, games)
			}
			printGames(a.out, games)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sortName, "sort", "s", "title", "sort order")
	cmd.Flags().StringVarP(&filterName, "filter", "f", "all", "completion filter")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "only titles containing this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func (a *app) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <game>",
		Short: "Show the details of a game",
		Long:  "Show prints every field of a game, given its ID or (part of) its title.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.resolveGame(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.out, g)
			}
			printGame(a.out, g)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func (a *app) findCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy search game titles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			games, err := a.queries.All()
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			matches := search.Find(query, games)
			if len(matches) == 0 {
				fmt.Fprintf(a.out, "No games match %q\n", query)
				if suggestions := search.Suggest(query, games, 3); len(suggestions) > 0 {
					fmt.Fprintf(a.out, "Did you mean: %s\n", strings.Join(suggestions, ", "))
				}
				return nil
			}
			if limit > 0 && len(matches) > limit {
				matches = matches[:limit]
			}
			printMatches(a.out, matches)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum results (0 = all)")
	return cmd
}

// gameFlags binds the editable fields of a game to command flags
type gameFlags struct {
	platform  string
	genre     string
	developer string
	notes     string
	review    string
	rating    float64
	playtime  int64
	appID     int64
	completed bool
}

func (f *gameFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.platform, "platform", "", "platform label")
	cmd.Flags().StringVar(&f.genre, "genre", "", "genre")
	cmd.Flags().StringVar(&f.developer, "developer", "", "developer")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&f.review, "review", "", "your review")
	cmd.Flags().Float64Var(&f.rating, "rating", 0, "rating from 0 to 5")
	cmd.Flags().Int64Var(&f.playtime, "playtime", 0, "minutes played")
	cmd.Flags().Int64Var(&f.appID, "app-id", 0, "Steam app id, enables play")
	cmd.Flags().BoolVar(&f.completed, "completed", false, "mark as completed")
}

// apply copies the flags the user actually set onto g
func (f *gameFlags) apply(cmd *cobra.Command, g *domain.Game) {
	set := cmd.Flags().Changed
	if set("platform") {
		g.Platform = f.platform
	}
	if set("genre") {
		g.Genre = f.genre
	}
	if set("developer") {
		g.Developer = f.developer
	}
	if set("notes") {
		g.Notes = f.notes
	}
	if set("review") {
		g.Review = f.review
	}
	if set("rating") {
		g.Rating = f.rating
	}
	if set("playtime") {
		g.Playtime = f.playtime
	}
	if set("app-id") {
		g.AppID = domain.AppID(f.appID)
	}
	if set("completed") {
		g.Completed = f.completed
	}
}

func (a *app) addCommand() *cobra.Command {
	var flags gameFlags

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a game by hand",
		Long: `Add creates a catalog entry that did not come from Steam.
Manual entries may repeat an existing title.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			g := domain.Game{Title: strings.Join(args, " ")}
			flags.apply(cmd, &g)

			saved, err := a.commands.Add(cmd.Context(), g)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s Added %s (id %d)\n", styles.SuccessStyle.Render("✓"), saved.Title, saved.ID)
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}

func (a *app) editCommand() *cobra.Command {
	var (
		flags gameFlags
		title string
	)

	cmd := &cobra.Command{
		Use:   "edit <game>",
		Short: "Change the fields of a game",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.resolveGame(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				g.Title = title
			}
			flags.apply(cmd, &g)

			if err := a.commands.Update(cmd.Context(), g); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s Updated %s\n", styles.SuccessStyle.Render("✓"), g.Title)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&title, "title", "", "new title")
	return cmd
}

func (a *app) completeCommand() *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "complete <game>",
		Short: "Mark a game as completed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.resolveGame(strings.Join(args, " "))
			if err != nil {
				return err
			}
			g, err = a.commands.SetCompleted(cmd.Context(), g.ID, !undo)
			if err != nil {
				return err
			}
			if g.Completed {
				fmt.Fprintf(a.out, "%s %s marked completed\n", styles.CompletedCheck, g.Title)
			} else {
				fmt.Fprintf(a.out, "%s %s back in the backlog\n", styles.IncompleteDot, g.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "mark as not completed")
	return cmd
}

func (a *app) rateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <game> <0-5>",
		Short: "Rate a game (0 clears the rating)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.ParseFloat(args[len(args)-1], 64)
			if err != nil {
				return fmt.Errorf("invalid rating %q: %w", args[len(args)-1], domain.ErrInvalidRating)
			}
			g, err := a.resolveGame(strings.Join(args[:len(args)-1], " "))
			if err != nil {
				return err
			}
			g, err = a.commands.Rate(cmd.Context(), g.ID, rating)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s rated %s\n", styles.SuccessStyle.Render("✓"), g.Title, styles.RenderStars(g.Rating))
			return nil
		},
	}
}

func (a *app) playCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play <game>",
		Short: "Launch a game through the Steam client",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.resolveGame(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := a.launcher.Launch(g); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Launching %s\n", g.Title)
			return nil
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <game>",
		Aliases: []string{"rm"},
		Short:   "Remove a game from the catalog",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.resolveGame(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := a.commands.Delete(cmd.Context(), g.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s\n", g.Title)
			return nil
		},
	}
}

func (a *app) clearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every game from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				if !a.interactive() {
					return fmt.Errorf("refusing to clear the catalog without --yes")
				}
				if !a.confirm("Remove every game from the catalog?") {
					fmt.Fprintln(a.out, "Aborted")
					return nil
				}
			}
			if err := a.open(); err != nil {
				return err
			}
			count := a.store.Count()
			if err := a.commands.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Removed %d games\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// resolveGame opens the catalog and finds the game named by arg
func (a *app) resolveGame(arg string) (domain.Game, error) {
	if err := a.open(); err != nil {
		return domain.Game{}, err
	}
	games, err := a.queries.All()
	if err != nil {
		return domain.Game{}, err
	}
	return search.Lookup(strings.TrimSpace(arg), games)
}

// confirm asks a yes/no question on the terminal
func (a *app) confirm(question string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// parseSort accepts a sort name or its axis number
func parseSort(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	for _, axis := range domain.SortAxes {
		if strings.EqualFold(s, axis.String()) {
			return int(axis), nil
		}
	}
	return 0, fmt.Errorf("unknown sort %q (want title, title-desc, rating or rating-desc)", s)
}

// parseFilter accepts a filter name or its axis number
func parseFilter(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	for _, axis := range domain.FilterAxes {
		if strings.EqualFold(s, axis.String()) {
			return int(axis), nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q (want all, completed or incomplete)", s)
}
