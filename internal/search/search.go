package search

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"

	"github.com/mmcdole/backlog/internal/domain"
)

// ErrNoMatch is returned by Lookup when nothing resembles the argument
var ErrNoMatch = errors.New("no matching game")

// Match is a fuzzy search result with match metadata for highlighting
type Match struct {
	Game           domain.Game
	MatchedIndexes []int // Character positions that matched
	Score          int   // Higher is better
}

// titleIndex implements sahilm/fuzzy.Source over lowercase titles
type titleIndex struct {
	games       []domain.Game
	lowerTitles []string
}

func newTitleIndex(games []domain.Game) *titleIndex {
	lower := make([]string, len(games))
	for i, g := range games {
		lower[i] = strings.ToLower(g.Title)
	}
	return &titleIndex{games: games, lowerTitles: lower}
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *titleIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of games (implements fuzzy.Source)
func (idx *titleIndex) Len() int { return len(idx.games) }

// Find ranks games whose title fuzzily matches query, best first.
func Find(query string, games []domain.Game) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(games) == 0 {
		return nil
	}

	idx := newTitleIndex(games)
	found := sfuzzy.FindFrom(query, idx)

	matches := make([]Match, len(found))
	for i, m := range found {
		matches[i] = Match{
			Game:           idx.games[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return matches
}

// Suggest returns up to limit titles closest to title by edit distance.
// Titles further than half the query length away are not suggested.
func Suggest(title string, games []domain.Game, limit int) []string {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" || limit <= 0 {
		return nil
	}

	type candidate struct {
		title    string
		distance int
	}
	maxDistance := max(2, len([]rune(title))/2)
	seen := make(map[string]bool)

	var candidates []candidate
	for _, g := range games {
		if seen[g.Title] {
			continue
		}
		seen[g.Title] = true
		d := fuzzy.LevenshteinDistance(title, strings.ToLower(g.Title))
		if d <= maxDistance {
			candidates = append(candidates, candidate{g.Title, d})
		}
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		if a.distance != b.distance {
			return a.distance - b.distance
		}
		return strings.Compare(a.title, b.title)
	})

	out := make([]string, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		out = append(out, c.title)
	}
	return out
}

// Lookup resolves a command-line argument to a game: a numeric ID, an exact
// title, a case-insensitive title, or the best fuzzy match, in that order.
func Lookup(arg string, games []domain.Game) (domain.Game, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		for _, g := range games {
			if g.ID == id {
				return g, nil
			}
		}
	}

	for _, g := range games {
		if g.Title == arg {
			return g, nil
		}
	}
	for _, g := range games {
		if strings.EqualFold(g.Title, arg) {
			return g, nil
		}
	}
	// A unique substring hit beats subsequence matches
	lowerArg := strings.ToLower(arg)
	var contains []domain.Game
	for _, g := range games {
		if strings.Contains(strings.ToLower(g.Title), lowerArg) {
			contains = append(contains, g)
		}
	}
	if len(contains) == 1 {
		return contains[0], nil
	}

	if matches := Find(arg, games); len(matches) > 0 {
		return matches[0].Game, nil
	}

	if suggestions := Suggest(arg, games, 3); len(suggestions) > 0 {
		return domain.Game{}, fmt.Errorf("%w for %q (did you mean %s?)", ErrNoMatch, arg, strings.Join(quoteAll(suggestions), ", "))
	}
	return domain.Game{}, fmt.Errorf("%w for %q", ErrNoMatch, arg)
}

func quoteAll(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = strconv.Quote(v)
	}
	return out
}
