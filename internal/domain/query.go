package domain

import (
	"cmp"
	"strings"
)

// SortAxis selects the ordering of a catalog query
type SortAxis int

const (
	SortTitleAsc SortAxis = iota
	SortTitleDesc
	SortRatingAsc
	SortRatingDesc
)

// SortAxes lists the supported orderings in axis order
var SortAxes = []SortAxis{SortTitleAsc, SortTitleDesc, SortRatingAsc, SortRatingDesc}

func (s SortAxis) String() string {
	switch s {
	case SortTitleAsc:
		return "title"
	case SortTitleDesc:
		return "title-desc"
	case SortRatingAsc:
		return "rating"
	case SortRatingDesc:
		return "rating-desc"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the supported orderings
func (s SortAxis) Valid() bool {
	return s >= SortTitleAsc && s <= SortRatingDesc
}

// FilterAxis selects the completion predicate of a catalog query
type FilterAxis int

const (
	FilterNone FilterAxis = iota
	FilterCompleted
	FilterIncomplete
)

// FilterAxes lists the supported filters in axis order
var FilterAxes = []FilterAxis{FilterNone, FilterCompleted, FilterIncomplete}

func (f FilterAxis) String() string {
	switch f {
	case FilterNone:
		return "all"
	case FilterCompleted:
		return "completed"
	default:
		return "incomplete"
	}
}

// Query describes a catalog view: ordering, optional completion filter, and
// a case-sensitive title substring ("" matches everything).
type Query struct {
	Sort      SortAxis
	Completed *bool
	Keyword   string
}

// Matches reports whether g belongs in the query result
func (q Query) Matches(g Game) bool {
	if q.Completed != nil && g.Completed != *q.Completed {
		return false
	}
	return strings.Contains(g.Title, q.Keyword)
}

// Compare orders two games according to the query's sort axis.
// Title ties break by ID; rating ties break by title, then ID.
func (q Query) Compare(a, b Game) int {
	switch q.Sort {
	case SortTitleDesc:
		if c := cmp.Compare(b.Title, a.Title); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	case SortRatingAsc:
		if c := cmp.Compare(a.Rating, b.Rating); c != 0 {
			return c
		}
	case SortRatingDesc:
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.Title, b.Title); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Completion returns a pointer suitable for Query.Completed
func Completion(completed bool) *bool {
	return &completed
}
