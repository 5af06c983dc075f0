package catalog

import (
	"context"

	"github.com/mmcdole/backlog/internal/domain"
)

// Queries provides reads against the local catalog.
// Implements domain.CatalogQueries. Every method is side-effect free.
type Queries struct {
	store domain.CatalogStore
}

var _ domain.CatalogQueries = (*Queries)(nil)

// NewQueries creates a new Queries instance.
func NewQueries(store domain.CatalogStore) *Queries {
	return &Queries{store: store}
}

// Dispatch maps a (sort, filter, keyword) triple onto the matching live query.
//
//	sortAxis:   0 title asc, 1 title desc, 2 rating asc, 3 rating desc
//	filterAxis: 0 all, 1 completed only, anything else incomplete only
//
// An unknown sortAxis falls back to title ascending without a filter.
func (q *Queries) Dispatch(ctx context.Context, sortAxis, filterAxis int, keyword string) <-chan []domain.Game {
	completed := filterAxis == int(domain.FilterCompleted)
	filtered := filterAxis != int(domain.FilterNone)

	switch domain.SortAxis(sortAxis) {
	case domain.SortTitleAsc:
		if !filtered {
			return q.store.WatchTitleAscending(ctx, keyword)
		}
		return q.store.WatchTitleAscendingByCompletion(ctx, completed, keyword)
	case domain.SortTitleDesc:
		if !filtered {
			return q.store.WatchTitleDescending(ctx, keyword)
		}
		return q.store.WatchTitleDescendingByCompletion(ctx, completed, keyword)
	case domain.SortRatingAsc:
		if !filtered {
			return q.store.WatchRatingAscending(ctx, keyword)
		}
		return q.store.WatchRatingAscendingByCompletion(ctx, completed, keyword)
	case domain.SortRatingDesc:
		if !filtered {
			return q.store.WatchRatingDescending(ctx, keyword)
		}
		return q.store.WatchRatingDescendingByCompletion(ctx, completed, keyword)
	}
	return q.store.WatchTitleAscending(ctx, keyword)
}

// Resolve returns the query Dispatch would watch for the same arguments.
func Resolve(sortAxis, filterAxis int, keyword string) domain.Query {
	sort := domain.SortAxis(sortAxis)
	if !sort.Valid() {
		return domain.Query{Sort: domain.SortTitleAsc, Keyword: keyword}
	}
	q := domain.Query{Sort: sort, Keyword: keyword}
	if filterAxis != int(domain.FilterNone) {
		q.Completed = domain.Completion(filterAxis == int(domain.FilterCompleted))
	}
	return q
}

// List returns a one-shot snapshot of the view Dispatch would watch.
func (q *Queries) List(sortAxis, filterAxis int, keyword string) ([]domain.Game, error) {
	return q.store.List(Resolve(sortAxis, filterAxis, keyword))
}

func (q *Queries) Game(id int64) (domain.Game, error) {
	return q.store.Game(id)
}

func (q *Queries) WatchGame(ctx context.Context, id int64) <-chan domain.GameUpdate {
	return q.store.WatchGame(ctx, id)
}

// All returns every game in title order.
func (q *Queries) All() ([]domain.Game, error) {
	return q.store.List(domain.Query{Sort: domain.SortTitleAsc})
}
