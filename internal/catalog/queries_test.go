package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/backlog/internal/adapter"
	"github.com/mmcdole/backlog/internal/domain"
	"github.com/mmcdole/backlog/internal/store"
)

func newSeededQueries(t *testing.T) (*Queries, *store.GameStore) {
	t.Helper()
	s, err := store.NewGameStore("", adapter.NullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	for _, g := range []domain.Game{
		{Title: "Alpha", Completed: true, Rating: 5},
		{Title: "Bravo", Completed: true, Rating: 2},
		{Title: "Cara", Completed: false, Rating: 4},
	} {
		_, err := s.Insert(g)
		require.NoError(t, err)
	}
	return NewQueries(s), s
}

func first(t *testing.T, ch <-chan []domain.Game) []string {
	t.Helper()
	select {
	case games := <-ch:
		out := make([]string, len(games))
		for i, g := range games {
			out[i] = g.Title
		}
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("no emission")
		return nil
	}
}

func TestDispatch(t *testing.T) {
	q, _ := newSeededQueries(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tests := []struct {
		name    string
		sort    int
		filter  int
		keyword string
		want    []string
	}{
		{"title asc", 0, 0, "", []string{"Alpha", "Bravo", "Cara"}},
		{"title desc", 1, 0, "", []string{"Cara", "Bravo", "Alpha"}},
		{"rating asc", 2, 0, "", []string{"Bravo", "Cara", "Alpha"}},
		{"rating desc", 3, 0, "", []string{"Alpha", "Cara", "Bravo"}},
		{"completed rating desc with keyword", 3, 1, "a", []string{"Alpha", "Bravo"}},
		{"incomplete", 0, 2, "", []string{"Cara"}},
		{"other filter values mean incomplete", 1, 9, "", []string{"Cara"}},
		{"negative filter means incomplete", 0, -1, "", []string{"Cara"}},
		{"title desc completed", 1, 1, "", []string{"Bravo", "Alpha"}},
		{"rating asc completed", 2, 1, "", []string{"Bravo", "Alpha"}},
		{"keyword", 0, 0, "ra", []string{"Bravo", "Cara"}},
		{"invalid sort falls back", 7, 1, "", []string{"Alpha", "Bravo", "Cara"}},
		{"negative sort falls back", -1, 0, "", []string{"Alpha", "Bravo", "Cara"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := first(t, q.Dispatch(ctx, tt.sort, tt.filter, tt.keyword))
			assert.Equal(t, tt.want, got)

			// One-shot List agrees with the live view
			list, err := q.List(tt.sort, tt.filter, tt.keyword)
			require.NoError(t, err)
			titles := make([]string, len(list))
			for i, g := range list {
				titles[i] = g.Title
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestDispatchFollowsMutations(t *testing.T) {
	q, s := newSeededQueries(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := q.Dispatch(ctx, 3, 2, "")
	assert.Equal(t, []string{"Cara"}, first(t, ch))

	_, err := s.Insert(domain.Game{Title: "Delta", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"Delta", "Cara"}, first(t, ch))
}

func TestResolve(t *testing.T) {
	q := Resolve(3, 1, "x")
	assert.Equal(t, domain.SortRatingDesc, q.Sort)
	require.NotNil(t, q.Completed)
	assert.True(t, *q.Completed)
	assert.Equal(t, "x", q.Keyword)

	q = Resolve(0, 0, "")
	assert.Nil(t, q.Completed)

	q = Resolve(2, 5, "")
	require.NotNil(t, q.Completed)
	assert.False(t, *q.Completed)

	q = Resolve(10, 1, "k")
	assert.Equal(t, domain.Query{Sort: domain.SortTitleAsc, Keyword: "k"}, q)
}

func TestQueriesGame(t *testing.T) {
	q, s := newSeededQueries(t)
	all, err := q.All()
	require.NoError(t, err)
	require.Len(t, all, 3)

	g, err := q.Game(all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", g.Title)

	_, err = q.Game(404)
	assert.ErrorIs(t, err, domain.ErrGameNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := q.WatchGame(ctx, g.ID)
	select {
	case u := <-ch:
		assert.True(t, u.Found)
	case <-time.After(2 * time.Second):
		t.Fatal("no emission")
	}

	require.NoError(t, s.Delete(g.ID))
	select {
	case u := <-ch:
		assert.False(t, u.Found)
	case <-time.After(2 * time.Second):
		t.Fatal("no emission")
	}
}
