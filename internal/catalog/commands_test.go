package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/backlog/internal/adapter"
	"github.com/mmcdole/backlog/internal/domain"
	"github.com/mmcdole/backlog/internal/store"
)

// fakeRepo is an in-memory owned-games source.
type fakeRepo struct {
	ids     []domain.AppID
	apps    []domain.AppInfo
	listErr error
	metaErr error

	mu        sync.Mutex
	listCalls []string
	metaCalls [][]domain.AppID
}

func (r *fakeRepo) ListOwnedItems(ctx context.Context, userID string) ([]domain.AppID, error) {
	r.mu.Lock()
	r.listCalls = append(r.listCalls, userID)
	r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.ids, nil
}

func (r *fakeRepo) ResolveMetadata(ctx context.Context, ids []domain.AppID, onProgress domain.ProgressFunc) ([]domain.AppInfo, error) {
	r.mu.Lock()
	r.metaCalls = append(r.metaCalls, ids)
	r.mu.Unlock()
	if r.metaErr != nil {
		return nil, r.metaErr
	}
	if onProgress != nil {
		onProgress(len(r.apps), len(r.apps))
	}
	return r.apps, nil
}

type recorder struct {
	mu      sync.Mutex
	updates []domain.SyncProgress
}

func (r *recorder) OnProgress(p domain.SyncProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, p)
}

func (r *recorder) last() domain.SyncProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[len(r.updates)-1]
}

func newTestCommands(t *testing.T, repo domain.OwnedGamesRepository) (*Commands, *store.GameStore) {
	t.Helper()
	s, err := store.NewGameStore("", adapter.NullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewCommands(repo, s, adapter.NullLogger()), s
}

func TestSyncImportsOwnedGames(t *testing.T) {
	repo := &fakeRepo{
		ids: []domain.AppID{10, 20},
		apps: []domain.AppInfo{
			{ID: 10, Name: "Portal", Icon: "abc"},
			{ID: 20, Name: "Half-Life", Icon: ""},
		},
	}
	cmds, s := newTestCommands(t, repo)
	obs := &recorder{}

	res, err := cmds.Sync(context.Background(), "76561198000000000", obs)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncResult{
		UserID:   "76561198000000000",
		Owned:    2,
		Resolved: 2,
		Inserted: 2,
	}, res)

	games, err := s.List(domain.Query{Sort: domain.SortTitleAsc})
	require.NoError(t, err)
	require.Len(t, games, 2)

	hl, portal := games[0], games[1]
	assert.Equal(t, "Half-Life", hl.Title)
	assert.Equal(t, "", hl.IconRef)
	assert.Equal(t, "Portal", portal.Title)
	assert.Equal(t, "abc", portal.IconRef)
	for _, g := range games {
		assert.False(t, g.Completed)
		assert.Zero(t, g.PlayedAt)
		assert.Equal(t, "PC", g.Platform)
		assert.Empty(t, g.Genre)
		assert.Empty(t, g.Developer)
		assert.Zero(t, g.Playtime)
		assert.Empty(t, g.Notes)
		assert.Empty(t, g.Review)
		assert.Zero(t, g.Rating)
	}

	// Insertion follows response order
	assert.Less(t, portal.ID, hl.ID)

	last := obs.last()
	assert.False(t, last.InProgress)
	assert.Equal(t, domain.StageDone, last.Stage)
	assert.NoError(t, last.Err)
	for _, p := range obs.updates[:len(obs.updates)-1] {
		assert.True(t, p.InProgress)
	}
}

func TestSyncSkipsExistingTitles(t *testing.T) {
	repo := &fakeRepo{
		ids: []domain.AppID{10, 20},
		apps: []domain.AppInfo{
			{ID: 10, Name: "Portal"},
			{ID: 20, Name: "Half-Life"},
		},
	}
	cmds, s := newTestCommands(t, repo)

	existing, err := s.Insert(domain.Game{Title: "Portal", Rating: 4, Completed: true})
	require.NoError(t, err)

	res, err := cmds.Sync(context.Background(), "u", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, s.Count())

	got, err := s.Game(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing, got)
}

func TestSyncIsIdempotent(t *testing.T) {
	repo := &fakeRepo{
		ids:  []domain.AppID{1, 2, 3},
		apps: []domain.AppInfo{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}},
	}
	cmds, s := newTestCommands(t, repo)

	_, err := cmds.Sync(context.Background(), "u", nil)
	require.NoError(t, err)
	before, err := s.List(domain.Query{})
	require.NoError(t, err)

	res, err := cmds.Sync(context.Background(), "u", nil)
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.Equal(t, 3, res.Skipped)

	after, err := s.List(domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSyncDuplicateNamesInResponse(t *testing.T) {
	repo := &fakeRepo{
		ids:  []domain.AppID{1, 2},
		apps: []domain.AppInfo{{ID: 1, Name: "Doom"}, {ID: 2, Name: "Doom"}},
	}
	cmds, s := newTestCommands(t, repo)

	res, err := cmds.Sync(context.Background(), "u", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, s.Count())
}

func TestSyncListingFailureLeavesStoreUntouched(t *testing.T) {
	repo := &fakeRepo{listErr: domain.ErrSourceOffline}
	cmds, s := newTestCommands(t, repo)
	_, err := s.Insert(domain.Game{Title: "Keep"})
	require.NoError(t, err)
	obs := &recorder{}

	_, err = cmds.Sync(context.Background(), "u", obs)
	assert.ErrorIs(t, err, domain.ErrSourceOffline)
	assert.Equal(t, 1, s.Count())
	assert.Empty(t, repo.metaCalls)

	last := obs.last()
	assert.False(t, last.InProgress)
	assert.ErrorIs(t, last.Err, domain.ErrSourceOffline)
}

func TestSyncMetadataFailure(t *testing.T) {
	repo := &fakeRepo{ids: []domain.AppID{1}, metaErr: domain.ErrMalformedResponse}
	cmds, s := newTestCommands(t, repo)
	obs := &recorder{}

	_, err := cmds.Sync(context.Background(), "u", obs)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.Zero(t, s.Count())
	assert.False(t, obs.last().InProgress)
}

func TestSyncRejectsEmptyUserID(t *testing.T) {
	repo := &fakeRepo{}
	cmds, _ := newTestCommands(t, repo)
	obs := &recorder{}

	_, err := cmds.Sync(context.Background(), "", obs)
	assert.ErrorIs(t, err, domain.ErrInvalidUserID)
	assert.Empty(t, repo.listCalls)
	require.Len(t, obs.updates, 1)
	assert.False(t, obs.updates[0].InProgress)
}

func TestSyncSkipsNamelessApps(t *testing.T) {
	repo := &fakeRepo{
		ids:  []domain.AppID{1, 2},
		apps: []domain.AppInfo{{ID: 1, Name: ""}, {ID: 2, Name: "Real"}},
	}
	cmds, s := newTestCommands(t, repo)

	res, err := cmds.Sync(context.Background(), "u", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, s.Count())
}

func TestSyncEmptyLibrary(t *testing.T) {
	repo := &fakeRepo{}
	cmds, s := newTestCommands(t, repo)

	res, err := cmds.Sync(context.Background(), "u", nil)
	require.NoError(t, err)
	assert.Zero(t, res.Owned)
	assert.Zero(t, s.Count())
}

func TestSyncWithoutSource(t *testing.T) {
	cmds, _ := newTestCommands(t, nil)
	_, err := cmds.Sync(context.Background(), "u", nil)
	assert.Error(t, err)
}

func TestAddAllowsDuplicateTitles(t *testing.T) {
	cmds, s := newTestCommands(t, &fakeRepo{})

	a, err := cmds.Add(context.Background(), domain.Game{Title: "Tetris"})
	require.NoError(t, err)
	b, err := cmds.Add(context.Background(), domain.Game{Title: "Tetris"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, s.Count())
}

func TestAddValidates(t *testing.T) {
	cmds, _ := newTestCommands(t, &fakeRepo{})

	_, err := cmds.Add(context.Background(), domain.Game{})
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)

	_, err = cmds.Add(context.Background(), domain.Game{Title: "x", Rating: 6})
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
}

func TestRateAndSetCompleted(t *testing.T) {
	cmds, s := newTestCommands(t, &fakeRepo{})
	ctx := context.Background()
	g, err := cmds.Add(ctx, domain.Game{Title: "Celeste"})
	require.NoError(t, err)

	rated, err := cmds.Rate(ctx, g.ID, 4.5)
	require.NoError(t, err)
	assert.Equal(t, 4.5, rated.Rating)

	for _, bad := range []float64{-1, 5.5} {
		_, err = cmds.Rate(ctx, g.ID, bad)
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
	}

	done, err := cmds.SetCompleted(ctx, g.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, 4.5, done.Rating)

	stored, err := s.Game(g.ID)
	require.NoError(t, err)
	assert.Equal(t, done, stored)

	_, err = cmds.SetCompleted(ctx, 999, true)
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestDeleteAndClearAll(t *testing.T) {
	cmds, s := newTestCommands(t, &fakeRepo{})
	ctx := context.Background()
	a, _ := cmds.Add(ctx, domain.Game{Title: "A"})
	_, _ = cmds.Add(ctx, domain.Game{Title: "B"})

	require.NoError(t, cmds.Delete(ctx, a.ID))
	assert.Equal(t, 1, s.Count())

	require.NoError(t, cmds.ClearAll(ctx))
	assert.Zero(t, s.Count())
}

func TestCommandsHonorCancelledContext(t *testing.T) {
	cmds, _ := newTestCommands(t, &fakeRepo{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cmds.Add(ctx, domain.Game{Title: "A"})
	assert.True(t, errors.Is(err, context.Canceled))
}
