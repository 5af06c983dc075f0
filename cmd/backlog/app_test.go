package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/backlog/internal/adapter"
	"github.com/mmcdole/backlog/internal/domain"
	"github.com/mmcdole/backlog/internal/search"
)

const testUser = "76561198000000000"

// newSteamServer serves an account owning Portal, Half-Life and Portal 2
func newSteamServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/IPlayerService/GetOwnedGames/v0001/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testUser, r.URL.Query().Get("steamid"))
		_, _ = w.Write([]byte(`{"response":{"game_count":3,"games":[{"appid":400},{"appid":70},{"appid":620}]}}`))
	})
	mux.HandleFunc("/ICommunityService/GetApps/v1/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":{"apps":[
			{"appid":400,"name":"Portal","icon":"p1"},
			{"appid":70,"name":"Half-Life"},
			{"appid":620,"name":"Portal 2","icon":"p2"}
		]}}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, baseURL string) *adapter.Config {
	t.Helper()
	cfg := adapter.DefaultConfig()
	cfg.Source.APIKey = "TESTKEY"
	cfg.Source.BaseURL = baseURL
	cfg.Store.Path = t.TempDir()
	cfg.Launcher.Command = "true"
	return cfg
}

// run executes one CLI invocation against cfg and returns its stdout
func run(t *testing.T, cfg *adapter.Config, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := newApp(strings.NewReader(""), &out, &errOut)
	a.cfg = cfg
	a.logger = adapter.NullLogger()
	err := a.execute(context.Background(), args)
	return out.String(), err
}

func mustRun(t *testing.T, cfg *adapter.Config, args ...string) string {
	t.Helper()
	out, err := run(t, cfg, args...)
	require.NoError(t, err, "backlog %s", strings.Join(args, " "))
	return out
}

func listTitles(t *testing.T, cfg *adapter.Config, args ...string) []string {
	t.Helper()
	out := mustRun(t, cfg, append([]string{"list", "--json"}, args...)...)
	var games []domain.Game
	require.NoError(t, json.Unmarshal([]byte(out), &games))
	titles := make([]string, len(games))
	for i, g := range games {
		titles[i] = g.Title
	}
	return titles
}

func TestSyncImportsOwnedGames(t *testing.T) {
	cfg := testConfig(t, newSteamServer(t).URL)

	out := mustRun(t, cfg, "sync", testUser)
	assert.Contains(t, out, "Synced 3 owned games: 3 added, 0 already in catalog")

	// The catalog survives between invocations
	assert.Equal(t, []string{"Half-Life", "Portal", "Portal 2"}, listTitles(t, cfg))

	out = mustRun(t, cfg, "sync", testUser)
	assert.Contains(t, out, "0 added, 3 already in catalog")
	assert.Len(t, listTitles(t, cfg), 3)
}

func TestSyncUsesConfiguredUser(t *testing.T) {
	cfg := testConfig(t, newSteamServer(t).URL)
	cfg.Source.UserID = testUser

	out := mustRun(t, cfg, "sync")
	assert.Contains(t, out, "3 added")
}

func TestSyncErrors(t *testing.T) {
	server := newSteamServer(t)

	t.Run("no user", func(t *testing.T) {
		_, err := run(t, testConfig(t, server.URL), "sync")
		assert.ErrorIs(t, err, domain.ErrInvalidUserID)
	})

	t.Run("no key", func(t *testing.T) {
		cfg := testConfig(t, server.URL)
		cfg.Source.APIKey = ""
		_, err := run(t, cfg, "sync", testUser)
		assert.ErrorIs(t, err, errNotConfigured)
	})

	t.Run("rejected", func(t *testing.T) {
		forbidden := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer forbidden.Close()

		cfg := testConfig(t, forbidden.URL)
		_, err := run(t, cfg, "sync", testUser)
		require.ErrorIs(t, err, domain.ErrUnexpectedStatus)
		assert.NotContains(t, err.Error(), "TESTKEY")
		assert.Empty(t, listTitles(t, cfg))
	})
}

func TestListSortAndFilter(t *testing.T) {
	cfg := testConfig(t, newSteamServer(t).URL)
	mustRun(t, cfg, "sync", testUser)
	mustRun(t, cfg, "rate", "Portal 2", "5")
	mustRun(t, cfg, "rate", "Half-Life", "3")
	mustRun(t, cfg, "complete", "Half-Life")

	assert.Equal(t, []string{"Portal 2", "Half-Life", "Portal"}, listTitles(t, cfg, "--sort", "rating-desc"))
	assert.Equal(t, []string{"Portal 2", "Portal", "Half-Life"}, listTitles(t, cfg, "--sort", "1"))
	assert.Equal(t, []string{"Half-Life"}, listTitles(t, cfg, "--filter", "completed"))
	assert.Equal(t, []string{"Portal", "Portal 2"}, listTitles(t, cfg, "--filter", "incomplete"))
	assert.Equal(t, []string{"Portal", "Portal 2"}, listTitles(t, cfg, "-k", "Portal"))
	assert.Empty(t, listTitles(t, cfg, "-k", "portal"))

	// Configured defaults apply when no flag is given
	cfg.UI.DefaultSort = int(domain.SortRatingAsc)
	assert.Equal(t, []string{"Portal", "Half-Life", "Portal 2"}, listTitles(t, cfg))

	_, err := run(t, cfg, "list", "--sort", "newest")
	assert.Error(t, err)
}

func TestListTable(t *testing.T) {
	cfg := testConfig(t, "")
	out := mustRun(t, cfg, "list")
	assert.Contains(t, out, "No games found")

	mustRun(t, cfg, "add", "Celeste", "--platform", "Switch", "--playtime", "95")
	out = mustRun(t, cfg, "list")
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Celeste")
	assert.Contains(t, out, "Switch")
	assert.Contains(t, out, "1h 35m")
}

func TestAddShowEdit(t *testing.T) {
	cfg := testConfig(t, "")

	out := mustRun(t, cfg, "add", "Outer", "Wilds", "--genre", "Adventure", "--rating", "4.5", "--completed")
	assert.Contains(t, out, "Added Outer Wilds")

	out = mustRun(t, cfg, "show", "outer wilds")
	assert.Contains(t, out, "Outer Wilds")
	assert.Contains(t, out, "Adventure")
	assert.Contains(t, out, "4.5")
	assert.Contains(t, out, "completed")

	mustRun(t, cfg, "edit", "Outer Wilds", "--title", "Outer Wilds: Echoes", "--notes", "DLC")
	out = mustRun(t, cfg, "show", "--json", "Echoes")
	var g domain.Game
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Equal(t, "Outer Wilds: Echoes", g.Title)
	assert.Equal(t, "DLC", g.Notes)
	assert.Equal(t, "Adventure", g.Genre)
	assert.True(t, g.Completed)

	// Manual entries may repeat a title
	mustRun(t, cfg, "add", "Outer Wilds: Echoes")
	assert.Len(t, listTitles(t, cfg), 2)

	_, err := run(t, cfg, "add", "Bad", "--rating", "7")
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
}

func TestCompleteAndRate(t *testing.T) {
	cfg := testConfig(t, newSteamServer(t).URL)
	mustRun(t, cfg, "sync", testUser)

	out := mustRun(t, cfg, "complete", "half")
	assert.Contains(t, out, "Half-Life marked completed")
	out = mustRun(t, cfg, "complete", "--undo", "Half-Life")
	assert.Contains(t, out, "back in the backlog")
	assert.Empty(t, listTitles(t, cfg, "--filter", "completed"))

	_, err := run(t, cfg, "rate", "Portal", "six")
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
	_, err = run(t, cfg, "rate", "Portal", "9")
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	// Exact titles win over longer ones
	mustRun(t, cfg, "rate", "Portal", "2")
	out = mustRun(t, cfg, "show", "--json", "Portal 2")
	var g domain.Game
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Zero(t, g.Rating)
}

func TestFind(t *testing.T) {
	cfg := testConfig(t, newSteamServer(t).URL)
	mustRun(t, cfg, "sync", testUser)

	out := mustRun(t, cfg, "find", "ptl")
	assert.Contains(t, out, "Portal")
	assert.NotContains(t, out, "Half-Life")

	out = mustRun(t, cfg, "find", "zzz")
	assert.Contains(t, out, `No games match "zzz"`)

	_, err := run(t, cfg, "show", "xyzzy")
	assert.ErrorIs(t, err, search.ErrNoMatch)
}

func TestDeleteAndClear(t *testing.T) {
	cfg := testConfig(t, newSteamServer(t).URL)
	mustRun(t, cfg, "sync", testUser)

	out := mustRun(t, cfg, "delete", "Half-Life")
	assert.Contains(t, out, "Deleted Half-Life")
	assert.Equal(t, []string{"Portal", "Portal 2"}, listTitles(t, cfg))

	// A deleted import comes back on the next sync
	out = mustRun(t, cfg, "sync", testUser)
	assert.Contains(t, out, "1 added")

	_, err := run(t, cfg, "clear")
	assert.Error(t, err)
	assert.Len(t, listTitles(t, cfg), 3)

	out = mustRun(t, cfg, "clear", "--yes")
	assert.Contains(t, out, "Removed 3 games")
	assert.Empty(t, listTitles(t, cfg))
}

func TestPlay(t *testing.T) {
	cfg := testConfig(t, newSteamServer(t).URL)
	mustRun(t, cfg, "sync", testUser)
	mustRun(t, cfg, "add", "Manual")

	out := mustRun(t, cfg, "play", "Portal 2")
	assert.Contains(t, out, "Launching Portal 2")

	_, err := run(t, cfg, "play", "Manual")
	assert.ErrorContains(t, err, "cannot be launched")
}

func TestWatchNeedsTerminal(t *testing.T) {
	_, err := run(t, testConfig(t, ""), "watch")
	assert.ErrorContains(t, err, "interactive terminal")
}

func TestConfigCommands(t *testing.T) {
	cfg := testConfig(t, "")
	path := filepath.Join(t.TempDir(), "config.yaml")

	out := mustRun(t, cfg, "--config", path, "config", "path")
	assert.Equal(t, path+"\n", out)

	mustRun(t, cfg, "--config", path, "config", "set-user", testUser)
	mustRun(t, cfg, "--config", path, "config", "set-key", "ABCDEFGH1234")

	loaded, err := adapter.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, testUser, loaded.Source.UserID)
	assert.Equal(t, "ABCDEFGH1234", loaded.Source.APIKey)

	// Saving other settings neither drops nor replaces the stored key
	cfg.Source.APIKey = "FROMENVIRONMENT"
	mustRun(t, cfg, "--config", path, "config", "set-user", "76561198000000001")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ABCDEFGH1234")
	assert.NotContains(t, string(data), "FROMENVIRONMENT")
	cfg.Source.APIKey = "ABCDEFGH1234"

	out = mustRun(t, cfg, "config", "show")
	assert.Contains(t, out, "****1234")
	assert.NotContains(t, out, "ABCDEFGH")

	_, err = run(t, cfg, "config", "set-key")
	assert.Error(t, err)
}

func TestParseAxes(t *testing.T) {
	tests := []struct {
		in      string
		parse   func(string) (int, error)
		want    int
		wantErr bool
	}{
		{"title", parseSort, 0, false},
		{"TITLE-DESC", parseSort, 1, false},
		{"rating", parseSort, 2, false},
		{"rating-desc", parseSort, 3, false},
		{"7", parseSort, 7, false},
		{"newest", parseSort, 0, true},
		{"all", parseFilter, 0, false},
		{"completed", parseFilter, 1, false},
		{"incomplete", parseFilter, 2, false},
		{"9", parseFilter, 9, false},
		{"done", parseFilter, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := tt.parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "", redact(""))
	assert.Equal(t, "****", redact("abc"))
	assert.Equal(t, "****wxyz", redact("abcdwxyz"))
}
