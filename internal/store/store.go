package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/mmcdole/backlog/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketGames = []byte("games")
)

const dbFileName = "backlog.db"

// GameStore implements domain.CatalogStore using BoltDB.
// Every committed row is mirrored in memory; queries never touch disk.
type GameStore struct {
	db     *bolt.DB
	logger *slog.Logger

	mu     sync.RWMutex // Protects games, titles, subs, seq, closed
	games  map[int64]domain.Game
	titles map[string]int // title -> number of games carrying it
	subs   map[listener]struct{}
	seq    int64 // ID sequence for memory-only mode
	closed bool

	wg sync.WaitGroup // Delivery goroutines
}

var _ domain.CatalogStore = (*GameStore)(nil)

// NewGameStore opens (or creates) the catalog in dataDir.
// An empty dataDir gives a memory-only store.
func NewGameStore(dataDir string, logger *slog.Logger) (*GameStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &GameStore{
		logger: logger,
		games:  make(map[int64]domain.Game),
		titles: make(map[string]int),
		subs:   make(map[listener]struct{}),
	}
	if dataDir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketGames)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	s.db = db

	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("opened catalog", "path", dbPath, "games", len(s.games))
	return s, nil
}

// load fills the memory mirror from disk.
func (s *GameStore) load() error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGames).ForEach(func(k, v []byte) error {
			var g domain.Game
			if err := json.Unmarshal(v, &g); err != nil {
				return fmt.Errorf("corrupt game record %d: %w", btoi(k), err)
			}
			s.games[g.ID] = g
			s.titles[g.Title]++
			return nil
		})
	})
}

func (s *GameStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for l := range s.subs {
		l.stop()
	}
	s.subs = make(map[listener]struct{})
	s.mu.Unlock()

	s.wg.Wait()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Snapshots ===

// Game returns a one-shot copy of a single game.
func (s *GameStore) Game(id int64) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.Game{}, domain.ErrStoreClosed
	}
	g, ok := s.games[id]
	if !ok {
		return domain.Game{}, fmt.Errorf("game %d: %w", id, domain.ErrGameNotFound)
	}
	return g, nil
}

func (s *GameStore) List(q domain.Query) ([]domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	return selectGames(s.games, q), nil
}

// Exists reports whether a game with exactly this title is stored.
func (s *GameStore) Exists(title string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, domain.ErrStoreClosed
	}
	return s.titles[title] > 0, nil
}

func (s *GameStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// === Mutations ===

func (s *GameStore) Insert(game domain.Game) (domain.Game, error) {
	if game.Title == "" {
		return domain.Game{}, domain.ErrEmptyTitle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.Game{}, domain.ErrStoreClosed
	}
	return s.insertLocked(game)
}

func (s *GameStore) InsertIfAbsent(game domain.Game) (domain.Game, bool, error) {
	if game.Title == "" {
		return domain.Game{}, false, domain.ErrEmptyTitle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.Game{}, false, domain.ErrStoreClosed
	}
	if s.titles[game.Title] > 0 {
		return domain.Game{}, false, nil
	}
	g, err := s.insertLocked(game)
	if err != nil {
		return domain.Game{}, false, err
	}
	return g, true, nil
}

func (s *GameStore) insertLocked(game domain.Game) (domain.Game, error) {
	game.ID = 0
	if err := s.put(&game); err != nil {
		return domain.Game{}, fmt.Errorf("insert %q: %w", game.Title, err)
	}
	s.games[game.ID] = game
	s.titles[game.Title]++
	s.notify(game)
	return game, nil
}

// Update replaces a stored game. The ID must already exist.
func (s *GameStore) Update(game domain.Game) error {
	if game.Title == "" {
		return domain.ErrEmptyTitle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	old, ok := s.games[game.ID]
	if !ok {
		return fmt.Errorf("game %d: %w", game.ID, domain.ErrGameNotFound)
	}
	if err := s.put(&game); err != nil {
		return fmt.Errorf("update %d: %w", game.ID, err)
	}
	s.games[game.ID] = game
	s.untrackTitle(old.Title)
	s.titles[game.Title]++
	s.notify(old, game)
	return nil
}

// Delete removes a game. Deleting an unknown ID is a no-op.
func (s *GameStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	old, ok := s.games[id]
	if !ok {
		return nil
	}
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketGames).Delete(itob(id))
		})
		if err != nil {
			return fmt.Errorf("delete %d: %w", id, err)
		}
	}
	delete(s.games, id)
	s.untrackTitle(old.Title)
	s.notify(old)
	return nil
}

// Clear removes every game. The ID sequence is kept so IDs are never reused.
func (s *GameStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	if len(s.games) == 0 {
		return nil
	}
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketGames)
			var keys [][]byte
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				keys = append(keys, slices.Clone(k))
			}
			for _, k := range keys {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
	}
	removed := make([]domain.Game, 0, len(s.games))
	for _, g := range s.games {
		removed = append(removed, g)
	}
	s.games = make(map[int64]domain.Game)
	s.titles = make(map[string]int)
	s.notify(removed...)
	s.logger.Info("cleared catalog", "removed", len(removed))
	return nil
}

// === Generic helpers ===

// put persists g, assigning an ID when g.ID == 0. Caller holds s.mu.
func (s *GameStore) put(g *domain.Game) error {
	if s.db == nil {
		if g.ID == 0 {
			s.seq++
			g.ID = s.seq
		}
		return nil
	}

	rec := *g
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketGames)
		if rec.ID == 0 {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			rec.ID = int64(seq)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(itob(rec.ID), data)
	})
	if err != nil {
		return err
	}
	*g = rec
	return nil
}

func (s *GameStore) untrackTitle(title string) {
	if s.titles[title] <= 1 {
		delete(s.titles, title)
		return
	}
	s.titles[title]--
}

// selectGames returns the games matching q in q's order.
func selectGames(games map[int64]domain.Game, q domain.Query) []domain.Game {
	out := make([]domain.Game, 0, len(games))
	for _, g := range games {
		if q.Matches(g) {
			out = append(out, g)
		}
	}
	slices.SortFunc(out, q.Compare)
	return out
}

func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func btoi(b []byte) int64 {
	if len(b) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// === Live queries ===

func (s *GameStore) WatchTitleAscending(ctx context.Context, keyword string) <-chan []domain.Game {
	return s.watchQuery(ctx, domain.Query{Sort: domain.SortTitleAsc, Keyword: keyword})
}

func (s *GameStore) WatchTitleDescending(ctx context.Context, keyword string) <-chan []domain.Game {
	return s.watchQuery(ctx, domain.Query{Sort: domain.SortTitleDesc, Keyword: keyword})
}

func (s *GameStore) WatchTitleAscendingByCompletion(ctx context.Context, completed bool, keyword string) <-chan []domain.Game {
	return s.watchQuery(ctx, domain.Query{Sort: domain.SortTitleAsc, Completed: domain.Completion(completed), Keyword: keyword})
}

func (s *GameStore) WatchTitleDescendingByCompletion(ctx context.Context, completed bool, keyword string) <-chan []domain.Game {
	return s.watchQuery(ctx, domain.Query{Sort: domain.SortTitleDesc, Completed: domain.Completion(completed), Keyword: keyword})
}

func (s *GameStore) WatchRatingAscending(ctx context.Context, keyword string) <-chan []domain.Game {
	return s.watchQuery(ctx, domain.Query{Sort: domain.SortRatingAsc, Keyword: keyword})
}

func (s *GameStore) WatchRatingDescending(ctx context.Context, keyword string) <-chan []domain.Game {
	return s.watchQuery(ctx, domain.Query{Sort: domain.SortRatingDesc, Keyword: keyword})
}

func (s *GameStore) WatchRatingAscendingByCompletion(ctx context.Context, completed bool, keyword string) <-chan []domain.Game {
	return s.watchQuery(ctx, domain.Query{Sort: domain.SortRatingAsc, Completed: domain.Completion(completed), Keyword: keyword})
}

func (s *GameStore) WatchRatingDescendingByCompletion(ctx context.Context, completed bool, keyword string) <-chan []domain.Game {
	return s.watchQuery(ctx, domain.Query{Sort: domain.SortRatingDesc, Completed: domain.Completion(completed), Keyword: keyword})
}

// WatchGame is a live view of a single game.
func (s *GameStore) WatchGame(ctx context.Context, id int64) <-chan domain.GameUpdate {
	return subscribe(ctx, s, &subscription[domain.GameUpdate]{
		match: func(g domain.Game) bool { return g.ID == id },
		render: func(games map[int64]domain.Game) domain.GameUpdate {
			g, ok := games[id]
			return domain.GameUpdate{Game: g, Found: ok}
		},
		feed: newFeed[domain.GameUpdate](),
	})
}

func (s *GameStore) watchQuery(ctx context.Context, q domain.Query) <-chan []domain.Game {
	return subscribe(ctx, s, &subscription[[]domain.Game]{
		match: q.Matches,
		render: func(games map[int64]domain.Game) []domain.Game {
			return selectGames(games, q)
		},
		feed: newFeed[[]domain.Game](),
	})
}
