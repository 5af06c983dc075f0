package domain

import "context"

// CatalogStore is the durable game catalog (BoltDB + memory mirror).
// Watch methods return live views: the channel receives the current result
// immediately and again after every committed mutation that can change it.
// Channels close when ctx is done or the store is closed.
type CatalogStore interface {
	// === Live queries ===
	WatchTitleAscending(ctx context.Context, keyword string) <-chan []Game
	WatchTitleDescending(ctx context.Context, keyword string) <-chan []Game
	WatchTitleAscendingByCompletion(ctx context.Context, completed bool, keyword string) <-chan []Game
	WatchTitleDescendingByCompletion(ctx context.Context, completed bool, keyword string) <-chan []Game
	WatchRatingAscending(ctx context.Context, keyword string) <-chan []Game
	WatchRatingDescending(ctx context.Context, keyword string) <-chan []Game
	WatchRatingAscendingByCompletion(ctx context.Context, completed bool, keyword string) <-chan []Game
	WatchRatingDescendingByCompletion(ctx context.Context, completed bool, keyword string) <-chan []Game
	WatchGame(ctx context.Context, id int64) <-chan GameUpdate

	// === Snapshots ===
	Game(id int64) (Game, error)
	List(q Query) ([]Game, error)
	Exists(title string) (bool, error)
	Count() int

	// === Mutations ===
	Insert(game Game) (Game, error)
	// InsertIfAbsent inserts game unless a game with exactly the same title
	// exists. Check and insert happen in one transaction.
	InsertIfAbsent(game Game) (Game, bool, error)
	Update(game Game) error
	Delete(id int64) error
	Clear() error

	Close() error
}
