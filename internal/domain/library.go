package domain

import "context"

// OwnedGamesRepository: Network operations against the owned-games service
// (implemented by source clients). Calls block on the network.
type OwnedGamesRepository interface {
	// ListOwnedItems returns the app ids owned by userID
	ListOwnedItems(ctx context.Context, userID string) ([]AppID, error)

	// ResolveMetadata resolves display metadata for ids, in response order.
	// onProgress may be nil.
	ResolveMetadata(ctx context.Context, ids []AppID, onProgress ProgressFunc) ([]AppInfo, error)
}

// CatalogQueries: Reads against the local catalog. Never touches the network.
type CatalogQueries interface {
	Dispatch(ctx context.Context, sortAxis, filterAxis int, keyword string) <-chan []Game
	List(sortAxis, filterAxis int, keyword string) ([]Game, error)
	Game(id int64) (Game, error)
	WatchGame(ctx context.Context, id int64) <-chan GameUpdate
}

// CatalogCommands: Operations that mutate the catalog or hit the network.
type CatalogCommands interface {
	Sync(ctx context.Context, userID string, observer SyncObserver) (SyncResult, error)

	Add(ctx context.Context, game Game) (Game, error)
	Update(ctx context.Context, game Game) error
	SetCompleted(ctx context.Context, id int64, completed bool) (Game, error)
	Rate(ctx context.Context, id int64, rating float64) (Game, error)
	Delete(ctx context.Context, id int64) error
	ClearAll(ctx context.Context) error
}
