package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/mmcdole/backlog/internal/domain"
)

const maxRating = 5

// Commands provides operations that mutate the catalog or hit the network.
// Implements domain.CatalogCommands.
type Commands struct {
	repo   domain.OwnedGamesRepository
	store  domain.CatalogStore
	logger *slog.Logger
}

var _ domain.CatalogCommands = (*Commands)(nil)

// NewCommands creates a new Commands instance.
func NewCommands(repo domain.OwnedGamesRepository, store domain.CatalogStore, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	return &Commands{repo: repo, store: store, logger: logger}
}

// Sync imports the games owned by userID. Owned ids are listed, their
// metadata is resolved, and every title not yet in the catalog is inserted
// with import defaults. Progress is reported to observer; the last update
// always has InProgress == false, on success and on failure.
func (c *Commands) Sync(ctx context.Context, userID string, observer domain.SyncObserver) (result domain.SyncResult, err error) {
	if observer == nil {
		observer = domain.NoOpObserver{}
	}
	result.UserID = userID

	report := func(stage domain.SyncStage, loaded, total int) {
		observer.OnProgress(domain.SyncProgress{
			UserID:     userID,
			Stage:      stage,
			InProgress: true,
			Loaded:     loaded,
			Total:      total,
		})
	}
	defer func() {
		observer.OnProgress(domain.SyncProgress{
			UserID: userID,
			Stage:  domain.StageDone,
			Loaded: result.Inserted + result.Skipped,
			Total:  result.Resolved,
			Err:    err,
		})
	}()

	if userID == "" {
		return result, domain.ErrInvalidUserID
	}
	if c.repo == nil {
		return result, fmt.Errorf("no owned-games source configured")
	}

	// 1. Owned ids
	report(domain.StageListing, 0, 0)
	ids, err := c.repo.ListOwnedItems(ctx, userID)
	if err != nil {
		c.logger.Error("failed to list owned games", "error", err, "userID", userID)
		return result, fmt.Errorf("list owned games: %w", err)
	}
	result.Owned = len(ids)
	c.logger.Debug("listed owned games", "count", len(ids), "userID", userID)

	// 2. Metadata, batched by the source
	report(domain.StageResolving, 0, len(ids))
	apps, err := c.repo.ResolveMetadata(ctx, ids, func(loaded, total int) {
		report(domain.StageResolving, loaded, total)
	})
	if err != nil {
		c.logger.Error("failed to resolve metadata", "error", err, "count", len(ids))
		return result, fmt.Errorf("resolve metadata: %w", err)
	}
	result.Resolved = len(apps)

	// 3. Insert unseen titles in response order
	report(domain.StageInserting, 0, len(apps))
	for i, app := range apps {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if app.Name == "" {
			c.logger.Warn("skipping app without name", "appID", app.ID)
			result.Skipped++
			continue
		}

		_, inserted, err := c.store.InsertIfAbsent(domain.NewImportedGame(app))
		if err != nil {
			c.logger.Error("failed to insert game", "error", err, "title", app.Name)
			return result, fmt.Errorf("insert %q: %w", app.Name, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
		report(domain.StageInserting, i+1, len(apps))
	}

	c.logger.Info("sync complete",
		"userID", userID,
		"owned", result.Owned,
		"resolved", result.Resolved,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
	)
	return result, nil
}

// Add inserts a manually entered game. Duplicate titles are allowed.
func (c *Commands) Add(ctx context.Context, game domain.Game) (domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return domain.Game{}, err
	}
	if err := validateRating(game.Rating); err != nil {
		return domain.Game{}, err
	}
	g, err := c.store.Insert(game)
	if err != nil {
		c.logger.Error("failed to add game", "error", err, "title", game.Title)
		return domain.Game{}, err
	}
	c.logger.Debug("added game", "id", g.ID, "title", g.Title)
	return g, nil
}

func (c *Commands) Update(ctx context.Context, game domain.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateRating(game.Rating); err != nil {
		return err
	}
	if err := c.store.Update(game); err != nil {
		c.logger.Error("failed to update game", "error", err, "id", game.ID)
		return err
	}
	return nil
}

// SetCompleted toggles the completion flag of a stored game.
func (c *Commands) SetCompleted(ctx context.Context, id int64, completed bool) (domain.Game, error) {
	return c.modify(ctx, id, func(g *domain.Game) error {
		g.Completed = completed
		return nil
	})
}

// Rate sets the user rating (0-5) of a stored game.
func (c *Commands) Rate(ctx context.Context, id int64, rating float64) (domain.Game, error) {
	if err := validateRating(rating); err != nil {
		return domain.Game{}, err
	}
	return c.modify(ctx, id, func(g *domain.Game) error {
		g.Rating = rating
		return nil
	})
}

func (c *Commands) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.store.Delete(id); err != nil {
		c.logger.Error("failed to delete game", "error", err, "id", id)
		return err
	}
	c.logger.Info("deleted game", "id", id)
	return nil
}

func (c *Commands) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.store.Clear(); err != nil {
		c.logger.Error("failed to clear catalog", "error", err)
		return err
	}
	return nil
}

// --- Private helpers ---

// modify reads a one-shot snapshot, applies fn and writes the result back.
func (c *Commands) modify(ctx context.Context, id int64, fn func(g *domain.Game) error) (domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return domain.Game{}, err
	}
	g, err := c.store.Game(id)
	if err != nil {
		return domain.Game{}, err
	}
	if err := fn(&g); err != nil {
		return domain.Game{}, err
	}
	if err := c.store.Update(g); err != nil {
		c.logger.Error("failed to update game", "error", err, "id", id)
		return domain.Game{}, err
	}
	return g, nil
}

func validateRating(r float64) error {
	if math.IsNaN(r) || r < 0 || r > maxRating {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRating, r)
	}
	return nil
}
