package source

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/backlog/internal/adapter"
	"github.com/mmcdole/backlog/internal/adapter/source/steam"
	"github.com/mmcdole/backlog/internal/domain"
)

// SourceConfig contains the configuration needed to create an owned-games source
type SourceConfig struct {
	Type      adapter.SourceType
	APIKey    string
	BaseURL   string
	BatchSize int
	Timeout   time.Duration
}

// NewClient creates an owned-games source based on the source type.
func NewClient(cfg *SourceConfig, logger *slog.Logger) (domain.OwnedGamesRepository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source config is nil")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch cfg.Type {
	case adapter.SourceTypeSteam, "":
		return steam.NewClient(cfg.APIKey, steam.Options{
			BaseURL:   cfg.BaseURL,
			BatchSize: cfg.BatchSize,
			Timeout:   cfg.Timeout,
		}, logger), nil

	default:
		return nil, fmt.Errorf("unknown source type: %s", cfg.Type)
	}
}

// NewClientFromConfig creates an owned-games source from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (domain.OwnedGamesRepository, error) {
	return NewClient(&SourceConfig{
		Type:      cfg.Source.Type,
		APIKey:    cfg.Source.APIKey,
		BaseURL:   cfg.Source.BaseURL,
		BatchSize: cfg.Source.BatchSize,
		Timeout:   cfg.Source.Timeout,
	}, logger)
}
