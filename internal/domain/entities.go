package domain

import (
	"fmt"
	"strconv"
	"time"
)

// DefaultPlatform is assigned to games imported from the owned-games source.
const DefaultPlatform = "PC"

// Game represents a single entry in the local catalog
type Game struct {
	ID        int64   `json:"id"`        // Store-assigned; 0 until first persisted
	Title     string  `json:"title"`     // Display name, dedup key for imports
	Completed bool    `json:"completed"` // Completion flag, toggled by the user
	PlayedAt  int64   `json:"played_at"` // Unix timestamp of the last session (0 = never)
	Platform  string  `json:"platform"`  // Free-text platform label
	IconRef   string  `json:"icon_ref"`  // Icon hash or path from the source
	Genre     string  `json:"genre"`
	Developer string  `json:"developer"`
	Playtime  int64   `json:"playtime"` // Minutes played
	Notes     string  `json:"notes"`
	Review    string  `json:"review"`
	Rating    float64 `json:"rating"` // User rating, 0 = unrated
	AppID     AppID   `json:"app_id"` // Source app id, 0 for manual entries
}

// NewImportedGame builds a catalog entry for an owned app using the import defaults.
func NewImportedGame(app AppInfo) Game {
	return Game{
		Title:    app.Name,
		Platform: DefaultPlatform,
		IconRef:  app.Icon,
		AppID:    app.ID,
	}
}

// LaunchURL returns the steam:// URL that starts the game, or "" for manual entries.
func (g Game) LaunchURL() string {
	if g.AppID == 0 {
		return ""
	}
	return "steam://rungameid/" + g.AppID.String()
}

// IsPersisted reports whether the store has assigned an ID
func (g Game) IsPersisted() bool {
	return g.ID != 0
}

// LastPlayed returns PlayedAt as a time, or the zero time if never played.
func (g Game) LastPlayed() time.Time {
	if g.PlayedAt == 0 {
		return time.Time{}
	}
	return time.Unix(g.PlayedAt, 0)
}

// FormattedRating returns the rating for display ("-" if unrated)
func (g Game) FormattedRating() string {
	if g.Rating == 0 {
		return "-"
	}
	return strconv.FormatFloat(g.Rating, 'f', 1, 64)
}

// FormattedPlaytime returns the playtime in a human-readable format
func (g Game) FormattedPlaytime() string {
	if g.Playtime <= 0 {
		return ""
	}
	h := g.Playtime / 60
	mins := g.Playtime % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// GameUpdate is delivered by single-game live views.
// Found is false when the game does not exist (or was deleted).
type GameUpdate struct {
	Game  Game
	Found bool
}

// AppID identifies an item in the external owned-games source
type AppID int64

func (id AppID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseAppID parses a decimal app id
func ParseAppID(s string) (AppID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid app id %q: %w", s, err)
	}
	return AppID(v), nil
}

// AppInfo is the resolved display metadata for an owned app
type AppInfo struct {
	ID   AppID
	Name string
	Icon string // Empty when the source provides none
}
