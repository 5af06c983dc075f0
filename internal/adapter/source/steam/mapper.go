package steam

import (
	"fmt"

	"github.com/mmcdole/backlog/internal/domain"
)

// MapOwnedGames extracts app ids from an owned-games body.
func MapOwnedGames(resp OwnedGamesResponse) ([]domain.AppID, error) {
	if resp.Response == nil {
		return nil, fmt.Errorf("%w: missing response", domain.ErrMalformedResponse)
	}
	if resp.Response.Games == nil {
		return nil, fmt.Errorf("%w: missing response.games", domain.ErrMalformedResponse)
	}

	games := *resp.Response.Games
	ids := make([]domain.AppID, 0, len(games))
	for i, g := range games {
		if g.AppID == nil {
			return nil, fmt.Errorf("%w: games[%d] has no appid", domain.ErrMalformedResponse, i)
		}
		id, err := domain.ParseAppID(g.AppID.String())
		if err != nil {
			return nil, fmt.Errorf("%w: games[%d]: %v", domain.ErrMalformedResponse, i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// MapApps converts a metadata body to domain app info, keeping response order.
// A missing icon maps to "".
func MapApps(resp AppsResponse) ([]domain.AppInfo, error) {
	if resp.Response == nil {
		return nil, fmt.Errorf("%w: missing response", domain.ErrMalformedResponse)
	}
	if resp.Response.Apps == nil {
		return nil, fmt.Errorf("%w: missing response.apps", domain.ErrMalformedResponse)
	}

	apps := *resp.Response.Apps
	infos := make([]domain.AppInfo, 0, len(apps))
	for i, a := range apps {
		if a.Name == nil {
			return nil, fmt.Errorf("%w: apps[%d] has no name", domain.ErrMalformedResponse, i)
		}
		info := domain.AppInfo{Name: *a.Name}
		if a.AppID != "" {
			id, err := domain.ParseAppID(a.AppID.String())
			if err != nil {
				return nil, fmt.Errorf("%w: apps[%d]: %v", domain.ErrMalformedResponse, i, err)
			}
			info.ID = id
		}
		if a.Icon != nil {
			info.Icon = *a.Icon
		}
		infos = append(infos, info)
	}
	return infos, nil
}
