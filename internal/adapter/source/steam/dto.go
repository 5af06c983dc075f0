package steam

import "encoding/json"

// OwnedGamesResponse is the body of IPlayerService/GetOwnedGames.
// Pointer members distinguish "absent" from "empty"; Steam answers
// {"response":{}} for private profiles.
type OwnedGamesResponse struct {
	Response *OwnedGames `json:"response"`
}

// OwnedGames is the payload of an owned-games listing
type OwnedGames struct {
	GameCount int          `json:"game_count"`
	Games     *[]OwnedGame `json:"games"`
}

// OwnedGame is a single owned app. Only AppID is required; it may arrive
// as a number or a numeric string.
type OwnedGame struct {
	AppID           *json.Number `json:"appid"`
	PlaytimeForever int64        `json:"playtime_forever,omitempty"` // Minutes
	RTimeLastPlayed int64        `json:"rtime_last_played,omitempty"`
}

// AppsResponse is the body of ICommunityService/GetApps
type AppsResponse struct {
	Response *Apps `json:"response"`
}

// Apps is the payload of a metadata lookup
type Apps struct {
	Apps *[]App `json:"apps"`
}

// App is the community metadata of one app. Icon is optional.
type App struct {
	AppID json.Number `json:"appid"`
	Name  *string     `json:"name"`
	Icon  *string     `json:"icon,omitempty"`
}
