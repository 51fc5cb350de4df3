package models

type SleeperPlayer struct {
	FullName         string   `json:"full_name"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	Team             string   `json:"team"`
	InjuryStatus     *string  `json:"injury_status"`
	FantasyPositions []string `json:"fantasy_positions"`
}

type SleeperMatchup struct {
	RosterID      int                `json:"roster_id"`
	MatchupID     int                `json:"matchup_id"`
	Points        float64            `json:"points"`
	Players       []string           `json:"players"`
	Starters      []string           `json:"starters"`
	PlayersPoints map[string]float64 `json:"players_points"`
}

type SleeperRoster struct {
	RosterID int    `json:"roster_id"`
	OwnerID  string `json:"owner_id"`
}

type SleeperUser struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Metadata    struct {
		TeamName string `json:"team_name"`
	} `json:"metadata"`
}
