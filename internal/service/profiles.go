package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/omarshaarawi/commander/internal/config"
	"github.com/omarshaarawi/commander/internal/models"
	"github.com/omarshaarawi/commander/internal/repository"
)

// LoadProfiles snapshots the configured leagues from the store.
func LoadProfiles(ctx context.Context, store repository.Store) (config.Profiles, error) {
	leagues, err := store.Leagues(ctx)
	if err != nil {
		return config.Profiles{}, fmt.Errorf("reading leagues: %w", err)
	}
	return config.NewProfiles(leagues), nil
}

type leagueEntry struct {
	Profile   string          `json:"profile"`
	Name      string          `json:"name"`
	Platform  models.Platform `json:"platform"`
	Scoring   string          `json:"scoring"`
	LeagueID  int64           `json:"league_id"`
	TeamID    int             `json:"team_id"`
	StartYear int             `json:"start_year"`
	SWID      string          `json:"swid"`
	S2        string          `json:"espn_s2"`
}

// SeedLeagues upserts the leagues listed in a JSON file into the store.
func SeedLeagues(ctx context.Context, store repository.Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading leagues file: %w", err)
	}

	var entries []leagueEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parsing leagues file: %w", err)
	}

	leagues := make([]models.League, 0, len(entries))
	for _, e := range entries {
		switch e.Platform {
		case models.PlatformESPN, models.PlatformSleeper:
		default:
			return fmt.Errorf("league %d: unknown platform %q", e.LeagueID, e.Platform)
		}
		if e.Scoring == "" {
			e.Scoring = models.ScoringPPR
		}
		leagues = append(leagues, models.League{
			Profile:   e.Profile,
			Name:      e.Name,
			Platform:  e.Platform,
			Scoring:   e.Scoring,
			LeagueID:  e.LeagueID,
			TeamID:    e.TeamID,
			StartYear: e.StartYear,
			SWID:      e.SWID,
			S2:        e.S2,
		})
	}

	return store.SaveLeagues(ctx, leagues)
}
