// Package repository defines the tabular store the service reads and writes.
package repository

import (
	"context"
	"time"

	"github.com/omarshaarawi/commander/internal/models"
)

type Store interface {
	Leagues(ctx context.Context) ([]models.League, error)
	SaveLeagues(ctx context.Context, leagues []models.League) error

	Pairings(ctx context.Context, week int) ([]models.Pairing, error)
	ReplacePairings(ctx context.Context, week int, pairings []models.Pairing) error

	Teams(ctx context.Context) ([]models.TeamMeta, error)
	ReplaceTeams(ctx context.Context, leagueID int64, teams []models.TeamMeta) error

	// Scores returns the week's rows, not yet deduplicated.
	Scores(ctx context.Context, week int) ([]models.PlayerScore, error)
	// WriteScores appends rows stamped with updated and then drops rows of
	// the same league and week that are older than updated.
	WriteScores(ctx context.Context, leagueID int64, week int, updated time.Time, scores []models.PlayerScore) error

	Projections(ctx context.Context, week int) ([]models.Projection, error)
	ReplaceProjections(ctx context.Context, week int, projections []models.Projection) error

	Progress(ctx context.Context, year, week int) ([]models.GameProgress, error)
	ReplaceProgress(ctx context.Context, year, week int, progress []models.GameProgress) error

	AddChanges(ctx context.Context, changes []models.ProjectionChange) error
	// Changes returns the most recent changes first.
	Changes(ctx context.Context, limit int) ([]models.ProjectionChange, error)
}

type scoreKey struct {
	leagueID int64
	teamID   int
	week     int
	name     string
}

// LatestScores keeps, for each (league, team, week, player), only the row
// with the greatest Updated. Input order is otherwise preserved.
func LatestScores(scores []models.PlayerScore) []models.PlayerScore {
	latest := make(map[scoreKey]int, len(scores))
	var order []scoreKey

	for i, score := range scores {
		k := scoreKey{score.LeagueID, score.TeamID, score.Week, score.Name}
		current, ok := latest[k]
		if !ok {
			order = append(order, k)
			latest[k] = i
			continue
		}
		if score.Updated.After(scores[current].Updated) {
			latest[k] = i
		}
	}

	deduped := make([]models.PlayerScore, 0, len(order))
	for _, k := range order {
		deduped = append(deduped, scores[latest[k]])
	}
	return deduped
}
