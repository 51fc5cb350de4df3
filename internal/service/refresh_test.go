package service

import (
	"context"
	"testing"
	"time"

	"github.com/omarshaarawi/commander/internal/api/fantasy"
	"github.com/omarshaarawi/commander/internal/config"
	"github.com/omarshaarawi/commander/internal/models"
	"github.com/omarshaarawi/commander/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refreshedAt = time.Date(2024, 10, 6, 19, 30, 0, 0, time.UTC)

func newRefresh(provider Provider, repo *memory.Repository) *RefreshService {
	s := NewRefreshService(provider, repo, testConfig())
	s.now = func() time.Time { return refreshedAt }
	return s
}

func twoLeagues() config.Profiles {
	return config.NewProfiles([]models.League{
		{Profile: "sam", Name: "Family", Platform: models.PlatformSleeper, LeagueID: 20, TeamID: 3},
		{Profile: "sam", Name: "Work", Platform: models.PlatformESPN, LeagueID: 10, TeamID: 1},
		{Profile: "alex", Name: "Work", Platform: models.PlatformESPN, LeagueID: 10, TeamID: 2},
	})
}

func TestRefreshScoresWritesSharedStamp(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	provider := &fakeProvider{
		gameWeek: fantasy.GameWeek{Progress: []models.GameProgress{{Year: 2024, Week: 5, ProTeam: "PHI", Progress: 0.5}}},
		weeks: map[int64]fantasy.Week{
			10: {
				Scores:   []models.PlayerScore{{LeagueID: 10, TeamID: 1, Week: 5, Name: "Jalen Hurts"}},
				Pairings: []models.Pairing{{LeagueID: 10, Week: 5, Home: 1, Away: 2}, {LeagueID: 10, Week: 5, Home: 2, Away: 1}},
			},
			20: {
				Scores:   []models.PlayerScore{{LeagueID: 20, TeamID: 3, Week: 5, Name: "Dak Prescott"}},
				Pairings: []models.Pairing{{LeagueID: 20, Week: 5, Home: 3, Away: 4}, {LeagueID: 20, Week: 5, Home: 4, Away: 3}},
			},
		},
	}

	require.NoError(t, newRefresh(provider, repo).RefreshScores(ctx, twoLeagues(), 5))

	scores, err := repo.Scores(ctx, 5)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "Jalen Hurts", scores[0].Name, "ESPN leagues refresh first")
	for _, score := range scores {
		assert.Equal(t, refreshedAt, score.Updated)
	}

	pairings, err := repo.Pairings(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, pairings, 4)

	progress, err := repo.Progress(ctx, 2024, 5)
	require.NoError(t, err)
	assert.Len(t, progress, 1)
}

func TestRefreshScoresKeepsPairingsOfFailedLeague(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	require.NoError(t, repo.ReplacePairings(ctx, 5, []models.Pairing{{LeagueID: 20, Week: 5, Home: 3, Away: 4}}))
	provider := &fakeProvider{
		weeks: map[int64]fantasy.Week{
			10: {Pairings: []models.Pairing{{LeagueID: 10, Week: 5, Home: 1, Away: 2}}},
		},
	}

	err := newRefresh(provider, repo).RefreshScores(ctx, twoLeagues(), 5)
	require.ErrorIs(t, err, errUpstream)

	pairings, err := repo.Pairings(ctx, 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.Pairing{
		{LeagueID: 10, Week: 5, Home: 1, Away: 2},
		{LeagueID: 20, Week: 5, Home: 3, Away: 4},
	}, pairings)
}

func TestProjectionChanges(t *testing.T) {
	old := []models.Projection{
		{Player: "Jalen Hurts", ProTeam: "PHI", HalfPPR: 20, PPR: 20},
		{Player: "Saquon Barkley", ProTeam: "PHI", HalfPPR: 15, PPR: 17},
	}
	fresh := []models.Projection{
		{Player: "Jalen Hurts", ProTeam: "PHI", HalfPPR: 23, PPR: 23},
		{Player: "Saquon Barkley", ProTeam: "PHI", HalfPPR: 18.5, PPR: 19},
		{Player: "Rookie Back", ProTeam: "PHI", HalfPPR: 2, PPR: 4},
	}

	changes := ProjectionChanges(old, fresh, refreshedAt)

	require.Len(t, changes, 1)
	assert.Equal(t, "Saquon Barkley", changes[0].Player)
	assert.Equal(t, models.ScoringHalfPPR, changes[0].Scoring)
	assert.Equal(t, 15.0, changes[0].Old)
	assert.Equal(t, 18.5, changes[0].New)
	assert.Equal(t, refreshedAt, changes[0].Updated)
}

func TestProjectionChangesDroppedPlayer(t *testing.T) {
	old := []models.Projection{{Player: "Saquon Barkley", ProTeam: "PHI", HalfPPR: 17, PPR: 19}}

	changes := ProjectionChanges(old, nil, refreshedAt)

	require.Len(t, changes, 2)
	assert.Equal(t, models.ScoringPPR, changes[0].Scoring)
	assert.Equal(t, 19.0, changes[0].Old)
	assert.Equal(t, 0.0, changes[0].New)
	assert.Equal(t, models.ScoringHalfPPR, changes[1].Scoring)
	assert.Equal(t, 17.0, changes[1].Old)
	assert.NotEqual(t, changes[0].ID, changes[1].ID)
}

func TestProjectionChangesFirstRefreshOfWeek(t *testing.T) {
	fresh := []models.Projection{
		{Player: "Jalen Hurts", ProTeam: "PHI", HalfPPR: 22, PPR: 22},
		{Player: "Saquon Barkley", ProTeam: "PHI", HalfPPR: 17, PPR: 19},
	}

	assert.Empty(t, ProjectionChanges(nil, fresh, refreshedAt))
}

func TestRefreshProjectionsKeepsStoredOnEmptyScrape(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	require.NoError(t, repo.ReplaceProjections(ctx, 5, []models.Projection{{Player: "Jalen Hurts", ProTeam: "PHI", Week: 5, PPR: 20}}))

	require.NoError(t, newRefresh(&fakeProvider{}, repo).RefreshProjections(ctx, 5))

	projections, err := repo.Projections(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, projections, 1)

	changes, err := repo.Changes(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestRefreshProgressKeepsStoredOnEmptySchedule(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	require.NoError(t, repo.ReplaceProgress(ctx, 2024, 5, []models.GameProgress{{Year: 2024, Week: 5, ProTeam: "PHI", Progress: 0.5}}))

	require.NoError(t, newRefresh(&fakeProvider{}, repo).RefreshProgress(ctx, 5))

	progress, err := repo.Progress(ctx, 2024, 5)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 0.5, progress[0].Progress)
}

func TestRefreshTeamsKeepsStoredOnEmptyResponse(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	require.NoError(t, repo.ReplaceTeams(ctx, 20, []models.TeamMeta{{LeagueID: 20, TeamID: 3, Team: "Goats", Owner: "Pat"}}))
	provider := &fakeProvider{teams: map[int64][]models.TeamMeta{
		10: {{LeagueID: 10, TeamID: 1, Team: "Sheep", Owner: "Lee"}},
		20: {},
	}}

	require.NoError(t, newRefresh(provider, repo).RefreshTeams(ctx, twoLeagues()))

	teams, err := repo.Teams(ctx)
	require.NoError(t, err)
	byLeague := make(map[int64]models.TeamMeta)
	for _, team := range teams {
		byLeague[team.LeagueID] = team
	}
	assert.Equal(t, "Goats", byLeague[20].Team)
	assert.Equal(t, "Sheep", byLeague[10].Team)
}

func TestRefreshProjectionsRecordsChanges(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	require.NoError(t, repo.ReplaceProjections(ctx, 5, []models.Projection{{Player: "Jalen Hurts", ProTeam: "PHI", Week: 5, HalfPPR: 20, PPR: 20}}))
	provider := &fakeProvider{projections: []models.Projection{{Player: "Jalen Hurts", ProTeam: "PHI", Week: 5, HalfPPR: 25, PPR: 25}}}

	require.NoError(t, newRefresh(provider, repo).RefreshProjections(ctx, 5))

	projections, err := repo.Projections(ctx, 5)
	require.NoError(t, err)
	require.Len(t, projections, 1)
	assert.Equal(t, 25.0, projections[0].PPR)

	changes, err := repo.Changes(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, changes, 2)
}

func TestRefreshTeamsCleansNames(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	provider := &fakeProvider{teams: map[int64][]models.TeamMeta{
		10: {{LeagueID: 10, TeamID: 1, Team: "  the   McCaffrey  fan club ", Owner: "pat   smith"}},
		20: {{LeagueID: 20, TeamID: 3, Team: "ducks", Owner: "lee"}},
	}}

	require.NoError(t, newRefresh(provider, repo).RefreshTeams(ctx, twoLeagues()))

	teams, err := repo.Teams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	byLeague := make(map[int64]models.TeamMeta)
	for _, team := range teams {
		byLeague[team.LeagueID] = team
	}
	assert.Equal(t, "The McCaffrey Fan Club", byLeague[10].Team)
	assert.Equal(t, "Pat Smith", byLeague[10].Owner)
	assert.Equal(t, "Ducks", byLeague[20].Team)
}

func TestRefreshAllReportsEachStep(t *testing.T) {
	provider := &fakeProvider{
		weeks: map[int64]fantasy.Week{10: {}, 20: {}},
		teams: map[int64][]models.TeamMeta{10: {}},
	}

	result := newRefresh(provider, memory.NewRepository()).RefreshAll(context.Background(), twoLeagues(), 5)

	assert.Equal(t, "ok", result["projections"])
	assert.Equal(t, "ok", result["scores"])
	assert.Contains(t, result["teams"], errUpstream.Error())
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  mighty   ducks ", "Mighty Ducks"},
		{"DK dynasty", "DK Dynasty"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanName(tt.in), tt.in)
	}
}
