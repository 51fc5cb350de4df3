package service

import (
	"context"
	"testing"

	"github.com/omarshaarawi/commander/internal/api/espn"
	"github.com/omarshaarawi/commander/internal/config"
	"github.com/omarshaarawi/commander/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(home, away espn.BoxTeam) espn.BoxScore {
	return espn.BoxScore{Home: home, Away: away}
}

func team(id int, score, projected float64) espn.BoxTeam {
	return espn.BoxTeam{TeamID: id, Score: score, Projected: projected}
}

func recordsProfiles() config.Profiles {
	return config.NewProfiles([]models.League{
		{Profile: "sam", Name: "Work", Platform: models.PlatformESPN, LeagueID: 10, TeamID: 1, StartYear: 2024},
		{Profile: "alex", Name: "Work", Platform: models.PlatformESPN, LeagueID: 10, TeamID: 2, StartYear: 2024},
		{Profile: "sam", Name: "Family", Platform: models.PlatformSleeper, LeagueID: 20, TeamID: 3, StartYear: 2024},
	})
}

func TestRecordsBackfill(t *testing.T) {
	provider := &fakeProvider{
		owners: map[int]string{1: "Pat", 2: "None"},
		history: map[string][]espn.BoxScore{
			historyKey(10, 2024, 1): {box(team(1, 120.456, 100), team(2, 90, 95))},
			historyKey(10, 2024, 2): {box(team(1, 80, 90), team(2, 0, 88))},
			historyKey(10, 2024, 3): {{Playoff: true, Home: team(1, 150, 100), Away: team(2, 140, 100)}},
		},
		deniedOnce: map[string]bool{historyKey(10, 2024, 2): true},
	}

	boards, err := NewRecordsService(provider, testConfig()).Records(context.Background(), recordsProfiles(), 10)
	require.NoError(t, err)
	require.Len(t, boards, 1)

	board := boards[0]
	assert.Equal(t, "Work", board.League)
	require.Len(t, board.Categories, 6)

	highest := board.Categories[0]
	assert.Equal(t, "Highest Points (Week)", highest.Name)
	require.Len(t, highest.Records, 3)
	assert.Equal(t, models.LeagueRecord{Year: 2024, Week: 1, MatchupID: 1, Owner: "Pat", Points: 120.46, Projected: 100, Outcome: 20.46}, highest.Records[0])
	assert.Equal(t, RedactedOwner, highest.Records[1].Owner)

	worst := board.Categories[5]
	assert.Equal(t, "Worst Outcome (Week)", worst.Name)
	assert.Equal(t, -10.0, worst.Records[0].Outcome)

	assert.Equal(t, 2, provider.callCount(historyKey(10, 2024, 2)))
	assert.Equal(t, 1, provider.callCount(historyKey(10, 2024, 3)))
}

func TestRecordsStopsBeforeCurrentWeek(t *testing.T) {
	provider := &fakeProvider{
		owners: map[int]string{1: "Pat", 2: "Lee"},
		history: map[string][]espn.BoxScore{
			historyKey(10, 2024, 1): {box(team(1, 100, 100), team(2, 90, 95))},
		},
	}

	boards, err := NewRecordsService(provider, testConfig()).Records(context.Background(), recordsProfiles(), 2)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Zero(t, provider.callCount(historyKey(10, 2024, 2)))
}

func TestRecordsReportsFailedWeeks(t *testing.T) {
	provider := &fakeProvider{
		owners: map[int]string{1: "Pat", 2: "Lee"},
		history: map[string][]espn.BoxScore{
			historyKey(10, 2024, 1): {box(team(1, 100, 100), team(2, 90, 95))},
		},
	}

	boards, err := NewRecordsService(provider, testConfig()).Records(context.Background(), recordsProfiles(), 10)

	require.ErrorIs(t, err, errUpstream)
	require.Len(t, boards, 1)
	assert.Len(t, boards[0].Categories[0].Records, 2)
	assert.Equal(t, 1, provider.callCount(historyKey(10, 2024, 2)), "non access-denied errors are not retried")
}

func TestRecordsGivesUpAfterMaxTries(t *testing.T) {
	provider := &fakeProvider{
		owners:     map[int]string{},
		deniedOnce: map[string]bool{},
	}
	cfg := testConfig()
	cfg.Backfill.LastWeek = 1
	cfg.Backfill.MaxTries = 1
	provider.deniedOnce[historyKey(10, 2024, 1)] = true

	_, err := NewRecordsService(provider, cfg).Records(context.Background(), recordsProfiles(), 10)

	require.ErrorIs(t, err, espn.ErrAccessDenied)
	assert.Equal(t, 1, provider.callCount(historyKey(10, 2024, 1)))
}

func TestBoardIsStable(t *testing.T) {
	records := []models.LeagueRecord{
		{Week: 1, Owner: "A", Points: 100},
		{Week: 2, Owner: "B", Points: 100},
		{Week: 3, Owner: "C", Points: 100},
		{Week: 4, Owner: "D", Points: 100},
	}

	board := Board("Work", records)

	for _, category := range board.Categories {
		require.Len(t, category.Records, 3)
		assert.Equal(t, "A", category.Records[0].Owner, category.Name)
		assert.Equal(t, "C", category.Records[2].Owner, category.Name)
	}
}
