package config

import (
	"testing"
	"time"

	"github.com/omarshaarawi/commander/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, uint(5), cfg.Backfill.MaxTries)
	assert.Equal(t, 500*time.Millisecond, cfg.Backfill.RetryDelay)
	assert.False(t, cfg.Matchups.PublishWinChance)
	assert.False(t, cfg.TelegramBot.Enabled())
	assert.Equal(t, 2024, cfg.Year())
}

func TestNewRejectsBadSchedule(t *testing.T) {
	t.Setenv("SCHEDULE_SCORES", "every five minutes")

	_, err := New()
	assert.ErrorContains(t, err, "SCHEDULE_SCORES")
}

func TestNewRejectsZeroRetries(t *testing.T) {
	t.Setenv("BACKFILL_MAX_TRIES", "0")

	_, err := New()
	assert.Error(t, err)
}

func TestSeasonWeek(t *testing.T) {
	season := Season{Start: "2024-09-05"}
	loc := Location()

	assert.Equal(t, 1, season.Week(time.Date(2024, 9, 5, 19, 0, 0, 0, loc)))
	assert.Equal(t, 1, season.Week(time.Date(2024, 9, 11, 23, 0, 0, 0, loc)))
	assert.Equal(t, 2, season.Week(time.Date(2024, 9, 12, 8, 0, 0, 0, loc)))
	assert.Equal(t, 1, season.Week(time.Date(2024, 8, 1, 0, 0, 0, 0, loc)))
}

func TestProfiles(t *testing.T) {
	profiles := NewProfiles([]models.League{
		{Profile: "sam", Name: "Work", Platform: models.PlatformESPN, LeagueID: 1},
		{Profile: "sam", Name: "Family", Platform: models.PlatformSleeper, LeagueID: 2},
		{Profile: "alex", Name: "Work", Platform: models.PlatformESPN, LeagueID: 1, TeamID: 4},
	})

	assert.Equal(t, []string{"sam", "alex"}, profiles.Names())
	require.Len(t, profiles.Leagues("sam"), 2)
	assert.Equal(t, "Family", profiles.Leagues("sam")[1].Name)
	assert.Empty(t, profiles.Leagues("nobody"))
	assert.Len(t, profiles.Unique(), 2)
}
