package scoring

import (
	"testing"

	"github.com/omarshaarawi/commander/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func player(name string, position models.Position, slot string, points, projected float64) models.PlayerScore {
	return models.PlayerScore{
		Name:       name,
		Position:   position,
		Slot:       slot,
		Points:     points,
		Projected:  projected,
		PlayStatus: models.PlayStatusPlayed,
		Status:     models.HealthActive,
	}
}

func roster() []models.PlayerScore {
	return []models.PlayerScore{
		player("Kicker", models.PositionK, "K", 8, 8),
		player("Wideout One", models.PositionWR, "WR", 12.4, 12.4),
		player("Quarterback", models.PositionQB, "QB", 21.1, 21.1),
		player("Back One", models.PositionRB, "RB", 9, 9),
		player("Wideout Two", models.PositionWR, "WR", 7.2, 7.2),
		player("Back Two", models.PositionRB, "RB", 14, 14),
		player("Tight End", models.PositionTE, "TE", 3, 3),
		player("Flex Back", models.PositionRB, models.SlotFlex, 5, 5),
		player("Bears D/ST", models.PositionDST, "DST", 6, 6),
		player("Bench Wideout", models.PositionWR, models.SlotBench, 19, 19),
		player("Bench Tight End", models.PositionTE, models.SlotBench, 11, 11),
		player("Hurt Back", models.PositionRB, models.SlotIR, 0, 0),
	}
}

func names(players []models.PlayerScore) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}
	return out
}

func TestOrganizeDefault(t *testing.T) {
	team := Organize(roster(), models.ModeDefault, 1)

	assert.Equal(t, []string{
		"Quarterback", "Back One", "Back Two", "Flex Back", "Wideout One", "Wideout Two", "Tight End", "Bears D/ST", "Kicker",
	}, names(team.Starters))
	assert.Equal(t, []string{"Hurt Back", "Bench Wideout", "Bench Tight End"}, names(team.Bench))
	assert.Equal(t, names(team.Starters), names(team.Show))
	assert.InDelta(t, 85.7, team.Points, 1e-9)
	assert.InDelta(t, 85.7, team.Projected, 1e-9)
}

func TestOrganizeAllSumsEveryPlayer(t *testing.T) {
	players := roster()
	team := Organize(players, models.ModeAll, 1)

	var total, starters, bench float64
	for _, p := range players {
		total += p.Points
	}
	for _, p := range team.Starters {
		starters += p.Points
	}
	for _, p := range team.Bench {
		bench += p.Points
	}

	assert.Len(t, team.Show, len(players))
	assert.InDelta(t, total, starters+bench, 1e-9)
	assert.InDelta(t, total, team.Points, 1e-9)
	assert.Len(t, team.Starters, 9, "all mode must not grow the starters")
}

func TestOrganizeMax(t *testing.T) {
	team := Organize(roster(), models.ModeMax, 1)

	assert.Equal(t, []string{
		"Quarterback", "Back Two", "Back One", "Bench Wideout", "Wideout One", "Bench Tight End", "Wideout Two", "Bears D/ST", "Kicker",
	}, names(team.Show))
	assert.Empty(t, team.Unresolved)
	assert.InDelta(t, 107.7, team.Projected, 1e-9)
}

func TestOrganizeMaxTwoFlex(t *testing.T) {
	team := Organize(roster(), models.ModeMax, 2)

	require.Len(t, team.Show, 10)
	assert.Equal(t, "Wideout Two", team.Show[6].Name)
	assert.Equal(t, "Flex Back", team.Show[7].Name)
}

func TestOrganizeMaxHasNoDuplicates(t *testing.T) {
	for _, flex := range []int{0, 1, 2, 3} {
		team := Organize(roster(), models.ModeMax, flex)

		seen := map[string]bool{}
		for _, p := range team.Show {
			assert.False(t, seen[p.Name], "%s picked twice with %d flex", p.Name, flex)
			seen[p.Name] = true
		}
	}
}

func TestOrganizeMaxMissingPosition(t *testing.T) {
	players := []models.PlayerScore{
		player("Quarterback", models.PositionQB, "QB", 20, 20),
		player("Back One", models.PositionRB, "RB", 10, 10),
		player("Wideout One", models.PositionWR, "WR", 9, 9),
	}

	team := Organize(players, models.ModeMax, 1)

	assert.Equal(t, []string{"Quarterback", "Back One", "Wideout One"}, names(team.Show))
	assert.Equal(t, []string{"RB", "WR", "TE", models.SlotFlex, "DST", "K"}, team.Unresolved)
	assert.InDelta(t, 39.0, team.Projected, 1e-9)
}

func TestOrganizeDisplay(t *testing.T) {
	playing := player("Live", models.PositionQB, "QB", 4.5, 18)
	playing.PlayStatus = models.PlayStatusPlaying
	later := player("Later", models.PositionRB, "RB", 0, 12)
	later.PlayStatus = models.PlayStatusToday

	team := Organize([]models.PlayerScore{later, playing}, models.ModeDefault, 1)

	require.Len(t, team.Starters, 2)
	assert.Equal(t, "4.50", team.Starters[0].Display)
	assert.Equal(t, NotPlayedDisplay, team.Starters[1].Display)
}

func TestOrganizeUnknownPositionSortsAsRB(t *testing.T) {
	odd := player("Odd", models.Position("LB"), "OP", 1, 1)
	team := Organize([]models.PlayerScore{
		player("Wideout", models.PositionWR, "WR", 1, 1),
		odd,
		player("Quarterback", models.PositionQB, "QB", 1, 1),
	}, models.ModeDefault, 1)

	assert.Equal(t, []string{"Quarterback", "Odd", "Wideout"}, names(team.Starters))
}

func TestFrame(t *testing.T) {
	home := models.TeamOrganized{Points: 110.4, Projected: 120}
	away := models.TeamOrganized{Points: 98.2, Projected: 125}

	Frame(&home, &away, false)

	assert.Equal(t, models.OutcomeWinning, home.WinningPoints)
	assert.Equal(t, models.OutcomeLosing, away.WinningPoints)
	assert.Equal(t, models.OutcomeLosing, home.WinningProjected)
	assert.Equal(t, models.OutcomeWinning, away.WinningProjected)
	assert.Greater(t, home.WinChance, 0.5)
	assert.InDelta(t, 1.0, home.WinChance+away.WinChance, 1e-9)
	assert.Empty(t, home.WinChanceLabel)
}

func TestFrameTie(t *testing.T) {
	home := models.TeamOrganized{Points: 100, Projected: 100}
	away := models.TeamOrganized{Points: 100, Projected: 100}

	Frame(&home, &away, true)

	assert.Equal(t, models.OutcomeLosing, home.WinningPoints)
	assert.Equal(t, models.OutcomeLosing, away.WinningPoints)
	assert.True(t, home.TiedPoints)
	assert.True(t, away.TiedProjected)
	assert.Equal(t, "50%", home.WinChanceLabel)
}

func TestFrameComparesUnroundedPoints(t *testing.T) {
	home := Organize([]models.PlayerScore{player("Quarterback", models.PositionQB, "QB", 100.004, 100)}, models.ModeDefault, 1)
	away := Organize([]models.PlayerScore{player("Quarterback", models.PositionQB, "QB", 100.001, 100)}, models.ModeDefault, 1)

	Frame(&home, &away, false)

	assert.Equal(t, models.OutcomeWinning, home.WinningPoints)
	assert.Equal(t, models.OutcomeLosing, away.WinningPoints)
	assert.False(t, home.TiedPoints)
	assert.True(t, home.TiedProjected)
}
