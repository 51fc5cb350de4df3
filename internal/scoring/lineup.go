package scoring

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/omarshaarawi/commander/internal/models"
)

// NotPlayedDisplay is shown for players whose game has not started.
const NotPlayedDisplay = "--"

var positionOrder = map[string]int{
	"QB":  1,
	"RB":  2,
	"WR":  3,
	"TE":  4,
	"DST": 5,
	"K":   6,
	"BE":  10,
	"IR":  11,
}

func positionRank(p models.PlayerScore) int {
	if rank, ok := positionOrder[string(p.Position)]; ok {
		return rank
	}
	return positionOrder["RB"]
}

type lineupSlot struct {
	label    string
	eligible []models.Position
}

var flexEligible = []models.Position{models.PositionRB, models.PositionWR, models.PositionTE}

func optimalSlots(flexCount int) []lineupSlot {
	slots := []lineupSlot{
		{label: "QB", eligible: []models.Position{models.PositionQB}},
		{label: "RB", eligible: []models.Position{models.PositionRB}},
		{label: "RB", eligible: []models.Position{models.PositionRB}},
		{label: "WR", eligible: []models.Position{models.PositionWR}},
		{label: "WR", eligible: []models.Position{models.PositionWR}},
		{label: "TE", eligible: []models.Position{models.PositionTE}},
	}
	for i := 0; i < flexCount; i++ {
		slots = append(slots, lineupSlot{label: models.SlotFlex, eligible: flexEligible})
	}
	return append(slots,
		lineupSlot{label: "DST", eligible: []models.Position{models.PositionDST}},
		lineupSlot{label: "K", eligible: []models.Position{models.PositionK}},
	)
}

// Organize splits a team into starters and bench and picks which players are
// shown and totalled for the requested mode. Players must already carry
// their Projected value.
func Organize(players []models.PlayerScore, mode models.Mode, flexCount int) models.TeamOrganized {
	team := models.TeamOrganized{
		Starters: make([]models.PlayerScore, 0, len(players)),
		Bench:    make([]models.PlayerScore, 0),
	}

	for _, player := range players {
		if player.PlayStatus == models.PlayStatusPlayed || player.PlayStatus == models.PlayStatusPlaying {
			player.Display = formatPoints(player.Points)
		} else {
			player.Display = NotPlayedDisplay
		}

		if player.IsBench() {
			team.Bench = append(team.Bench, player)
		} else {
			team.Starters = append(team.Starters, player)
		}
	}

	sortByPosition(team.Starters)
	sortByPosition(team.Bench)

	switch mode {
	case models.ModeMax:
		team.Show, team.Unresolved = optimalLineup(append(append([]models.PlayerScore{}, team.Starters...), team.Bench...), flexCount)
	case models.ModeAll:
		team.Show = append(append(make([]models.PlayerScore, 0, len(players)), team.Starters...), team.Bench...)
	default:
		team.Show = append(make([]models.PlayerScore, 0, len(team.Starters)), team.Starters...)
	}

	for _, player := range team.Show {
		team.Points += player.Points
		team.Projected += player.Projected
	}

	team.Projected = round2(team.Projected)

	return team
}

func sortByPosition(players []models.PlayerScore) {
	sort.SliceStable(players, func(i, j int) bool {
		return positionRank(players[i]) < positionRank(players[j])
	})
}

// optimalLineup fills each slot greedily with the highest projected eligible
// player not already used. Slots nobody can fill are returned as unresolved.
func optimalLineup(players []models.PlayerScore, flexCount int) ([]models.PlayerScore, []string) {
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Projected > players[j].Projected
	})

	used := make([]bool, len(players))
	var show []models.PlayerScore
	var unresolved []string

	for _, slot := range optimalSlots(flexCount) {
		picked := -1
		for i, player := range players {
			if !used[i] && eligible(player.Position, slot.eligible) {
				picked = i
				break
			}
		}

		if picked < 0 {
			slog.Warn("No eligible player for lineup slot", "slot", slot.label)
			unresolved = append(unresolved, slot.label)
			continue
		}

		used[picked] = true
		show = append(show, players[picked])
	}

	return show, unresolved
}

func eligible(position models.Position, allowed []models.Position) bool {
	for _, p := range allowed {
		if p == position {
			return true
		}
	}
	return false
}

func formatPoints(points float64) string {
	return fmt.Sprintf("%.2f", points)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
