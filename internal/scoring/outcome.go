package scoring

import (
	"fmt"
	"math"

	"github.com/omarshaarawi/commander/internal/models"
)

// winChanceScale is the point differential that moves the logistic curve by
// one unit.
const winChanceScale = 400

// Frame sets the winning/losing flags and win chance of both sides against
// each other. Equal totals leave both sides losing, with the tie recorded
// separately. Win chance labels are only filled when publish is set.
func Frame(home, away *models.TeamOrganized, publish bool) {
	home.WinningPoints = outcome(home.Points, away.Points)
	away.WinningPoints = outcome(away.Points, home.Points)
	home.WinningProjected = outcome(home.Projected, away.Projected)
	away.WinningProjected = outcome(away.Projected, home.Projected)

	home.TiedPoints = home.Points == away.Points
	away.TiedPoints = home.TiedPoints
	home.TiedProjected = home.Projected == away.Projected
	away.TiedProjected = home.TiedProjected

	home.WinChance = WinChance(home.Points, away.Points)
	away.WinChance = WinChance(away.Points, home.Points)

	home.WinChanceLabel, away.WinChanceLabel = "", ""
	if publish {
		home.WinChanceLabel = fmt.Sprintf("%.0f%%", math.Round(100*home.WinChance))
		away.WinChanceLabel = fmt.Sprintf("%.0f%%", math.Round(100*away.WinChance))
	}
}

func outcome(own, opponent float64) models.Outcome {
	if own > opponent {
		return models.OutcomeWinning
	}
	return models.OutcomeLosing
}

// WinChance is the logistic probability that own beats opponent.
func WinChance(own, opponent float64) float64 {
	return 1 / (1 + math.Exp((opponent-own)/winChanceScale))
}
