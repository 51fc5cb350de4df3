// Package scoring turns per-player scores, projections, and game clocks into
// projected finals and organized lineups.
package scoring

import (
	"math"

	"github.com/omarshaarawi/commander/internal/models"
)

// EarlyGameCutoff is the completion below which accumulated points are too
// noisy to extrapolate and the pregame projection is used instead.
const EarlyGameCutoff = 0.25

type BlendInput struct {
	PlayStatus models.PlayStatus
	Health     string
	Points     float64
	Pregame    float64
	// Completion is nil when there is no game data for the player's team.
	Completion *float64
}

// Blend estimates a player's final points for the week.
func Blend(in BlendInput) float64 {
	if in.Completion == nil || in.PlayStatus == models.PlayStatusBye {
		return 0
	}

	if in.PlayStatus == models.PlayStatusPlayed || in.Health == models.HealthOut {
		return finite(in.Points)
	}

	completion := *in.Completion
	if math.IsNaN(completion) || completion < EarlyGameCutoff {
		return finite(in.Pregame)
	}

	return finite(in.Points / completion)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
