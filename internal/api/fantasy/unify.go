package fantasy

import (
	"strings"
	"time"

	"github.com/omarshaarawi/commander/internal/config"
	"github.com/omarshaarawi/commander/internal/models"
)

// RawPlayer is one rostered player as a provider reports it, keyed to the
// league/team/week it was read for. ProTeam must already be an ESPN code.
type RawPlayer struct {
	LeagueID int64
	TeamID   int
	Week     int
	Name     string
	ProTeam  string
	Position string
	Slot     string
	Injury   string
	Points   float64
	// Game is nil when the player's team has no game this week.
	Game *models.GameClock
}

var nameSuffixes = []string{" Jr.", " III"}

// Unify converts a provider record into the canonical score row.
func Unify(raw RawPlayer, now time.Time) models.PlayerScore {
	position := NormalizePosition(raw.Position)

	score := models.PlayerScore{
		LeagueID:   raw.LeagueID,
		TeamID:     raw.TeamID,
		Week:       raw.Week,
		Name:       NormalizeName(raw.Name, position == models.PositionDST),
		ProTeam:    raw.ProTeam,
		Position:   position,
		Slot:       NormalizeSlot(raw.Slot),
		Points:     raw.Points,
		Status:     NormalizeHealth(raw.Injury, raw.Points),
		PlayStatus: PlayStatusAt(raw.Game, now),
	}
	if raw.Game != nil {
		score.GameTime = raw.Game.Start
	}

	return score
}

// NormalizeName renders defenses as "<Nickname> D/ST" and players as their
// first two name tokens without generational suffixes.
func NormalizeName(name string, defense bool) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}

	var out string
	if defense {
		last := fields[len(fields)-1]
		if last == "D/ST" && len(fields) > 1 {
			last = fields[len(fields)-2]
		}
		out = last + " D/ST"
	} else {
		if len(fields) > 2 {
			fields = fields[:2]
		}
		out = strings.Join(fields, " ")
	}

	for _, suffix := range nameSuffixes {
		out = strings.ReplaceAll(out, suffix, "")
	}
	return out
}

// NormalizePosition drops slashes and maps Sleeper's DEF to DST.
func NormalizePosition(position string) models.Position {
	position = strings.ReplaceAll(position, "/", "")
	if position == "DEF" {
		position = string(models.PositionDST)
	}
	return models.Position(position)
}

// NormalizeSlot maps the combined flex label to FLEX and drops slashes.
func NormalizeSlot(slot string) string {
	slot = strings.ReplaceAll(slot, "/", "")
	switch slot {
	case "RBWRTE":
		return models.SlotFlex
	case "DEF":
		return string(models.PositionDST)
	case "Bench":
		return models.SlotBench
	default:
		return slot
	}
}

// NormalizeHealth maps the providers' healthy sentinels to ACTIVE and flags
// active players with no points yet.
func NormalizeHealth(status string, points float64) string {
	switch status {
	case "", "NORMAL":
		status = models.HealthActive
	}
	if status == models.HealthActive && points == 0 {
		return models.HealthWarning
	}
	return status
}

// PlayStatusAt derives where a player's game stands. Calendar days are
// compared in config.ReferenceZone.
func PlayStatusAt(game *models.GameClock, now time.Time) models.PlayStatus {
	if game == nil || game.Start.IsZero() {
		return models.PlayStatusBye
	}

	location := config.Location()
	now = now.In(location)
	start := game.Start.In(location)

	if !now.Before(start) {
		if game.Complete {
			return models.PlayStatusPlayed
		}
		return models.PlayStatusPlaying
	}

	if now.Format("2006-01-02") == start.Format("2006-01-02") {
		return models.PlayStatusToday
	}
	return models.PlayStatusFuture
}
