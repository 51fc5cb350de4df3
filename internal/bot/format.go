package bot

import (
	"fmt"
	"strings"

	"github.com/omarshaarawi/commander/internal/models"
)

func formatMatchups(views []models.MatchupView) string {
	var sb strings.Builder
	for _, view := range views {
		sb.WriteString(fmt.Sprintf("🏈 *%s* (week %d)\n", view.League, view.Week))
		if view.Err != "" {
			sb.WriteString(fmt.Sprintf("Unavailable: %s\n\n", view.Err))
			continue
		}

		for _, side := range []models.TeamSide{view.Home, view.Away} {
			sb.WriteString(fmt.Sprintf("*%s*: %.2f (proj %.2f)", side.Team, side.Lineup.Points, side.Lineup.Projected))
			if side.Lineup.WinChanceLabel != "" {
				sb.WriteString(" " + side.Lineup.WinChanceLabel)
			}
			sb.WriteString("\n")
		}

		sb.WriteString("━━━━━━━━━━━━━━━━\n")
		for _, player := range view.Home.Lineup.Show {
			sb.WriteString(fmt.Sprintf("%s %s %s (%.2f)\n", player.Position, player.Name, player.Display, player.Projected))
		}
		if len(view.Home.Lineup.Unresolved) > 0 {
			sb.WriteString(fmt.Sprintf("Empty slots: %s\n", strings.Join(view.Home.Lineup.Unresolved, ", ")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatChanges(changes []models.ProjectionChange) string {
	var sb strings.Builder
	sb.WriteString("📈 *Projection Changes*\n\n")
	for _, c := range changes {
		sign := "+"
		if c.New < c.Old {
			sign = "-"
		}
		diff := c.New - c.Old
		if diff < 0 {
			diff = -diff
		}
		sb.WriteString(fmt.Sprintf("*%s* (%s, %s): %.2f → %.2f (%s%.2f)\n", c.Player, c.ProTeam, c.Scoring, c.Old, c.New, sign, diff))
	}
	return sb.String()
}

func formatRecords(boards []models.RecordBoard) string {
	var sb strings.Builder
	for _, board := range boards {
		sb.WriteString(fmt.Sprintf("🏆 *%s*\n", board.League))
		for _, category := range board.Categories {
			sb.WriteString(fmt.Sprintf("_%s_\n", category.Name))
			for i, r := range category.Records {
				sb.WriteString(fmt.Sprintf("%d. %s %d wk %d: %.2f / %.2f (%+.2f)\n", i+1, r.Owner, r.Year, r.Week, r.Points, r.Projected, r.Outcome))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
