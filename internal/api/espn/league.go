package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/omarshaarawi/commander/internal/models"
)

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

// BoxScore is one fantasy matchup for a scoring period.
type BoxScore struct {
	MatchupID int
	Playoff   bool
	Home      BoxTeam
	Away      BoxTeam
}

type BoxTeam struct {
	TeamID    int
	Score     float64
	Projected float64
	Lineup    []BoxPlayer
}

// BoxPlayer is a rostered player as ESPN labels it.
type BoxPlayer struct {
	Name      string
	ProTeam   string
	Position  string
	Slot      string
	Injury    string
	Points    float64
	Projected float64
}

// TeamInfo is a fantasy team with its primary owner's name.
type TeamInfo struct {
	ID    int
	Name  string
	Owner string
}

// Game is one NFL game's clock from the ESPN schedule feed.
type Game struct {
	Teams        []string
	Start        time.Time
	Period       int
	Clock        float64
	DisplayClock string
	State        string
	Completed    bool
}

func leagueEndpoint(league models.League, year int) string {
	return fmt.Sprintf("/seasons/%d/segments/0/leagues/%d", year, league.LeagueID)
}

func credentials(league models.League) Credentials {
	return Credentials{SWID: league.SWID, ESPNS2: league.S2}
}

func (a *API) BoxScores(ctx context.Context, league models.League, year, week int) ([]BoxScore, error) {
	var leagueResponse models.LeagueResponse

	params := map[string]string{
		"view":            "mMatchupScore,mScoreboard",
		"scoringPeriodId": fmt.Sprintf("%d", week),
	}

	filters := map[string]interface{}{
		"schedule": map[string]interface{}{
			"filterMatchupPeriodIds": map[string]interface{}{
				"value": []int{week},
			},
		},
	}

	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("error marshalling filters: %w", err)
	}

	headers := map[string]string{
		"x-fantasy-filter": string(filtersJSON),
	}

	if err := a.client.Get(ctx, leagueEndpoint(league, year), params, headers, credentials(league), &leagueResponse); err != nil {
		return nil, fmt.Errorf("fetching box scores: %w", err)
	}

	var boxScores []BoxScore
	for _, match := range leagueResponse.Schedule {
		if match.MatchupPeriodID != 0 && match.MatchupPeriodID != week {
			continue
		}
		boxScores = append(boxScores, BoxScore{
			MatchupID: match.ID,
			Playoff:   match.PlayoffTierType != "" && match.PlayoffTierType != "NONE",
			Home:      boxTeam(match.Home, week),
			Away:      boxTeam(match.Away, week),
		})
	}

	return boxScores, nil
}

func boxTeam(teamScore models.TeamScore, week int) BoxTeam {
	team := BoxTeam{TeamID: teamScore.TeamID}

	for _, entry := range teamScore.RosterForCurrentScoringPeriod.Entries {
		player := entry.PlayerPoolEntry.Player
		points, projected := getPlayerPoints(player, week)

		boxPlayer := BoxPlayer{
			Name:      player.FullName,
			ProTeam:   getProTeamString(player.ProTeamID),
			Position:  getPositionString(player.DefaultPositionID),
			Slot:      getLineupSlotString(entry.LineupSlotID),
			Injury:    player.InjuryStatus,
			Points:    points,
			Projected: projected,
		}

		if isStartingLineup(entry.LineupSlotID) {
			team.Projected += projected
		}
		team.Lineup = append(team.Lineup, boxPlayer)
	}

	score := teamScore.TotalPointsLive
	if score == 0 {
		score = teamScore.TotalPoints
	}
	if teamScore.TotalProjectedPointsLive != 0 {
		team.Projected = teamScore.TotalProjectedPointsLive
	}

	team.Score = math.Round(score*100) / 100
	team.Projected = math.Round(team.Projected*100) / 100

	return team
}

// getPlayerPoints returns actual and projected points for the scoring period.
func getPlayerPoints(player models.Player, week int) (float64, float64) {
	var points, projected float64

	for _, stat := range player.Stats {
		if stat.ScoringPeriodID != week {
			continue
		}
		switch stat.StatSourceID {
		case 0:
			points = stat.AppliedTotal
		case 1:
			projected = stat.AppliedTotal
		}
	}

	return points, projected
}

func (a *API) Teams(ctx context.Context, league models.League, year int) ([]TeamInfo, error) {
	var leagueResponse models.LeagueResponse
	params := map[string]string{
		"view": "mTeam",
	}

	if err := a.client.Get(ctx, leagueEndpoint(league, year), params, nil, credentials(league), &leagueResponse); err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}

	owners := make(map[string]string, len(leagueResponse.Members))
	for _, member := range leagueResponse.Members {
		owners[member.ID] = strings.TrimSpace(fmt.Sprintf("%s %s", member.FirstName, member.LastName))
	}

	teams := make([]TeamInfo, 0, len(leagueResponse.Teams))
	for _, team := range leagueResponse.Teams {
		owner := "None"
		if len(team.Owners) > 0 {
			if name, ok := owners[team.Owners[0]]; ok && name != "" {
				owner = name
			}
		}

		name := team.Name
		if name == "" {
			name = "None"
		}

		teams = append(teams, TeamInfo{ID: team.ID, Name: name, Owner: owner})
	}

	sort.Slice(teams, func(i, j int) bool {
		return teams[i].ID < teams[j].ID
	})

	return teams, nil
}

var scheduleLayouts = []string{"2006-01-02T15:04Z", time.RFC3339, "2006-01-02T15:04:05Z"}

// Schedule returns every NFL game of the week with its clock.
func (a *API) Schedule(ctx context.Context, year, week int) ([]Game, error) {
	var scheduleResponse models.ScheduleResponse
	params := map[string]string{
		"xhr":  "1",
		"year": fmt.Sprintf("%d", year),
		"week": fmt.Sprintf("%d", week),
	}

	if err := a.client.get(ctx, a.client.scheduleURL, params, nil, Credentials{}, &scheduleResponse); err != nil {
		return nil, fmt.Errorf("fetching pro schedule: %w", err)
	}

	days := make([]string, 0, len(scheduleResponse.Content.Schedule))
	for day := range scheduleResponse.Content.Schedule {
		days = append(days, day)
	}
	sort.Strings(days)

	var games []Game
	for _, day := range days {
		for _, scheduled := range scheduleResponse.Content.Schedule[day].Games {
			if len(scheduled.Competitions) == 0 {
				continue
			}
			competition := scheduled.Competitions[0]

			game := Game{
				Period:       competition.Status.Period,
				Clock:        competition.Status.Clock,
				DisplayClock: competition.Status.DisplayClock,
				State:        competition.Status.Type.State,
				Completed:    competition.Status.Type.Completed,
				Start:        parseGameDate(scheduled.Date),
			}
			for _, competitor := range competition.Competitors {
				game.Teams = append(game.Teams, competitor.Team.Abbreviation)
			}

			games = append(games, game)
		}
	}

	return games, nil
}

func parseGameDate(value string) time.Time {
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func getPositionString(positionID int) string {
	positions := map[int]string{
		1: "QB", 2: "RB", 3: "WR", 4: "TE", 5: "K", 16: "D/ST",
	}
	if pos, ok := positions[positionID]; ok {
		return pos
	}
	return "Unknown"
}

func getProTeamString(proTeamID int) string {
	teams := map[int]string{
		1: "ATL", 2: "BUF", 3: "CHI", 4: "CIN", 5: "CLE", 6: "DAL", 7: "DEN", 8: "DET",
		9: "GB", 10: "TEN", 11: "IND", 12: "KC", 13: "OAK", 14: "LAR", 15: "MIA", 16: "MIN",
		17: "NE", 18: "NO", 19: "NYG", 20: "NYJ", 21: "PHI", 22: "ARI", 23: "PIT", 24: "LAC",
		25: "SF", 26: "SEA", 27: "TB", 28: "WSH", 29: "CAR", 30: "JAX", 33: "BAL", 34: "HOU",
	}

	if team, ok := teams[proTeamID]; ok {
		return team
	}

	return "None"
}

func isStartingLineup(slotID int) bool {
	switch slotID {
	case 20, 21:
		return false
	default:
		return true
	}
}

func getLineupSlotString(slotID int) string {
	switch slotID {
	case 0:
		return "QB"
	case 2:
		return "RB"
	case 4:
		return "WR"
	case 6:
		return "TE"
	case 16:
		return "D/ST"
	case 17:
		return "K"
	case 20:
		return "BE"
	case 21:
		return "IR"
	case 23:
		return "RB/WR/TE"
	default:
		return "Unknown"
	}
}
