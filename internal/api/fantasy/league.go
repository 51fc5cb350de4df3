// Package fantasy reads every provider the service follows and hands back
// canonical records keyed the same way regardless of platform.
package fantasy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/omarshaarawi/commander/internal/api/espn"
	"github.com/omarshaarawi/commander/internal/api/fantasypros"
	"github.com/omarshaarawi/commander/internal/api/sleeper"
	"github.com/omarshaarawi/commander/internal/models"
	"github.com/omarshaarawi/commander/internal/proteam"
	"github.com/omarshaarawi/commander/internal/scoring"
)

type API struct {
	espnAPI     *espn.API
	sleeper     *sleeper.Client
	fantasyPros *fantasypros.Client
}

func NewAPI(espnAPI *espn.API, sleeperClient *sleeper.Client, fantasyPros *fantasypros.Client) *API {
	return &API{espnAPI: espnAPI, sleeper: sleeperClient, fantasyPros: fantasyPros}
}

// Week is one league's unified scores and pairings for a scoring period.
type Week struct {
	Scores   []models.PlayerScore
	Pairings []models.Pairing
}

// GameWeek is the NFL clock for a week, keyed by ESPN team code.
type GameWeek struct {
	Progress []models.GameProgress
	Clocks   map[string]models.GameClock
}

func (a *API) GameWeek(ctx context.Context, year, week int) (GameWeek, error) {
	games, err := a.espnAPI.Schedule(ctx, year, week)
	if err != nil {
		return GameWeek{}, err
	}

	gameWeek := GameWeek{Clocks: make(map[string]models.GameClock)}
	for _, game := range games {
		for _, team := range game.Teams {
			gameWeek.Progress = append(gameWeek.Progress, models.GameProgress{
				Year:     year,
				Week:     week,
				ProTeam:  team,
				Progress: scoring.Completion(game.Period, game.Clock),
				Display:  scoring.ClockDisplay(game.Period, game.DisplayClock),
			})

			code := proteam.Translate(proteam.NFL, proteam.ESPN, team)
			if _, ok := gameWeek.Clocks[code]; !ok {
				gameWeek.Clocks[code] = models.GameClock{ProTeam: code, Start: game.Start, Complete: game.Completed}
			}
		}
	}

	return gameWeek, nil
}

// Scores reads one league's lineups for the week. Pairings are returned in
// both directions so either team can look up its opponent.
func (a *API) Scores(ctx context.Context, league models.League, year, week int, clocks map[string]models.GameClock, now time.Time) (Week, error) {
	switch league.Platform {
	case models.PlatformESPN:
		return a.espnScores(ctx, league, year, week, clocks, now)
	case models.PlatformSleeper:
		return a.sleeperScores(ctx, league, week, clocks, now)
	default:
		return Week{}, fmt.Errorf("unsupported platform %q", league.Platform)
	}
}

func gameFor(clocks map[string]models.GameClock, team string) *models.GameClock {
	clock, ok := clocks[team]
	if !ok {
		return nil
	}
	return &clock
}

func pairBoth(leagueID int64, week, home, away int) []models.Pairing {
	return []models.Pairing{
		{LeagueID: leagueID, Week: week, Home: home, Away: away},
		{LeagueID: leagueID, Week: week, Home: away, Away: home},
	}
}

func (a *API) espnScores(ctx context.Context, league models.League, year, week int, clocks map[string]models.GameClock, now time.Time) (Week, error) {
	boxScores, err := a.espnAPI.BoxScores(ctx, league, year, week)
	if err != nil {
		return Week{}, err
	}

	var result Week
	for _, box := range boxScores {
		result.Pairings = append(result.Pairings, pairBoth(league.LeagueID, week, box.Home.TeamID, box.Away.TeamID)...)

		for _, team := range []espn.BoxTeam{box.Home, box.Away} {
			for _, player := range team.Lineup {
				result.Scores = append(result.Scores, Unify(RawPlayer{
					LeagueID: league.LeagueID,
					TeamID:   team.TeamID,
					Week:     week,
					Name:     player.Name,
					ProTeam:  player.ProTeam,
					Position: player.Position,
					Slot:     player.Slot,
					Injury:   player.Injury,
					Points:   player.Points,
					Game:     gameFor(clocks, player.ProTeam),
				}, now))
			}
		}
	}

	return result, nil
}

func (a *API) sleeperScores(ctx context.Context, league models.League, week int, clocks map[string]models.GameClock, now time.Time) (Week, error) {
	directory, err := a.sleeper.Players(ctx)
	if err != nil {
		return Week{}, err
	}

	matchups, err := a.sleeper.Matchups(ctx, league.LeagueID, week)
	if err != nil {
		return Week{}, err
	}

	var result Week
	var pending []int
	var pendingMatchup int

	for _, team := range matchups {
		starters := make(map[string]bool, len(team.Starters))
		for _, id := range team.Starters {
			starters[id] = true
		}

		for _, id := range team.Players {
			info, ok := directory[id]
			if !ok {
				continue
			}
			if len(info.FantasyPositions) == 0 {
				slog.Warn("Sleeper player has no position", "player", id)
				continue
			}

			name := info.FullName
			if name == "" {
				name = fmt.Sprintf("%s D/ST", info.LastName)
			}

			position := info.FantasyPositions[0]
			slot := models.SlotBench
			if starters[id] {
				slot = position
			}

			injury := ""
			if info.InjuryStatus != nil {
				injury = *info.InjuryStatus
			}

			proTeam := proteam.Translate(proteam.Sleeper, proteam.ESPN, info.Team)

			result.Scores = append(result.Scores, Unify(RawPlayer{
				LeagueID: league.LeagueID,
				TeamID:   team.RosterID,
				Week:     week,
				Name:     name,
				ProTeam:  proTeam,
				Position: position,
				Slot:     slot,
				Injury:   injury,
				Points:   team.PlayersPoints[id],
				Game:     gameFor(clocks, proTeam),
			}, now))
		}

		// Entries without a matchup id have no opponent this week.
		if team.MatchupID == 0 {
			continue
		}
		if len(pending) == 1 && pendingMatchup != team.MatchupID {
			slog.Warn("Sleeper matchup has a single team", "league", league.LeagueID, "matchup", pendingMatchup)
			pending = pending[:0]
		}
		pending = append(pending, team.RosterID)
		pendingMatchup = team.MatchupID
		if len(pending) == 2 {
			result.Pairings = append(result.Pairings, pairBoth(league.LeagueID, week, pending[0], pending[1])...)
			pending = pending[:0]
		}
	}

	return result, nil
}

// Teams returns display names and owners for every team in the league.
// Names are returned as the provider has them.
func (a *API) Teams(ctx context.Context, league models.League, year int) ([]models.TeamMeta, error) {
	switch league.Platform {
	case models.PlatformESPN:
		teams, err := a.espnAPI.Teams(ctx, league, year)
		if err != nil {
			return nil, err
		}
		metas := make([]models.TeamMeta, 0, len(teams))
		for _, team := range teams {
			metas = append(metas, models.TeamMeta{LeagueID: league.LeagueID, TeamID: team.ID, Team: team.Name, Owner: team.Owner})
		}
		return metas, nil

	case models.PlatformSleeper:
		rosters, err := a.sleeper.Rosters(ctx, league.LeagueID)
		if err != nil {
			return nil, err
		}
		users, err := a.sleeper.Users(ctx, league.LeagueID)
		if err != nil {
			return nil, err
		}

		rosterByOwner := make(map[string]int, len(rosters))
		for _, roster := range rosters {
			rosterByOwner[roster.OwnerID] = roster.RosterID
		}

		var metas []models.TeamMeta
		for _, user := range users {
			rosterID, ok := rosterByOwner[user.UserID]
			if !ok || rosterID == 0 {
				continue
			}
			name := user.Metadata.TeamName
			if name == "" {
				name = user.DisplayName
			}
			metas = append(metas, models.TeamMeta{LeagueID: league.LeagueID, TeamID: rosterID, Team: name, Owner: user.DisplayName})
		}
		return metas, nil

	default:
		return nil, fmt.Errorf("unsupported platform %q", league.Platform)
	}
}

// Projections scrapes every position and scoring page for the week. Teams
// keep FantasyPros spelling; names are normalized like score rows.
func (a *API) Projections(ctx context.Context, week int, now time.Time) ([]models.Projection, error) {
	type key struct {
		team, name string
	}

	byPlayer := make(map[key]*models.Projection)
	var order []key

	for _, position := range fantasypros.Positions {
		scorings := fantasypros.Scorings
		if position == "qb" || position == "k" || position == "dst" {
			scorings = scorings[:1]
		}

		for _, scoringName := range scorings {
			players, err := a.fantasyPros.Rankings(ctx, position, scoringName, week)
			if err != nil {
				return nil, err
			}

			for _, player := range players {
				if player.Projected == 0 {
					continue
				}

				k := key{team: player.Team, name: NormalizeName(player.Name, position == "dst")}
				projection, ok := byPlayer[k]
				if !ok {
					projection = &models.Projection{Player: k.name, ProTeam: k.team, Week: week, Updated: now}
					byPlayer[k] = projection
					order = append(order, k)
				}

				value := float64(player.Projected)
				if len(scorings) == 1 {
					projection.HalfPPR, projection.PPR = value, value
					continue
				}
				switch scoringName {
				case models.ScoringHalfPPR:
					projection.HalfPPR = value
				case models.ScoringPPR:
					projection.PPR = value
				}
			}
		}
	}

	projections := make([]models.Projection, 0, len(order))
	for _, k := range order {
		projections = append(projections, *byPlayer[k])
	}
	return projections, nil
}

// History is one league's finished box scores for a past week.
func (a *API) History(ctx context.Context, league models.League, year, week int) ([]espn.BoxScore, error) {
	if league.Platform != models.PlatformESPN {
		return nil, nil
	}
	return a.espnAPI.BoxScores(ctx, league, year, week)
}

// Owners maps team ids to owner names for a league season.
func (a *API) Owners(ctx context.Context, league models.League, year int) (map[int]string, error) {
	teams, err := a.Teams(ctx, league, year)
	if err != nil {
		return nil, err
	}
	owners := make(map[int]string, len(teams))
	for _, team := range teams {
		owners[team.TeamID] = team.Owner
	}
	return owners, nil
}
