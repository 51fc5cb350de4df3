package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/omarshaarawi/commander/internal/config"
	"github.com/omarshaarawi/commander/internal/models"
	"github.com/omarshaarawi/commander/internal/proteam"
	"github.com/omarshaarawi/commander/internal/repository"
	"github.com/omarshaarawi/commander/internal/scoring"
)

// FuzzyNameSimilarity is the minimum name similarity, within one pro team,
// for a projection to be joined when no exact name matches.
const FuzzyNameSimilarity = 0.9

type MatchupService struct {
	store            repository.Store
	year             int
	publishWinChance bool
}

func NewMatchupService(store repository.Store, cfg *config.Config) *MatchupService {
	return &MatchupService{store: store, year: cfg.Year(), publishWinChance: cfg.Matchups.PublishWinChance}
}

// weekData is everything the store knows about one week, indexed for joins.
type weekData struct {
	scores      []models.PlayerScore
	projections map[string]map[string]models.Projection
	progress    map[string]models.GameProgress
	pairings    []models.Pairing
	teams       map[teamKey]models.TeamMeta
}

type teamKey struct {
	leagueID int64
	teamID   int
}

// Assemble builds one matchup view per league the profile follows. A league
// that cannot be assembled gets a view carrying Err; the rest still render.
func (s *MatchupService) Assemble(ctx context.Context, profiles config.Profiles, profile string, week int, mode models.Mode) ([]models.MatchupView, error) {
	leagues := profiles.Leagues(profile)
	views := make([]models.MatchupView, 0, len(leagues))
	if len(leagues) == 0 {
		return views, nil
	}

	data, err := s.loadWeek(ctx, week)
	if err != nil {
		return nil, err
	}

	for _, league := range leagues {
		view, err := data.matchup(league, week, mode, s.publishWinChance)
		if err != nil {
			slog.Warn("Failed to assemble matchup", "profile", profile, "league", league.LeagueID, "error", err)
			view = models.MatchupView{
				League:   league.Name,
				LeagueID: league.LeagueID,
				Platform: league.Platform,
				Week:     week,
				Mode:     mode,
				Err:      err.Error(),
			}
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *MatchupService) loadWeek(ctx context.Context, week int) (*weekData, error) {
	scores, err := s.store.Scores(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("reading scores: %w", err)
	}
	projections, err := s.store.Projections(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("reading projections: %w", err)
	}
	progress, err := s.store.Progress(ctx, s.year, week)
	if err != nil {
		return nil, fmt.Errorf("reading game progress: %w", err)
	}
	pairings, err := s.store.Pairings(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("reading matchups: %w", err)
	}
	teams, err := s.store.Teams(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading teams: %w", err)
	}

	data := &weekData{
		scores:      repository.LatestScores(scores),
		projections: make(map[string]map[string]models.Projection),
		progress:    make(map[string]models.GameProgress, len(progress)),
		pairings:    pairings,
		teams:       make(map[teamKey]models.TeamMeta, len(teams)),
	}

	for _, p := range projections {
		team := proteam.Translate(proteam.FantasyPros, proteam.ESPN, p.ProTeam)
		if data.projections[team] == nil {
			data.projections[team] = make(map[string]models.Projection)
		}
		data.projections[team][p.Player] = p
	}
	for _, p := range progress {
		data.progress[proteam.Translate(proteam.NFL, proteam.ESPN, p.ProTeam)] = p
	}
	for _, t := range teams {
		data.teams[teamKey{t.LeagueID, t.TeamID}] = t
	}

	return data, nil
}

func (d *weekData) matchup(league models.League, week int, mode models.Mode, publish bool) (models.MatchupView, error) {
	opponent, ok := d.opponent(league.LeagueID, league.TeamID)
	if !ok {
		return models.MatchupView{}, fmt.Errorf("no matchup for team %d in week %d", league.TeamID, week)
	}

	home := d.side(league, league.TeamID, mode)
	away := d.side(league, opponent, mode)
	scoring.Frame(&home.Lineup, &away.Lineup, publish)

	return models.MatchupView{
		League:   league.Name,
		LeagueID: league.LeagueID,
		Platform: league.Platform,
		Week:     week,
		Mode:     mode,
		Home:     home,
		Away:     away,
	}, nil
}

func (d *weekData) opponent(leagueID int64, teamID int) (int, bool) {
	for _, p := range d.pairings {
		if p.LeagueID == leagueID && p.Home == teamID {
			return p.Away, true
		}
	}
	return 0, false
}

func (d *weekData) side(league models.League, teamID int, mode models.Mode) models.TeamSide {
	var players []models.PlayerScore
	for _, score := range d.scores {
		if score.LeagueID != league.LeagueID || score.TeamID != teamID {
			continue
		}

		var completion *float64
		if progress, ok := d.progress[score.ProTeam]; ok {
			value := progress.Progress
			completion = &value
		}

		score.Projected = scoring.Blend(scoring.BlendInput{
			PlayStatus: score.PlayStatus,
			Health:     score.Status,
			Points:     score.Points,
			Pregame:    d.pregame(score, league.Scoring),
			Completion: completion,
		})
		players = append(players, score)
	}

	meta := d.teams[teamKey{league.LeagueID, teamID}]
	return models.TeamSide{
		ID:     teamID,
		Team:   meta.Team,
		Owner:  meta.Owner,
		Lineup: scoring.Organize(players, mode, league.FlexCount()),
	}
}

// pregame finds the player's projection by exact name first, then by the
// closest name on the same pro team. Unmatched players project 0.
func (d *weekData) pregame(score models.PlayerScore, scoringName string) float64 {
	byName, ok := d.projections[score.ProTeam]
	if !ok {
		return 0
	}
	if p, ok := byName[score.Name]; ok {
		return p.Value(scoringName)
	}

	best, bestSimilarity := "", 0.0
	for name := range byName {
		similarity := nameSimilarity(score.Name, name)
		if similarity > bestSimilarity || (similarity == bestSimilarity && name < best) {
			best, bestSimilarity = name, similarity
		}
	}
	if bestSimilarity < FuzzyNameSimilarity {
		return 0
	}
	return byName[best].Value(scoringName)
}

func nameSimilarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(fuzzy.LevenshteinDistance(a, b))/float64(longest)
}
