// Package service reconciles provider data into the store and assembles
// matchup views and record boards from it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/omarshaarawi/commander/internal/api/espn"
	"github.com/omarshaarawi/commander/internal/api/fantasy"
	"github.com/omarshaarawi/commander/internal/config"
	"github.com/omarshaarawi/commander/internal/models"
	"github.com/omarshaarawi/commander/internal/repository"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaterialityThreshold is how far a projection must move, in points, to be
// recorded as a change.
const MaterialityThreshold = 3

var _ Provider = (*fantasy.API)(nil)

// Provider is the upstream data the refresh and records services read.
type Provider interface {
	GameWeek(ctx context.Context, year, week int) (fantasy.GameWeek, error)
	Scores(ctx context.Context, league models.League, year, week int, clocks map[string]models.GameClock, now time.Time) (fantasy.Week, error)
	Teams(ctx context.Context, league models.League, year int) ([]models.TeamMeta, error)
	Projections(ctx context.Context, week int, now time.Time) ([]models.Projection, error)
	History(ctx context.Context, league models.League, year, week int) ([]espn.BoxScore, error)
	Owners(ctx context.Context, league models.League, year int) (map[int]string, error)
}

type RefreshService struct {
	provider Provider
	store    repository.Store
	year     int
	now      func() time.Time
}

func NewRefreshService(provider Provider, store repository.Store, cfg *config.Config) *RefreshService {
	return &RefreshService{provider: provider, store: store, year: cfg.Year(), now: time.Now}
}

// StepResult is the outcome of one refresh step, "ok" or the error text.
type StepResult map[string]string

// RefreshAll runs every refresh step for the week. A failing step does not
// stop the ones after it.
func (s *RefreshService) RefreshAll(ctx context.Context, profiles config.Profiles, week int) StepResult {
	steps := []struct {
		name string
		run  func() error
	}{
		{"projections", func() error { return s.RefreshProjections(ctx, week) }},
		{"teams", func() error { return s.RefreshTeams(ctx, profiles) }},
		{"scores", func() error { return s.RefreshScores(ctx, profiles, week) }},
	}

	result := make(StepResult, len(steps))
	for _, step := range steps {
		if err := step.run(); err != nil {
			slog.Error("Refresh step failed", "step", step.name, "week", week, "error", err)
			result[step.name] = err.Error()
			continue
		}
		result[step.name] = "ok"
	}
	return result
}

// RefreshProgress stores how far along each NFL game of the week is.
func (s *RefreshService) RefreshProgress(ctx context.Context, week int) error {
	_, err := s.refreshProgress(ctx, week)
	return err
}

func (s *RefreshService) refreshProgress(ctx context.Context, week int) (fantasy.GameWeek, error) {
	gameWeek, err := s.provider.GameWeek(ctx, s.year, week)
	if err != nil {
		return fantasy.GameWeek{}, fmt.Errorf("fetching schedule: %w", err)
	}
	if len(gameWeek.Progress) == 0 {
		slog.Warn("No game progress returned, keeping stored rows", "year", s.year, "week", week)
		return gameWeek, nil
	}
	if err := s.store.ReplaceProgress(ctx, s.year, week, gameWeek.Progress); err != nil {
		return fantasy.GameWeek{}, fmt.Errorf("writing game progress: %w", err)
	}
	return gameWeek, nil
}

// RefreshScores refreshes game progress, then every followed league's
// lineups and pairings for the week. All rows written in one run share the
// same Updated stamp. A league that fails keeps its previous pairings.
func (s *RefreshService) RefreshScores(ctx context.Context, profiles config.Profiles, week int) error {
	gameWeek, err := s.refreshProgress(ctx, week)
	if err != nil {
		return err
	}

	previous, err := s.store.Pairings(ctx, week)
	if err != nil {
		return fmt.Errorf("reading matchups: %w", err)
	}

	leagues := profiles.Unique()
	sort.SliceStable(leagues, func(i, j int) bool {
		return leagues[i].Platform == models.PlatformESPN && leagues[j].Platform != models.PlatformESPN
	})

	runtime := s.now()
	var pairings []models.Pairing
	var errs []error

	for _, league := range leagues {
		result, err := s.provider.Scores(ctx, league, s.year, week, gameWeek.Clocks, runtime)
		if err == nil {
			err = s.store.WriteScores(ctx, league.LeagueID, week, runtime, result.Scores)
		}
		if err != nil {
			slog.Error("Failed to refresh league scores", "league", league.LeagueID, "platform", league.Platform, "error", err)
			errs = append(errs, fmt.Errorf("league %d: %w", league.LeagueID, err))
			for _, p := range previous {
				if p.LeagueID == league.LeagueID {
					pairings = append(pairings, p)
				}
			}
			continue
		}

		slog.Info("Refreshed league scores", "league", league.LeagueID, "players", len(result.Scores), "week", week)
		pairings = append(pairings, result.Pairings...)
	}

	if err := s.store.ReplacePairings(ctx, week, pairings); err != nil {
		errs = append(errs, fmt.Errorf("writing matchups: %w", err))
	}

	return errors.Join(errs...)
}

// RefreshProjections scrapes the week's projections, records every material
// move against the stored values, and replaces them.
func (s *RefreshService) RefreshProjections(ctx context.Context, week int) error {
	now := s.now()

	fresh, err := s.provider.Projections(ctx, week, now)
	if err != nil {
		return fmt.Errorf("fetching projections: %w", err)
	}
	if len(fresh) == 0 {
		slog.Warn("No projections returned, keeping stored ones", "week", week)
		return nil
	}

	stored, err := s.store.Projections(ctx, week)
	if err != nil {
		return fmt.Errorf("reading projections: %w", err)
	}

	changes := ProjectionChanges(stored, fresh, now)

	if err := s.store.ReplaceProjections(ctx, week, fresh); err != nil {
		return fmt.Errorf("writing projections: %w", err)
	}
	if len(changes) > 0 {
		if err := s.store.AddChanges(ctx, changes); err != nil {
			return fmt.Errorf("writing projection changes: %w", err)
		}
	}

	slog.Info("Refreshed projections", "week", week, "players", len(fresh), "changes", len(changes))
	return nil
}

// ProjectionChanges lists every stored player whose projection moved by
// more than MaterialityThreshold under any scoring variant. Stored players
// missing from fresh count as 0; players new to the week are not changes.
func ProjectionChanges(old, fresh []models.Projection, updated time.Time) []models.ProjectionChange {
	type key struct {
		team, player string
	}

	latest := make(map[key]models.Projection, len(fresh))
	for _, p := range fresh {
		latest[key{p.ProTeam, p.Player}] = p
	}

	var changes []models.ProjectionChange
	for _, before := range old {
		after := latest[key{before.ProTeam, before.Player}]
		for _, variant := range []string{models.ScoringPPR, models.ScoringHalfPPR} {
			was, now := before.Value(variant), after.Value(variant)
			if math.Abs(now-was) <= MaterialityThreshold {
				continue
			}
			changes = append(changes, models.ProjectionChange{
				ID:      uuid.NewString(),
				Player:  before.Player,
				ProTeam: before.ProTeam,
				Scoring: variant,
				Old:     was,
				New:     now,
				Updated: updated,
			})
		}
	}
	return changes
}

// RefreshTeams stores cleaned team and owner names for every followed league.
func (s *RefreshService) RefreshTeams(ctx context.Context, profiles config.Profiles) error {
	var errs []error
	for _, league := range profiles.Unique() {
		teams, err := s.provider.Teams(ctx, league, s.year)
		if err == nil && len(teams) == 0 {
			slog.Warn("No teams returned, keeping stored names", "league", league.LeagueID)
			continue
		}
		if err == nil {
			for i := range teams {
				teams[i].Team = CleanName(teams[i].Team)
				teams[i].Owner = CleanName(teams[i].Owner)
			}
			err = s.store.ReplaceTeams(ctx, league.LeagueID, teams)
		}
		if err != nil {
			slog.Error("Failed to refresh teams", "league", league.LeagueID, "error", err)
			errs = append(errs, fmt.Errorf("league %d: %w", league.LeagueID, err))
		}
	}
	return errors.Join(errs...)
}

// CleanName collapses whitespace and capitalizes each word, leaving the
// rest of each word as written.
func CleanName(name string) string {
	return cases.Title(language.English, cases.NoLower).String(strings.Join(strings.Fields(name), " "))
}
