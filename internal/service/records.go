package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/cenkalti/backoff/v5"
	"github.com/omarshaarawi/commander/internal/api/espn"
	"github.com/omarshaarawi/commander/internal/config"
	"github.com/omarshaarawi/commander/internal/models"
	"golang.org/x/sync/errgroup"
)

// RedactedOwner replaces owners ESPN does not disclose.
const RedactedOwner = "Redacted"

const recordsPerCategory = 3

type RecordsService struct {
	provider Provider
	year     int
	backfill config.Backfill
}

func NewRecordsService(provider Provider, cfg *config.Config) *RecordsService {
	return &RecordsService{provider: provider, year: cfg.Year(), backfill: cfg.Backfill}
}

type season struct {
	league models.League
	year   int
	owners map[int]string
	err    error
}

type weekSlot struct {
	season  *season
	week    int
	records []models.LeagueRecord
	err     error
}

// Records builds a record board for every ESPN league followed by any
// profile, from its first season through the last finished week.
// Boards are returned even when some weeks failed; those failures are
// joined into the error.
func (s *RecordsService) Records(ctx context.Context, profiles config.Profiles, currentWeek int) ([]models.RecordBoard, error) {
	var leagues []models.League
	for _, league := range profiles.Unique() {
		if league.Platform == models.PlatformESPN {
			leagues = append(leagues, league)
		}
	}

	var seasons []*season
	for _, league := range leagues {
		start := league.StartYear
		if start == 0 || start > s.year {
			start = s.year
		}
		for year := start; year <= s.year; year++ {
			seasons = append(seasons, &season{league: league, year: year})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.backfill.Concurrency)
	for _, ss := range seasons {
		g.Go(func() error {
			ss.owners, ss.err = retryAccessDenied(gctx, s.backfill, func() (map[int]string, error) {
				return s.provider.Owners(gctx, ss.league, ss.year)
			})
			return nil
		})
	}
	_ = g.Wait()

	var slots []*weekSlot
	for _, ss := range seasons {
		if ss.err != nil {
			continue
		}
		for week := 1; week <= s.backfill.LastWeek; week++ {
			if ss.year >= s.year && week >= currentWeek {
				break
			}
			slots = append(slots, &weekSlot{season: ss, week: week})
		}
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.backfill.Concurrency)
	for _, slot := range slots {
		g.Go(func() error {
			slot.records, slot.err = s.weekRecords(gctx, slot.season, slot.week)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	byLeague := make(map[int64][]models.LeagueRecord)
	for _, ss := range seasons {
		if ss.err != nil {
			slog.Error("Failed to load season owners", "league", ss.league.LeagueID, "year", ss.year, "error", ss.err)
			errs = append(errs, fmt.Errorf("league %d %d: %w", ss.league.LeagueID, ss.year, ss.err))
		}
	}
	for _, slot := range slots {
		if slot.err != nil {
			slog.Error("Failed to load week results", "league", slot.season.league.LeagueID, "year", slot.season.year, "week", slot.week, "error", slot.err)
			errs = append(errs, fmt.Errorf("league %d %d week %d: %w", slot.season.league.LeagueID, slot.season.year, slot.week, slot.err))
			continue
		}
		id := slot.season.league.LeagueID
		byLeague[id] = append(byLeague[id], slot.records...)
	}

	var boards []models.RecordBoard
	for _, league := range leagues {
		records := byLeague[league.LeagueID]
		if len(records) == 0 {
			continue
		}
		boards = append(boards, Board(league.Name, records))
	}

	return boards, errors.Join(errs...)
}

func (s *RecordsService) weekRecords(ctx context.Context, ss *season, week int) ([]models.LeagueRecord, error) {
	boxScores, err := retryAccessDenied(ctx, s.backfill, func() ([]espn.BoxScore, error) {
		return s.provider.History(ctx, ss.league, ss.year, week)
	})
	if err != nil {
		return nil, err
	}
	if len(boxScores) == 0 || boxScores[0].Playoff {
		return nil, nil
	}

	var records []models.LeagueRecord
	for i, box := range boxScores {
		for _, team := range []espn.BoxTeam{box.Home, box.Away} {
			if team.Score == 0 {
				continue
			}
			owner := ss.owners[team.TeamID]
			if owner == "" || owner == "None" {
				owner = RedactedOwner
			}
			records = append(records, models.LeagueRecord{
				Year:      ss.year,
				Week:      week,
				MatchupID: i + 1,
				Owner:     owner,
				Points:    round2(team.Score),
				Projected: round2(team.Projected),
				Outcome:   round2(team.Score - team.Projected),
			})
		}
	}
	return records, nil
}

// retryAccessDenied retries op while ESPN answers access denied, waiting a
// constant delay between tries. Any other error stops immediately.
func retryAccessDenied[T any](ctx context.Context, cfg config.Backfill, op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		result, err := op()
		if err != nil && !errors.Is(err, espn.ErrAccessDenied) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}, backoff.WithBackOff(backoff.NewConstantBackOff(cfg.RetryDelay)), backoff.WithMaxTries(cfg.MaxTries))
}

// Board ranks one league's weekly results into its six categories.
func Board(league string, records []models.LeagueRecord) models.RecordBoard {
	categories := []struct {
		name    string
		value   func(models.LeagueRecord) float64
		highest bool
	}{
		{"Highest Points (Week)", func(r models.LeagueRecord) float64 { return r.Points }, true},
		{"Lowest Points (Week)", func(r models.LeagueRecord) float64 { return r.Points }, false},
		{"Highest Projected (Week)", func(r models.LeagueRecord) float64 { return r.Projected }, true},
		{"Lowest Projected (Week)", func(r models.LeagueRecord) float64 { return r.Projected }, false},
		{"Best Outcome (Week)", func(r models.LeagueRecord) float64 { return r.Outcome }, true},
		{"Worst Outcome (Week)", func(r models.LeagueRecord) float64 { return r.Outcome }, false},
	}

	board := models.RecordBoard{League: league}
	for _, category := range categories {
		ranked := append([]models.LeagueRecord(nil), records...)
		sort.SliceStable(ranked, func(i, j int) bool {
			if category.highest {
				return category.value(ranked[i]) > category.value(ranked[j])
			}
			return category.value(ranked[i]) < category.value(ranked[j])
		})
		if len(ranked) > recordsPerCategory {
			ranked = ranked[:recordsPerCategory]
		}
		board.Categories = append(board.Categories, models.RecordCategory{Name: category.name, Records: ranked})
	}
	return board
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
