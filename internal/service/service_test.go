package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/omarshaarawi/commander/internal/api/espn"
	"github.com/omarshaarawi/commander/internal/api/fantasy"
	"github.com/omarshaarawi/commander/internal/config"
	"github.com/omarshaarawi/commander/internal/models"
)

var errUpstream = errors.New("upstream unavailable")

type fakeProvider struct {
	mu sync.Mutex

	gameWeek    fantasy.GameWeek
	weeks       map[int64]fantasy.Week
	teams       map[int64][]models.TeamMeta
	projections []models.Projection
	history     map[string][]espn.BoxScore
	owners      map[int]string

	// deniedOnce lists history keys that answer access denied on the first call.
	deniedOnce map[string]bool
	calls      map[string]int
}

func historyKey(leagueID int64, year, week int) string {
	return fmt.Sprintf("%d/%d/%d", leagueID, year, week)
}

func (f *fakeProvider) GameWeek(ctx context.Context, year, week int) (fantasy.GameWeek, error) {
	return f.gameWeek, nil
}

func (f *fakeProvider) Scores(ctx context.Context, league models.League, year, week int, clocks map[string]models.GameClock, now time.Time) (fantasy.Week, error) {
	result, ok := f.weeks[league.LeagueID]
	if !ok {
		return fantasy.Week{}, errUpstream
	}
	return result, nil
}

func (f *fakeProvider) Teams(ctx context.Context, league models.League, year int) ([]models.TeamMeta, error) {
	teams, ok := f.teams[league.LeagueID]
	if !ok {
		return nil, errUpstream
	}
	return append([]models.TeamMeta(nil), teams...), nil
}

func (f *fakeProvider) Projections(ctx context.Context, week int, now time.Time) ([]models.Projection, error) {
	return f.projections, nil
}

func (f *fakeProvider) History(ctx context.Context, league models.League, year, week int) ([]espn.BoxScore, error) {
	key := historyKey(league.LeagueID, year, week)

	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[key]++
	calls := f.calls[key]
	f.mu.Unlock()

	if f.deniedOnce[key] && calls == 1 {
		return nil, fmt.Errorf("fetching box scores: %w", espn.ErrAccessDenied)
	}
	boxes, ok := f.history[key]
	if !ok {
		return nil, errUpstream
	}
	return boxes, nil
}

func (f *fakeProvider) Owners(ctx context.Context, league models.League, year int) (map[int]string, error) {
	return f.owners, nil
}

func (f *fakeProvider) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func testConfig() *config.Config {
	return &config.Config{
		ESPNAPI: config.ESPNAPI{Year: 2024},
		Backfill: config.Backfill{
			MaxTries:    3,
			RetryDelay:  time.Millisecond,
			Concurrency: 4,
			LastWeek:    3,
		},
	}
}
