package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/omarshaarawi/commander/internal/config"
	"github.com/omarshaarawi/commander/internal/models"
	"github.com/omarshaarawi/commander/internal/repository"
)

// DefaultChangesLimit is how many projection changes are listed by default.
const DefaultChangesLimit = 20

// Commander is the facade the scheduler, HTTP API, and bot drive. It owns
// the current profiles snapshot and swaps it whole on reload.
type Commander struct {
	store    repository.Store
	matchups *MatchupService
	refresh  *RefreshService
	records  *RecordsService
	season   config.Season
	profiles atomic.Pointer[config.Profiles]
	now      func() time.Time
}

func NewCommander(provider Provider, store repository.Store, cfg *config.Config) *Commander {
	c := &Commander{
		store:    store,
		matchups: NewMatchupService(store, cfg),
		refresh:  NewRefreshService(provider, store, cfg),
		records:  NewRecordsService(provider, cfg),
		season:   cfg.Season,
		now:      time.Now,
	}
	empty := config.NewProfiles(nil)
	c.profiles.Store(&empty)
	return c
}

// ReloadProfiles replaces the profiles snapshot with the store's leagues.
func (c *Commander) ReloadProfiles(ctx context.Context) error {
	profiles, err := LoadProfiles(ctx, c.store)
	if err != nil {
		return err
	}
	c.profiles.Store(&profiles)
	slog.Info("Loaded profiles", "profiles", len(profiles.Names()), "leagues", len(profiles.Unique()))
	return nil
}

func (c *Commander) Profiles() config.Profiles {
	return *c.profiles.Load()
}

func (c *Commander) CurrentWeek() int {
	return c.season.Week(c.now())
}

// Matchups assembles the profile's views. A week of 0 means the current week.
func (c *Commander) Matchups(ctx context.Context, profile string, week int, mode models.Mode) ([]models.MatchupView, error) {
	if week <= 0 {
		week = c.CurrentWeek()
	}
	return c.matchups.Assemble(ctx, c.Profiles(), profile, week, mode)
}

func (c *Commander) RefreshAll(ctx context.Context) StepResult {
	return c.refresh.RefreshAll(ctx, c.Profiles(), c.CurrentWeek())
}

func (c *Commander) RefreshScores(ctx context.Context) error {
	return c.refresh.RefreshScores(ctx, c.Profiles(), c.CurrentWeek())
}

func (c *Commander) Changes(ctx context.Context, limit int) ([]models.ProjectionChange, error) {
	if limit <= 0 {
		limit = DefaultChangesLimit
	}
	return c.store.Changes(ctx, limit)
}

func (c *Commander) Records(ctx context.Context) ([]models.RecordBoard, error) {
	return c.records.Records(ctx, c.Profiles(), c.CurrentWeek())
}
