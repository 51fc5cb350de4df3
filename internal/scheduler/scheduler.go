package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-co-op/gocron/v2"
	"github.com/omarshaarawi/commander/internal/config"
	"github.com/omarshaarawi/commander/internal/service"
)

// Refresher is what the scheduled jobs drive.
type Refresher interface {
	RefreshScores(ctx context.Context) error
	RefreshAll(ctx context.Context) service.StepResult
	ReloadProfiles(ctx context.Context) error
}

type Scheduler struct {
	s         gocron.Scheduler
	refresher Refresher
	schedule  config.Schedule
	notify    func(string) error
	ctx       context.Context
}

// NewScheduler builds the refresh jobs. notify, when set, receives a message
// whenever a full refresh has failing steps.
func NewScheduler(refresher Refresher, schedule config.Schedule, notify func(string) error) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(config.Location()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:         s,
		refresher: refresher,
		schedule:  schedule,
		notify:    notify,
		ctx:       context.Background(),
	}, nil
}

// Start registers the refresh jobs and starts running them. Jobs stop
// issuing upstream calls once ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx

	jobs := []struct {
		name string
		cron string
		task func()
	}{
		{"scores", s.schedule.Scores, s.refreshScores},
		{"all", s.schedule.All, s.refreshAll},
		{"profiles", s.schedule.Profiles, s.reloadProfiles},
	}

	for _, job := range jobs {
		_, err := s.s.NewJob(
			gocron.CronJob(job.cron, false),
			gocron.NewTask(job.task),
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s job: %w", job.name, err)
		}
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) refreshScores() {
	if err := s.refresher.RefreshScores(s.ctx); err != nil {
		slog.Error("Failed to refresh scores", "error", err)
	}
}

func (s *Scheduler) refreshAll() {
	result := s.refresher.RefreshAll(s.ctx)
	slog.Info("Refreshed all", "result", result)

	var failed []string
	for step, outcome := range result {
		if outcome != "ok" {
			failed = append(failed, fmt.Sprintf("%s: %s", step, outcome))
		}
	}
	if len(failed) == 0 || s.notify == nil {
		return
	}
	sort.Strings(failed)
	if err := s.notify("⚠️ *Refresh failed*\n" + strings.Join(failed, "\n")); err != nil {
		slog.Error("Failed to send refresh report", "error", err)
	}
}

func (s *Scheduler) reloadProfiles() {
	if err := s.refresher.ReloadProfiles(s.ctx); err != nil {
		slog.Error("Failed to reload profiles", "error", err)
	}
}
