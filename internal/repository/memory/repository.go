// Package memory is an in-process Store, used in tests and when no database
// path is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/omarshaarawi/commander/internal/models"
	"github.com/omarshaarawi/commander/internal/repository"
)

var _ repository.Store = (*Repository)(nil)

type Repository struct {
	leagues     []models.League
	pairings    []models.Pairing
	teams       []models.TeamMeta
	scores      []models.PlayerScore
	projections []models.Projection
	progress    []models.GameProgress
	changes     []models.ProjectionChange
	mu          sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Leagues(ctx context.Context) ([]models.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.League(nil), r.leagues...), ctx.Err()
}

// SaveLeagues upserts by (profile, platform, league id).
func (r *Repository) SaveLeagues(ctx context.Context, leagues []models.League) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, league := range leagues {
		replaced := false
		for i, existing := range r.leagues {
			if existing.Profile == league.Profile && existing.Platform == league.Platform && existing.LeagueID == league.LeagueID {
				r.leagues[i] = league
				replaced = true
				break
			}
		}
		if !replaced {
			r.leagues = append(r.leagues, league)
		}
	}
	return nil
}

func (r *Repository) Pairings(ctx context.Context, week int) ([]models.Pairing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Pairing
	for _, p := range r.pairings {
		if p.Week == week {
			out = append(out, p)
		}
	}
	return out, ctx.Err()
}

func (r *Repository) ReplacePairings(ctx context.Context, week int, pairings []models.Pairing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.pairings[:0]
	for _, p := range r.pairings {
		if p.Week != week {
			kept = append(kept, p)
		}
	}
	r.pairings = append(kept, pairings...)
	return nil
}

func (r *Repository) Teams(ctx context.Context) ([]models.TeamMeta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.TeamMeta(nil), r.teams...), ctx.Err()
}

func (r *Repository) ReplaceTeams(ctx context.Context, leagueID int64, teams []models.TeamMeta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.teams[:0]
	for _, t := range r.teams {
		if t.LeagueID != leagueID {
			kept = append(kept, t)
		}
	}
	r.teams = append(kept, teams...)
	return nil
}

func (r *Repository) Scores(ctx context.Context, week int) ([]models.PlayerScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.PlayerScore
	for _, s := range r.scores {
		if s.Week == week {
			out = append(out, s)
		}
	}
	return out, ctx.Err()
}

func (r *Repository) WriteScores(ctx context.Context, leagueID int64, week int, updated time.Time, scores []models.PlayerScore) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.scores[:0]
	for _, s := range r.scores {
		if s.LeagueID == leagueID && s.Week == week && s.Updated.Before(updated) {
			continue
		}
		kept = append(kept, s)
	}
	for _, s := range scores {
		s.Updated = updated
		kept = append(kept, s)
	}
	r.scores = kept
	return nil
}

// AppendScores adds rows as given, without superseding older ones.
func (r *Repository) AppendScores(scores ...models.PlayerScore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores = append(r.scores, scores...)
}

func (r *Repository) Projections(ctx context.Context, week int) ([]models.Projection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Projection
	for _, p := range r.projections {
		if p.Week == week {
			out = append(out, p)
		}
	}
	return out, ctx.Err()
}

func (r *Repository) ReplaceProjections(ctx context.Context, week int, projections []models.Projection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.projections[:0]
	for _, p := range r.projections {
		if p.Week != week {
			kept = append(kept, p)
		}
	}
	r.projections = append(kept, projections...)
	return nil
}

func (r *Repository) Progress(ctx context.Context, year, week int) ([]models.GameProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.GameProgress
	for _, p := range r.progress {
		if p.Year == year && p.Week == week {
			out = append(out, p)
		}
	}
	return out, ctx.Err()
}

func (r *Repository) ReplaceProgress(ctx context.Context, year, week int, progress []models.GameProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.progress[:0]
	for _, p := range r.progress {
		if p.Year != year || p.Week != week {
			kept = append(kept, p)
		}
	}
	r.progress = append(kept, progress...)
	return nil
}

func (r *Repository) AddChanges(ctx context.Context, changes []models.ProjectionChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, changes...)
	return nil
}

func (r *Repository) Changes(ctx context.Context, limit int) ([]models.ProjectionChange, error) {
	r.mu.RLock()
	changes := append([]models.ProjectionChange(nil), r.changes...)
	r.mu.RUnlock()

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Updated.After(changes[j].Updated)
	})
	if limit > 0 && len(changes) > limit {
		changes = changes[:limit]
	}
	return changes, ctx.Err()
}
