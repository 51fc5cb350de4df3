// Package sqlite provides a SQLite-backed Store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/omarshaarawi/commander/internal/models"
	"github.com/omarshaarawi/commander/internal/repository"
	"github.com/omarshaarawi/commander/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

var _ repository.Store = (*Store)(nil)

// Store persists commander state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Leagues(ctx context.Context) ([]models.League, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT profile, name, platform, scoring, league_id, team_id, start_year, swid, s2
		   FROM leagues
		  ORDER BY position, platform, league_id`)
	if err != nil {
		return nil, fmt.Errorf("query leagues: %w", err)
	}
	defer rows.Close()

	var leagues []models.League
	for rows.Next() {
		var league models.League
		var platform string
		if err := rows.Scan(&league.Profile, &league.Name, &platform, &league.Scoring, &league.LeagueID,
			&league.TeamID, &league.StartYear, &league.SWID, &league.S2); err != nil {
			return nil, fmt.Errorf("scan league: %w", err)
		}
		league.Platform = models.Platform(platform)
		leagues = append(leagues, league)
	}
	return leagues, rows.Err()
}

// SaveLeagues upserts leagues; their slice order becomes the profile order.
func (s *Store) SaveLeagues(ctx context.Context, leagues []models.League) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i, league := range leagues {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO leagues (profile, name, platform, scoring, league_id, team_id, start_year, swid, s2, position)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT (profile, platform, league_id) DO UPDATE SET
				   name = excluded.name,
				   scoring = excluded.scoring,
				   team_id = excluded.team_id,
				   start_year = excluded.start_year,
				   swid = excluded.swid,
				   s2 = excluded.s2,
				   position = excluded.position`,
				league.Profile, league.Name, string(league.Platform), league.Scoring, league.LeagueID,
				league.TeamID, league.StartYear, league.SWID, league.S2, i,
			)
			if err != nil {
				return fmt.Errorf("save league %d: %w", league.LeagueID, err)
			}
		}
		return nil
	})
}

func (s *Store) Pairings(ctx context.Context, week int) ([]models.Pairing, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT league_id, week, home, away FROM matchups WHERE week = ?`, week)
	if err != nil {
		return nil, fmt.Errorf("query matchups: %w", err)
	}
	defer rows.Close()

	var pairings []models.Pairing
	for rows.Next() {
		var p models.Pairing
		if err := rows.Scan(&p.LeagueID, &p.Week, &p.Home, &p.Away); err != nil {
			return nil, fmt.Errorf("scan matchup: %w", err)
		}
		pairings = append(pairings, p)
	}
	return pairings, rows.Err()
}

func (s *Store) ReplacePairings(ctx context.Context, week int, pairings []models.Pairing) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM matchups WHERE week = ?`, week); err != nil {
			return fmt.Errorf("delete matchups: %w", err)
		}
		for _, p := range pairings {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO matchups (league_id, week, home, away) VALUES (?, ?, ?, ?)`,
				p.LeagueID, p.Week, p.Home, p.Away,
			); err != nil {
				return fmt.Errorf("insert matchup: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) Teams(ctx context.Context) ([]models.TeamMeta, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT league_id, team_id, team, owner FROM teams ORDER BY league_id, team_id`)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var teams []models.TeamMeta
	for rows.Next() {
		var t models.TeamMeta
		if err := rows.Scan(&t.LeagueID, &t.TeamID, &t.Team, &t.Owner); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *Store) ReplaceTeams(ctx context.Context, leagueID int64, teams []models.TeamMeta) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE league_id = ?`, leagueID); err != nil {
			return fmt.Errorf("delete teams: %w", err)
		}
		for _, t := range teams {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO teams (league_id, team_id, team, owner) VALUES (?, ?, ?, ?)`,
				leagueID, t.TeamID, t.Team, t.Owner,
			); err != nil {
				return fmt.Errorf("insert team: %w", err)
			}
		}
		return nil
	})
}

// Scores returns only the most recently updated row per player.
func (s *Store) Scores(ctx context.Context, week int) ([]models.PlayerScore, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT league_id, team_id, week, name, team, status, position, slot, points, play_status, gametime, updated
		   FROM (
		     SELECT *, rowid AS rid,
		            ROW_NUMBER() OVER (PARTITION BY league_id, team_id, week, name ORDER BY updated DESC) AS rn
		       FROM scores
		      WHERE week = ?
		   )
		  WHERE rn = 1
		  ORDER BY rid`, week)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var scores []models.PlayerScore
	for rows.Next() {
		var score models.PlayerScore
		var position, playStatus string
		var gameTime, updated int64
		if err := rows.Scan(&score.LeagueID, &score.TeamID, &score.Week, &score.Name, &score.ProTeam, &score.Status,
			&position, &score.Slot, &score.Points, &playStatus, &gameTime, &updated); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		score.Position = models.Position(position)
		score.PlayStatus = models.PlayStatus(playStatus)
		score.GameTime = fromMillis(gameTime)
		score.Updated = fromMillis(updated)
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

func (s *Store) WriteScores(ctx context.Context, leagueID int64, week int, updated time.Time, scores []models.PlayerScore) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO scores (league_id, team_id, week, name, team, status, position, slot, points, play_status, gametime, updated)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare score insert: %w", err)
		}
		defer stmt.Close()

		for _, score := range scores {
			if _, err := stmt.ExecContext(ctx,
				score.LeagueID, score.TeamID, score.Week, score.Name, score.ProTeam, score.Status,
				string(score.Position), score.Slot, score.Points, string(score.PlayStatus),
				toMillis(score.GameTime), toMillis(updated),
			); err != nil {
				return fmt.Errorf("insert score: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM scores WHERE league_id = ? AND week = ? AND updated < ?`,
			leagueID, week, toMillis(updated),
		); err != nil {
			return fmt.Errorf("delete stale scores: %w", err)
		}
		return nil
	})
}

func (s *Store) Projections(ctx context.Context, week int) ([]models.Projection, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT player, team, week, standard, half_point_ppr, ppr, updated FROM projections WHERE week = ? ORDER BY rowid`, week)
	if err != nil {
		return nil, fmt.Errorf("query projections: %w", err)
	}
	defer rows.Close()

	var projections []models.Projection
	for rows.Next() {
		var p models.Projection
		var updated int64
		if err := rows.Scan(&p.Player, &p.ProTeam, &p.Week, &p.Standard, &p.HalfPPR, &p.PPR, &updated); err != nil {
			return nil, fmt.Errorf("scan projection: %w", err)
		}
		p.Updated = fromMillis(updated)
		projections = append(projections, p)
	}
	return projections, rows.Err()
}

func (s *Store) ReplaceProjections(ctx context.Context, week int, projections []models.Projection) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM projections WHERE week = ?`, week); err != nil {
			return fmt.Errorf("delete projections: %w", err)
		}
		for _, p := range projections {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO projections (player, team, week, standard, half_point_ppr, ppr, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				p.Player, p.ProTeam, week, p.Standard, p.HalfPPR, p.PPR, toMillis(p.Updated),
			); err != nil {
				return fmt.Errorf("insert projection: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) Progress(ctx context.Context, year, week int) ([]models.GameProgress, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT year, week, team, progress, display FROM game_progress WHERE year = ? AND week = ? ORDER BY rowid`, year, week)
	if err != nil {
		return nil, fmt.Errorf("query game progress: %w", err)
	}
	defer rows.Close()

	var progress []models.GameProgress
	for rows.Next() {
		var p models.GameProgress
		if err := rows.Scan(&p.Year, &p.Week, &p.ProTeam, &p.Progress, &p.Display); err != nil {
			return nil, fmt.Errorf("scan game progress: %w", err)
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

func (s *Store) ReplaceProgress(ctx context.Context, year, week int, progress []models.GameProgress) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM game_progress WHERE year = ? AND week = ?`, year, week); err != nil {
			return fmt.Errorf("delete game progress: %w", err)
		}
		for _, p := range progress {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO game_progress (year, week, team, progress, display) VALUES (?, ?, ?, ?, ?)`,
				year, week, p.ProTeam, p.Progress, p.Display,
			); err != nil {
				return fmt.Errorf("insert game progress: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) AddChanges(ctx context.Context, changes []models.ProjectionChange) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range changes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO changes (id, player, team, scoring, old, new, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				c.ID, c.Player, c.ProTeam, c.Scoring, c.Old, c.New, toMillis(c.Updated),
			); err != nil {
				return fmt.Errorf("insert change: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) Changes(ctx context.Context, limit int) ([]models.ProjectionChange, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, player, team, scoring, old, new, updated FROM changes ORDER BY updated DESC, rowid LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	var changes []models.ProjectionChange
	for rows.Next() {
		var c models.ProjectionChange
		var updated int64
		if err := rows.Scan(&c.ID, &c.Player, &c.ProTeam, &c.Scoring, &c.Old, &c.New, &updated); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		c.Updated = fromMillis(updated)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
