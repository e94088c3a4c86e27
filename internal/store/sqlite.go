package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/derekprior/cupdraw/internal/schedule"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// One writer at a time; also keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- League data ---

// UpsertManagers inserts managers, or updates the name and team of ones
// already stored.
func (s *SQLiteStore) UpsertManagers(ctx context.Context, managers []Manager) error {
	s.logger.Debug("sql", "op", "upsert", "table", "managers", "count", len(managers))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO managers (fpl_id, name, team_name) VALUES (?, ?, ?)
		 ON CONFLICT(fpl_id) DO UPDATE SET name = excluded.name, team_name = excluded.team_name`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, m := range managers {
		if _, err := stmt.ExecContext(ctx, m.ID, m.Name, m.TeamName); err != nil {
			return fmt.Errorf("upsert manager %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// Managers returns every stored manager, ordered by id.
func (s *SQLiteStore) Managers(ctx context.Context) ([]Manager, error) {
	s.logger.Debug("sql", "op", "select", "table", "managers")

	rows, err := s.db.QueryContext(ctx, `SELECT fpl_id, name, team_name FROM managers ORDER BY fpl_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var managers []Manager
	for rows.Next() {
		var m Manager
		if err := rows.Scan(&m.ID, &m.Name, &m.TeamName); err != nil {
			return nil, err
		}
		managers = append(managers, m)
	}
	return managers, rows.Err()
}

// RecordH2H stores one head-to-head result, replacing the points of an
// earlier import of the same match.
func (s *SQLiteStore) RecordH2H(ctx context.Context, m H2HMatch) error {
	s.logger.Debug("sql", "op", "upsert", "table", "h2h_matches", "gameweek", m.Gameweek)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO h2h_matches (gameweek, entry_1_id, entry_1_points, entry_2_id, entry_2_points)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(gameweek, entry_1_id, entry_2_id)
		 DO UPDATE SET entry_1_points = excluded.entry_1_points, entry_2_points = excluded.entry_2_points`,
		m.Gameweek, m.Entry1, m.Entry1Points, m.Entry2, m.Entry2Points,
	)
	return err
}

// Standings totals league points per entry over both sides of every
// head-to-head match, best first. Ties are ordered by id.
func (s *SQLiteStore) Standings(ctx context.Context) ([]schedule.Standing, error) {
	s.logger.Debug("sql", "op", "select", "table", "h2h_matches", "query", "standings")

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, SUM(points) AS total FROM (
			SELECT entry_1_id AS id, entry_1_points AS points FROM h2h_matches
			UNION ALL
			SELECT entry_2_id AS id, entry_2_points AS points FROM h2h_matches
		 ) GROUP BY id ORDER BY total DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []schedule.Standing
	for rows.Next() {
		var id string
		var points int
		if err := rows.Scan(&id, &points); err != nil {
			return nil, err
		}
		standings = append(standings, schedule.Standing{
			Participant: schedule.Participant(id),
			Points:      points,
		})
	}
	return standings, rows.Err()
}

// --- Draws ---

// ReplaceDraw stores fixtures as the draw for rec.Stage, replacing any
// earlier draw of that stage in the same transaction. It returns the new
// draw id.
func (s *SQLiteStore) ReplaceDraw(ctx context.Context, rec DrawRecord, fixtures []schedule.Fixture) (string, error) {
	id := "draw_" + uuid.New().String()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.logger.Debug("sql", "op", "replace", "table", "draws", "stage", rec.Stage, "id", id, "fixtures", len(fixtures))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cup_fixtures WHERE stage = ?`, rec.Stage); err != nil {
		return "", fmt.Errorf("delete fixtures: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM draws WHERE stage = ?`, rec.Stage); err != nil {
		return "", fmt.Errorf("delete draw: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO draws (id, stage, seed, seeding, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, rec.Stage, rec.Seed, rec.Seeding, rec.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return "", fmt.Errorf("insert draw: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cup_fixtures (draw_id, stage, round, label, home_manager_id, away_manager_id)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare fixture insert: %w", err)
	}
	defer stmt.Close()

	for _, fx := range fixtures {
		if _, err := stmt.ExecContext(ctx, id, rec.Stage, fx.Round, fx.Label, string(fx.Home), string(fx.Away)); err != nil {
			return "", fmt.Errorf("insert fixture: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit draw: %w", err)
	}
	return id, nil
}

// LoadDraw returns the stored draw for stage, or nil if there is none.
func (s *SQLiteStore) LoadDraw(ctx context.Context, stage string) (*DrawRecord, []schedule.Fixture, error) {
	s.logger.Debug("sql", "op", "select", "table", "draws", "stage", stage)

	var rec DrawRecord
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, stage, seed, seeding, created_at FROM draws WHERE stage = ?`, stage,
	).Scan(&rec.ID, &rec.Stage, &rec.Seed, &rec.Seeding, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	fixtures, err := s.queryFixtures(ctx,
		`SELECT round, label, home_manager_id, away_manager_id FROM cup_fixtures
		 WHERE draw_id = ? ORDER BY round, rowid`, rec.ID)
	if err != nil {
		return nil, nil, err
	}
	return &rec, fixtures, nil
}

// LoadHistory rebuilds who has played whom, and home/away counts, from the
// stored draws of the given stages. Every stage must have a saved draw;
// otherwise the error wraps ErrStageNotFound.
func (s *SQLiteStore) LoadHistory(ctx context.Context, stages []string) (*schedule.State, error) {
	s.logger.Debug("sql", "op", "select", "table", "cup_fixtures", "stages", stages)

	st := schedule.NewState()
	if len(stages) == 0 {
		return st, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(stages)), ",")
	args := make([]any, len(stages))
	for i, stage := range stages {
		args[i] = stage
	}

	rows, err := s.db.QueryContext(ctx, `SELECT stage FROM draws WHERE stage IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	saved := make(map[string]bool, len(stages))
	for rows.Next() {
		var stage string
		if err := rows.Scan(&stage); err != nil {
			rows.Close()
			return nil, err
		}
		saved[stage] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, stage := range stages {
		if !saved[stage] {
			return nil, fmt.Errorf("%w: %q", ErrStageNotFound, stage)
		}
	}

	fixtures, err := s.queryFixtures(ctx,
		`SELECT round, label, home_manager_id, away_manager_id FROM cup_fixtures
		 WHERE stage IN (`+placeholders+`) ORDER BY stage, round, rowid`, args...)
	if err != nil {
		return nil, err
	}
	for _, fx := range fixtures {
		st.Record(fx.Home, fx.Away)
	}
	return st, nil
}

func (s *SQLiteStore) queryFixtures(ctx context.Context, query string, args ...any) ([]schedule.Fixture, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fixtures []schedule.Fixture
	for rows.Next() {
		var fx schedule.Fixture
		var home, away string
		if err := rows.Scan(&fx.Round, &fx.Label, &home, &away); err != nil {
			return nil, err
		}
		fx.Home = schedule.Participant(home)
		fx.Away = schedule.Participant(away)
		fixtures = append(fixtures, fx)
	}
	return fixtures, rows.Err()
}
