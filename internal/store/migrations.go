package store

import (
	"context"
	"database/sql"
	"strings"
)

// schema contains the DDL for all cupdraw tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS managers (
		fpl_id    TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		team_name TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS h2h_matches (
		gameweek       INTEGER NOT NULL,
		entry_1_id     TEXT NOT NULL,
		entry_1_points INTEGER NOT NULL DEFAULT 0,
		entry_2_id     TEXT NOT NULL,
		entry_2_points INTEGER NOT NULL DEFAULT 0,
		UNIQUE(gameweek, entry_1_id, entry_2_id)
	)`,

	`CREATE TABLE IF NOT EXISTS draws (
		id         TEXT PRIMARY KEY,
		stage      TEXT NOT NULL UNIQUE,
		seed       INTEGER NOT NULL,
		seeding    TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS cup_fixtures (
		draw_id         TEXT NOT NULL REFERENCES draws(id) ON DELETE CASCADE,
		stage           TEXT NOT NULL,
		round           INTEGER NOT NULL,
		label           TEXT NOT NULL DEFAULT '',
		home_manager_id TEXT NOT NULL,
		away_manager_id TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_h2h_matches_gameweek ON h2h_matches(gameweek)`,
	`CREATE INDEX IF NOT EXISTS idx_cup_fixtures_stage ON cup_fixtures(stage, round)`,
	`CREATE INDEX IF NOT EXISTS idx_cup_fixtures_draw_id ON cup_fixtures(draw_id)`,
}

// alterStatements are column additions for databases created before the
// column existed. SQLite has no ADD COLUMN IF NOT EXISTS.
var alterStatements = []struct {
	table    string
	column   string
	alterSQL string
}{
	{
		table:    "managers",
		column:   "team_name",
		alterSQL: "ALTER TABLE managers ADD COLUMN team_name TEXT NOT NULL DEFAULT ''",
	},
}

// migrate executes all schema DDL statements and alter migrations.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for _, alter := range alterStatements {
		if err := addColumnIfNotExists(ctx, db, alter.table, alter.column, alter.alterSQL); err != nil {
			return err
		}
	}
	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(ctx context.Context, db *sql.DB, table, column, alterSQL string) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return err
	}

	exists := false
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue *string
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			rows.Close()
			return err
		}
		if strings.EqualFold(name, column) {
			exists = true
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = db.ExecContext(ctx, alterSQL)
	return err
}
