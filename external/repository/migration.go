package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresMigrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS notes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT 'voice',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_user_created ON notes (user_id, created_at DESC)`,
}

var sqliteMigrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT 'voice',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_user_created ON notes (user_id, created_at DESC)`,
}

type execer interface {
	exec(ctx context.Context, stmt string) error
}

type poolExecer struct{ pool *pgxpool.Pool }

func (e poolExecer) exec(ctx context.Context, stmt string) error {
	_, err := e.pool.Exec(ctx, stmt)
	return err
}

func RunPostgresMigration(ctx context.Context, pool *pgxpool.Pool) error {
	return runMigration(ctx, poolExecer{pool: pool}, postgresMigrationStatements)
}

func runMigration(ctx context.Context, e execer, statements []string) error {
	for _, s := range statements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if err := e.exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
