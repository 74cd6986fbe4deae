package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/foxseedlab/voicecap/internal/repository"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens dsn with the pure-Go driver and applies the schema.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	if err := runMigration(ctx, sqlExecer{db: db}, sqliteMigrationStatements); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

type sqlExecer struct{ db *sql.DB }

func (e sqlExecer) exec(ctx context.Context, stmt string) error {
	_, err := e.db.ExecContext(ctx, stmt)
	return err
}

func (r *SQLiteRepository) InsertNote(ctx context.Context, input repository.InsertNoteInput) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, content, category, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, input.UserID, input.Title, input.Content, input.Category, sourceOrDefault(input.Source), r.now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert note: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetNote(ctx context.Context, id string) (*repository.Note, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, content, category, source, created_at
		 FROM notes WHERE id = ?`,
		id)
	var n repository.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Category, &n.Source, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *SQLiteRepository) Close() {
	_ = r.db.Close()
}
