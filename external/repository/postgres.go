package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/foxseedlab/voicecap/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) InsertNote(ctx context.Context, input repository.InsertNoteInput) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO notes (user_id, title, content, category, source)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id::text`,
		input.UserID, input.Title, input.Content, input.Category, sourceOrDefault(input.Source)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert note: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) GetNote(ctx context.Context, id string) (*repository.Note, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id::text, user_id, title, content, category, source, created_at
		 FROM notes WHERE id = $1`,
		id)
	var n repository.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Category, &n.Source, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func sourceOrDefault(source string) string {
	if source == "" {
		return repository.NoteSourceVoice
	}
	return source
}
