package repository

import (
	"context"
	"strings"
)

type InsertNoteInput struct {
	UserID   string
	Title    string
	Content  string
	Category string
	Source   string
}

// NoteInputFromCapture builds the note for a saved capture. The summary
// becomes the title when present.
func NoteInputFromCapture(userID, note, summary, category string) InsertNoteInput {
	title := strings.TrimSpace(summary)
	if title == "" {
		title = DefaultNoteTitle
	}
	return InsertNoteInput{
		UserID:   userID,
		Title:    title,
		Content:  note,
		Category: category,
		Source:   NoteSourceVoice,
	}
}

type NoteRepository interface {
	InsertNote(ctx context.Context, input InsertNoteInput) (string, error)
	GetNote(ctx context.Context, id string) (*Note, error)
}

type Repository interface {
	NoteRepository
	Close()
}
