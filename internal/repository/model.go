package repository

import "time"

const (
	NoteSourceVoice  = "voice"
	DefaultNoteTitle = "Voice note"
)

type Note struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Category  string
	Source    string
	CreatedAt time.Time
}
