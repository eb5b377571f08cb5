package models

import (
	"time"
)

// CreatedAtLayout is the ISO-8601 layout used for GameRecord.CreatedAt.
// The fractional part is fixed-width so string order matches time order.
const CreatedAtLayout = "2006-01-02T15:04:05.000000Z07:00"

// GameRecord is the metadata persisted next to a generated game document.
type GameRecord struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"` // ISO-8601, UTC
	Genre       string `json:"genre,omitempty"`
	FilePath    string `json:"file_path,omitempty"` // Path to the stored HTML document
}

// NewGameRecord builds the metadata for a freshly generated game.
func NewGameRecord(id string, concept GameConcept, createdAt time.Time) GameRecord {
	return GameRecord{
		ID:          id,
		Title:       concept.Title,
		Description: concept.Description,
		CreatedAt:   FormatCreatedAt(createdAt),
		Genre:       concept.Genre,
	}
}

// FormatCreatedAt renders t in UTC using CreatedAtLayout.
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}
