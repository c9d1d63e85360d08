package journal

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one journal entry. At most one per user per calendar day; a
// duplicate same-day write is a no-op returning the existing entry.
type Entry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Date      time.Time `json:"date" db:"date"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateEntryRequest struct {
	Title   string `json:"title" validate:"max=255"`
	Content string `json:"content" validate:"required"`
}
