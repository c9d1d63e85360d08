package habit

import (
	"time"

	"github.com/google/uuid"
)

type Habit struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Name      string     `json:"name" db:"name"`
	StartDate time.Time  `json:"start_date" db:"start_date"`
	EndDate   *time.Time `json:"end_date" db:"end_date"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Entry is one checked-off day for a habit. Unique per (habit, date).
type Entry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	HabitID   uuid.UUID `json:"habit_id" db:"habit_id"`
	Date      time.Time `json:"date" db:"date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DayStatus is the dashboard view of one habit: whether it is done today and
// its per-habit back-counted streak. Derived, cached per user per day.
type DayStatus struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	DoneToday bool       `json:"done_today"`
	Streak    int        `json:"streak"`
}

type CreateHabitRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	StartDate *string `json:"start_date"`
}

type ToggleDateRequest struct {
	Date string `json:"date" validate:"required"`
}
