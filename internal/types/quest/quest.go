package quest

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusLocked     Status = "locked"
	StatusDone       Status = "done"
)

type Quest struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	Name         string     `json:"name" db:"name"`
	Status       Status     `json:"status" db:"status"`
	Type         string     `json:"type" db:"type"`
	XPReward     int        `json:"xp_reward" db:"xp_reward"`
	CoinReward   int        `json:"coin_reward" db:"coin_reward"`
	DueDate      *time.Time `json:"due_date" db:"due_date"`
	CompletedAt  *time.Time `json:"completed_at" db:"completed_at"`
	IsRepeatable bool       `json:"is_repeatable" db:"is_repeatable"`
	Position     int        `json:"position" db:"position"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateQuestRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Status       Status  `json:"status" validate:"required"`
	Type         string  `json:"type" validate:"required,max=100"`
	XPReward     int     `json:"xp_reward" validate:"min=0"`
	CoinReward   int     `json:"coin_reward" validate:"min=0"`
	DueDate      *string `json:"due_date"`
	IsRepeatable bool    `json:"is_repeatable"`
}

type UpdateQuestRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Status       Status  `json:"status" validate:"required"`
	Type         string  `json:"type" validate:"required,max=100"`
	XPReward     int     `json:"xp_reward" validate:"min=0"`
	CoinReward   int     `json:"coin_reward" validate:"min=0"`
	DueDate      *string `json:"due_date"`
	IsRepeatable bool    `json:"is_repeatable"`
}

type ReorderRequest struct {
	OrderedIDs []uuid.UUID `json:"ordered_ids" validate:"required"`
}

type CompleteRequest struct {
	Note *string `json:"note" validate:"omitempty,max=2000"`
}
