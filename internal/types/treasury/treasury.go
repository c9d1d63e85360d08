package treasury

import (
	"time"

	"github.com/google/uuid"
)

// Reward is a user-defined item purchasable with earned coins.
type Reward struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	CostCoins  int       `json:"cost_coins" db:"cost_coins"`
	IsFavorite bool      `json:"is_favorite" db:"is_favorite"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Purchase logs a redeemed reward. Append-only.
type Purchase struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	RewardID    uuid.UUID `json:"reward_id" db:"reward_id"`
	RewardName  string    `json:"reward_name" db:"reward_name"`
	Qty         int       `json:"qty" db:"qty"`
	UnitCost    int       `json:"unit_cost" db:"unit_cost"`
	TotalCost   int       `json:"total_cost" db:"total_cost"`
	PurchasedAt time.Time `json:"purchased_at" db:"purchased_at"`
}

type CreateRewardRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	CostCoins  int    `json:"cost_coins" validate:"min=0"`
	IsFavorite bool   `json:"is_favorite"`
}

type PurchaseRequest struct {
	RewardID string `json:"reward_id" validate:"required"`
	Qty      int    `json:"qty" validate:"min=1"`
}
