package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"questForgeAPI/internal/cache"
	"questForgeAPI/internal/clock"
	"questForgeAPI/internal/types/treasury"
)

type TreasuryService struct {
	db     *pgxpool.Pool
	buster *cache.Buster
}

func NewTreasuryService(db *pgxpool.Pool, buster *cache.Buster) *TreasuryService {
	return &TreasuryService{db: db, buster: buster}
}

func (s *TreasuryService) CreateReward(ctx context.Context, userID uuid.UUID, req *treasury.CreateRewardRequest) (*treasury.Reward, error) {
	if req.Name == "" || len(req.Name) > 255 {
		return nil, fmt.Errorf("%w: name must be 1-255 characters", ErrValidation)
	}
	if req.CostCoins < 0 {
		return nil, fmt.Errorf("%w: cost must be non-negative", ErrValidation)
	}

	var r treasury.Reward
	err := s.db.QueryRow(ctx, `
		INSERT INTO rewards (id, user_id, name, cost_coins, is_favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, user_id, name, cost_coins, is_favorite, created_at, updated_at
	`, uuid.New(), userID, req.Name, req.CostCoins, req.IsFavorite).Scan(
		&r.ID, &r.UserID, &r.Name, &r.CostCoins, &r.IsFavorite, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}
	return &r, nil
}

func (s *TreasuryService) ListRewards(ctx context.Context, userID uuid.UUID) ([]treasury.Reward, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, cost_coins, is_favorite, created_at, updated_at
		FROM rewards
		WHERE user_id = $1
		ORDER BY is_favorite DESC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []treasury.Reward
	for rows.Next() {
		var r treasury.Reward
		err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.CostCoins, &r.IsFavorite, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, r)
	}
	return rewards, rows.Err()
}

// Purchase spends coins on a reward. The balance check and the debit happen
// against a locked ledger row, so two concurrent purchases cannot both pass
// the check and drive the balance negative.
func (s *TreasuryService) Purchase(ctx context.Context, userID uuid.UUID, rewardID uuid.UUID, qty int) (*treasury.Purchase, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: qty must be at least 1", ErrValidation)
	}

	var r treasury.Reward
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, cost_coins, is_favorite, created_at, updated_at
		FROM rewards WHERE id = $1
	`, rewardID).Scan(&r.ID, &r.UserID, &r.Name, &r.CostCoins, &r.IsFavorite, &r.CreatedAt, &r.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}
	if r.UserID != userID {
		return nil, ErrForbidden
	}

	totalCost := r.CostCoins * qty

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	led, err := lockLedgerTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if led.CoinBalance < totalCost {
		return nil, ErrLowBalance
	}
	led.CoinBalance -= totalCost
	if err := saveLedgerTx(ctx, tx, led); err != nil {
		return nil, err
	}

	p := treasury.Purchase{
		ID:          uuid.New(),
		UserID:      userID,
		RewardID:    r.ID,
		RewardName:  r.Name,
		Qty:         qty,
		UnitCost:    r.CostCoins,
		TotalCost:   totalCost,
		PurchasedAt: clock.Now(),
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO reward_purchases (id, user_id, reward_id, reward_name, qty, unit_cost, total_cost, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.UserID, p.RewardID, p.RewardName, p.Qty, p.UnitCost, p.TotalCost, p.PurchasedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to log purchase: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.buster.OnLedgerChange(ctx, userID)
	return &p, nil
}

func (s *TreasuryService) ListPurchases(ctx context.Context, userID uuid.UUID) ([]treasury.Purchase, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, reward_id, reward_name, qty, unit_cost, total_cost, purchased_at
		FROM reward_purchases
		WHERE user_id = $1
		ORDER BY purchased_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []treasury.Purchase
	for rows.Next() {
		var p treasury.Purchase
		err := rows.Scan(&p.ID, &p.UserID, &p.RewardID, &p.RewardName, &p.Qty, &p.UnitCost, &p.TotalCost, &p.PurchasedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}
