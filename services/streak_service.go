package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"questForgeAPI/internal/clock"
	"questForgeAPI/internal/freeze"
	"questForgeAPI/internal/types/ledger"
)

// lockLedgerTx reads a user's ledger inside tx with a row lock, creating a
// zero-valued row first if none exists. The lock serializes near-simultaneous
// completions by the same user: the second one blocks here until the first
// commits, then sees the updated streak. Different users never contend.
func lockLedgerTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*ledger.Ledger, error) {
	led, err := scanLedger(tx.QueryRow(ctx, selectLedgerSQL+` WHERE user_id = $1 FOR UPDATE`, userID))
	if err == pgx.ErrNoRows {
		_, insErr := tx.Exec(ctx, `
			INSERT INTO ledgers (id, user_id, created_at, updated_at)
			VALUES ($1, $2, NOW(), NOW())
			ON CONFLICT (user_id) DO NOTHING
		`, uuid.New(), userID)
		if insErr != nil {
			return nil, fmt.Errorf("failed to create missing ledger: %w", insErr)
		}
		led, err = scanLedger(tx.QueryRow(ctx, selectLedgerSQL+` WHERE user_id = $1 FOR UPDATE`, userID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock ledger: %w", err)
	}
	return led, nil
}

func saveLedgerTx(ctx context.Context, tx pgx.Tx, led *ledger.Ledger) error {
	_, err := tx.Exec(ctx, `
		UPDATE ledgers SET
			xp_total = $2,
			coin_balance = $3,
			streak_current = $4,
			streak_best = $5,
			last_active_date = $6,
			freeze_window_start = $7,
			freezes_used_in_window = $8,
			freezes_used_total = $9,
			streak_resets_total = $10,
			streak_maintained_through = $11,
			updated_at = NOW()
		WHERE id = $1
	`, led.ID, led.XPTotal, led.CoinBalance, led.StreakCurrent, led.StreakBest,
		led.LastActiveDate, led.FreezeWindowStart, led.FreezesUsedInWindow,
		led.FreezesUsedTotal, led.StreakResetsTotal, led.StreakMaintainedThrough)
	if err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// StreakService owns the ledger maintenance that runs without new activity.
type StreakService struct {
	db       *pgxpool.Pool
	badgeSvc *BadgeService
}

func NewStreakService(db *pgxpool.Pool, badgeSvc *BadgeService) *StreakService {
	return &StreakService{db: db, badgeSvc: badgeSvc}
}

// SweepLedgers applies the end-of-day freeze/reset pass to every ledger:
// normalize the tracked week, spend credits for silent days, reset streaks
// that ran out. Returns the number of ledgers updated. Each ledger commits in
// its own transaction so one failure doesn't roll back the whole sweep.
func (s *StreakService) SweepLedgers(ctx context.Context) (int, error) {
	today := clock.Today()

	rows, err := s.db.Query(ctx, `SELECT user_id FROM ledgers ORDER BY user_id`)
	if err != nil {
		return 0, fmt.Errorf("failed to list ledgers: %w", err)
	}
	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate ledgers: %w", err)
	}

	updated := 0
	for _, userID := range userIDs {
		changed, err := s.sweepOne(ctx, userID, today)
		if err != nil {
			log.Printf("sweep: ledger for user %s failed: %v", userID, err)
			continue
		}
		if changed {
			if err := s.badgeSvc.SyncForUser(ctx, userID); err != nil {
				log.Printf("sweep: badge sync for user %s failed: %v", userID, err)
			}
			updated++
		}
	}
	return updated, nil
}

func (s *StreakService) sweepOne(ctx context.Context, userID uuid.UUID, today time.Time) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	led, err := lockLedgerTx(ctx, tx, userID)
	if err != nil {
		return false, err
	}

	if !freeze.Sweep(led, today) {
		return false, nil
	}
	if err := saveLedgerTx(ctx, tx, led); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}
