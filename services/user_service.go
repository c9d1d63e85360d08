package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"questForgeAPI/internal/types/ledger"
	"questForgeAPI/internal/types/user"
	"questForgeAPI/utils"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// CreateUser inserts the user and their zero-valued ledger in one
// transaction. Every user owns exactly one ledger from the moment they exist.
func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	if req.Name == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var u user.User
	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, name, email, created_at, updated_at
	`, uuid.New(), req.Name, req.Email).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO ledgers (id, user_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
	`, uuid.New(), u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &u, nil
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	var u user.User
	err := s.db.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at FROM users WHERE id = $1
	`, userID).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ProfileResponse is the ledger plus derived level data.
type ProfileResponse struct {
	User   user.User       `json:"user"`
	Ledger ledger.Ledger   `json:"ledger"`
	Level  utils.LevelData `json:"level_data"`
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	led, err := s.GetLedger(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{
		User:   *u,
		Ledger: *led,
		Level:  utils.CalculateLevel(led.XPTotal),
	}, nil
}

// GetLedger reads a user's ledger, creating a zero-valued one if it is
// somehow missing. Creation-on-user-creation should make that impossible,
// but a missing ledger must not take down reads.
func (s *UserService) GetLedger(ctx context.Context, userID uuid.UUID) (*ledger.Ledger, error) {
	led, err := scanLedger(s.db.QueryRow(ctx, selectLedgerSQL+` WHERE user_id = $1`, userID))
	if err == pgx.ErrNoRows {
		_, insErr := s.db.Exec(ctx, `
			INSERT INTO ledgers (id, user_id, created_at, updated_at)
			VALUES ($1, $2, NOW(), NOW())
			ON CONFLICT (user_id) DO NOTHING
		`, uuid.New(), userID)
		if insErr != nil {
			return nil, fmt.Errorf("failed to create missing ledger: %w", insErr)
		}
		led, err = scanLedger(s.db.QueryRow(ctx, selectLedgerSQL+` WHERE user_id = $1`, userID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return led, nil
}

const selectLedgerSQL = `
	SELECT id, user_id, xp_total, coin_balance, streak_current, streak_best,
	       last_active_date, freeze_window_start, freezes_used_in_window,
	       freezes_used_total, streak_resets_total, streak_maintained_through,
	       created_at, updated_at
	FROM ledgers`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedger(row rowScanner) (*ledger.Ledger, error) {
	var led ledger.Ledger
	err := row.Scan(
		&led.ID,
		&led.UserID,
		&led.XPTotal,
		&led.CoinBalance,
		&led.StreakCurrent,
		&led.StreakBest,
		&led.LastActiveDate,
		&led.FreezeWindowStart,
		&led.FreezesUsedInWindow,
		&led.FreezesUsedTotal,
		&led.StreakResetsTotal,
		&led.StreakMaintainedThrough,
		&led.CreatedAt,
		&led.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &led, nil
}
