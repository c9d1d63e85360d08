package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"questForgeAPI/internal/cache"
	"questForgeAPI/internal/clock"
	"questForgeAPI/internal/freeze"
	"questForgeAPI/internal/types/completion"
	"questForgeAPI/internal/types/quest"
	"questForgeAPI/middleware"
	"questForgeAPI/utils"
)

type QuestService struct {
	db       *pgxpool.Pool
	badgeSvc *BadgeService
	buster   *cache.Buster
}

func NewQuestService(db *pgxpool.Pool, badgeSvc *BadgeService, buster *cache.Buster) *QuestService {
	return &QuestService{db: db, badgeSvc: badgeSvc, buster: buster}
}

const selectQuestSQL = `
	SELECT id, user_id, name, status, type, xp_reward, coin_reward,
	       due_date, completed_at, is_repeatable, position, created_at, updated_at
	FROM quests`

func scanQuest(row rowScanner) (*quest.Quest, error) {
	var q quest.Quest
	err := row.Scan(
		&q.ID, &q.UserID, &q.Name, &q.Status, &q.Type, &q.XPReward, &q.CoinReward,
		&q.DueDate, &q.CompletedAt, &q.IsRepeatable, &q.Position, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *QuestService) CreateQuest(ctx context.Context, userID uuid.UUID, req *quest.CreateQuestRequest) (*quest.Quest, error) {
	if err := validateQuestRequest(req.Name, req.Status, req.Type, req.XPReward, req.CoinReward); err != nil {
		return nil, err
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	// Repeatable quests can be completed forever, so a deadline is meaningless.
	if req.IsRepeatable {
		dueDate = nil
	}

	var maxPosition int
	err = s.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(position), 0) FROM quests WHERE user_id = $1
	`, userID).Scan(&maxPosition)
	if err != nil {
		return nil, fmt.Errorf("failed to get max position: %w", err)
	}

	q, err := scanQuest(s.db.QueryRow(ctx, `
		INSERT INTO quests (id, user_id, name, status, type, xp_reward, coin_reward,
		                    due_date, is_repeatable, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id, user_id, name, status, type, xp_reward, coin_reward,
		          due_date, completed_at, is_repeatable, position, created_at, updated_at
	`, uuid.New(), userID, req.Name, req.Status, req.Type, req.XPReward, req.CoinReward,
		dueDate, req.IsRepeatable, maxPosition+1))
	if err != nil {
		return nil, fmt.Errorf("failed to create quest: %w", err)
	}

	s.buster.OnQuestChange(ctx, userID)
	return q, nil
}

func (s *QuestService) UpdateQuest(ctx context.Context, userID, questID uuid.UUID, req *quest.UpdateQuestRequest) (*quest.Quest, error) {
	if err := validateQuestRequest(req.Name, req.Status, req.Type, req.XPReward, req.CoinReward); err != nil {
		return nil, err
	}
	if req.Status == quest.StatusDone {
		return nil, fmt.Errorf("%w: done is set by completing, not editing", ErrValidation)
	}

	q, err := s.getOwnedQuest(ctx, userID, questID)
	if err != nil {
		return nil, err
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	if req.IsRepeatable {
		dueDate = nil
	}

	q, err = scanQuest(s.db.QueryRow(ctx, `
		UPDATE quests SET name = $2, status = $3, type = $4, xp_reward = $5,
		       coin_reward = $6, due_date = $7, is_repeatable = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, name, status, type, xp_reward, coin_reward,
		          due_date, completed_at, is_repeatable, position, created_at, updated_at
	`, q.ID, req.Name, req.Status, req.Type, req.XPReward, req.CoinReward, dueDate, req.IsRepeatable))
	if err != nil {
		return nil, fmt.Errorf("failed to update quest: %w", err)
	}

	s.buster.OnQuestChange(ctx, userID)
	return q, nil
}

// ReorderQuests rewrites positions to match the given id order. One UPDATE
// with a CASE expression inside a transaction, so a concurrent reorder can't
// interleave half-applied positions.
func (s *QuestService) ReorderQuests(ctx context.Context, userID uuid.UUID, orderedIDs []uuid.UUID) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	caseSQL := "CASE id "
	args := []any{userID}
	i := 2
	for idx, id := range orderedIDs {
		caseSQL += fmt.Sprintf("WHEN $%d THEN $%d ", i, i+1)
		args = append(args, id, idx+1)
		i += 2
	}
	caseSQL += "END"

	inSQL := ""
	for _, id := range orderedIDs {
		if inSQL != "" {
			inSQL += ", "
		}
		inSQL += fmt.Sprintf("$%d", i)
		args = append(args, id)
		i++
	}

	sql := fmt.Sprintf(`
		UPDATE quests SET position = %s, updated_at = NOW()
		WHERE user_id = $1 AND id IN (%s)
	`, caseSQL, inSQL)

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to reorder quests: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.buster.OnQuestChange(ctx, userID)
	return nil
}

// DeleteQuest refuses to delete a quest that already has completion history;
// completions are append-only and must keep their referent.
func (s *QuestService) DeleteQuest(ctx context.Context, userID, questID uuid.UUID) error {
	q, err := s.getOwnedQuest(ctx, userID, questID)
	if err != nil {
		return err
	}

	var hasCompletions bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM quest_completions WHERE quest_id = $1)
	`, q.ID).Scan(&hasCompletions)
	if err != nil {
		return fmt.Errorf("failed to check completions: %w", err)
	}
	if hasCompletions {
		return ErrHasHistory
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM quests WHERE id = $1`, q.ID); err != nil {
		return fmt.Errorf("failed to delete quest: %w", err)
	}

	s.buster.OnQuestChange(ctx, userID)
	return nil
}

// ListActiveQuests returns the user's todo/in-progress quests in board order.
func (s *QuestService) ListActiveQuests(ctx context.Context, userID uuid.UUID) ([]quest.Quest, error) {
	rows, err := s.db.Query(ctx, selectQuestSQL+`
		WHERE user_id = $1 AND status IN ('todo', 'in_progress')
		ORDER BY position ASC, due_date ASC NULLS LAST, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	defer rows.Close()

	var quests []quest.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quest: %w", err)
		}
		quests = append(quests, *q)
	}
	return quests, rows.Err()
}

// CompleteQuest records an activity completion: the ledger read-modify-write,
// the economy update, and the completion append all commit or roll back as
// one unit scoped to this user's rows. Badge sync and cache invalidation run
// after the commit; they are idempotent and safe to lose to a crash.
func (s *QuestService) CompleteQuest(ctx context.Context, userID, questID uuid.UUID, note *string) (*completion.Result, error) {
	if note != nil && len(*note) > 2000 {
		return nil, fmt.Errorf("%w: note too long", ErrValidation)
	}

	now := clock.Now()
	today := clock.Today()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q, err := scanQuest(tx.QueryRow(ctx, selectQuestSQL+` WHERE id = $1`, questID))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}
	if q.UserID != userID {
		return nil, ErrForbidden
	}
	if q.Status == quest.StatusLocked {
		return nil, ErrQuestLocked
	}

	led, err := lockLedgerTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	// Completing a finished one-shot quest is a no-op, not an error: return
	// the current state unchanged.
	if !q.IsRepeatable && q.Status == quest.StatusDone {
		return &completion.Result{
			AlreadyDone:   true,
			StreakCurrent: led.StreakCurrent,
			StreakBest:    led.StreakBest,
			Level:         utils.CalculateLevel(led.XPTotal).CurrentLevel,
		}, nil
	}

	levelBefore := utils.CalculateLevel(led.XPTotal).CurrentLevel

	outcome := freeze.Apply(led, today)
	led.XPTotal += q.XPReward
	led.CoinBalance += q.CoinReward

	if err := saveLedgerTx(ctx, tx, led); err != nil {
		return nil, err
	}

	if !q.IsRepeatable {
		_, err = tx.Exec(ctx, `
			UPDATE quests SET status = 'done', completed_at = $2, updated_at = NOW()
			WHERE id = $1
		`, q.ID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to mark quest done: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO quest_completions (id, user_id, quest_id, xp_awarded, coin_awarded, note, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.New(), userID, q.ID, q.XPReward, q.CoinReward, note, now)
	if err != nil {
		return nil, fmt.Errorf("failed to log completion: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if err := s.badgeSvc.SyncForUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to sync badges: %w", err)
	}
	s.buster.OnCompletion(ctx, userID)
	middleware.ObserveCompletion(string(outcome.Result))

	levelAfter := utils.CalculateLevel(led.XPTotal).CurrentLevel

	return &completion.Result{
		StreakCurrent: led.StreakCurrent,
		StreakBest:    led.StreakBest,
		StreakResult:  string(outcome.Result),
		FreezesSpent:  outcome.FreezesSpent,
		XPAwarded:     q.XPReward,
		CoinAwarded:   q.CoinReward,
		LeveledUp:     levelAfter > levelBefore,
		Level:         levelAfter,
	}, nil
}

func (s *QuestService) getOwnedQuest(ctx context.Context, userID, questID uuid.UUID) (*quest.Quest, error) {
	q, err := scanQuest(s.db.QueryRow(ctx, selectQuestSQL+` WHERE id = $1`, questID))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}
	if q.UserID != userID {
		return nil, ErrForbidden
	}
	return q, nil
}

func validateQuestRequest(name string, status quest.Status, questType string, xp, coins int) error {
	if name == "" || len(name) > 255 {
		return fmt.Errorf("%w: name must be 1-255 characters", ErrValidation)
	}
	switch status {
	case quest.StatusTodo, quest.StatusInProgress, quest.StatusLocked:
	default:
		return fmt.Errorf("%w: status must be todo, in_progress, or locked", ErrValidation)
	}
	if questType == "" || len(questType) > 100 {
		return fmt.Errorf("%w: type must be 1-100 characters", ErrValidation)
	}
	if xp < 0 || coins < 0 {
		return fmt.Errorf("%w: rewards must be non-negative", ErrValidation)
	}
	return nil
}

func parseDueDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation("2006-01-02", *s, clock.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date must be YYYY-MM-DD", ErrValidation)
	}
	return &d, nil
}
