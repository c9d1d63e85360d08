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
	"questForgeAPI/internal/types/journal"
)

type JournalService struct {
	db     *pgxpool.Pool
	buster *cache.Buster
}

func NewJournalService(db *pgxpool.Pool, buster *cache.Buster) *JournalService {
	return &JournalService{db: db, buster: buster}
}

// CreateEntry writes today's journal entry. One entry per day: writing again
// on the same day returns the existing entry untouched instead of erroring,
// so a double-submitted form is harmless.
func (s *JournalService) CreateEntry(ctx context.Context, userID uuid.UUID, req *journal.CreateEntryRequest) (*journal.Entry, error) {
	if req.Content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if len(req.Title) > 255 {
		return nil, fmt.Errorf("%w: title must be at most 255 characters", ErrValidation)
	}

	today := clock.Today()

	var e journal.Entry
	err := s.db.QueryRow(ctx, `
		INSERT INTO journal_entries (id, user_id, date, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (user_id, date) DO NOTHING
		RETURNING id, user_id, date, title, content, created_at, updated_at
	`, uuid.New(), userID, today, req.Title, req.Content).Scan(
		&e.ID, &e.UserID, &e.Date, &e.Title, &e.Content, &e.CreatedAt, &e.UpdatedAt)
	if err == pgx.ErrNoRows {
		// Conflict path: today's entry already exists.
		return s.entryForDate(ctx, userID, today)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	s.buster.OnJournalChange(ctx, userID)
	return &e, nil
}

// ListEntries returns the user's journal newest first.
func (s *JournalService) ListEntries(ctx context.Context, userID uuid.UUID) ([]journal.Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, date, title, content, created_at, updated_at
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY date DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var e journal.Entry
		err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Title, &e.Content, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HasEntryForToday reports whether today's entry exists.
func (s *JournalService) HasEntryForToday(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM journal_entries WHERE user_id = $1 AND date = $2)
	`, userID, clock.Today()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check journal entry: %w", err)
	}
	return exists, nil
}

func (s *JournalService) entryForDate(ctx context.Context, userID uuid.UUID, date time.Time) (*journal.Entry, error) {
	var e journal.Entry
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, date, title, content, created_at, updated_at
		FROM journal_entries WHERE user_id = $1 AND date = $2
	`, userID, date).Scan(&e.ID, &e.UserID, &e.Date, &e.Title, &e.Content, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	return &e, nil
}
