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
	"questForgeAPI/internal/types/timeblock"
)

type TimeBlockService struct {
	db     *pgxpool.Pool
	buster *cache.Buster
}

func NewTimeBlockService(db *pgxpool.Pool, buster *cache.Buster) *TimeBlockService {
	return &TimeBlockService{db: db, buster: buster}
}

func (s *TimeBlockService) CreateTimeBlock(ctx context.Context, userID uuid.UUID, req *timeblock.CreateTimeBlockRequest) (*timeblock.TimeBlock, error) {
	if req.Title == "" || len(req.Title) > 255 {
		return nil, fmt.Errorf("%w: title must be 1-255 characters", ErrValidation)
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, clock.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: start_time must be HH:MM", ErrValidation)
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: end_time must be HH:MM", ErrValidation)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end_time must be after start_time", ErrValidation)
	}

	var tb timeblock.TimeBlock
	err = s.db.QueryRow(ctx, `
		INSERT INTO time_blocks (id, user_id, date, start_time, end_time, title, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, user_id, date, start_time, end_time, title, note, created_at
	`, uuid.New(), userID, date, req.StartTime, req.EndTime, req.Title, req.Note).Scan(
		&tb.ID, &tb.UserID, &tb.Date, &tb.StartTime, &tb.EndTime, &tb.Title, &tb.Note, &tb.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create time block: %w", err)
	}

	s.buster.OnTimeblockChange(ctx, userID)
	return &tb, nil
}

func (s *TimeBlockService) DeleteTimeBlock(ctx context.Context, userID, blockID uuid.UUID) error {
	var ownerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT user_id FROM time_blocks WHERE id = $1`, blockID).Scan(&ownerID)
	if err == pgx.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get time block: %w", err)
	}
	if ownerID != userID {
		return ErrForbidden
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM time_blocks WHERE id = $1`, blockID); err != nil {
		return fmt.Errorf("failed to delete time block: %w", err)
	}

	s.buster.OnTimeblockChange(ctx, userID)
	return nil
}

// BlocksForDay returns a day's schedule in start order.
func (s *TimeBlockService) BlocksForDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]timeblock.TimeBlock, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, date, start_time, end_time, title, note, created_at
		FROM time_blocks
		WHERE user_id = $1 AND date = $2
		ORDER BY start_time ASC
	`, userID, clock.DateOf(day))
	if err != nil {
		return nil, fmt.Errorf("failed to list time blocks: %w", err)
	}
	defer rows.Close()

	var blocks []timeblock.TimeBlock
	for rows.Next() {
		var tb timeblock.TimeBlock
		err := rows.Scan(&tb.ID, &tb.UserID, &tb.Date, &tb.StartTime, &tb.EndTime, &tb.Title, &tb.Note, &tb.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time block: %w", err)
		}
		blocks = append(blocks, tb)
	}
	return blocks, rows.Err()
}
