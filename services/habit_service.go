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
	"questForgeAPI/internal/types/habit"
)

type HabitService struct {
	db     *pgxpool.Pool
	buster *cache.Buster
}

func NewHabitService(db *pgxpool.Pool, buster *cache.Buster) *HabitService {
	return &HabitService{db: db, buster: buster}
}

func (s *HabitService) CreateHabit(ctx context.Context, userID uuid.UUID, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	if req.Name == "" || len(req.Name) > 255 {
		return nil, fmt.Errorf("%w: name must be 1-255 characters", ErrValidation)
	}

	startDate := clock.Today()
	if req.StartDate != nil && *req.StartDate != "" {
		d, err := time.ParseInLocation("2006-01-02", *req.StartDate, clock.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrValidation)
		}
		startDate = d
	}

	var h habit.Habit
	err := s.db.QueryRow(ctx, `
		INSERT INTO habits (id, user_id, name, start_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, user_id, name, start_date, end_date, created_at, updated_at
	`, uuid.New(), userID, req.Name, startDate).Scan(
		&h.ID, &h.UserID, &h.Name, &h.StartDate, &h.EndDate, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	s.buster.OnHabitChange(ctx, userID)
	return &h, nil
}

// ArchiveHabit closes the habit as of today. Archived habits keep their
// history but stop appearing on the dashboard from tomorrow on.
func (s *HabitService) ArchiveHabit(ctx context.Context, userID, habitID uuid.UUID) error {
	if _, err := s.getOwnedHabit(ctx, userID, habitID); err != nil {
		return err
	}

	_, err := s.db.Exec(ctx, `
		UPDATE habits SET end_date = $2, updated_at = NOW() WHERE id = $1
	`, habitID, clock.Today())
	if err != nil {
		return fmt.Errorf("failed to archive habit: %w", err)
	}

	s.buster.OnHabitChange(ctx, userID)
	return nil
}

// ToggleToday flips today's entry for the habit and returns whether the habit
// is now done today.
func (s *HabitService) ToggleToday(ctx context.Context, userID, habitID uuid.UUID) (bool, error) {
	return s.ToggleDate(ctx, userID, habitID, clock.Today())
}

// ToggleDate flips the entry for an arbitrary date. The date must fall inside
// the habit's lifetime and must not be in the future.
func (s *HabitService) ToggleDate(ctx context.Context, userID, habitID uuid.UUID, date time.Time) (bool, error) {
	h, err := s.getOwnedHabit(ctx, userID, habitID)
	if err != nil {
		return false, err
	}

	day := clock.DateOf(date)
	today := clock.Today()
	if day.After(today) {
		return false, fmt.Errorf("%w: cannot toggle a future date", ErrValidation)
	}
	if day.Before(clock.DateOf(h.StartDate)) {
		return false, fmt.Errorf("%w: date is before the habit started", ErrValidation)
	}
	if h.EndDate != nil && day.After(clock.DateOf(*h.EndDate)) {
		return false, fmt.Errorf("%w: habit is archived for that date", ErrValidation)
	}

	// Delete-then-insert keyed on (habit_id, date): if the delete removed a
	// row the toggle was off, otherwise it is on.
	tag, err := s.db.Exec(ctx, `
		DELETE FROM habit_entries WHERE habit_id = $1 AND date = $2
	`, habitID, day)
	if err != nil {
		return false, fmt.Errorf("failed to toggle habit: %w", err)
	}

	done := false
	if tag.RowsAffected() == 0 {
		_, err = s.db.Exec(ctx, `
			INSERT INTO habit_entries (id, user_id, habit_id, date, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (habit_id, date) DO NOTHING
		`, uuid.New(), userID, habitID, day)
		if err != nil {
			return false, fmt.Errorf("failed to toggle habit: %w", err)
		}
		done = true
	}

	s.buster.OnHabitChange(ctx, userID)
	return done, nil
}

// DayStatuses computes the dashboard view of the user's live habits for a
// day: done-flag plus a per-habit streak counted backwards from that day.
func (s *HabitService) DayStatuses(ctx context.Context, userID uuid.UUID, day time.Time) ([]habit.DayStatus, error) {
	day = clock.DateOf(day)

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, start_date, end_date, created_at, updated_at
		FROM habits
		WHERE user_id = $1 AND start_date <= $2
		  AND (end_date IS NULL OR end_date >= $2)
		ORDER BY created_at ASC
	`, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []habit.Habit
	for rows.Next() {
		var h habit.Habit
		err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.StartDate, &h.EndDate, &h.CreatedAt, &h.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return []habit.DayStatus{}, nil
	}

	entryDays, err := s.entryDays(ctx, userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]habit.DayStatus, 0, len(habits))
	for _, h := range habits {
		days := entryDays[h.ID]
		statuses = append(statuses, habit.DayStatus{
			ID:        h.ID,
			Name:      h.Name,
			StartDate: h.StartDate,
			EndDate:   h.EndDate,
			DoneToday: days[clock.DayKey(day)],
			Streak:    backCountStreak(days, day),
		})
	}
	return statuses, nil
}

func (s *HabitService) entryDays(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]map[string]bool, error) {
	rows, err := s.db.Query(ctx, `
		SELECT habit_id, date FROM habit_entries WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habit entries: %w", err)
	}
	defer rows.Close()

	days := make(map[uuid.UUID]map[string]bool)
	for rows.Next() {
		var habitID uuid.UUID
		var date time.Time
		if err := rows.Scan(&habitID, &date); err != nil {
			return nil, fmt.Errorf("failed to scan habit entry: %w", err)
		}
		if days[habitID] == nil {
			days[habitID] = make(map[string]bool)
		}
		days[habitID][clock.DayKey(date)] = true
	}
	return days, rows.Err()
}

// backCountStreak counts consecutive checked days ending at day. A habit not
// yet checked today still keeps yesterday's run, so the streak starts counting
// from yesterday in that case.
func backCountStreak(days map[string]bool, day time.Time) int {
	cursor := clock.DateOf(day)
	if !days[clock.DayKey(cursor)] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	streak := 0
	for days[clock.DayKey(cursor)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

func (s *HabitService) getOwnedHabit(ctx context.Context, userID, habitID uuid.UUID) (*habit.Habit, error) {
	var h habit.Habit
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, start_date, end_date, created_at, updated_at
		FROM habits WHERE id = $1
	`, habitID).Scan(&h.ID, &h.UserID, &h.Name, &h.StartDate, &h.EndDate, &h.CreatedAt, &h.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	if h.UserID != userID {
		return nil, ErrForbidden
	}
	return &h, nil
}
