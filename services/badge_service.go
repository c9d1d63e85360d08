package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"questForgeAPI/internal/clock"
	"questForgeAPI/internal/types/badge"
)

type BadgeService struct {
	db *pgxpool.Pool
}

func NewBadgeService(db *pgxpool.Pool) *BadgeService {
	return &BadgeService{db: db}
}

// catalog is the static badge set, upserted at boot by SeedBadges.
var catalog = []badge.Badge{
	{Key: "streak_3", Name: "Warm-up", Category: badge.CategoryStreak, Description: "Reach a 3-day streak"},
	{Key: "streak_7", Name: "Consistent", Category: badge.CategoryStreak, Description: "Reach a 7-day streak"},
	{Key: "streak_14", Name: "Disciplined", Category: badge.CategoryStreak, Description: "Reach a 14-day streak"},
	{Key: "streak_30", Name: "Iron Will", Category: badge.CategoryStreak, Description: "Reach a 30-day streak"},
	{Key: "streak_60", Name: "Unbreakable", Category: badge.CategoryStreak, Description: "Reach a 60-day streak"},
	{Key: "streak_100", Name: "Legend", Category: badge.CategoryStreak, Description: "Reach a 100-day streak"},
	{Key: "second_wind", Name: "Second Wind", Category: badge.CategoryRecovery, Description: "Used a freeze to keep a streak alive"},
	{Key: "comeback_kid", Name: "Comeback Kid", Category: badge.CategoryRecovery, Description: "Recovered after a reset and reached 7 again"},
}

var streakMilestones = []int{3, 7, 14, 30, 60, 100}

// qualifiedBadgeKeys maps ledger aggregates to the badge keys the user has
// earned. Pure; thresholds are evaluated independently so one pass grants
// everything currently due.
func qualifiedBadgeKeys(streakBest, freezesUsedTotal, streakResetsTotal int) []string {
	var keys []string
	for _, m := range streakMilestones {
		if streakBest >= m {
			keys = append(keys, fmt.Sprintf("streak_%d", m))
		}
	}
	if freezesUsedTotal > 0 {
		keys = append(keys, "second_wind")
	}
	if streakResetsTotal > 0 && streakBest >= 7 {
		keys = append(keys, "comeback_kid")
	}
	return keys
}

// SeedBadges upserts the static catalog.
func (s *BadgeService) SeedBadges(ctx context.Context) error {
	for _, b := range catalog {
		_, err := s.db.Exec(ctx, `
			INSERT INTO badges (id, key, name, category, description, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (key) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				description = EXCLUDED.description
		`, uuid.New(), b.Key, b.Name, b.Category, b.Description)
		if err != nil {
			return fmt.Errorf("failed to seed badge %s: %w", b.Key, err)
		}
	}
	return nil
}

// SyncForUser awards every badge the user's ledger aggregates now qualify
// for and does not already hold. Idempotent: the unique (user, badge) index
// plus ON CONFLICT DO NOTHING make duplicate awards impossible. Badges are
// never removed.
func (s *BadgeService) SyncForUser(ctx context.Context, userID uuid.UUID) error {
	var streakBest, freezesTotal, resetsTotal int
	err := s.db.QueryRow(ctx, `
		SELECT streak_best, freezes_used_total, streak_resets_total
		FROM ledgers WHERE user_id = $1
	`, userID).Scan(&streakBest, &freezesTotal, &resetsTotal)
	if err == pgx.ErrNoRows {
		// No ledger means nothing to evaluate.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read ledger aggregates: %w", err)
	}

	keys := qualifiedBadgeKeys(streakBest, freezesTotal, resetsTotal)
	if len(keys) == 0 {
		return nil
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO user_badges (id, user_id, badge_id, earned_at)
		SELECT gen_random_uuid(), $1, b.id, $2
		FROM badges b
		WHERE b.key = ANY($3)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`, userID, clock.Today(), keys)
	if err != nil {
		return fmt.Errorf("failed to award badges: %w", err)
	}
	return nil
}

// BadgesForUsers returns each user's earned badges restricted to the streak
// and recovery categories, most recently earned first. Used for leaderboard
// row decoration.
func (s *BadgeService) BadgesForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]badge.Info, error) {
	result := make(map[uuid.UUID][]badge.Info)
	if len(userIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT ub.user_id, b.key, b.name, b.category, b.description
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = ANY($1)
		  AND b.category IN ('streak', 'recovery')
		ORDER BY ub.earned_at DESC, b.id DESC
	`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID uuid.UUID
		var info badge.Info
		if err := rows.Scan(&userID, &info.Key, &info.Name, &info.Category, &info.Description); err != nil {
			return nil, fmt.Errorf("failed to scan badge row: %w", err)
		}
		result[userID] = append(result[userID], info)
	}
	return result, rows.Err()
}

// TopBadge picks the badge shown next to a user: prefer a streak badge over
// a recovery badge, most recently earned within the category. The input is
// expected in BadgesForUsers order.
func TopBadge(badges []badge.Info) *badge.Info {
	for _, b := range badges {
		if b.Category == badge.CategoryStreak {
			return &b
		}
	}
	for _, b := range badges {
		if b.Category == badge.CategoryRecovery {
			return &b
		}
	}
	return nil
}

// LatestBadge returns the user's most recently earned badge of any category,
// for the dashboard snippet.
func (s *BadgeService) LatestBadge(ctx context.Context, userID uuid.UUID) (*badge.Info, error) {
	var info badge.Info
	err := s.db.QueryRow(ctx, `
		SELECT b.key, b.name, b.category, b.description
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.earned_at DESC, b.id DESC
		LIMIT 1
	`, userID).Scan(&info.Key, &info.Name, &info.Category, &info.Description)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest badge: %w", err)
	}
	return &info, nil
}
