package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"questForgeAPI/internal/cache"
	"questForgeAPI/internal/clock"
	"questForgeAPI/internal/ranking"
	"questForgeAPI/internal/types/badge"
	"questForgeAPI/internal/types/leaderboard"
	"questForgeAPI/middleware"
)

// BoardSize is how many rows the global board shows.
const BoardSize = 50

type LeaderboardService struct {
	db       *pgxpool.Pool
	store    *cache.Store
	badgeSvc *BadgeService
}

func NewLeaderboardService(db *pgxpool.Pool, store *cache.Store, badgeSvc *BadgeService) *LeaderboardService {
	return &LeaderboardService{db: db, store: store, badgeSvc: badgeSvc}
}

// GetLeaderboard serves the hybrid board: the ranked roster and its badge map
// are cached per reference-timezone day, while the viewer's own stats are read
// live and spliced in. Everyone shares one roster rebuild per day; the viewer
// still sees the completion they made ten seconds ago.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, viewerID uuid.UUID) (*leaderboard.Leaderboard, error) {
	now := clock.Now()
	today := clock.Today()

	var roster []*ranking.RosterEntry
	err := s.store.Remember(ctx, cache.RosterKey(today), cache.DailyTTL, &roster, func() (any, error) {
		middleware.ObserveRosterRebuild()
		return s.fetchGlobalRoster(ctx, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	var badges map[uuid.UUID][]badge.Info
	err = s.store.Remember(ctx, cache.RosterBadgesKey(today), cache.DailyTTL, &badges, func() (any, error) {
		ids := make([]uuid.UUID, len(roster))
		for i, e := range roster {
			ids[i] = e.UserID
		}
		return s.badgeSvc.BadgesForUsers(ctx, ids)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load roster badges: %w", err)
	}

	viewer, err := s.fetchUserStats(ctx, viewerID, now)
	if err != nil {
		return nil, err
	}
	viewerBadges, err := s.badgeSvc.BadgesForUsers(ctx, []uuid.UUID{viewerID})
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer badges: %w", err)
	}

	merged := ranking.MergeViewer(roster, viewer)

	board := &leaderboard.Leaderboard{Items: make([]leaderboard.Row, 0, BoardSize)}
	for i, e := range merged {
		if i >= BoardSize {
			break
		}
		rowBadges := badges[e.UserID]
		if e.UserID == viewerID {
			rowBadges = viewerBadges[viewerID]
		}
		board.Items = append(board.Items, formatRow(e, rowBadges))
	}

	for _, e := range merged {
		if e.UserID == viewerID {
			board.Me = formatRow(e, viewerBadges[viewerID])
			break
		}
	}
	return board, nil
}

// Snippet is the dashboard's standing summary. It reads the cached roster
// only: a miss means showing a placeholder, never a rebuild, because the
// dashboard must stay cheap even for the first visitor of the day.
func (s *LeaderboardService) Snippet(ctx context.Context, viewerID uuid.UUID) (*leaderboard.Snippet, error) {
	var roster []*ranking.RosterEntry
	err := s.store.Get(ctx, cache.RosterKey(clock.Today()), &roster)
	if err == cache.ErrMiss {
		return &leaderboard.Snippet{Rank: "-", Message: "View Leaderboard"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	standing := ranking.StandingFor(roster, viewerID, BoardSize)
	if !standing.OnBoard {
		return &leaderboard.Snippet{Rank: "50+", Message: "Keep grinding to enter top 50!"}, nil
	}
	snippet := &leaderboard.Snippet{Rank: strconv.Itoa(standing.Rank)}
	if standing.IsKing {
		snippet.Rival = &leaderboard.Rival{IsKing: true}
		return snippet, nil
	}
	snippet.Rival = &leaderboard.Rival{
		Name: standing.Rival.Name,
		Gap:  standing.RivalGap,
	}
	return snippet, nil
}

// fetchGlobalRoster builds the top rows straight from Postgres. The effective
// streak, last completion timestamp, and 7-day activity count are computed in
// SQL; status and final ranks are assigned in Go so the ordering logic lives
// in one place.
func (s *LeaderboardService) fetchGlobalRoster(ctx context.Context, now time.Time) ([]*ranking.RosterEntry, error) {
	today := clock.DateOf(now)
	ghostThreshold := today.AddDate(0, 0, -ranking.GhostThresholdDays)
	weekStart := clock.WeekStart(today)

	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.name,
		       CASE WHEN l.last_active_date IS NULL OR l.last_active_date < $1
		            THEN 0 ELSE l.streak_current END AS effective_streak,
		       l.streak_best,
		       (SELECT COUNT(DISTINCT qc.completed_at::date)
		        FROM quest_completions qc
		        WHERE qc.user_id = u.id AND qc.completed_at >= $2) AS active_days_last_7d,
		       l.last_active_date,
		       (SELECT MAX(qc.completed_at)
		        FROM quest_completions qc
		        WHERE qc.user_id = u.id) AS last_active_at
		FROM users u
		JOIN ledgers l ON l.user_id = u.id
		ORDER BY effective_streak DESC, l.streak_best DESC,
		         active_days_last_7d DESC, last_active_at DESC NULLS LAST,
		         u.id ASC
		LIMIT $3
	`, ghostThreshold, weekStart, BoardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	defer rows.Close()

	var roster []*ranking.RosterEntry
	for rows.Next() {
		var e ranking.RosterEntry
		err := rows.Scan(&e.UserID, &e.Name, &e.EffectiveStreak, &e.StreakBest,
			&e.ActiveDaysLast7d, &e.LastActiveDate, &e.LastActiveAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		e.Status = ranking.StatusFor(e.LastActiveDate, now)
		roster = append(roster, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ranking.Sort(roster)
	return roster, nil
}

// fetchUserStats reads one user's live row. A user without a ledger yet still
// gets a zero-valued entry so the merge always has a viewer row to place.
func (s *LeaderboardService) fetchUserStats(ctx context.Context, userID uuid.UUID, now time.Time) (*ranking.RosterEntry, error) {
	weekStart := clock.WeekStart(clock.DateOf(now))

	var e ranking.RosterEntry
	err := s.db.QueryRow(ctx, `
		SELECT u.id, u.name, l.streak_current, l.streak_best,
		       (SELECT COUNT(DISTINCT qc.completed_at::date)
		        FROM quest_completions qc
		        WHERE qc.user_id = u.id AND qc.completed_at >= $2) AS active_days_last_7d,
		       l.last_active_date,
		       (SELECT MAX(qc.completed_at)
		        FROM quest_completions qc
		        WHERE qc.user_id = u.id) AS last_active_at
		FROM users u
		JOIN ledgers l ON l.user_id = u.id
		WHERE u.id = $1
	`, userID, weekStart).Scan(&e.UserID, &e.Name, &e.EffectiveStreak, &e.StreakBest,
		&e.ActiveDaysLast7d, &e.LastActiveDate, &e.LastActiveAt)
	if err == pgx.ErrNoRows {
		var name string
		if err := s.db.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, userID).Scan(&name); err != nil {
			if err == pgx.ErrNoRows {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return &ranking.RosterEntry{UserID: userID, Name: name, Status: ranking.StatusCold}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	e.EffectiveStreak = ranking.EffectiveStreak(e.EffectiveStreak, e.LastActiveDate, now)
	e.Status = ranking.StatusFor(e.LastActiveDate, now)
	return &e, nil
}

func formatRow(e *ranking.RosterEntry, badges []badge.Info) leaderboard.Row {
	return leaderboard.Row{
		Rank:             e.Rank,
		User:             leaderboard.RowUser{ID: e.UserID, Name: e.Name},
		Status:           e.Status,
		StreakCurrent:    e.EffectiveStreak,
		StreakBest:       e.StreakBest,
		ActiveDaysLast7d: e.ActiveDaysLast7d,
		LastActiveAt:     e.LastActiveAt,
		BadgeTop:         TopBadge(badges),
	}
}
