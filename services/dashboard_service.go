package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"questForgeAPI/internal/cache"
	"questForgeAPI/internal/clock"
	"questForgeAPI/internal/types/badge"
	"questForgeAPI/internal/types/dashboard"
	"questForgeAPI/internal/types/habit"
	"questForgeAPI/internal/types/quest"
	"questForgeAPI/internal/types/timeblock"
	"questForgeAPI/utils"
)

// DashboardService composes the dashboard page from the other services. Each
// section is cached per user per reference-timezone day; a completion or edit
// busts exactly the sections it changes, so the common case is a page built
// entirely from cache hits.
type DashboardService struct {
	store        *cache.Store
	userSvc      *UserService
	questSvc     *QuestService
	habitSvc     *HabitService
	journalSvc   *JournalService
	timeblockSvc *TimeBlockService
	boardSvc     *LeaderboardService
	badgeSvc     *BadgeService
}

func NewDashboardService(
	store *cache.Store,
	userSvc *UserService,
	questSvc *QuestService,
	habitSvc *HabitService,
	journalSvc *JournalService,
	timeblockSvc *TimeBlockService,
	boardSvc *LeaderboardService,
	badgeSvc *BadgeService,
) *DashboardService {
	return &DashboardService{
		store:        store,
		userSvc:      userSvc,
		questSvc:     questSvc,
		habitSvc:     habitSvc,
		journalSvc:   journalSvc,
		timeblockSvc: timeblockSvc,
		boardSvc:     boardSvc,
		badgeSvc:     badgeSvc,
	}
}

func (s *DashboardService) GetDashboardSummary(ctx context.Context, userID uuid.UUID) (*dashboard.Summary, error) {
	today := clock.Today()

	var profile dashboard.Profile
	err := s.store.Remember(ctx, cache.NavProfileKey(userID), cache.DailyTTL, &profile, func() (any, error) {
		led, err := s.userSvc.GetLedger(ctx, userID)
		if err != nil {
			return nil, err
		}
		return dashboard.Profile{
			XPTotal:       led.XPTotal,
			CoinBalance:   led.CoinBalance,
			StreakCurrent: led.StreakCurrent,
			StreakBest:    led.StreakBest,
			Level:         utils.CalculateLevel(led.XPTotal),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var habits []habit.DayStatus
	err = s.store.Remember(ctx, cache.DashboardHabitsKey(userID, today), cache.DailyTTL, &habits, func() (any, error) {
		return s.habitSvc.DayStatuses(ctx, userID, today)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}

	var quests []quest.Quest
	err = s.store.Remember(ctx, cache.DashboardQuestsKey(userID, today), cache.DailyTTL, &quests, func() (any, error) {
		return s.questSvc.ListActiveQuests(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load quests: %w", err)
	}

	var blocks []timeblock.TimeBlock
	err = s.store.Remember(ctx, cache.DashboardTimeblocksKey(userID, today), cache.DailyTTL, &blocks, func() (any, error) {
		return s.timeblockSvc.BlocksForDay(ctx, userID, today)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load time blocks: %w", err)
	}

	var journalDone bool
	err = s.store.Remember(ctx, cache.DashboardJournalDoneKey(userID, today), cache.DailyTTL, &journalDone, func() (any, error) {
		return s.journalSvc.HasEntryForToday(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load journal state: %w", err)
	}

	snippet, err := s.boardSvc.Snippet(ctx, userID)
	if err != nil {
		return nil, err
	}

	var topBadge *badge.Info
	err = s.store.Remember(ctx, cache.TopBadgeKey(userID), cache.DailyTTL, &topBadge, func() (any, error) {
		return s.badgeSvc.LatestBadge(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load top badge: %w", err)
	}

	summary := &dashboard.Summary{
		Profile:            profile,
		Today:              clock.DayKey(today),
		JournalTodayExists: journalDone,
		Habits:             habits,
		ActiveQuests:       quests,
		TodayBlocks:        blocks,
		Leaderboard:        *snippet,
		TopBadge:           topBadge,
	}
	summary.HabitSummary.Total = len(habits)
	for _, h := range habits {
		if h.DoneToday {
			summary.HabitSummary.DoneToday++
		}
	}
	return summary, nil
}
