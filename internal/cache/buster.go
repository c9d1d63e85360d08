package cache

import (
	"context"
	"log"

	"github.com/google/uuid"

	"questForgeAPI/internal/clock"
)

// Buster groups the invalidation rules for mutation events. Invalidation
// failures are logged and swallowed: a stale entry degrades to extra latency
// at worst, and the surrounding request must not fail because of it.
type Buster struct {
	store *Store
}

func NewBuster(store *Store) *Buster {
	return &Buster{store: store}
}

// OnCompletion runs after any user completes a quest. The global roster can
// shift for everyone, so today's roster and badge lookups go, plus the acting
// user's own derived snippets.
func (b *Buster) OnCompletion(ctx context.Context, userID uuid.UUID) {
	today := clock.Today()
	b.forget(ctx,
		RosterKey(today),
		RosterBadgesKey(today),
		TopBadgeKey(userID),
		NavProfileKey(userID),
		DashboardQuestsKey(userID, today),
	)
}

// OnQuestChange runs when a user's quest list mutates (create/update/reorder/delete).
func (b *Buster) OnQuestChange(ctx context.Context, userID uuid.UUID) {
	b.forget(ctx, DashboardQuestsKey(userID, clock.Today()))
}

// OnHabitChange runs when a habit or habit entry mutates.
func (b *Buster) OnHabitChange(ctx context.Context, userID uuid.UUID) {
	b.forget(ctx, DashboardHabitsKey(userID, clock.Today()))
}

// OnTimeblockChange runs when the user's schedule for any day mutates.
func (b *Buster) OnTimeblockChange(ctx context.Context, userID uuid.UUID) {
	b.forget(ctx, DashboardTimeblocksKey(userID, clock.Today()))
}

// OnJournalChange runs when a journal entry is written.
func (b *Buster) OnJournalChange(ctx context.Context, userID uuid.UUID) {
	b.forget(ctx, DashboardJournalDoneKey(userID, clock.Today()))
}

// OnLedgerChange runs when xp/coins move outside a completion (purchases).
func (b *Buster) OnLedgerChange(ctx context.Context, userID uuid.UUID) {
	b.forget(ctx, NavProfileKey(userID))
}

func (b *Buster) forget(ctx context.Context, keys ...Key) {
	if err := b.store.Forget(ctx, keys...); err != nil {
		log.Printf("cache invalidation failed: %v", err)
	}
}
