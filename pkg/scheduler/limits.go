package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type CountKind string

const (
	CountNewCard CountKind = "new_card"
	CountReview  CountKind = "review"
)

// Day keys use the UTC calendar day. Counters reset lazily: a read or
// increment under a fresh key simply never sees the old day's entry.
const dayKeyLayout = "2006-01-02"

type DayProgress struct {
	NewCardsToday int
	ReviewsToday  int
}

// ProgressStore holds per-user per-day study counters keyed by (user, day).
// Implementations must make Increment atomic per user.
type ProgressStore interface {
	Progress(ctx context.Context, userID uuid.UUID, day string) (DayProgress, error)
	Increment(ctx context.Context, userID uuid.UUID, day string, kind CountKind) error
}

// MemoryProgressStore keeps one entry per user, replaced whenever the day
// key moves on. Single-process deployments only; use the redis-backed store
// from pkg/cache when running more than one replica.
type MemoryProgressStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*memoryProgress
}

type memoryProgress struct {
	day      string
	progress DayProgress
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{entries: make(map[uuid.UUID]*memoryProgress)}
}

func (s *MemoryProgressStore) Progress(_ context.Context, userID uuid.UUID, day string) (DayProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entries[userID]
	if entry == nil || entry.day != day {
		return DayProgress{}, nil
	}
	return entry.progress, nil
}

func (s *MemoryProgressStore) Increment(_ context.Context, userID uuid.UUID, day string, kind CountKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entries[userID]
	if entry == nil || entry.day != day {
		entry = &memoryProgress{day: day}
		s.entries[userID] = entry
	}
	switch kind {
	case CountNewCard:
		entry.progress.NewCardsToday++
	default:
		entry.progress.ReviewsToday++
	}
	return nil
}

// Limits are the per-day ceilings, from configuration.
type Limits struct {
	NewCardsPerDay int
	ReviewsPerDay  int
}

// DailyProgress is the tracker's user-facing view: today's counts plus caps.
type DailyProgress struct {
	NewCardsToday int
	ReviewsToday  int
	NewCardsCap   int
	ReviewsCap    int
}

type RemainingAllowance struct {
	NewCards int
	Reviews  int
}

// DailyLimitTracker reads and bumps per-user daily counters. It only reports
// state; rejecting work when a limit is exhausted is the session manager's
// call.
type DailyLimitTracker struct {
	store  ProgressStore
	limits Limits
	now    func() time.Time
}

func NewDailyLimitTracker(store ProgressStore, limits Limits, now func() time.Time) *DailyLimitTracker {
	if now == nil {
		now = time.Now
	}
	return &DailyLimitTracker{store: store, limits: limits, now: now}
}

func (t *DailyLimitTracker) Caps() Limits {
	return t.limits
}

func (t *DailyLimitTracker) Progress(ctx context.Context, userID uuid.UUID) (DailyProgress, error) {
	day, err := t.store.Progress(ctx, userID, t.dayKey())
	if err != nil {
		return DailyProgress{}, err
	}
	return DailyProgress{
		NewCardsToday: day.NewCardsToday,
		ReviewsToday:  day.ReviewsToday,
		NewCardsCap:   t.limits.NewCardsPerDay,
		ReviewsCap:    t.limits.ReviewsPerDay,
	}, nil
}

func (t *DailyLimitTracker) Remaining(ctx context.Context, userID uuid.UUID) (RemainingAllowance, error) {
	progress, err := t.Progress(ctx, userID)
	if err != nil {
		return RemainingAllowance{}, err
	}
	return RemainingAllowance{
		NewCards: clampRemaining(progress.NewCardsCap - progress.NewCardsToday),
		Reviews:  clampRemaining(progress.ReviewsCap - progress.ReviewsToday),
	}, nil
}

func (t *DailyLimitTracker) Increment(ctx context.Context, userID uuid.UUID, kind CountKind) error {
	return t.store.Increment(ctx, userID, t.dayKey(), kind)
}

func (t *DailyLimitTracker) dayKey() string {
	return t.now().UTC().Format(dayKeyLayout)
}

func clampRemaining(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
