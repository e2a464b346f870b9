package scheduler

import (
	"context"
	"time"

	"github.com/avezina/flashdeck/pkg/db"
	"github.com/google/uuid"
)

// DueQuery answers "what can this user study right now". Read-only.
type DueQuery struct {
	cards  CardStore
	limits *DailyLimitTracker
	now    func() time.Time
}

func NewDueQuery(cards CardStore, limits *DailyLimitTracker, now func() time.Time) *DueQuery {
	if now == nil {
		now = time.Now
	}
	return &DueQuery{cards: cards, limits: limits, now: now}
}

type DueCards struct {
	NewCardsAvailable    int
	ReviewCardsAvailable int
	DailyLimits          DailyProgress
	Remaining            RemainingAllowance
	Cards                []SessionCard
}

// GetDueCards counts new and due cards (optionally scoped to one set) and
// lists up to max(newRemaining, reviewsRemaining) eligible cards. Eligibility
// is the OR predicate (status = new OR due_at <= now) under a single
// due-date-ascending order with undated cards last, creation time breaking
// ties.
func (q *DueQuery) GetDueCards(ctx context.Context, userID uuid.UUID, setID *uuid.UUID) (*DueCards, error) {
	now := q.now()
	statusNew := db.CardStatusNew

	newCount, err := q.cards.CountCards(ctx, db.CardFilter{
		UserID: userID,
		SetID:  setID,
		Status: &statusNew,
	})
	if err != nil {
		return nil, storeError("count new cards", err)
	}

	reviewCount, err := q.cards.CountCards(ctx, db.CardFilter{
		UserID:    userID,
		SetID:     setID,
		DueBefore: &now,
	})
	if err != nil {
		return nil, storeError("count due cards", err)
	}

	progress, err := q.limits.Progress(ctx, userID)
	if err != nil {
		return nil, storeError("read daily progress", err)
	}
	remaining := RemainingAllowance{
		NewCards: clampRemaining(progress.NewCardsCap - progress.NewCardsToday),
		Reviews:  clampRemaining(progress.ReviewsCap - progress.ReviewsToday),
	}

	var eligible []SessionCard
	if limit := maxInt(remaining.NewCards, remaining.Reviews); limit > 0 {
		cards, err := q.cards.ListCards(ctx, db.CardFilter{
			UserID:     userID,
			SetID:      setID,
			EligibleAt: &now,
		}, db.OrderByEligibility, limit)
		if err != nil {
			return nil, storeError("list eligible cards", err)
		}
		eligible = appendSessionCards(eligible, cards)
	}

	return &DueCards{
		NewCardsAvailable:    int(newCount),
		ReviewCardsAvailable: int(reviewCount),
		DailyLimits:          progress,
		Remaining:            remaining,
		Cards:                eligible,
	}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
