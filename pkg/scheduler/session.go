package scheduler

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/avezina/flashdeck/pkg/db"
	"github.com/avezina/flashdeck/pkg/logger"
	"github.com/google/uuid"
)

const (
	// SessionRetention bounds memory: a session older than this (from its
	// start) is swept regardless of activity.
	SessionRetention       = 24 * time.Hour
	SessionSweeperInterval = 10 * time.Minute

	// Hard per-session ceilings on requested batch sizes.
	MaxSessionNewCards    = 20
	MaxSessionReviewCards = 100
)

type Review struct {
	CardID     uuid.UUID `json:"card_id"`
	Rating     Rating    `json:"rating"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

type SessionCard struct {
	ID     uuid.UUID `json:"id"`
	Front  string    `json:"front"`
	Back   string    `json:"back"`
	Status Status    `json:"status"`
}

// session is one in-flight study session. Its mutex serializes review
// submissions, including the card read-modify-write they perform, so two
// double-submitted reviews cannot lose an update.
type session struct {
	mu          sync.Mutex
	id          uuid.UUID
	userID      uuid.UUID
	setID       uuid.UUID
	cards       []SessionCard
	newCards    int
	reviewCards int
	startedAt   time.Time
	completedAt *time.Time
	reviews     []Review
}

type SessionStart struct {
	SessionID   uuid.UUID
	Cards       []SessionCard
	TotalCards  int
	NewCards    int
	ReviewCards int
}

type ReviewResult struct {
	CardID       uuid.UUID
	NextReviewAt time.Time
	IntervalDays int
	EaseFactor   float64
	Repetitions  int
	Status       Status
}

type SessionSummary struct {
	SessionID           uuid.UUID
	StartedAt           time.Time
	CompletedAt         *time.Time
	TotalCards          int
	CardsReviewed       int
	AverageRating       float64
	RatingsDistribution map[Rating]int
	TimeSpentSeconds    int
}

// SessionManager owns the session lifecycle: batch selection at start,
// per-review SM-2 updates and counter increments, summaries, idempotent
// completion, and retention-based garbage collection.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	cards    CardStore
	sets     SetStore
	limits   *DailyLimitTracker
	now      func() time.Time
}

func NewSessionManager(cards CardStore, sets SetStore, limits *DailyLimitTracker, now func() time.Time) *SessionManager {
	if now == nil {
		now = time.Now
	}
	return &SessionManager{
		sessions: make(map[uuid.UUID]*session),
		cards:    cards,
		sets:     sets,
		limits:   limits,
		now:      now,
	}
}

// StartSession reserves a batch of up to min(newLimit, remaining) new cards
// and min(reviewLimit, remaining) due cards, new cards first. Daily counters
// are not touched here; an abandoned session consumes no quota.
func (m *SessionManager) StartSession(ctx context.Context, userID, setID uuid.UUID, newLimit, reviewLimit int) (*SessionStart, error) {
	if newLimit <= 0 || newLimit > MaxSessionNewCards {
		return nil, fmt.Errorf("new cards limit must be 1..%d: %w", MaxSessionNewCards, ErrValidation)
	}
	if reviewLimit <= 0 || reviewLimit > MaxSessionReviewCards {
		return nil, fmt.Errorf("review cards limit must be 1..%d: %w", MaxSessionReviewCards, ErrValidation)
	}

	if err := m.sets.VerifyOwnership(ctx, setID, userID); err != nil {
		return nil, storeError("verify set ownership", err)
	}

	progress, err := m.limits.Progress(ctx, userID)
	if err != nil {
		return nil, storeError("read daily progress", err)
	}
	remaining := RemainingAllowance{
		NewCards: clampRemaining(progress.NewCardsCap - progress.NewCardsToday),
		Reviews:  clampRemaining(progress.ReviewsCap - progress.ReviewsToday),
	}
	if remaining.NewCards == 0 && remaining.Reviews == 0 {
		return nil, &DailyLimitError{
			NewCardsToday: progress.NewCardsToday,
			ReviewsToday:  progress.ReviewsToday,
			NewCardsCap:   progress.NewCardsCap,
			ReviewsCap:    progress.ReviewsCap,
		}
	}

	now := m.now()
	statusNew := db.CardStatusNew

	var selected []SessionCard
	newCount := 0
	if limit := minInt(newLimit, remaining.NewCards); limit > 0 {
		cards, err := m.cards.ListCards(ctx, db.CardFilter{
			UserID: userID,
			SetID:  &setID,
			Status: &statusNew,
		}, db.OrderByCreated, limit)
		if err != nil {
			return nil, storeError("select new cards", err)
		}
		selected = appendSessionCards(selected, cards)
		newCount = len(cards)
	}

	reviewCount := 0
	if limit := minInt(reviewLimit, remaining.Reviews); limit > 0 {
		cards, err := m.cards.ListCards(ctx, db.CardFilter{
			UserID:    userID,
			SetID:     &setID,
			DueBefore: &now,
		}, db.OrderByDue, limit)
		if err != nil {
			return nil, storeError("select review cards", err)
		}
		selected = appendSessionCards(selected, cards)
		reviewCount = len(cards)
	}

	s := &session{
		id:          uuid.New(),
		userID:      userID,
		setID:       setID,
		cards:       selected,
		newCards:    newCount,
		reviewCards: reviewCount,
		startedAt:   now,
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.persist(s)

	return &SessionStart{
		SessionID:   s.id,
		Cards:       selected,
		TotalCards:  len(selected),
		NewCards:    newCount,
		ReviewCards: reviewCount,
	}, nil
}

// SubmitReview applies SM-2 to the card, persists the new scheduling state,
// records the review against the session, and bumps the daily counter for
// whichever kind the card was before the review. A failed card-store write
// leaves both the session and the counters untouched.
func (m *SessionManager) SubmitReview(ctx context.Context, sessionID, cardID uuid.UUID, rating Rating, userID uuid.UUID) (*ReviewResult, error) {
	if !rating.Valid() {
		return nil, fmt.Errorf("rating must be 1..5, got %d: %w", rating, ErrValidation)
	}

	s, err := m.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	card, err := m.cards.GetCard(ctx, cardID, userID)
	if err != nil {
		return nil, storeError("fetch card", err)
	}

	wasNew := card.Status == db.CardStatusNew
	now := m.now()
	Apply(card, rating, now)

	updated, err := m.cards.UpdateCardScheduling(ctx, cardID, userID, db.SchedulingFields{
		Status:       card.Status,
		IntervalDays: card.IntervalDays,
		EaseFactor:   card.EaseFactor,
		Repetitions:  card.Repetitions,
		DueAt:        card.DueAt,
	})
	if err != nil {
		return nil, storeError("persist card scheduling", err)
	}

	s.reviews = append(s.reviews, Review{CardID: cardID, Rating: rating, ReviewedAt: now})

	kind := CountReview
	if wasNew {
		kind = CountNewCard
	}
	if err := m.limits.Increment(ctx, userID, kind); err != nil {
		// The card update is already durable; losing one counter tick only
		// loosens today's cap.
		logger.Error("failed to increment daily counter", "user_id", userID, "kind", kind, "error", err)
	}

	m.persist(s)

	var nextDue time.Time
	if updated.DueAt != nil {
		nextDue = *updated.DueAt
	}
	return &ReviewResult{
		CardID:       updated.ID,
		NextReviewAt: nextDue,
		IntervalDays: updated.IntervalDays,
		EaseFactor:   updated.EaseFactor,
		Repetitions:  updated.Repetitions,
		Status:       Status(updated.Status),
	}, nil
}

// Summary computes the session's aggregates. It works on active sessions
// too: elapsed time then runs to "now" without mutating the session.
func (m *SessionManager) Summary(sessionID, userID uuid.UUID) (*SessionSummary, error) {
	s, err := m.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	distribution := make(map[Rating]int)
	total := 0
	for _, review := range s.reviews {
		distribution[review.Rating]++
		total += int(review.Rating)
	}
	average := 0.0
	if len(s.reviews) > 0 {
		average = float64(total) / float64(len(s.reviews))
	}

	end := m.now()
	if s.completedAt != nil {
		end = *s.completedAt
	}

	return &SessionSummary{
		SessionID:           s.id,
		StartedAt:           s.startedAt,
		CompletedAt:         s.completedAt,
		TotalCards:          len(s.cards),
		CardsReviewed:       len(s.reviews),
		AverageRating:       average,
		RatingsDistribution: distribution,
		TimeSpentSeconds:    int(math.Round(end.Sub(s.startedAt).Seconds())),
	}, nil
}

// Complete marks the session finished. Idempotent: repeat calls keep the
// first completion time.
func (m *SessionManager) Complete(sessionID, userID uuid.UUID) error {
	s, err := m.lookup(sessionID, userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completedAt == nil {
		now := m.now()
		s.completedAt = &now
		m.persist(s)
	}
	return nil
}

func (m *SessionManager) lookup(sessionID, userID uuid.UUID) (*session, error) {
	m.mu.Lock()
	s := m.sessions[sessionID]
	m.mu.Unlock()
	if s == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if s.userID != userID {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrUnauthorized)
	}
	return s, nil
}

func (m *SessionManager) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(SessionSweeperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SweepExpired(m.now())
		}
	}
}

// SweepExpired drops sessions past the retention window, measured from
// startedAt. Completion state does not matter.
func (m *SessionManager) SweepExpired(now time.Time) {
	m.mu.Lock()
	var expired []uuid.UUID
	for id, s := range m.sessions {
		if now.Sub(s.startedAt) > SessionRetention {
			delete(m.sessions, id)
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		if err := deleteSessionRow(id); err != nil {
			logger.Error("failed to delete session row", "session_id", id, "error", err)
		}
	}
}

// persist mirrors the session to the database, best effort. Callers hold the
// session lock or have exclusive access.
func (m *SessionManager) persist(s *session) {
	row, err := buildSessionRow(s)
	if err != nil {
		logger.Error("failed to build session row", "session_id", s.id, "error", err)
		return
	}
	if err := upsertSessionRow(row); err != nil {
		logger.Error("failed to persist session row", "session_id", s.id, "error", err)
	}
}

func appendSessionCards(dst []SessionCard, cards []db.Card) []SessionCard {
	for _, card := range cards {
		dst = append(dst, SessionCard{
			ID:     card.ID,
			Front:  card.Front,
			Back:   card.Back,
			Status: Status(card.Status),
		})
	}
	return dst
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
