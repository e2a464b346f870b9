package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/avezina/flashdeck/pkg/db"
	"github.com/google/uuid"
)

type fakeCardStore struct {
	mu         sync.Mutex
	cards      map[uuid.UUID]*db.Card
	failUpdate bool
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: make(map[uuid.UUID]*db.Card)}
}

func (s *fakeCardStore) add(card db.Card) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	copied := card
	s.cards[card.ID] = &copied
	return card.ID
}

func (s *fakeCardStore) GetCard(_ context.Context, cardID, userID uuid.UUID) (*db.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[cardID]
	if !ok || card.UserID != userID {
		return nil, db.ErrNotFound
	}
	copied := *card
	return &copied, nil
}

func (s *fakeCardStore) UpdateCardScheduling(_ context.Context, cardID, userID uuid.UUID, fields db.SchedulingFields) (*db.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate {
		return nil, errors.New("write failed")
	}
	card, ok := s.cards[cardID]
	if !ok || card.UserID != userID {
		return nil, db.ErrNotFound
	}
	card.Status = fields.Status
	card.IntervalDays = fields.IntervalDays
	card.EaseFactor = fields.EaseFactor
	card.Repetitions = fields.Repetitions
	card.DueAt = fields.DueAt
	copied := *card
	return &copied, nil
}

func (s *fakeCardStore) ListCards(_ context.Context, filter db.CardFilter, order db.CardOrder, limit int) ([]db.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []db.Card
	for _, card := range s.cards {
		if s.matches(card, filter) {
			matched = append(matched, *card)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch order {
		case db.OrderByDue:
			if !dueOf(a).Equal(dueOf(b)) {
				return dueOf(a).Before(dueOf(b))
			}
		case db.OrderByEligibility:
			if (a.DueAt == nil) != (b.DueAt == nil) {
				return b.DueAt == nil // undated cards sort last
			}
			if a.DueAt != nil && !a.DueAt.Equal(*b.DueAt) {
				return a.DueAt.Before(*b.DueAt)
			}
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *fakeCardStore) CountCards(ctx context.Context, filter db.CardFilter) (int64, error) {
	cards, err := s.ListCards(ctx, filter, db.OrderByCreated, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(cards)), nil
}

func (s *fakeCardStore) matches(card *db.Card, filter db.CardFilter) bool {
	if card.UserID != filter.UserID {
		return false
	}
	if filter.SetID != nil && card.SetID != *filter.SetID {
		return false
	}
	if filter.Status != nil && card.Status != *filter.Status {
		return false
	}
	if filter.DueBefore != nil {
		if card.Status == db.CardStatusNew || card.DueAt == nil || card.DueAt.After(*filter.DueBefore) {
			return false
		}
	}
	if filter.EligibleAt != nil {
		due := card.DueAt != nil && !card.DueAt.After(*filter.EligibleAt)
		if card.Status != db.CardStatusNew && !due {
			return false
		}
	}
	return true
}

func dueOf(card db.Card) time.Time {
	if card.DueAt == nil {
		return time.Time{}
	}
	return *card.DueAt
}

type fakeSetStore struct {
	owners map[uuid.UUID]uuid.UUID
}

func newFakeSetStore() *fakeSetStore {
	return &fakeSetStore{owners: make(map[uuid.UUID]uuid.UUID)}
}

func (s *fakeSetStore) addSet(userID uuid.UUID) uuid.UUID {
	setID := uuid.New()
	s.owners[setID] = userID
	return setID
}

func (s *fakeSetStore) VerifyOwnership(_ context.Context, setID, userID uuid.UUID) error {
	owner, ok := s.owners[setID]
	if !ok || owner != userID {
		return db.ErrNotFound
	}
	return nil
}
