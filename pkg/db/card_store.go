package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CardFilter narrows ListCards and CountCards. DueBefore selects started
// cards that have come due; EligibleAt is the study-eligibility predicate
// (status = new OR due_at <= EligibleAt) used by the due-card query.
type CardFilter struct {
	UserID     uuid.UUID
	SetID      *uuid.UUID
	Status     *string
	DueBefore  *time.Time
	EligibleAt *time.Time
}

type CardOrder int

const (
	// OrderByCreated sorts by creation time ascending.
	OrderByCreated CardOrder = iota
	// OrderByDue sorts by due date ascending.
	OrderByDue
	// OrderByEligibility sorts by due date ascending with undated (new)
	// cards last, ties broken by creation time.
	OrderByEligibility
)

type CardStore struct {
	gdb *gorm.DB
}

func NewCardStore(gdb *gorm.DB) *CardStore {
	return &CardStore{gdb: gdb}
}

func (s *CardStore) GetCard(ctx context.Context, cardID, userID uuid.UUID) (*Card, error) {
	var card Card
	err := s.gdb.WithContext(ctx).
		Where("id = ? AND user_id = ?", cardID, userID).
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

// SchedulingFields is the card subset the scheduler is allowed to write.
type SchedulingFields struct {
	Status       string
	IntervalDays int
	EaseFactor   float64
	Repetitions  int
	DueAt        *time.Time
}

func (s *CardStore) UpdateCardScheduling(ctx context.Context, cardID, userID uuid.UUID, fields SchedulingFields) (*Card, error) {
	res := s.gdb.WithContext(ctx).
		Model(&Card{}).
		Where("id = ? AND user_id = ?", cardID, userID).
		Updates(map[string]interface{}{
			"status":        fields.Status,
			"interval_days": fields.IntervalDays,
			"ease_factor":   fields.EaseFactor,
			"repetitions":   fields.Repetitions,
			"due_at":        fields.DueAt,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetCard(ctx, cardID, userID)
}

func (s *CardStore) ListCards(ctx context.Context, filter CardFilter, order CardOrder, limit int) ([]Card, error) {
	query := s.applyFilter(s.gdb.WithContext(ctx).Model(&Card{}), filter)
	switch order {
	case OrderByDue:
		query = query.Order("due_at ASC, created_at ASC")
	case OrderByEligibility:
		query = query.
			Order("CASE WHEN due_at IS NULL THEN 1 ELSE 0 END ASC").
			Order("due_at ASC, created_at ASC")
	default:
		query = query.Order("created_at ASC, id ASC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var cards []Card
	if err := query.Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *CardStore) CountCards(ctx context.Context, filter CardFilter) (int64, error) {
	var count int64
	err := s.applyFilter(s.gdb.WithContext(ctx).Model(&Card{}), filter).Count(&count).Error
	return count, err
}

func (s *CardStore) applyFilter(query *gorm.DB, filter CardFilter) *gorm.DB {
	query = query.Where("user_id = ?", filter.UserID)
	if filter.SetID != nil {
		query = query.Where("set_id = ?", *filter.SetID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueBefore != nil {
		query = query.Where("status <> ? AND due_at <= ?", CardStatusNew, *filter.DueBefore)
	}
	if filter.EligibleAt != nil {
		query = query.Where("status = ? OR due_at <= ?", CardStatusNew, *filter.EligibleAt)
	}
	return query
}
