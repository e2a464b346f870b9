package scheduler

import (
	"encoding/json"
	"errors"

	"github.com/avezina/flashdeck/pkg/db"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// Session rows mirror the in-memory table for operator visibility and for
// reaping leftovers after a restart. All functions are no-ops without an
// initialized database, so the manager works standalone in tests.

func buildSessionRow(s *session) (*db.StudySessionRow, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}
	cardIDs := make([]uuid.UUID, 0, len(s.cards))
	for _, card := range s.cards {
		cardIDs = append(cardIDs, card.ID)
	}
	rawCards, err := json.Marshal(cardIDs)
	if err != nil {
		return nil, err
	}
	rawReviews, err := json.Marshal(s.reviews)
	if err != nil {
		return nil, err
	}
	return &db.StudySessionRow{
		ID:          s.id,
		UserID:      s.userID,
		SetID:       s.setID,
		CardIDs:     datatypes.JSON(rawCards),
		Reviews:     datatypes.JSON(rawReviews),
		StartedAt:   s.startedAt,
		CompletedAt: s.completedAt,
		ExpiresAt:   s.startedAt.Add(SessionRetention),
	}, nil
}

func upsertSessionRow(row *db.StudySessionRow) error {
	if row == nil || db.DB == nil {
		return nil
	}
	return db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(row).Error
}

func deleteSessionRow(sessionID uuid.UUID) error {
	if db.DB == nil {
		return nil
	}
	return db.DB.Where("id = ?", sessionID).Delete(&db.StudySessionRow{}).Error
}
