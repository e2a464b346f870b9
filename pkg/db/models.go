// pkg/db/models.go
package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Card scheduling statuses. Stored as plain strings; the scheduler package
// owns the typed constants.
const (
	CardStatusNew        = "new"
	CardStatusLearning   = "learning"
	CardStatusReview     = "review"
	CardStatusRelearning = "relearning"
)

type Card struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SetID        uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index;index:idx_cards_user_due"`
	Front        string    `gorm:"not null"`
	Back         string    `gorm:"not null"`
	Status       string    `gorm:"not null;default:new;index"`
	IntervalDays int       `gorm:"not null;default:0"`
	EaseFactor   float64   `gorm:"not null;default:2.5"`
	Repetitions  int       `gorm:"not null;default:0"`
	DueAt        *time.Time `gorm:"index:idx_cards_user_due"` // nil while status is new
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CardSet struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StudySessionRow mirrors an in-memory study session so that an operator can
// inspect sessions and expired ones can be reaped after a restart. The
// in-memory table stays authoritative.
type StudySessionRow struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	SetID       uuid.UUID      `gorm:"type:uuid;not null"`
	CardIDs     datatypes.JSON `gorm:"not null"`
	Reviews     datatypes.JSON `gorm:"not null"`
	StartedAt   time.Time      `gorm:"not null"`
	CompletedAt *time.Time
	ExpiresAt   time.Time `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (StudySessionRow) TableName() string {
	return "study_sessions"
}
