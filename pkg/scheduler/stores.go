package scheduler

import (
	"context"

	"github.com/avezina/flashdeck/pkg/db"
	"github.com/google/uuid"
)

// CardStore is the card persistence boundary. All lookups are scoped to a
// user; a card belonging to someone else reads as db.ErrNotFound.
type CardStore interface {
	GetCard(ctx context.Context, cardID, userID uuid.UUID) (*db.Card, error)
	UpdateCardScheduling(ctx context.Context, cardID, userID uuid.UUID, fields db.SchedulingFields) (*db.Card, error)
	ListCards(ctx context.Context, filter db.CardFilter, order db.CardOrder, limit int) ([]db.Card, error)
	CountCards(ctx context.Context, filter db.CardFilter) (int64, error)
}

// SetStore answers ownership checks for card sets.
type SetStore interface {
	VerifyOwnership(ctx context.Context, setID, userID uuid.UUID) error
}
