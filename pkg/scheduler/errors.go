package scheduler

import (
	"errors"
	"fmt"

	"github.com/avezina/flashdeck/pkg/db"
)

// Sentinel errors for the scheduler core. Check with errors.Is.
var (
	ErrNotFound          = errors.New("scheduler: not found")
	ErrUnauthorized      = errors.New("scheduler: unauthorized")
	ErrDailyLimitReached = errors.New("scheduler: daily limit reached")
	ErrValidation        = errors.New("scheduler: invalid input")
	ErrStoreUnavailable  = errors.New("scheduler: store unavailable")
)

// DailyLimitError carries the counts and caps so the caller can render a
// "come back tomorrow" message. Unwraps to ErrDailyLimitReached.
type DailyLimitError struct {
	NewCardsToday int
	ReviewsToday  int
	NewCardsCap   int
	ReviewsCap    int
}

func (e *DailyLimitError) Error() string {
	return fmt.Sprintf("scheduler: daily limit reached (%d/%d new, %d/%d reviews)",
		e.NewCardsToday, e.NewCardsCap, e.ReviewsToday, e.ReviewsCap)
}

func (e *DailyLimitError) Unwrap() error {
	return ErrDailyLimitReached
}

// storeError maps a Card/Set Store failure into the scheduler taxonomy:
// missing rows stay NotFound, everything else is a retryable outage.
func storeError(op string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %v: %w", op, err, ErrStoreUnavailable)
}
