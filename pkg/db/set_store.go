package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SetStore struct {
	gdb *gorm.DB
}

func NewSetStore(gdb *gorm.DB) *SetStore {
	return &SetStore{gdb: gdb}
}

// VerifyOwnership reports ErrNotFound both for a missing set and for a set
// owned by another user, so callers cannot probe for foreign sets.
func (s *SetStore) VerifyOwnership(ctx context.Context, setID, userID uuid.UUID) error {
	var count int64
	err := s.gdb.WithContext(ctx).
		Model(&CardSet{}).
		Where("id = ? AND user_id = ?", setID, userID).
		Count(&count).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
