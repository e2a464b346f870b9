package db

import (
	"context"
	"time"

	"github.com/avezina/flashdeck/pkg/logger"
)

const SessionCleanupInterval = time.Hour

// CleanupExpiredSessions deletes persisted session rows whose retention
// window has passed. Returns the number of rows removed.
func CleanupExpiredSessions(now time.Time) (int64, error) {
	if DB == nil {
		return 0, nil
	}
	res := DB.Where("expires_at <= ?", now).Delete(&StudySessionRow{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func StartSessionCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = SessionCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := CleanupExpiredSessions(time.Now().UTC()); err != nil {
				logger.Error("failed to cleanup expired sessions", "error", err)
			}
		}
	}
}
