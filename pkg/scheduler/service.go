package scheduler

import "time"

// Service bundles the scheduler components for an embedding application: the
// session manager, the due-card query, and the shared daily limit tracker.
type Service struct {
	Sessions *SessionManager
	Due      *DueQuery
	Limits   *DailyLimitTracker
}

func NewService(cards CardStore, sets SetStore, progress ProgressStore, limits Limits, now func() time.Time) *Service {
	tracker := NewDailyLimitTracker(progress, limits, now)
	return &Service{
		Sessions: NewSessionManager(cards, sets, tracker, now),
		Due:      NewDueQuery(cards, tracker, now),
		Limits:   tracker,
	}
}
