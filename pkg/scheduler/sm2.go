// Package scheduler decides which flashcards are due, runs study sessions,
// and applies the SM-2 spaced-repetition algorithm to per-card memory state.
package scheduler

import (
	"math"
	"time"

	"github.com/avezina/flashdeck/pkg/db"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusLearning   Status = "learning"
	StatusReview     Status = "review"
	StatusRelearning Status = "relearning"
)

// Rating is the recall quality reported after a review, 1 (Again) to 5
// (Perfect). Ratings below 3 count as failures.
type Rating int

const (
	RatingAgain   Rating = 1
	RatingHard    Rating = 2
	RatingGood    Rating = 3
	RatingEasy    Rating = 4
	RatingPerfect Rating = 5
)

func (r Rating) Valid() bool {
	return r >= RatingAgain && r <= RatingPerfect
}

func (r Rating) Success() bool {
	return r >= RatingGood
}

const (
	EaseFloor   = 1.3
	InitialEase = 2.5

	firstIntervalDays  = 1
	secondIntervalDays = 6
)

// Apply runs one SM-2 step against the card's scheduling fields. A failed
// rating resets repetitions and interval and demotes the card to
// learning/relearning; a successful one climbs the 1d, 6d, interval*ease
// ladder. The ease factor only moves on success and never drops below
// EaseFloor. DueAt is set to now + interval in every branch.
//
// Pure state transition: no I/O, persisting the card is the caller's job.
func Apply(card *db.Card, rating Rating, now time.Time) {
	if rating.Success() {
		card.Repetitions++
		card.EaseFactor = nextEase(card.EaseFactor, rating)
		switch {
		case card.Repetitions == 1:
			card.IntervalDays = firstIntervalDays
			card.Status = db.CardStatusLearning
		case card.Repetitions == 2:
			card.IntervalDays = secondIntervalDays
			card.Status = db.CardStatusReview
		default:
			card.IntervalDays = int(math.Round(float64(card.IntervalDays) * card.EaseFactor))
			card.Status = db.CardStatusReview
		}
	} else {
		card.IntervalDays = 0
		card.Repetitions = 0
		if card.Status == db.CardStatusNew {
			card.Status = db.CardStatusLearning
		} else {
			card.Status = db.CardStatusRelearning
		}
	}

	due := now.AddDate(0, 0, card.IntervalDays)
	card.DueAt = &due
}

// nextEase applies the SM-2 ease adjustment
// EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)), floored at EaseFloor.
// Stored rounded to two decimals.
func nextEase(ease float64, rating Rating) float64 {
	q := float64(rating)
	next := ease + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if next < EaseFloor {
		next = EaseFloor
	}
	return math.Round(next*100) / 100
}
