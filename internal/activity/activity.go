package activity

import (
	"time"

	"github.com/google/uuid"
)

// CompletionEvent is recorded when a user marks a pact done. Rows are
// immutable once written; streak math only ever reads them.
type CompletionEvent struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	PactName    string    `json:"pact_name" db:"pact_name"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// FocusSession is a finished block of focused work. It feeds the heatmap
// but never the streak.
type FocusSession struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	StartedAt       time.Time `json:"started_at" db:"started_at"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
