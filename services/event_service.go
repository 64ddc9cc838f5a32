package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vayungodara/lockin-sub000/internal/activity"
)

// EventService is the raw event store: immutable completion events and
// finished focus sessions. Streak and heatmap math replays these rows and
// never mutates them.
type EventService struct {
	db *pgxpool.Pool
}

func NewEventService(db *pgxpool.Pool) *EventService {
	return &EventService{db: db}
}

// queryRower is satisfied by both the pool and a pgx.Tx, so the streak
// transaction and standalone writes share one insert statement.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *EventService) insertCompletion(ctx context.Context, q queryRower, event *activity.CompletionEvent) error {
	query := `
	INSERT INTO completion_events (id, user_id, pact_name, completed_at, created_at)
	VALUES ($1, $2, $3, $4, NOW())
	RETURNING created_at
	`

	err := q.QueryRow(ctx, query, event.ID, event.UserID, event.PactName, event.CompletedAt).Scan(&event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}
	return nil
}

func (s *EventService) RecordFocusSession(ctx context.Context, userID uuid.UUID, startedAt time.Time, durationMinutes int) (*activity.FocusSession, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}

	session := &activity.FocusSession{
		ID:              uuid.New(),
		UserID:          userID,
		StartedAt:       startedAt,
		DurationMinutes: durationMinutes,
	}

	query := `
	INSERT INTO focus_sessions (id, user_id, started_at, duration_minutes, created_at)
	VALUES ($1, $2, $3, $4, NOW())
	RETURNING created_at
	`

	err := s.db.QueryRow(ctx, query, session.ID, session.UserID, session.StartedAt, session.DurationMinutes).Scan(&session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record focus session: %w", err)
	}

	return session, nil
}

// ListCompletions returns completion timestamps for a user since the given
// time, newest first. A zero `since` returns the full history.
func (s *EventService) ListCompletions(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	query := `
	SELECT completed_at
	FROM completion_events
	WHERE user_id = $1 AND ($2::timestamptz IS NULL OR completed_at >= $2)
	ORDER BY completed_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID, nullableTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	var timestamps []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		timestamps = append(timestamps, ts)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completions: %w", err)
	}

	return timestamps, nil
}

func (s *EventService) ListFocusSessions(ctx context.Context, userID uuid.UUID, since time.Time) ([]*activity.FocusSession, error) {
	query := `
	SELECT id, user_id, started_at, duration_minutes, created_at
	FROM focus_sessions
	WHERE user_id = $1 AND ($2::timestamptz IS NULL OR started_at >= $2)
	ORDER BY started_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID, nullableTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to list focus sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*activity.FocusSession
	for rows.Next() {
		sess := &activity.FocusSession{}
		err := rows.Scan(&sess.ID, &sess.UserID, &sess.StartedAt, &sess.DurationMinutes, &sess.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan focus session: %w", err)
		}
		sessions = append(sessions, sess)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating focus sessions: %w", err)
	}

	if sessions == nil {
		sessions = []*activity.FocusSession{}
	}

	return sessions, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
