package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vayungodara/lockin-sub000/internal/activity"
	"github.com/vayungodara/lockin-sub000/internal/dates"
	"github.com/vayungodara/lockin-sub000/internal/heatmap"
	"github.com/vayungodara/lockin-sub000/internal/notification"
	"github.com/vayungodara/lockin-sub000/internal/streak"
	"github.com/vayungodara/lockin-sub000/middleware"
)

// NotificationCreator is the sink the streak engine emits into. Decoupled
// as an interface so the service layer does not depend on delivery.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error)
}

// StreakService owns the cached streak row and the recompute-from-scratch
// path. The cached row is an optimization: whenever it disagrees with a
// replay of the completion history, the replay wins and the row is healed
// in place.
type StreakService struct {
	db       *pgxpool.Pool
	events   *EventService
	notifier NotificationCreator

	sweepStop chan struct{}
	sweepDone chan struct{}
}

func NewStreakService(db *pgxpool.Pool, events *EventService, notifier NotificationCreator) *StreakService {
	return &StreakService{
		db:        db,
		events:    events,
		notifier:  notifier,
		sweepStop: make(chan struct{}),
	}
}

// RecordCompletion inserts the immutable completion event and advances the
// cached streak row in one transaction. The row is locked FOR UPDATE so two
// concurrent completions by the same user serialize instead of both reading
// the same stale streak.
func (s *StreakService) RecordCompletion(ctx context.Context, userID uuid.UUID, pactName string, completedAt time.Time) (streak.State, error) {
	if completedAt.IsZero() {
		return streak.State{}, &streak.InvalidInputError{Field: "completed_at", Reason: "zero timestamp"}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return streak.State{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	event := &activity.CompletionEvent{
		ID:          uuid.New(),
		UserID:      userID,
		PactName:    pactName,
		CompletedAt: completedAt,
	}
	if err := s.events.insertCompletion(ctx, tx, event); err != nil {
		return streak.State{}, err
	}

	state, err := s.lockState(ctx, tx, userID)
	if err != nil {
		return streak.State{}, err
	}

	prev := state.CurrentStreak
	state = streak.Advance(state, dates.UTCDayOf(completedAt))

	if err := s.writeState(ctx, tx, &state); err != nil {
		return streak.State{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return streak.State{}, fmt.Errorf("failed to commit streak update: %w", err)
	}

	// One notification per upward crossing, fired after commit so a
	// rollback can never leave a phantom celebration behind.
	if milestone, ok := streak.MilestoneCrossed(prev, state.CurrentStreak); ok {
		s.fireMilestone(userID, milestone)
	}

	return state, nil
}

// GetStreak recomputes the streak from the raw event history and reconciles
// the cached row against it. Divergence is logged and self-healed, never
// surfaced to the caller.
func (s *StreakService) GetStreak(ctx context.Context, userID uuid.UUID, now time.Time, loc *time.Location) (streak.Result, error) {
	completions, err := s.events.ListCompletions(ctx, userID, time.Time{})
	if err != nil {
		return streak.Result{}, err
	}

	state, found, err := s.getState(ctx, userID)
	if err != nil {
		return streak.Result{}, err
	}

	// A consumed freeze stamps a day that has no completion event behind
	// it. Frozen days are persisted per freeze, so the replay still sees
	// them after later completions move last_activity_date past the
	// freeze; without that the reconcile below would "heal" a legitimately
	// frozen streak away.
	frozen, err := s.listFrozenDays(ctx, userID)
	if err != nil {
		return streak.Result{}, err
	}

	result, err := streak.ComputeWithFreezes(completions, localFrozenDays(frozen, loc), now, loc)
	if err != nil {
		return streak.Result{}, err
	}

	if found && (state.CurrentStreak != result.CurrentStreak || state.LongestStreak != result.LongestStreak) {
		log.Printf("stale streak state for user %s: cached current=%d longest=%d, recomputed current=%d longest=%d",
			userID, state.CurrentStreak, state.LongestStreak, result.CurrentStreak, result.LongestStreak)
		middleware.CountStaleReconciliation()

		state.CurrentStreak = result.CurrentStreak
		if result.LongestStreak > state.LongestStreak {
			state.LongestStreak = result.LongestStreak
		}
		if err := s.healState(ctx, &state); err != nil {
			log.Printf("failed to heal streak state for user %s: %v", userID, err)
		}
	}

	return result, nil
}

// GetHeatmap is read-only and safe to run concurrently for any user.
func (s *StreakService) GetHeatmap(ctx context.Context, userID uuid.UUID, days int, now time.Time, loc *time.Location) ([]heatmap.Day, error) {
	if days < 1 || days > 366 {
		return nil, &streak.InvalidInputError{Field: "days", Reason: "must be between 1 and 366"}
	}

	since := now.AddDate(0, 0, -days)

	completions, err := s.events.ListCompletions(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	sessions, err := s.events.ListFocusSessions(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	focusStarts := make([]time.Time, 0, len(sessions))
	for _, sess := range sessions {
		focusStarts = append(focusStarts, sess.StartedAt)
	}

	return heatmap.Build(completions, focusStarts, days, now, loc), nil
}

func (s *StreakService) CheckAtRisk(ctx context.Context, userID uuid.UUID, now time.Time, loc *time.Location) (streak.RiskResult, error) {
	state, found, err := s.getState(ctx, userID)
	if err != nil {
		return streak.RiskResult{}, err
	}
	if !found {
		return streak.RiskResult{AtRisk: false, Streak: 0}, nil
	}
	return streak.CheckAtRisk(state, now, loc), nil
}

// UseFreeze consumes the weekly freeze inside the same FOR UPDATE
// transaction that read the row, so the quota check and the stamp are one
// atomic step.
func (s *StreakService) UseFreeze(ctx context.Context, userID uuid.UUID, now time.Time) (streak.State, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return streak.State{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	state, err := s.lockState(ctx, tx, userID)
	if err != nil {
		return streak.State{}, err
	}

	updated, err := streak.TryUseFreeze(state, now)
	if err != nil {
		return streak.State{}, err
	}

	if err := s.writeState(ctx, tx, &updated); err != nil {
		return streak.State{}, err
	}

	// The frozen day outlives the weekly quota flag on the streaks row, so
	// record it as its own row for the replay path.
	freezeInsert := `
	INSERT INTO streak_freezes (id, user_id, frozen_day, created_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id, frozen_day) DO NOTHING
	`
	if _, err := tx.Exec(ctx, freezeInsert, uuid.New(), userID, string(updated.LastActivityDate)); err != nil {
		return streak.State{}, fmt.Errorf("failed to record frozen day: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return streak.State{}, fmt.Errorf("failed to commit freeze: %w", err)
	}

	middleware.CountFreezeUsed()

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := s.notifier.CreateNotification(bgCtx, &notification.CreateNotificationRequest{
			UserID:   userID,
			Type:     notification.TypeFreezeUsed,
			Priority: notification.PriorityNormal,
			Title:    "Streak frozen",
			Body:     fmt.Sprintf("Your %d day streak is safe for today.", updated.CurrentStreak),
			Data:     map[string]any{"streak": updated.CurrentStreak},
		})
		if err != nil {
			log.Printf("failed to create freeze notification for user %s: %v", userID, err)
		}
	}()

	return updated, nil
}

func (s *StreakService) fireMilestone(userID uuid.UUID, milestone streak.Milestone) {
	bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.notifier.CreateNotification(bgCtx, &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     notification.TypeStreakMilestone,
		Priority: notification.PriorityHigh,
		Title:    milestone.Title,
		Body:     fmt.Sprintf("You hit a %d day streak. Keep it locked in.", milestone.Days),
		Data:     map[string]any{"days": milestone.Days, "icon": milestone.Icon},
	})
	if err != nil {
		log.Printf("failed to create milestone notification for user %s: %v", userID, err)
	}
}

// lockState upserts the row lazily and locks it for the rest of the
// transaction.
func (s *StreakService) lockState(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (streak.State, error) {
	insert := `
	INSERT INTO streaks (id, user_id, current_streak, longest_streak, last_activity_date, freeze_used_this_week, freeze_last_reset, created_at, updated_at)
	VALUES ($1, $2, 0, 0, NULL, false, NOW(), NOW(), NOW())
	ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insert, uuid.New(), userID); err != nil {
		return streak.State{}, fmt.Errorf("failed to create streak row: %w", err)
	}

	query := `
	SELECT id, user_id, current_streak, longest_streak, last_activity_date, freeze_used_this_week, freeze_last_reset, created_at, updated_at
	FROM streaks
	WHERE user_id = $1
	FOR UPDATE
	`
	state, err := scanState(tx.QueryRow(ctx, query, userID))
	if err != nil {
		return streak.State{}, fmt.Errorf("failed to lock streak row: %w", err)
	}
	return state, nil
}

func (s *StreakService) getState(ctx context.Context, userID uuid.UUID) (streak.State, bool, error) {
	query := `
	SELECT id, user_id, current_streak, longest_streak, last_activity_date, freeze_used_this_week, freeze_last_reset, created_at, updated_at
	FROM streaks
	WHERE user_id = $1
	`
	state, err := scanState(s.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return streak.State{}, false, nil
		}
		return streak.State{}, false, fmt.Errorf("failed to get streak state: %w", err)
	}
	return state, true, nil
}

func (s *StreakService) writeState(ctx context.Context, tx pgx.Tx, state *streak.State) error {
	query := `
	UPDATE streaks
	SET current_streak = $2,
	    longest_streak = $3,
	    last_activity_date = $4,
	    freeze_used_this_week = $5,
	    freeze_last_reset = $6,
	    updated_at = NOW()
	WHERE user_id = $1
	`
	_, err := tx.Exec(ctx, query, state.UserID, state.CurrentStreak, state.LongestStreak,
		nullableDay(state.LastActivityDate), state.FreezeUsedThisWeek, state.FreezeLastReset)
	if err != nil {
		return fmt.Errorf("failed to write streak state: %w", err)
	}
	return nil
}

// healState rewrites only the cached counters. Used by the reconcile path,
// which runs outside any caller transaction.
func (s *StreakService) healState(ctx context.Context, state *streak.State) error {
	query := `
	UPDATE streaks
	SET current_streak = $2, longest_streak = $3, updated_at = NOW()
	WHERE user_id = $1
	`
	_, err := s.db.Exec(ctx, query, state.UserID, state.CurrentStreak, state.LongestStreak)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanState(row rowScanner) (streak.State, error) {
	var state streak.State
	var lastActivity *time.Time

	err := row.Scan(
		&state.ID,
		&state.UserID,
		&state.CurrentStreak,
		&state.LongestStreak,
		&lastActivity,
		&state.FreezeUsedThisWeek,
		&state.FreezeLastReset,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return streak.State{}, err
	}

	if lastActivity != nil {
		state.LastActivityDate = dates.UTCDayOf(*lastActivity)
	}
	return state, nil
}

func nullableDay(d dates.UTCDay) *string {
	if d == "" {
		return nil
	}
	s := string(d)
	return &s
}

func (s *StreakService) listFrozenDays(ctx context.Context, userID uuid.UUID) ([]dates.UTCDay, error) {
	query := `
	SELECT frozen_day
	FROM streak_freezes
	WHERE user_id = $1
	ORDER BY frozen_day
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list frozen days: %w", err)
	}
	defer rows.Close()

	var days []dates.UTCDay
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan frozen day: %w", err)
		}
		days = append(days, dates.UTCDayOf(day))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating frozen days: %w", err)
	}
	return days, nil
}

// Frozen days are stamped in the UTC frame; the replay runs in the
// caller's local frame. Noon UTC keeps the conversion from shifting a day.
func localFrozenDays(frozen []dates.UTCDay, loc *time.Location) []dates.LocalDay {
	out := make([]dates.LocalDay, 0, len(frozen))
	for _, day := range frozen {
		ts, err := day.Time()
		if err != nil {
			continue
		}
		out = append(out, dates.LocalDayOf(ts.Add(12*time.Hour), loc))
	}
	return out
}
