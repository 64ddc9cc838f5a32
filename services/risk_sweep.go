package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/vayungodara/lockin-sub000/internal/notification"
	"github.com/vayungodara/lockin-sub000/internal/streak"
)

// Background sweep over all streak rows. It runs entirely in the UTC frame
// so every user crosses the same boundary at the same instant; the
// user-facing recompute in GetStreak stays authoritative regardless of how
// far behind this sweep is.

// StartRiskSweepJob ticks hourly: it zeroes rows whose streak is already
// broken and warns users whose streak dies at the next UTC midnight.
// StopRiskSweepJob quiesces the goroutine during shutdown.
func (s *StreakService) StartRiskSweepJob() {
	s.sweepDone = make(chan struct{})
	ticker := time.NewTicker(1 * time.Hour)

	go func() {
		defer close(s.sweepDone)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runSweep()
			case <-s.sweepStop:
				return
			}
		}
	}()
}

// StopRiskSweepJob stops the sweep and waits for an in-flight pass to
// finish.
func (s *StreakService) StopRiskSweepJob() {
	close(s.sweepStop)
	if s.sweepDone != nil {
		<-s.sweepDone
	}
}

func (s *StreakService) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.SweepBrokenStreaks(ctx); err != nil {
		log.Printf("risk sweep: reset failed: %v", err)
	}
	if err := s.SweepAtRiskStreaks(ctx, time.Now()); err != nil {
		log.Printf("risk sweep: warnings failed: %v", err)
	}
}

// SweepBrokenStreaks resets cached rows that went more than one full day
// without activity. Longest streak is untouched, it is a lifetime record.
func (s *StreakService) SweepBrokenStreaks(ctx context.Context) error {
	query := `
	UPDATE streaks
	SET current_streak = 0, updated_at = NOW()
	WHERE current_streak > 0
	  AND last_activity_date < (NOW() AT TIME ZONE 'UTC')::date - 1
	`

	result, err := s.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to reset broken streaks: %w", err)
	}

	if rows := result.RowsAffected(); rows > 0 {
		log.Printf("risk sweep: reset %d broken streaks", rows)
	}
	return nil
}

// SweepAtRiskStreaks emits one streak_risk notification per user per day,
// once the risk hour has passed. The NOT EXISTS guard keeps re-runs of the
// sweep idempotent.
func (s *StreakService) SweepAtRiskStreaks(ctx context.Context, now time.Time) error {
	if now.UTC().Hour() < streak.RiskHourLocal {
		return nil
	}

	query := `
	SELECT st.user_id, st.current_streak
	FROM streaks st
	WHERE st.current_streak > 0
	  AND st.last_activity_date = (NOW() AT TIME ZONE 'UTC')::date - 1
	  AND NOT EXISTS (
	      SELECT 1 FROM notifications n
	      WHERE n.user_id = st.user_id
	        AND n.type = 'streak_risk'
	        AND n.created_at >= (NOW() AT TIME ZONE 'UTC')::date
	  )
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to find at-risk streaks: %w", err)
	}
	defer rows.Close()

	type atRisk struct {
		userID uuid.UUID
		days   int
	}
	var users []atRisk
	for rows.Next() {
		var u atRisk
		if err := rows.Scan(&u.userID, &u.days); err != nil {
			return fmt.Errorf("failed to scan at-risk row: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating at-risk rows: %w", err)
	}

	for _, u := range users {
		_, err := s.notifier.CreateNotification(ctx, &notification.CreateNotificationRequest{
			UserID:   u.userID,
			Type:     notification.TypeStreakRisk,
			Priority: notification.PriorityHigh,
			Title:    "Your streak is at risk",
			Body:     fmt.Sprintf("Complete a pact before midnight to keep your %d day streak.", u.days),
			Data:     map[string]any{"streak": u.days},
		})
		if err != nil {
			log.Printf("risk sweep: failed to notify user %s: %v", u.userID, err)
		}
	}

	if len(users) > 0 {
		log.Printf("risk sweep: warned %d users", len(users))
	}
	return nil
}
