package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vayungodara/lockin-sub000/internal/dates"
	"github.com/vayungodara/lockin-sub000/internal/streak"
	"github.com/vayungodara/lockin-sub000/services"
	"github.com/vayungodara/lockin-sub000/tests/helpers"
)

// Full flow against a real database: record completions across three
// days, verify the cached row and the from-scratch recompute agree, then
// exercise the freeze path.
func TestStreakFlow(t *testing.T) {
	db := helpers.SetupTestDB(t)
	userID := helpers.NewTestUserID()
	defer helpers.CleanupTestUser(t, db, userID)

	notificationService := services.NewNotificationService(db)
	eventService := services.NewEventService(db)
	streakService := services.NewStreakService(db, eventService, notificationService)

	ctx := context.Background()
	now := time.Now().UTC()

	for i := 2; i >= 0; i-- {
		completedAt := now.AddDate(0, 0, -i)
		if _, err := streakService.RecordCompletion(ctx, userID, "morning run", completedAt); err != nil {
			t.Fatalf("RecordCompletion day -%d failed: %v", i, err)
		}
	}

	state, err := streakService.RecordCompletion(ctx, userID, "evening reading", now)
	if err != nil {
		t.Fatalf("duplicate-day completion failed: %v", err)
	}
	if state.CurrentStreak != 3 {
		t.Errorf("cached CurrentStreak = %d, want 3", state.CurrentStreak)
	}

	result, err := streakService.GetStreak(ctx, userID, now, time.UTC)
	if err != nil {
		t.Fatalf("GetStreak failed: %v", err)
	}
	if result.CurrentStreak != 3 {
		t.Errorf("recomputed CurrentStreak = %d, want 3", result.CurrentStreak)
	}
	if result.TotalCompleted != 4 {
		t.Errorf("TotalCompleted = %d, want 4 (duplicates count individually)", result.TotalCompleted)
	}

	series, err := streakService.GetHeatmap(ctx, userID, 14, now, time.UTC)
	if err != nil {
		t.Fatalf("GetHeatmap failed: %v", err)
	}
	if len(series) != 14 {
		t.Errorf("heatmap length = %d, want 14", len(series))
	}
}

func TestFreezeQuotaAgainstDB(t *testing.T) {
	db := helpers.SetupTestDB(t)
	userID := helpers.NewTestUserID()
	defer helpers.CleanupTestUser(t, db, userID)

	notificationService := services.NewNotificationService(db)
	eventService := services.NewEventService(db)
	streakService := services.NewStreakService(db, eventService, notificationService)

	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := streakService.RecordCompletion(ctx, userID, "deep work", now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}

	if _, err := streakService.UseFreeze(ctx, userID, now); err != nil {
		t.Fatalf("first freeze failed: %v", err)
	}

	_, err := streakService.UseFreeze(ctx, userID, now.Add(time.Hour))
	if !errors.Is(err, streak.ErrFreezeQuotaExceeded) {
		t.Errorf("second freeze: err = %v, want ErrFreezeQuotaExceeded", err)
	}
}

func TestFrozenDaySurvivesLaterCompletion(t *testing.T) {
	db := helpers.SetupTestDB(t)
	userID := helpers.NewTestUserID()
	defer helpers.CleanupTestUser(t, db, userID)

	notificationService := services.NewNotificationService(db)
	eventService := services.NewEventService(db)
	streakService := services.NewStreakService(db, eventService, notificationService)

	ctx := context.Background()
	now := time.Now().UTC()
	yesterday := string(dates.UTCDayOf(now.AddDate(0, 0, -1)))

	// Complete two days ago, then set the row the way yesterday's freeze
	// left it: stamped yesterday, quota consumed, frozen day on record.
	if _, err := streakService.RecordCompletion(ctx, userID, "deep work", now.AddDate(0, 0, -2)); err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}
	if _, err := db.Exec(ctx,
		"UPDATE streaks SET last_activity_date = $2, freeze_used_this_week = true, freeze_last_reset = $3 WHERE user_id = $1",
		userID, yesterday, now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("failed to stamp frozen row: %v", err)
	}
	if _, err := db.Exec(ctx,
		"INSERT INTO streak_freezes (id, user_id, frozen_day, created_at) VALUES ($1, $2, $3, NOW())",
		uuid.New(), userID, yesterday); err != nil {
		t.Fatalf("failed to record frozen day: %v", err)
	}

	// Today's completion moves last_activity_date past the freeze. The
	// replay must still see the frozen day, or the reconcile would rewrite
	// the streak down.
	state, err := streakService.RecordCompletion(ctx, userID, "deep work", now)
	if err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}
	if state.CurrentStreak != 2 {
		t.Fatalf("cached CurrentStreak = %d, want 2", state.CurrentStreak)
	}

	result, err := streakService.GetStreak(ctx, userID, now, time.UTC)
	if err != nil {
		t.Fatalf("GetStreak failed: %v", err)
	}
	if result.CurrentStreak != 2 {
		t.Errorf("recomputed CurrentStreak = %d, want 2 (frozen day bridges the gap)", result.CurrentStreak)
	}

	var cached int
	if err := db.QueryRow(ctx, "SELECT current_streak FROM streaks WHERE user_id = $1", userID).Scan(&cached); err != nil {
		t.Fatalf("failed to read cached row: %v", err)
	}
	if cached != 2 {
		t.Errorf("cached row = %d after GetStreak, want 2 (no false heal)", cached)
	}
}

func TestStaleCacheSelfHeals(t *testing.T) {
	db := helpers.SetupTestDB(t)
	userID := helpers.NewTestUserID()
	defer helpers.CleanupTestUser(t, db, userID)

	notificationService := services.NewNotificationService(db)
	eventService := services.NewEventService(db)
	streakService := services.NewStreakService(db, eventService, notificationService)

	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := streakService.RecordCompletion(ctx, userID, "stretching", now); err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}

	// Corrupt the cached row the way a missed sweep would leave it.
	if _, err := db.Exec(ctx, "UPDATE streaks SET current_streak = 99 WHERE user_id = $1", userID); err != nil {
		t.Fatalf("failed to corrupt streak row: %v", err)
	}

	result, err := streakService.GetStreak(ctx, userID, now, time.UTC)
	if err != nil {
		t.Fatalf("GetStreak failed: %v", err)
	}
	if result.CurrentStreak != 1 {
		t.Errorf("recompute returned %d, want 1 (cached 99 must lose)", result.CurrentStreak)
	}

	var healed int
	if err := db.QueryRow(ctx, "SELECT current_streak FROM streaks WHERE user_id = $1", userID).Scan(&healed); err != nil {
		t.Fatalf("failed to read healed row: %v", err)
	}
	if healed != 1 {
		t.Errorf("cached row = %d after reconcile, want 1", healed)
	}
}
