package streak

import (
	"errors"
	"testing"
	"time"

	"github.com/vayungodara/lockin-sub000/internal/dates"
)

func riskState(current int, lastActivity dates.UTCDay) State {
	return State{
		CurrentStreak:    current,
		LongestStreak:    current,
		LastActivityDate: lastActivity,
		FreezeLastReset:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCheckAtRiskToday(t *testing.T) {
	now := time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC)
	state := riskState(5, "2024-06-10")

	res := CheckAtRisk(state, now, time.UTC)
	if res.AtRisk {
		t.Error("completed today should never be at risk")
	}
	if res.Streak != 5 {
		t.Errorf("Streak = %d, want 5", res.Streak)
	}
}

func TestCheckAtRiskHourBoundary(t *testing.T) {
	state := riskState(5, "2024-06-09")

	before := time.Date(2024, 6, 10, 17, 59, 0, 0, time.UTC)
	if res := CheckAtRisk(state, before, time.UTC); res.AtRisk {
		t.Error("17:59 should not be at risk yet")
	}

	after := time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)
	res := CheckAtRisk(state, after, time.UTC)
	if !res.AtRisk {
		t.Error("18:00 with yesterday's activity should be at risk")
	}
	if res.Streak != 5 {
		t.Errorf("Streak = %d, want 5", res.Streak)
	}
	if !res.FreezeAvailable {
		t.Error("unused freeze should be available")
	}
}

func TestCheckAtRiskBrokenIsNotAtRisk(t *testing.T) {
	// Two days without activity is a dead streak, not a salvageable one.
	// Reporting it as at-risk would let the user freeze nothing.
	state := riskState(5, "2024-06-08")

	for _, hour := range []int{0, 12, 23} {
		now := time.Date(2024, 6, 10, hour, 0, 0, 0, time.UTC)
		res := CheckAtRisk(state, now, time.UTC)
		if res.AtRisk {
			t.Errorf("hour %d: broken streak reported as at risk", hour)
		}
		if res.Streak != 0 {
			t.Errorf("hour %d: Streak = %d, want 0 for broken streak", hour, res.Streak)
		}
	}
}

func TestCheckAtRiskZeroStreakNeverAtRisk(t *testing.T) {
	state := riskState(0, "2024-06-09")
	now := time.Date(2024, 6, 10, 22, 0, 0, 0, time.UTC)

	if res := CheckAtRisk(state, now, time.UTC); res.AtRisk {
		t.Error("zero streak cannot be at risk")
	}
}

func TestCheckAtRiskUsesLocalClockForThreshold(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	state := riskState(3, "2024-06-09")

	// 10:00 UTC is 19:00 in Tokyo: past the threshold there, not in UTC.
	now := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	if res := CheckAtRisk(state, now, tokyo); !res.AtRisk {
		t.Error("19:00 Tokyo wall clock should be at risk")
	}
	if res := CheckAtRisk(state, now, time.UTC); res.AtRisk {
		t.Error("10:00 UTC wall clock should not be at risk")
	}
}

func TestTryUseFreezeStampsTodayWithoutCompletion(t *testing.T) {
	now := time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC)
	state := riskState(5, "2024-06-09")

	updated, err := TryUseFreeze(state, now)
	if err != nil {
		t.Fatalf("TryUseFreeze failed: %v", err)
	}
	if updated.LastActivityDate != "2024-06-10" {
		t.Errorf("LastActivityDate = %s, want 2024-06-10", updated.LastActivityDate)
	}
	if updated.CurrentStreak != 5 {
		t.Errorf("CurrentStreak = %d, freeze must preserve it unchanged", updated.CurrentStreak)
	}
	if !updated.FreezeUsedThisWeek {
		t.Error("freeze not marked as used")
	}
}

func TestTryUseFreezeQuotaMonotonic(t *testing.T) {
	now := time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC)
	state := riskState(5, "2024-06-09")

	first, err := TryUseFreeze(state, now)
	if err != nil {
		t.Fatalf("first freeze failed: %v", err)
	}

	// Second attempt three days later, same rolling week.
	later := now.Add(3 * 24 * time.Hour)
	first.LastActivityDate = "2024-06-12"
	if _, err := TryUseFreeze(first, later); !errors.Is(err, ErrFreezeQuotaExceeded) {
		t.Errorf("second freeze in same week: err = %v, want ErrFreezeQuotaExceeded", err)
	}
}

func TestTryUseFreezeQuotaResetsAfterSevenDays(t *testing.T) {
	now := time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC)
	state := riskState(5, "2024-06-09")

	used, err := TryUseFreeze(state, now)
	if err != nil {
		t.Fatalf("first freeze failed: %v", err)
	}

	later := now.Add(FreezeWindow)
	used.LastActivityDate = dates.UTCDayOf(later.Add(-24 * time.Hour))
	if _, err := TryUseFreeze(used, later); err != nil {
		t.Errorf("freeze after quota window: err = %v, want success", err)
	}
}

func TestTryUseFreezeRequiresActiveStreak(t *testing.T) {
	now := time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC)
	state := riskState(0, "2024-06-01")

	if _, err := TryUseFreeze(state, now); !errors.Is(err, ErrNoActiveStreak) {
		t.Errorf("err = %v, want ErrNoActiveStreak", err)
	}
}

func TestTryUseFreezeDoesNotMutateInput(t *testing.T) {
	now := time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC)
	state := riskState(5, "2024-06-09")
	before := state

	if _, err := TryUseFreeze(state, now); err != nil {
		t.Fatalf("TryUseFreeze failed: %v", err)
	}
	if state != before {
		t.Error("TryUseFreeze mutated its input state")
	}
}
