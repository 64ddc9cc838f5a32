package streak

import (
	"time"

	"github.com/vayungodara/lockin-sub000/internal/dates"
)

// RiskHourLocal is the local wall-clock hour after which a streak with no
// activity today is surfaced as at risk.
const RiskHourLocal = 18

// FreezeWindow is the rolling quota window for streak freezes.
const FreezeWindow = 7 * 24 * time.Hour

type RiskResult struct {
	AtRisk          bool `json:"at_risk"`
	Streak          int  `json:"streak"`
	FreezeAvailable bool `json:"freeze_available"`
}

// CheckAtRisk evaluates the day-boundary state machine for one user.
// Day comparisons run in the UTC frame (the same frame background jobs
// write LastActivityDate in); the 18:00 threshold is the user's wall clock.
//
// A streak whose last activity is older than yesterday is not "at risk",
// it is gone: reporting it as at-risk would let a user freeze a streak
// that no longer exists.
func CheckAtRisk(state State, now time.Time, loc *time.Location) RiskResult {
	if loc == nil {
		loc = time.Local
	}

	today := dates.UTCDayOf(now)
	yesterday := today.AddDays(-1)

	switch state.LastActivityDate {
	case today:
		return RiskResult{AtRisk: false, Streak: state.CurrentStreak}
	case yesterday:
		if state.CurrentStreak > 0 && now.In(loc).Hour() >= RiskHourLocal {
			return RiskResult{
				AtRisk:          true,
				Streak:          state.CurrentStreak,
				FreezeAvailable: freezeAvailable(state, now),
			}
		}
		return RiskResult{AtRisk: false, Streak: state.CurrentStreak}
	default:
		return RiskResult{AtRisk: false, Streak: 0}
	}
}

// TryUseFreeze consumes the weekly freeze and stamps today (UTC) as the
// last activity date without creating a completion event. The input state
// is not mutated; the updated copy is returned for the caller to persist
// in the same transaction it read the row in.
func TryUseFreeze(state State, now time.Time) (State, error) {
	if state.FreezeUsedThisWeek && now.Sub(state.FreezeLastReset) >= FreezeWindow {
		state.FreezeUsedThisWeek = false
	}

	if state.CurrentStreak == 0 {
		return state, ErrNoActiveStreak
	}
	if state.FreezeUsedThisWeek {
		return state, ErrFreezeQuotaExceeded
	}

	state.FreezeUsedThisWeek = true
	state.FreezeLastReset = now
	state.LastActivityDate = dates.UTCDayOf(now)
	state.UpdatedAt = now

	return state, nil
}

func freezeAvailable(state State, now time.Time) bool {
	if !state.FreezeUsedThisWeek {
		return true
	}
	return now.Sub(state.FreezeLastReset) >= FreezeWindow
}
