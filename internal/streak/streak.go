package streak

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vayungodara/lockin-sub000/internal/dates"
)

// State is the persisted streak row, one per user. It is a cached
// projection of the completion history: Compute can always rebuild the
// true value from the raw events, and when the two disagree the recomputed
// value wins.
type State struct {
	ID                 uuid.UUID    `json:"id" db:"id"`
	UserID             uuid.UUID    `json:"user_id" db:"user_id"`
	CurrentStreak      int          `json:"current_streak" db:"current_streak"`
	LongestStreak      int          `json:"longest_streak" db:"longest_streak"`
	LastActivityDate   dates.UTCDay `json:"last_activity_date" db:"last_activity_date"`
	FreezeUsedThisWeek bool         `json:"freeze_used_this_week" db:"freeze_used_this_week"`
	FreezeLastReset    time.Time    `json:"freeze_last_reset" db:"freeze_last_reset"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

type Result struct {
	CurrentStreak  int `json:"current_streak"`
	LongestStreak  int `json:"longest_streak"`
	TotalCompleted int `json:"total_completed"`
}

// Compute replays a completion history into a streak result. Days are
// collapsed in the caller's local frame: two completions on the same
// calendar day count once toward streak length but each still counts
// toward TotalCompleted. The current streak only exists when the most
// recent active day is today or yesterday.
func Compute(completions []time.Time, now time.Time, loc *time.Location) (Result, error) {
	return ComputeWithFreezes(completions, nil, now, loc)
}

// ComputeWithFreezes is Compute with frozen days mixed in. A frozen day
// joins the run it sits in, so the days around it stay consecutive, but it
// adds nothing to the run's length: freezing protects a streak, it does
// not grow one. A frozen day that also has a real completion counts as a
// normal active day.
func ComputeWithFreezes(completions []time.Time, frozen []dates.LocalDay, now time.Time, loc *time.Location) (Result, error) {
	if loc == nil {
		loc = time.Local
	}

	res := Result{TotalCompleted: len(completions)}

	counted := make(map[dates.LocalDay]bool, len(completions)+len(frozen))
	for _, ts := range completions {
		if ts.IsZero() {
			return Result{}, &InvalidInputError{Field: "completed_at", Reason: "zero timestamp"}
		}
		counted[dates.LocalDayOf(ts, loc)] = true
	}
	for _, d := range frozen {
		if _, ok := counted[d]; !ok {
			counted[d] = false
		}
	}
	if len(counted) == 0 {
		return res, nil
	}

	days := make([]dates.LocalDay, 0, len(counted))
	for d := range counted {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })

	weight := func(d dates.LocalDay) int {
		if counted[d] {
			return 1
		}
		return 0
	}

	today := dates.LocalDayOf(now, loc)
	yesterday := today.AddDays(-1)

	if days[0] == today || days[0] == yesterday {
		res.CurrentStreak = weight(days[0])
		for i := 1; i < len(days); i++ {
			if dates.DaysBetween(days[i], days[i-1]) != 1 {
				break
			}
			res.CurrentStreak += weight(days[i])
		}
	}

	// Longest run anywhere in history, not just the trailing one.
	longest, run := weight(days[0]), weight(days[0])
	for i := 1; i < len(days); i++ {
		if dates.DaysBetween(days[i], days[i-1]) == 1 {
			run += weight(days[i])
		} else {
			run = weight(days[i])
		}
		if run > longest {
			longest = run
		}
	}
	res.LongestStreak = longest
	if res.CurrentStreak > res.LongestStreak {
		res.LongestStreak = res.CurrentStreak
	}

	return res, nil
}

// Advance moves the cached row forward for a completion on the given UTC
// day. A second completion on the same day is a no-op for the streak, a
// completion the day after the last activity extends it, anything else
// starts over at 1.
func Advance(state State, day dates.UTCDay) State {
	switch {
	case state.LastActivityDate == day:
	case state.LastActivityDate == day.AddDays(-1):
		state.CurrentStreak++
	default:
		state.CurrentStreak = 1
	}
	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}
	state.LastActivityDate = day
	return state
}
