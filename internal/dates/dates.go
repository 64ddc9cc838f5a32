package dates

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// LocalDay is a calendar day in the user's timezone, formatted YYYY-MM-DD.
// UTCDay is a calendar day at the UTC boundary. They are separate types on
// purpose: streak display follows the user's wall clock, background jobs
// follow a single global boundary, and mixing the two frames is the easiest
// way to produce off-by-one-day streak bugs.
type LocalDay string

type UTCDay string

func LocalDayOf(t time.Time, loc *time.Location) LocalDay {
	if loc == nil {
		loc = time.Local
	}
	return LocalDay(t.In(loc).Format(dayLayout))
}

func UTCDayOf(t time.Time) UTCDay {
	return UTCDay(t.UTC().Format(dayLayout))
}

func ParseLocalDay(s string) (LocalDay, error) {
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return LocalDay(s), nil
}

func ParseUTCDay(s string) (UTCDay, error) {
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return UTCDay(s), nil
}

func (d LocalDay) String() string { return string(d) }

func (d UTCDay) String() string { return string(d) }

// Time returns midnight of the day in loc.
func (d LocalDay) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dayLayout, string(d), loc)
}

func (d UTCDay) Time() (time.Time, error) {
	return time.ParseInLocation(dayLayout, string(d), time.UTC)
}

func (d LocalDay) AddDays(n int) LocalDay {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return d
	}
	return LocalDay(t.AddDate(0, 0, n).Format(dayLayout))
}

func (d UTCDay) AddDays(n int) UTCDay {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return d
	}
	return UTCDay(t.AddDate(0, 0, n).Format(dayLayout))
}

// DaysBetween returns b - a in whole calendar days. Both days are parsed at
// UTC midnight so the difference is immune to DST transitions.
func DaysBetween(a, b LocalDay) int {
	return daysBetween(string(a), string(b))
}

func UTCDaysBetween(a, b UTCDay) int {
	return daysBetween(string(a), string(b))
}

func daysBetween(a, b string) int {
	ta, errA := time.Parse(dayLayout, a)
	tb, errB := time.Parse(dayLayout, b)
	if errA != nil || errB != nil {
		return 0
	}
	return int(tb.Sub(ta) / (24 * time.Hour))
}
