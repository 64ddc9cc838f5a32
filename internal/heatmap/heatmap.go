package heatmap

import (
	"time"

	"github.com/vayungodara/lockin-sub000/internal/dates"
)

// Day is one cell of the activity heatmap. Derived per request, never
// persisted.
type Day struct {
	Date  dates.LocalDay `json:"date"`
	Count int            `json:"count"`
	Level int            `json:"level"`
}

// Completions outrank focus sessions: finishing the pact is worth two
// points, sitting in a focus session one.
const (
	completionWeight = 2
	focusWeight      = 1
)

// Build produces exactly `days` entries covering [today-days+1, today] in
// the caller's local frame, oldest first, zero-filled where nothing
// happened. days < 1 yields nil.
func Build(completions, focusStarts []time.Time, days int, now time.Time, loc *time.Location) []Day {
	if days < 1 {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	counts := make(map[dates.LocalDay]int)
	for _, ts := range completions {
		counts[dates.LocalDayOf(ts, loc)] += completionWeight
	}
	for _, ts := range focusStarts {
		counts[dates.LocalDayOf(ts, loc)] += focusWeight
	}

	start := dates.LocalDayOf(now, loc).AddDays(-(days - 1))
	out := make([]Day, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDays(i)
		c := counts[d]
		out = append(out, Day{Date: d, Count: c, Level: levelFor(c)})
	}
	return out
}

func levelFor(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count <= 3:
		return 2
	case count <= 5:
		return 3
	default:
		return 4
	}
}
