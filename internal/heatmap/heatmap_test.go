package heatmap

import (
	"testing"
	"time"
)

var now = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func at(d, hour int) time.Time {
	return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
}

func TestBuildWindowLengthInvariant(t *testing.T) {
	for _, days := range []int{1, 7, 14, 90, 365} {
		series := Build(nil, nil, days, now, time.UTC)
		if len(series) != days {
			t.Errorf("Build(nil, nil, %d) returned %d entries", days, len(series))
		}
		for _, d := range series {
			if d.Count != 0 || d.Level != 0 {
				t.Errorf("empty events should zero-fill, got %+v", d)
			}
		}
	}
}

func TestBuildRejectsNonPositiveWindow(t *testing.T) {
	if Build(nil, nil, 0, now, time.UTC) != nil {
		t.Error("days=0 should yield nil")
	}
	if Build(nil, nil, -5, now, time.UTC) != nil {
		t.Error("negative days should yield nil")
	}
}

func TestBuildWindowBoundsAndOrder(t *testing.T) {
	series := Build(nil, nil, 14, now, time.UTC)

	if series[0].Date != "2024-02-26" {
		t.Errorf("oldest entry = %s, want 2024-02-26", series[0].Date)
	}
	if series[13].Date != "2024-03-10" {
		t.Errorf("newest entry = %s, want 2024-03-10 (today)", series[13].Date)
	}
	for i := 1; i < len(series); i++ {
		if series[i].Date <= series[i-1].Date {
			t.Errorf("series not ascending at index %d", i)
		}
	}
}

func TestBuildWeightsCompletionsOverFocus(t *testing.T) {
	completions := []time.Time{at(10, 9)}
	focus := []time.Time{at(10, 11)}

	series := Build(completions, focus, 1, now, time.UTC)
	if series[0].Count != 3 {
		t.Errorf("1 completion + 1 focus = %d, want 3 (2 + 1)", series[0].Count)
	}
}

func TestBuildIgnoresEventsOutsideWindow(t *testing.T) {
	completions := []time.Time{
		at(1, 9),  // before the 3-day window
		at(10, 9), // today
	}

	series := Build(completions, nil, 3, now, time.UTC)
	total := 0
	for _, d := range series {
		total += d.Count
	}
	if total != 2 {
		t.Errorf("window total = %d, want 2 (only today's completion)", total)
	}
}

func TestLevelThresholds(t *testing.T) {
	tests := []struct {
		count, want int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
		{5, 3},
		{6, 4},
		{11, 4},
	}

	for _, tt := range tests {
		if got := levelFor(tt.count); got != tt.want {
			t.Errorf("levelFor(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestBuildLevelsFromMixedActivity(t *testing.T) {
	// Day 9: 2 completions + 2 focus = 6 points, level 4.
	// Day 10: 1 focus = 1 point, level 1.
	completions := []time.Time{at(9, 8), at(9, 12)}
	focus := []time.Time{at(9, 14), at(9, 16), at(10, 9)}

	series := Build(completions, focus, 2, now, time.UTC)

	if series[0].Count != 6 || series[0].Level != 4 {
		t.Errorf("day 9 = count %d level %d, want count 6 level 4", series[0].Count, series[0].Level)
	}
	if series[1].Count != 1 || series[1].Level != 1 {
		t.Errorf("day 10 = count %d level %d, want count 1 level 1", series[1].Count, series[1].Level)
	}
}

func TestBuildUsesLocalFrame(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	// 23:00 UTC on Mar 9 is already Mar 10 in Tokyo.
	completions := []time.Time{time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)}

	series := Build(completions, nil, 1, now, tokyo)
	if series[0].Date != "2024-03-11" {
		// now is Mar 11 00:00 Tokyo, so "today" there is the 11th.
		t.Errorf("today in Tokyo = %s, want 2024-03-11", series[0].Date)
	}

	wide := Build(completions, nil, 3, now, tokyo)
	found := false
	for _, d := range wide {
		if d.Date == "2024-03-10" && d.Count == 2 {
			found = true
		}
	}
	if !found {
		t.Error("completion did not land on its Tokyo calendar day")
	}
}
