package dates

import (
	"testing"
	"time"
)

func TestLocalDayAndUTCDayDisagreeAcrossBoundary(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	// 23:30 UTC on Jan 1 is already Jan 2 in Tokyo.
	ts := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)

	if got := UTCDayOf(ts); got != "2024-01-01" {
		t.Errorf("UTCDayOf = %s, want 2024-01-01", got)
	}
	if got := LocalDayOf(ts, tokyo); got != "2024-01-02" {
		t.Errorf("LocalDayOf(Tokyo) = %s, want 2024-01-02", got)
	}
}

func TestSameDayTimestampsFormatIdentically(t *testing.T) {
	morning := time.Date(2024, 3, 15, 0, 0, 1, 0, time.UTC)
	night := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)

	if UTCDayOf(morning) != UTCDayOf(night) {
		t.Errorf("same UTC day formatted differently: %s vs %s", UTCDayOf(morning), UTCDayOf(night))
	}
	if LocalDayOf(morning, time.UTC) != LocalDayOf(night, time.UTC) {
		t.Error("same local day formatted differently")
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		day  LocalDay
		n    int
		want LocalDay
	}{
		{"2024-01-03", -1, "2024-01-02"},
		{"2024-01-01", -1, "2023-12-31"},
		{"2024-02-28", 1, "2024-02-29"}, // leap year
		{"2023-02-28", 1, "2023-03-01"},
		{"2024-01-01", 0, "2024-01-01"},
	}

	for _, tt := range tests {
		if got := tt.day.AddDays(tt.n); got != tt.want {
			t.Errorf("%s.AddDays(%d) = %s, want %s", tt.day, tt.n, got, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b LocalDay
		want int
	}{
		{"2024-01-01", "2024-01-02", 1},
		{"2024-01-02", "2024-01-01", -1},
		{"2024-01-01", "2024-01-01", 0},
		{"2023-12-31", "2024-01-01", 1},
		{"2024-01-01", "2024-12-31", 365}, // leap year
	}

	for _, tt := range tests {
		if got := DaysBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	bad := []string{"", "2024-1-1", "01-02-2024", "2024-13-01", "not a date", "2024-01-32"}
	for _, s := range bad {
		if _, err := ParseLocalDay(s); err == nil {
			t.Errorf("ParseLocalDay(%q) accepted malformed input", s)
		}
		if _, err := ParseUTCDay(s); err == nil {
			t.Errorf("ParseUTCDay(%q) accepted malformed input", s)
		}
	}

	if _, err := ParseUTCDay("2024-01-31"); err != nil {
		t.Errorf("ParseUTCDay rejected valid day: %v", err)
	}
}
