package streak

import "testing"

func TestMilestoneCrossedFiresOnExactThreshold(t *testing.T) {
	m, ok := MilestoneCrossed(6, 7)
	if !ok {
		t.Fatal("6 -> 7 should cross the first milestone")
	}
	if m.Days != 7 {
		t.Errorf("Days = %d, want 7", m.Days)
	}
}

func TestMilestoneCrossedIdempotentOnSameValue(t *testing.T) {
	if _, ok := MilestoneCrossed(7, 7); ok {
		t.Error("re-evaluating the same streak value must not re-fire")
	}
}

func TestMilestoneCrossedTable(t *testing.T) {
	tests := []struct {
		prev, current int
		wantDays      int
		wantFired     bool
	}{
		{0, 1, 0, false},
		{13, 14, 14, true},
		{29, 30, 30, true},
		{30, 31, 0, false},
		{179, 180, 180, true},
		{364, 365, 365, true},
		{7, 6, 0, false},   // streak shrank
		{14, 14, 0, false}, // no transition
		{0, 7, 7, true},    // backfill jump straight onto a milestone
	}

	for _, tt := range tests {
		m, fired := MilestoneCrossed(tt.prev, tt.current)
		if fired != tt.wantFired {
			t.Errorf("MilestoneCrossed(%d, %d) fired = %v, want %v", tt.prev, tt.current, fired, tt.wantFired)
			continue
		}
		if fired && m.Days != tt.wantDays {
			t.Errorf("MilestoneCrossed(%d, %d) days = %d, want %d", tt.prev, tt.current, m.Days, tt.wantDays)
		}
	}
}

func TestMilestonesCatalogAscending(t *testing.T) {
	catalog := Milestones()
	if len(catalog) != 7 {
		t.Fatalf("catalog size = %d, want 7", len(catalog))
	}
	for i := 1; i < len(catalog); i++ {
		if catalog[i].Days <= catalog[i-1].Days {
			t.Errorf("catalog not ascending at index %d", i)
		}
	}
	for _, m := range catalog {
		if m.Title == "" {
			t.Errorf("milestone %d has no title", m.Days)
		}
	}
}
