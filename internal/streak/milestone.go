package streak

// Milestone is a fixed streak length that earns a one-shot celebratory
// notification. The catalog mirrors the achievements table: a title and
// icon per threshold, keyed by the number of days.
type Milestone struct {
	Days  int    `json:"days"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

var milestones = []Milestone{
	{Days: 7, Title: "One Week Locked In", Icon: "flame"},
	{Days: 14, Title: "Two Week Grind", Icon: "flame"},
	{Days: 30, Title: "Monthly Master", Icon: "medal"},
	{Days: 60, Title: "Sixty Day Machine", Icon: "medal"},
	{Days: 90, Title: "Quarter Conqueror", Icon: "trophy"},
	{Days: 180, Title: "Half Year Hero", Icon: "trophy"},
	{Days: 365, Title: "Full Year Legend", Icon: "crown"},
}

// Milestones returns the full catalog, ascending by days.
func Milestones() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones)
	return out
}

// MilestoneCrossed reports the milestone reached by moving from prev to
// current, if any. It fires only on an upward crossing, so re-evaluating
// the same streak value never re-fires; callers must invoke it once per
// state transition, not once per read.
func MilestoneCrossed(prev, current int) (Milestone, bool) {
	if current <= prev {
		return Milestone{}, false
	}
	for _, m := range milestones {
		if current == m.Days && prev < m.Days {
			return m, true
		}
	}
	return Milestone{}, false
}
