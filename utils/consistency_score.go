package utils

import "math"

// CalculateConsistencyScore rewards an unbroken streak quadratically, with
// smaller contributions from lifetime activity and focus time.
func CalculateConsistencyScore(currentStreak, totalActiveDays, focusMinutes int) float64 {
	streakScore := math.Pow(float64(currentStreak), 2) * 0.3
	daysScore := float64(totalActiveDays) * 0.05
	focusScore := float64(focusMinutes) * 0.01

	return streakScore + daysScore + focusScore
}
