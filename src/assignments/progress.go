package assignments

import (
	"math"

	"git.nurpath.academy/nurpath/portal/src/utils"
)

// Rounds half-up and clamps into [0,100]. NaN becomes 0.
func ClampPercent(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	if v <= 0 {
		return 0
	}
	if v >= 100 {
		return 100
	}
	return utils.IntClamp(0, int(math.Floor(v+0.5)), 100)
}

// Computes progress from catalog numbers alone. An unset or zero lesson count
// means no progress, never a division by zero. Stale data where more lessons
// are complete than exist is clamped to 100.
func DeriveCatalogProgress(lessonCount *int, completedLessons *int) int {
	if lessonCount == nil || *lessonCount <= 0 {
		return 0
	}
	completed := 0
	if completedLessons != nil {
		completed = *completedLessons
	}
	return ClampPercent(100 * float64(completed) / float64(*lessonCount))
}

// The mean progress across all resolved assignments, rounded half-up.
func AggregateProgress(resolved []ResolvedAssignment) int {
	if len(resolved) == 0 {
		return 0
	}

	total := 0
	for _, r := range resolved {
		total += r.Progress
	}
	return ClampPercent(float64(total) / float64(len(resolved)))
}
