package domain

import "math"

// ComputeProgress derives the completion percentage for a course.
//
// The server's authoritative value wins when present: its view of progress
// may include factors the module list does not expose. Otherwise the
// percentage is the completed-over-total module ratio, rounded to the
// nearest integer. A course with no modules and no authoritative value is
// at 0.
//
// Pure function: same input, same output, no side effects.
func ComputeProgress(c *Course) int {
	if c == nil {
		return 0
	}
	if c.CourseProgress != nil {
		return clampPercent(int(math.Round(*c.CourseProgress)))
	}
	total := len(c.Modules)
	if total == 0 {
		return 0
	}
	return clampPercent(int(math.Round(100 * float64(c.CompletedModules()) / float64(total))))
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
