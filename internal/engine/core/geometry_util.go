package core

// Abs, Min and Max are small exported integer helpers for packages outside
// core (the movement package uses Abs for its straight-line check).

func Abs(x int) int { return abs(x) }

func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
