// Package leveling awards XP for chat activity and derives member levels
// from it. Progress is stored in MongoDB through the cached DataManager.
package leveling

// XPForLevel is the XP needed to advance from level n to n+1
func XPForLevel(n int64) int64 {
	return 5*n*n + 50*n + 100
}

// Progress is a member's position on the level curve
type Progress struct {
	Level int64
	// Current is the XP earned inside the current level
	Current int64
	// Needed is the XP the current level requires in total
	Needed int64
}

// ProgressFor walks the curve for a total XP amount
func ProgressFor(total int64) Progress {
	if total < 0 {
		total = 0
	}
	var level int64
	for {
		need := XPForLevel(level)
		if total < need {
			return Progress{Level: level, Current: total, Needed: need}
		}
		total -= need
		level++
	}
}

// TotalXPForLevel is the accumulated XP at which level n starts
func TotalXPForLevel(n int64) int64 {
	var total int64
	for i := int64(0); i < n; i++ {
		total += XPForLevel(i)
	}
	return total
}
