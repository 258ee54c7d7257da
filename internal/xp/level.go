package xp

import "math"

// LevelCoef scales the level curve: XP required = 500 * level^1.5.
const LevelCoef = 500.0

// XPRequiredForLevel returns the total XP needed to reach level. Level 0
// requires nothing.
func XPRequiredForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	// ceil keeps float error from lowering a threshold.
	return int(math.Ceil(LevelCoef * math.Pow(float64(level), 1.5)))
}

// LevelForTotalXP returns the highest level whose threshold total reaches.
func LevelForTotalXP(total int) int {
	if total <= 0 {
		return 0
	}
	low, high := 0, 1
	for XPRequiredForLevel(high) <= total {
		low = high
		high *= 2
		if high > 1_000_000 {
			break
		}
	}
	for low+1 < high {
		mid := low + (high-low)/2
		if XPRequiredForLevel(mid) <= total {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}

// Progress reports XP earned inside the current level and the size of that
// level's band, for progress bars.
func Progress(total int) (into, span int) {
	level := LevelForTotalXP(total)
	floor := XPRequiredForLevel(level)
	next := XPRequiredForLevel(level + 1)
	if total < 0 {
		return 0, next
	}
	return total - floor, next - floor
}
