package services

import (
	"math"
	"math/rand"
)

// XP constants. Signup pays out once when a guest account gets its email;
// naming a dog pays a flat bonus independent of the pick formula.
const (
	SignupBonusXP  = 2000
	NameDogBonusXP = 250
)

// XPThreshold returns the cumulative XP needed to *be* at the given level.
// Levels cost progressively more: 1000, 3000, 6000, ... (triangular scaling).
func XPThreshold(level int64) int64 {
	return 1000 * level * (level + 1) / 2
}

// LevelForXP is the integer inverse of XPThreshold.
func LevelForXP(xp int64) int64 {
	return (int64(math.Sqrt(float64(1+8*(xp/1000)))) - 1) / 2
}

// XPRemainder is the progress within the current level.
func XPRemainder(xp int64) int64 {
	return xp - XPThreshold(LevelForXP(xp))
}

// NextXPTarget is the absolute amount of within-level XP that completes the
// current level, used as the progress-bar denominator.
func NextXPTarget(xp int64) int64 {
	return (LevelForXP(xp) + 1) * 1000
}

// XPIncreaseFromPick converts deliberation time into an XP reward.
// Sub-2-second picks pay a flat 1 to discourage mindless clicking; slower
// picks draw uniformly from [6t, 14t] with t capped at 5 seconds.
func XPIncreaseFromPick(secondsDeliberated float64) int64 {
	t := secondsDeliberated
	if t < 0 {
		t = 0
	}
	if t > 5 {
		t = 5
	}
	if t < 2 {
		return 1
	}
	lo := int64(math.Ceil(6 * t))
	hi := int64(math.Floor(14 * t))
	return lo + rand.Int63n(hi-lo+1)
}
