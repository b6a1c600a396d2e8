package services

import "testing"

func TestXPThresholdLevelRoundTrip(t *testing.T) {
	for level := int64(0); level <= 50; level++ {
		threshold := XPThreshold(level)
		if got := LevelForXP(threshold); got != level {
			t.Errorf("LevelForXP(XPThreshold(%d)) = %d, want %d", level, got, level)
		}
		if got := XPRemainder(threshold); got != 0 {
			t.Errorf("XPRemainder(XPThreshold(%d)) = %d, want 0", level, got)
		}
	}
}

func TestLevelExamples(t *testing.T) {
	if got := LevelForXP(0); got != 0 {
		t.Errorf("LevelForXP(0) = %d, want 0", got)
	}
	if got := XPThreshold(0); got != 0 {
		t.Errorf("XPThreshold(0) = %d, want 0", got)
	}
	if got := NextXPTarget(0); got != 1000 {
		t.Errorf("NextXPTarget(0) = %d, want 1000", got)
	}

	// 3000 XP is exactly the level-2 threshold.
	if got := LevelForXP(3000); got != 2 {
		t.Errorf("LevelForXP(3000) = %d, want 2", got)
	}
	if got := XPRemainder(3000); got != 0 {
		t.Errorf("XPRemainder(3000) = %d, want 0", got)
	}
	if got := NextXPTarget(3000); got != 3000 {
		t.Errorf("NextXPTarget(3000) = %d, want 3000", got)
	}
}

func TestXPIncreaseFromPickFastClicks(t *testing.T) {
	for _, secs := range []float64{-1, 0, 0.5, 1, 1.99} {
		if got := XPIncreaseFromPick(secs); got != 1 {
			t.Errorf("XPIncreaseFromPick(%v) = %d, want 1", secs, got)
		}
	}
}

func TestXPIncreaseFromPickBounds(t *testing.T) {
	cases := []struct {
		secs    float64
		clamped float64
	}{
		{2, 2},
		{3, 3},
		{4.5, 4.5},
		{5, 5},
		{9, 5}, // clamped to the cap
	}
	for _, tc := range cases {
		lo := int64(6 * tc.clamped)
		hi := int64(14 * tc.clamped)
		for i := 0; i < 200; i++ {
			got := XPIncreaseFromPick(tc.secs)
			if got < lo || got > hi {
				t.Fatalf("XPIncreaseFromPick(%v) = %d, want within [%d, %d]", tc.secs, got, lo, hi)
			}
		}
	}
}
