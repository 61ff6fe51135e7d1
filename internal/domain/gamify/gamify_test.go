package gamify

import "testing"

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{-50, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{2900, 30},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestXPForLevelRoundTrips(t *testing.T) {
	for level := 1; level <= 40; level++ {
		xp := XPForLevel(level)
		if got := LevelForXP(xp); got != level {
			t.Errorf("LevelForXP(XPForLevel(%d)) = %d", level, got)
		}
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 0},
		{50, 50},
		{99, 99},
		{100, 0},
		{175, 75},
		{-10, 0},
	}

	for _, tt := range tests {
		if got := ProgressPercent(tt.xp); got != tt.want {
			t.Errorf("ProgressPercent(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestBeltForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{1, "White"},
		{2, "White"},
		{3, "Yellow"},
		{7, "Orange"},
		{12, "Blue"},
		{30, "Black"},
		{99, "Black"},
	}

	for _, tt := range tests {
		if got := BeltForLevel(tt.level); got != tt.want {
			t.Errorf("BeltForLevel(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
