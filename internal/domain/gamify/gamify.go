// Package gamify holds the experience/level/belt arithmetic. Level and belt
// are deterministic functions of XP; nothing here is persisted beyond the
// XP scalar itself.
package gamify

// xpPerLevel is the flat cost of each level.
const xpPerLevel = 100

// belts in ascending rank order; the last belt absorbs all higher levels.
var belts = []struct {
	name     string
	minLevel int
}{
	{"White", 1},
	{"Yellow", 3},
	{"Orange", 5},
	{"Green", 8},
	{"Blue", 12},
	{"Purple", 17},
	{"Brown", 23},
	{"Black", 30},
}

// LevelForXP returns the level for an XP total. Levels start at 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/xpPerLevel + 1
}

// XPForLevel returns the XP threshold at which the given level begins.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * xpPerLevel
}

// ProgressPercent returns how far (0-100) the XP total is into its level.
func ProgressPercent(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp % xpPerLevel * 100 / xpPerLevel
}

// BeltForLevel returns the belt rank for a level.
func BeltForLevel(level int) string {
	belt := belts[0].name
	for _, b := range belts {
		if level >= b.minLevel {
			belt = b.name
		}
	}
	return belt
}

// BeltForXP is a convenience composition of LevelForXP and BeltForLevel.
func BeltForXP(xp int) string {
	return BeltForLevel(LevelForXP(xp))
}
