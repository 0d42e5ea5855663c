package gamification

import (
	"fmt"

	"lingo_backend/internal/model"
)

// LevelProgress describes where a total XP value sits inside its level band.
type LevelProgress struct {
	Level      int `json:"level"`
	CurrentXP  int `json:"currentXP"`
	RequiredXP int `json:"requiredXP"`
	Percentage int `json:"percentage"`
}

// threshold is the cumulative XP needed to go k levels above level 1.
func threshold(base, k int) int {
	return base * k * (k + 1) / 2
}

// levelFor returns 1 plus the number of thresholds xp has reached, so an
// exact threshold value resolves to the higher level.
func levelFor(xp, base, maxLevel int) int {
	if xp < 0 {
		panic(fmt.Sprintf("gamification: negative xp %d", xp))
	}
	level := 1
	for level < maxLevel && xp >= threshold(base, level) {
		level++
	}
	return level
}

// SkillLevel maps a single skill's XP total onto its level.
func (r Rules) SkillLevel(xp int) int {
	return levelFor(xp, r.SkillBaseXP, r.MaxSkillLevel)
}

// CalculateSkillLevels resolves every skill level from its XP total.
func (r Rules) CalculateSkillLevels(skillXP model.SkillSet) model.SkillSet {
	var levels model.SkillSet
	for _, sk := range model.Skills {
		levels.Set(sk, r.SkillLevel(skillXP.Get(sk)))
	}
	return levels
}

// CalculateOverallLevel combines the XP level of totalXP with the weakest
// skill level. Raising any skill can only raise the minimum, so the result is
// monotonic in totalXP and in every skill level.
func (r Rules) CalculateOverallLevel(totalXP int, skillLevels model.SkillSet) int {
	level := levelFor(totalXP, r.OverallBaseXP, r.MaxOverallLevel)

	if weakest := skillLevels.Min(); weakest > 1 {
		level += (weakest - 1) * r.BalanceWeight
	}
	if level > r.MaxOverallLevel {
		level = r.MaxOverallLevel
	}
	return level
}

// LevelProgress reports progress through the XP-only level band of totalXP.
func (r Rules) LevelProgress(totalXP int) LevelProgress {
	level := levelFor(totalXP, r.OverallBaseXP, r.MaxOverallLevel)
	floor := threshold(r.OverallBaseXP, level-1)

	if level >= r.MaxOverallLevel {
		return LevelProgress{
			Level:      level,
			CurrentXP:  totalXP - floor,
			RequiredXP: 0,
			Percentage: 100,
		}
	}

	required := threshold(r.OverallBaseXP, level) - floor
	current := totalXP - floor
	return LevelProgress{
		Level:      level,
		CurrentXP:  current,
		RequiredXP: required,
		Percentage: current * 100 / required,
	}
}
