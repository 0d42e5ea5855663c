package gamification

import (
	"math"

	"lingo_backend/internal/model"
)

// Breakdown is the XP awarded for one completed exercise.
type Breakdown struct {
	BaseXP        int `json:"baseXP"`
	AccuracyBonus int `json:"accuracyBonus"`
	SpeedBonus    int `json:"speedBonus"`
	StreakBonus   int `json:"streakBonus"`
	TotalXP       int `json:"totalXP"`
}

// CalculateXP computes the award for one exercise. Accuracy is expected in
// [0,100]; callers reject anything else before getting here.
func (r Rules) CalculateXP(t model.ExerciseType, accuracy float64, timeSpentSeconds, streakDays int) Breakdown {
	accuracy = math.Max(0, math.Min(100, accuracy))

	base := r.baseXP(t)
	accuracyBonus := int(math.Floor(float64(base) * r.AccuracyBonusRatio * accuracy / 100))
	speedBonus := r.speedBonus(t, accuracy, timeSpentSeconds, accuracyBonus)
	streakBonus := r.streakBonus(streakDays)

	return Breakdown{
		BaseXP:        base,
		AccuracyBonus: accuracyBonus,
		SpeedBonus:    speedBonus,
		StreakBonus:   streakBonus,
		TotalXP:       base + accuracyBonus + speedBonus + streakBonus,
	}
}

// SkillFor maps an exercise type onto the single skill bucket it feeds.
func (r Rules) SkillFor(t model.ExerciseType) model.Skill {
	switch t {
	case model.ExerciseGrammar:
		return model.SkillGrammar
	case model.ExerciseVocabulary:
		return model.SkillVocabulary
	case model.ExerciseListening:
		return model.SkillListening
	case model.ExerciseSpeaking:
		return model.SkillSpeaking
	case model.ExerciseReading:
		return model.SkillReading
	case model.ExerciseWriting:
		return model.SkillWriting
	default:
		return r.FallbackSkill
	}
}

// CalculateSkillXP returns the per-skill delta for an award: all of it lands
// in exactly one skill.
func (r Rules) CalculateSkillXP(t model.ExerciseType, totalXP int) model.SkillSet {
	var delta model.SkillSet
	delta.Add(r.SkillFor(t), totalXP)
	return delta
}

func (r Rules) baseXP(t model.ExerciseType) int {
	if v, ok := r.BaseXP[t]; ok {
		return v
	}
	return r.BaseXP[model.ExerciseType(r.FallbackSkill)]
}

// speedBonus scales with the share of the target time left over, only for
// sufficiently accurate work, and never exceeds half the accuracy bonus.
func (r Rules) speedBonus(t model.ExerciseType, accuracy float64, timeSpentSeconds, accuracyBonus int) int {
	if timeSpentSeconds <= 0 || accuracy < r.SpeedBonusMinAccuracy {
		return 0
	}

	target := r.SpeedTargetSeconds[t]
	if target <= 0 {
		target = defaultSpeedTargetSeconds
	}
	if timeSpentSeconds >= target {
		return 0
	}

	bonus := r.SpeedBonusMax * (target - timeSpentSeconds) / target
	if limit := accuracyBonus / 2; bonus > limit {
		bonus = limit
	}
	return bonus
}

func (r Rules) streakBonus(streakDays int) int {
	if streakDays <= 0 {
		return 0
	}
	if streakDays > r.StreakBonusCapDays {
		streakDays = r.StreakBonusCapDays
	}
	return streakDays * r.StreakBonusPerDay
}
