// Package gamification holds the pure rules that turn a completed exercise
// into XP, skill levels, an overall level and a streak update.
//
// Nothing here performs I/O. All tuning lives in Rules so it can come from
// configuration and be swapped at runtime through a RuleSet.
package gamification

import (
	"fmt"
	"sync/atomic"
	"time"

	"lingo_backend/internal/config"
	"lingo_backend/internal/model"
)

// Rules is the full set of product-tuning parameters.
type Rules struct {
	BaseXP                map[model.ExerciseType]int
	SpeedTargetSeconds    map[model.ExerciseType]int
	AccuracyBonusRatio    float64
	SpeedBonusMax         int
	SpeedBonusMinAccuracy float64
	StreakBonusPerDay     int
	StreakBonusCapDays    int

	SkillBaseXP     int
	MaxSkillLevel   int
	OverallBaseXP   int
	MaxOverallLevel int
	BalanceWeight   int

	FallbackSkill model.Skill
	Location      *time.Location
}

const defaultSpeedTargetSeconds = 300

// DefaultRules returns the tuning shipped in configs/config.yaml.
func DefaultRules() Rules {
	return Rules{
		BaseXP: map[model.ExerciseType]int{
			model.ExerciseGrammar:    10,
			model.ExerciseVocabulary: 10,
			model.ExerciseListening:  12,
			model.ExerciseReading:    12,
			model.ExerciseSpeaking:   15,
			model.ExerciseWriting:    15,
		},
		SpeedTargetSeconds: map[model.ExerciseType]int{
			model.ExerciseGrammar:    180,
			model.ExerciseVocabulary: 300,
			model.ExerciseListening:  300,
			model.ExerciseReading:    360,
			model.ExerciseSpeaking:   300,
			model.ExerciseWriting:    720,
		},
		AccuracyBonusRatio:    1.0,
		SpeedBonusMax:         5,
		SpeedBonusMinAccuracy: 60,
		StreakBonusPerDay:     2,
		StreakBonusCapDays:    7,
		SkillBaseXP:           100,
		MaxSkillLevel:         10,
		OverallBaseXP:         250,
		MaxOverallLevel:       100,
		BalanceWeight:         1,
		FallbackSkill:         model.SkillGrammar,
		Location:              time.UTC,
	}
}

// RulesFromConfig overlays the configured values on DefaultRules. Zero values
// in the config keep the defaults.
func RulesFromConfig(cfg config.GamificationConfig) (Rules, error) {
	r := DefaultRules()

	for name, v := range cfg.XP.Base {
		t, err := model.ParseExerciseType(name)
		if err != nil {
			return Rules{}, fmt.Errorf("gamification.xp.base: %w", err)
		}
		r.BaseXP[t] = v
	}
	for name, v := range cfg.XP.SpeedTargetSeconds {
		t, err := model.ParseExerciseType(name)
		if err != nil {
			return Rules{}, fmt.Errorf("gamification.xp.speed_target_seconds: %w", err)
		}
		r.SpeedTargetSeconds[t] = v
	}

	if cfg.XP.AccuracyBonusRatio > 0 {
		r.AccuracyBonusRatio = cfg.XP.AccuracyBonusRatio
	}
	if cfg.XP.SpeedBonusMax > 0 {
		r.SpeedBonusMax = cfg.XP.SpeedBonusMax
	}
	if cfg.XP.SpeedBonusMinAccuracy > 0 {
		r.SpeedBonusMinAccuracy = cfg.XP.SpeedBonusMinAccuracy
	}
	if cfg.XP.StreakBonusPerDay > 0 {
		r.StreakBonusPerDay = cfg.XP.StreakBonusPerDay
	}
	if cfg.XP.StreakBonusCapDays > 0 {
		r.StreakBonusCapDays = cfg.XP.StreakBonusCapDays
	}
	if cfg.Level.SkillBaseXP > 0 {
		r.SkillBaseXP = cfg.Level.SkillBaseXP
	}
	if cfg.Level.MaxSkillLevel > 0 {
		r.MaxSkillLevel = cfg.Level.MaxSkillLevel
	}
	if cfg.Level.OverallBaseXP > 0 {
		r.OverallBaseXP = cfg.Level.OverallBaseXP
	}
	if cfg.Level.MaxOverallLevel > 0 {
		r.MaxOverallLevel = cfg.Level.MaxOverallLevel
	}
	if cfg.Level.BalanceWeight > 0 {
		r.BalanceWeight = cfg.Level.BalanceWeight
	}

	if cfg.Defaults.FallbackSkill != "" {
		sk, err := model.ParseSkill(cfg.Defaults.FallbackSkill)
		if err != nil {
			return Rules{}, fmt.Errorf("gamification.defaults.fallback_skill: %w", err)
		}
		r.FallbackSkill = sk
	}

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return Rules{}, fmt.Errorf("gamification.timezone: %w", err)
		}
		r.Location = loc
	}

	return r, r.Validate()
}

// Validate rejects tunings that would break the monotonicity of the rules.
func (r Rules) Validate() error {
	for t, v := range r.BaseXP {
		if v < 0 {
			return fmt.Errorf("base xp for %s must not be negative", t)
		}
	}
	if r.AccuracyBonusRatio < 0 {
		return fmt.Errorf("accuracy bonus ratio must not be negative")
	}
	if r.SpeedBonusMax < 0 || r.StreakBonusPerDay < 0 || r.StreakBonusCapDays < 0 {
		return fmt.Errorf("bonus parameters must not be negative")
	}
	if r.SkillBaseXP <= 0 || r.OverallBaseXP <= 0 {
		return fmt.Errorf("level base xp must be positive")
	}
	if r.MaxSkillLevel < 1 || r.MaxOverallLevel < 1 {
		return fmt.Errorf("max levels must be at least 1")
	}
	if r.BalanceWeight < 0 {
		return fmt.Errorf("balance weight must not be negative")
	}
	if r.Location == nil {
		return fmt.Errorf("location is required")
	}
	return nil
}

// RuleSet holds the active Rules and allows replacing them while requests run.
type RuleSet struct {
	current atomic.Pointer[Rules]
}

func NewRuleSet(r Rules) *RuleSet {
	rs := &RuleSet{}
	rs.Store(r)
	return rs
}

func (rs *RuleSet) Load() Rules {
	return *rs.current.Load()
}

func (rs *RuleSet) Store(r Rules) {
	rs.current.Store(&r)
}
