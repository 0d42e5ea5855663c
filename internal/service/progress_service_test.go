package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"lingo_backend/internal/gamification"
	"lingo_backend/internal/model"
	"lingo_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func grammarSubmission(exerciseID string, accuracy float64) RecordProgressRequest {
	return RecordProgressRequest{
		ExerciseID:       exerciseID,
		ExerciseType:     model.ExerciseGrammar,
		Accuracy:         accuracy,
		TimeSpentSeconds: 200,
		QuestionsTotal:   10,
		QuestionsCorrect: 8,
	}
}

func TestRecordProgressRequest_Validate(t *testing.T) {
	valid := grammarSubmission("ex", 80)
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *RecordProgressRequest)
	}{
		{"missing exercise", func(r *RecordProgressRequest) { r.ExerciseID = " " }},
		{"unknown type", func(r *RecordProgressRequest) { r.ExerciseType = "poetry" }},
		{"accuracy above range", func(r *RecordProgressRequest) { r.Accuracy = 101 }},
		{"accuracy below range", func(r *RecordProgressRequest) { r.Accuracy = -1 }},
		{"accuracy NaN", func(r *RecordProgressRequest) { r.Accuracy = math.NaN() }},
		{"negative time", func(r *RecordProgressRequest) { r.TimeSpentSeconds = -5 }},
		{"negative total", func(r *RecordProgressRequest) { r.QuestionsTotal = -1 }},
		{"correct exceeds total", func(r *RecordProgressRequest) { r.QuestionsCorrect = 11 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := grammarSubmission("ex", 80)
			tt.mutate(&req)
			err := req.Validate()
			require.Error(t, err)
			assert.Equal(t, util.KindValidation, util.KindOf(err))
		})
	}
}

func TestRecordProgress_DayScenario(t *testing.T) {
	env := newTestEnv(t)
	svc := env.progressService()
	user := env.createUser(t, "a@example.com")
	ex := env.createExercise(t, model.ExerciseGrammar, 1)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	steps := []struct {
		at      time.Time
		xp      int
		streak  int
		longest int
		outcome string
	}{
		{day, 18, 1, 1, "reset"},
		{day.Add(6 * time.Hour), 20, 1, 1, "hold"},
		{day.AddDate(0, 0, 1), 20, 2, 2, "extend"},
		{day.AddDate(0, 0, 5), 22, 1, 2, "reset"},
	}

	total := 0
	for i, step := range steps {
		env.clock.Set(step.at)
		res, err := svc.RecordProgress(ctx, user.ID, grammarSubmission(ex.ID, 80))
		require.NoError(t, err, "step %d", i)

		total += step.xp
		assert.NotEmpty(t, res.ProgressID)
		assert.Equal(t, step.xp, res.XPEarned, "step %d", i)
		assert.Equal(t, total, res.NewTotalXP, "step %d", i)
		assert.Equal(t, step.streak, res.Streak.Streak, "step %d", i)
		assert.Equal(t, step.longest, res.Streak.Longest, "step %d", i)
		assert.Equal(t, step.outcome, string(res.Streak.Outcome), "step %d", i)
		assert.Equal(t, model.SkillGrammar, res.Skill)
	}

	stored := env.reloadUser(t, user.ID)
	assert.Equal(t, 80, stored.TotalXP)
	assert.Equal(t, 80, stored.GrammarXP)
	assert.Zero(t, stored.VocabularyXP)
	assert.Equal(t, 1, stored.CurrentStreak)
	assert.Equal(t, 2, stored.LongestStreak)
	require.NotNil(t, stored.LastActiveDate)
	assert.True(t, stored.LastActiveDate.Equal(day.AddDate(0, 0, 5).Truncate(24*time.Hour)))
	assert.Equal(t, int64(4), env.recordCount(t, user.ID))
}

func TestRecordProgress_Breakdown(t *testing.T) {
	env := newTestEnv(t)
	svc := env.progressService()
	user := env.createUser(t, "a@example.com")
	ex := env.createExercise(t, model.ExerciseGrammar, 1)

	req := grammarSubmission(ex.ID, 100)
	req.TimeSpentSeconds = 90
	res, err := svc.RecordProgress(context.Background(), user.ID, req)
	require.NoError(t, err)

	assert.Equal(t, 10, res.XPBreakdown.BaseXP)
	assert.Equal(t, 10, res.XPBreakdown.AccuracyBonus)
	assert.Equal(t, 2, res.XPBreakdown.SpeedBonus)
	assert.Zero(t, res.XPBreakdown.StreakBonus)
	assert.Equal(t, 22, res.XPEarned)
}

func TestRecordProgress_RejectsInvalidAccuracyWithoutMutation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.progressService()
	user := env.createUser(t, "a@example.com")
	ex := env.createExercise(t, model.ExerciseGrammar, 1)

	for _, acc := range []float64{101, -0.5, math.NaN(), math.Inf(1)} {
		_, err := svc.RecordProgress(context.Background(), user.ID, grammarSubmission(ex.ID, acc))
		require.Error(t, err)
		assert.Equal(t, util.KindValidation, util.KindOf(err))
	}

	stored := env.reloadUser(t, user.ID)
	assert.Zero(t, stored.TotalXP)
	assert.Zero(t, stored.CurrentStreak)
	assert.Nil(t, stored.LastActiveDate)
	assert.Zero(t, env.recordCount(t, user.ID))
}

func TestRecordProgress_AccuracyBoundsAccepted(t *testing.T) {
	env := newTestEnv(t)
	svc := env.progressService()
	user := env.createUser(t, "a@example.com")
	ex := env.createExercise(t, model.ExerciseGrammar, 1)

	low, err := svc.RecordProgress(context.Background(), user.ID, grammarSubmission(ex.ID, 0))
	require.NoError(t, err)
	assert.Zero(t, low.XPBreakdown.AccuracyBonus)
	assert.Zero(t, low.XPBreakdown.SpeedBonus)

	_, err = svc.RecordProgress(context.Background(), user.ID, grammarSubmission(ex.ID, 100))
	require.NoError(t, err)
}

func TestRecordProgress_NotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := env.progressService()
	user := env.createUser(t, "a@example.com")
	ex := env.createExercise(t, model.ExerciseGrammar, 1)

	_, err := svc.RecordProgress(context.Background(), user.ID, grammarSubmission("missing", 80))
	assert.Equal(t, util.KindNotFound, util.KindOf(err))
	assert.ErrorIs(t, err, util.ErrExerciseNotFound)

	_, err = svc.RecordProgress(context.Background(), "ghost", grammarSubmission(ex.ID, 80))
	assert.Equal(t, util.KindNotFound, util.KindOf(err))
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestRecordProgress_TypeMismatch(t *testing.T) {
	env := newTestEnv(t)
	svc := env.progressService()
	user := env.createUser(t, "a@example.com")
	ex := env.createExercise(t, model.ExerciseReading, 1)

	_, err := svc.RecordProgress(context.Background(), user.ID, grammarSubmission(ex.ID, 80))
	assert.Equal(t, util.KindValidation, util.KindOf(err))
	assert.Zero(t, env.recordCount(t, user.ID))
}

func TestRecordProgress_AtomicOnFailedWrites(t *testing.T) {
	tests := []struct {
		name     string
		register func(db *gorm.DB) error
		remove   func(db *gorm.DB) error
	}{
		{
			name: "progress insert fails",
			register: func(db *gorm.DB) error {
				return db.Callback().Create().Before("gorm:create").Register("test:fail", func(tx *gorm.DB) {
					if tx.Statement.Table == "user_progress" {
						tx.AddError(errors.New("disk full"))
					}
				})
			},
			remove: func(db *gorm.DB) error { return db.Callback().Create().Remove("test:fail") },
		},
		{
			name: "user update fails",
			register: func(db *gorm.DB) error {
				return db.Callback().Update().Before("gorm:update").Register("test:fail", func(tx *gorm.DB) {
					if tx.Statement.Table == "users" {
						tx.AddError(errors.New("lock wait timeout"))
					}
				})
			},
			remove: func(db *gorm.DB) error { return db.Callback().Update().Remove("test:fail") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			svc := env.progressService()
			user := env.createUser(t, "a@example.com")
			ex := env.createExercise(t, model.ExerciseGrammar, 1)

			_, err := svc.RecordProgress(context.Background(), user.ID, grammarSubmission(ex.ID, 80))
			require.NoError(t, err)
			before := env.reloadUser(t, user.ID)

			require.NoError(t, tt.register(env.db))
			env.clock.Set(env.clock.Now().AddDate(0, 0, 1))
			res, err := svc.RecordProgress(context.Background(), user.ID, grammarSubmission(ex.ID, 90))
			require.NoError(t, tt.remove(env.db))

			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, util.KindInternal, util.KindOf(err))

			after := env.reloadUser(t, user.ID)
			assert.Equal(t, before.TotalXP, after.TotalXP)
			assert.Equal(t, before.GrammarXP, after.GrammarXP)
			assert.Equal(t, before.CurrentStreak, after.CurrentStreak)
			assert.Equal(t, before.Version, after.Version)
			assert.True(t, before.LastActiveDate.Equal(*after.LastActiveDate))
			assert.Equal(t, int64(1), env.recordCount(t, user.ID))
		})
	}
}

func TestRecordProgress_ConcurrentSubmissionsSum(t *testing.T) {
	env := newTestEnv(t)
	svc := env.progressService()
	user := env.createUser(t, "a@example.com")
	ex := env.createExercise(t, model.ExerciseGrammar, 1)

	const n = 12
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		earned int
		errs   []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.RecordProgress(context.Background(), user.ID, grammarSubmission(ex.ID, 80))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			earned += res.XPEarned
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	stored := env.reloadUser(t, user.ID)
	assert.Equal(t, earned, stored.TotalXP)
	assert.Equal(t, earned, stored.GrammarXP)
	assert.Equal(t, n, stored.Version)
	assert.Equal(t, int64(n), env.recordCount(t, user.ID))
}

func TestRecordProgress_Monotonic(t *testing.T) {
	env := newTestEnv(t)
	svc := env.progressService()
	user := env.createUser(t, "a@example.com")

	types := []model.ExerciseType{
		model.ExerciseGrammar, model.ExerciseVocabulary, model.ExerciseReading,
		model.ExerciseWriting, model.ExerciseSpeaking, model.ExerciseListening,
	}
	exercises := make(map[model.ExerciseType]string)
	for _, typ := range types {
		exercises[typ] = env.createExercise(t, typ, 1).ID
	}

	prev := env.reloadUser(t, user.ID)
	for i := 0; i < 60; i++ {
		typ := types[i%len(types)]
		env.clock.Set(env.clock.Now().Add(time.Duration(i%3) * 13 * time.Hour))
		req := RecordProgressRequest{
			ExerciseID:       exercises[typ],
			ExerciseType:     typ,
			Accuracy:         float64((i * 37) % 101),
			TimeSpentSeconds: (i * 53) % 900,
		}
		_, err := svc.RecordProgress(context.Background(), user.ID, req)
		require.NoError(t, err)

		cur := env.reloadUser(t, user.ID)
		assert.GreaterOrEqual(t, cur.TotalXP, prev.TotalXP)
		assert.GreaterOrEqual(t, cur.OverallLevel, prev.OverallLevel)
		assert.GreaterOrEqual(t, cur.LongestStreak, cur.CurrentStreak)
		for _, sk := range model.Skills {
			assert.GreaterOrEqual(t, cur.SkillXP().Get(sk), prev.SkillXP().Get(sk))
			assert.GreaterOrEqual(t, cur.SkillLevels().Get(sk), prev.SkillLevels().Get(sk))
		}
		prev = cur
	}
	assert.Greater(t, prev.OverallLevel, 1)
}

func TestRecordProgress_LevelsNeverDropAfterRetuning(t *testing.T) {
	env := newTestEnv(t)
	svc := env.progressService()
	user := env.createUser(t, "a@example.com")
	ex := env.createExercise(t, model.ExerciseGrammar, 1)

	require.NoError(t, env.db.Model(user).Updates(map[string]interface{}{
		"grammar_level": 5,
		"overall_level": 4,
	}).Error)

	res, err := svc.RecordProgress(context.Background(), user.ID, grammarSubmission(ex.ID, 80))
	require.NoError(t, err)
	assert.Equal(t, 5, res.SkillLevels.Grammar)
	assert.Equal(t, 4, res.NewLevel)
	assert.False(t, res.LeveledUp)
}

func TestApplyCompletion_UsesStoredStreakForBonus(t *testing.T) {
	rules := gamification.DefaultRules()
	last := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	user := model.NewUser("a", "a@example.com", "x")
	user.CurrentStreak = 5
	user.LongestStreak = 5
	user.LastActiveDate = &last

	res := applyCompletion(rules, user, model.ExerciseVocabulary, 50, 0, last.AddDate(0, 0, 1))
	assert.Equal(t, 10, res.XPBreakdown.StreakBonus)
	assert.Equal(t, 6, user.CurrentStreak)
	assert.Equal(t, model.SkillVocabulary, res.Skill)
	assert.Equal(t, res.XPEarned, user.VocabularyXP)
}
