package service

import (
	"context"
	"testing"
	"time"

	"lingo_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedScenario(t *testing.T, env *testEnv) (*model.User, time.Time) {
	t.Helper()
	svc := env.progressService()
	user := env.createUser(t, "a@example.com")
	ex := env.createExercise(t, model.ExerciseGrammar, 1)
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{day, day.Add(6 * time.Hour), day.AddDate(0, 0, 1), day.AddDate(0, 0, 5)} {
		env.clock.Set(at)
		_, err := svc.RecordProgress(context.Background(), user.ID, grammarSubmission(ex.ID, 80))
		require.NoError(t, err)
	}
	return user, day
}

func TestGetStats_AfterScenario(t *testing.T) {
	env := newTestEnv(t)
	user, _ := seedScenario(t, env)

	stats, err := env.statsService().GetStats(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, user.ID, stats.User.ID)
	assert.Equal(t, 80, stats.XP.Total)
	assert.Equal(t, 1, stats.Level.Overall)
	assert.Equal(t, 80, stats.XP.CurrentLevelXP)
	assert.Equal(t, 250, stats.XP.RequiredForNextLevel)
	assert.Equal(t, 32, stats.XP.Percentage)
	assert.Equal(t, 80, stats.Skills.XP.Grammar)
	assert.Equal(t, 1, stats.Streaks.Current)
	assert.Equal(t, 2, stats.Streaks.Longest)

	assert.Equal(t, model.ProgressTotals{ExercisesCompleted: 4, TotalTimeSeconds: 800, AverageAccuracy: 80}, stats.Totals)
	assert.Equal(t, []model.DailyActivity{
		{Date: "2026-03-10", ExercisesCompleted: 2, TotalXP: 38, AvgAccuracy: 80},
		{Date: "2026-03-11", ExercisesCompleted: 1, TotalXP: 20, AvgAccuracy: 80},
		{Date: "2026-03-15", ExercisesCompleted: 1, TotalXP: 22, AvgAccuracy: 80},
	}, stats.RecentActivity)
}

func TestGetStats_WindowExcludesOlderDays(t *testing.T) {
	env := newTestEnv(t)
	user, day := seedScenario(t, env)

	env.clock.Set(day.AddDate(0, 0, 7))
	stats, err := env.statsService().GetStats(context.Background(), user.ID)
	require.NoError(t, err)

	require.Len(t, stats.RecentActivity, 2)
	assert.Equal(t, "2026-03-11", stats.RecentActivity[0].Date)
	assert.Equal(t, 4, stats.Totals.ExercisesCompleted)
}

func TestGetStats_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	user, _ := seedScenario(t, env)
	svc := env.statsService()

	first, err := svc.GetStats(context.Background(), user.ID)
	require.NoError(t, err)
	second, err := svc.GetStats(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetStats_NewUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "new@example.com")

	stats, err := env.statsService().GetStats(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.XP.Total)
	assert.Equal(t, 1, stats.Level.Overall)
	assert.Equal(t, model.ProgressTotals{}, stats.Totals)
	assert.NotNil(t, stats.RecentActivity)
	assert.Empty(t, stats.RecentActivity)
	assert.Nil(t, stats.Streaks.LastActiveDate)
}

func TestGetStats_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.statsService().GetStats(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestAggregateDaily(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	records := []model.UserProgress{
		{XPEarned: 10, Accuracy: 50, CompletedAt: time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)},
		{XPEarned: 20, Accuracy: 75, CompletedAt: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)},
		{XPEarned: 30, Accuracy: 100, CompletedAt: time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC)},
	}

	utc := AggregateDaily(records, time.UTC)
	assert.Equal(t, []model.DailyActivity{
		{Date: "2026-03-09", ExercisesCompleted: 1, TotalXP: 30, AvgAccuracy: 100},
		{Date: "2026-03-10", ExercisesCompleted: 2, TotalXP: 30, AvgAccuracy: 63},
	}, utc)

	local := AggregateDaily(records, tokyo)
	assert.Equal(t, []model.DailyActivity{
		{Date: "2026-03-09", ExercisesCompleted: 1, TotalXP: 30, AvgAccuracy: 100},
		{Date: "2026-03-10", ExercisesCompleted: 1, TotalXP: 20, AvgAccuracy: 75},
		{Date: "2026-03-11", ExercisesCompleted: 1, TotalXP: 10, AvgAccuracy: 50},
	}, local)

	assert.Equal(t, utc, AggregateDaily(records, time.UTC))
	assert.Empty(t, AggregateDaily(nil, time.UTC))
}

func TestAggregateTotals(t *testing.T) {
	assert.Equal(t, model.ProgressTotals{}, AggregateTotals(model.ProgressSums{}))
	assert.Equal(t,
		model.ProgressTotals{ExercisesCompleted: 3, TotalTimeSeconds: 420, AverageAccuracy: 67},
		AggregateTotals(model.ProgressSums{Count: 3, TimeSpentSum: 420, AccuracySum: 200}),
	)
}

func TestCoachingData(t *testing.T) {
	env := newTestEnv(t)
	user, _ := seedScenario(t, env)

	data, err := env.statsService().CoachingData(context.Background(), user.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 80, data.Stats.XP.Total)
	require.Len(t, data.ByType, 1)
	assert.Equal(t, 4, data.ByType[0].Count)
	assert.Len(t, data.Recent, 3)
}
