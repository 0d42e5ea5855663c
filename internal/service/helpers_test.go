package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lingo_backend/internal/gamification"
	"lingo_backend/internal/model"
	"lingo_backend/internal/repository"
	"lingo_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	users     *repository.UserRepository
	exercises *repository.ExerciseRepository
	progress  *repository.ProgressRepository
	rules     *gamification.RuleSet
	clock     *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Set(t time.Time) { c.now = t }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &testEnv{
		db:        db,
		users:     repository.NewUserRepository(db),
		exercises: repository.NewExerciseRepository(db),
		progress:  repository.NewProgressRepository(db),
		rules:     gamification.NewRuleSet(gamification.DefaultRules()),
		clock:     &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
	}
}

func (e *testEnv) progressService() *ProgressService {
	s := NewProgressService(e.users, e.exercises, repository.NewStatsCache(nil, 0), e.rules, 5*time.Second)
	s.Now = e.clock.Now
	return s
}

func (e *testEnv) statsService() *StatsService {
	s := NewStatsService(e.users, e.progress, repository.NewStatsCache(nil, 0), e.rules, 7)
	s.Now = e.clock.Now
	return s
}

func (e *testEnv) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := model.NewUser("Learner", email, "hash")
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) createExercise(t *testing.T, typ model.ExerciseType, requiredLevel int) *model.Exercise {
	t.Helper()
	ex := &model.Exercise{
		Type:                 typ,
		Title:                fmt.Sprintf("%s drill", typ),
		Difficulty:           model.DifficultyMedium,
		RequiredOverallLevel: requiredLevel,
		IsActive:             true,
	}
	require.NoError(t, e.exercises.Create(context.Background(), ex))
	return ex
}

func (e *testEnv) reloadUser(t *testing.T, id string) *model.User {
	t.Helper()
	user, err := e.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	return user
}

func (e *testEnv) recordCount(t *testing.T, userID string) int64 {
	t.Helper()
	n, err := e.progress.CountByUser(context.Background(), userID)
	require.NoError(t, err)
	return n
}
