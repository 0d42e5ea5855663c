package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lingo_backend/internal/gamification"
	"lingo_backend/internal/model"
	"lingo_backend/internal/repository"
	"lingo_backend/pkg/database"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingo_backend/pkg/monitoring"
)

func TestSnapshot(t *testing.T) {
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	lastActive := []*time.Time{&today, &today, ptr(today.AddDate(0, 0, -1)), ptr(today.AddDate(0, 0, -3)), nil}
	for i, last := range lastActive {
		u := model.NewUser("u", fmt.Sprintf("u%d@example.com", i), "x")
		u.LastActiveDate = last
		require.NoError(t, users.Create(context.Background(), u))
	}

	s := New(users, gamification.NewRuleSet(gamification.DefaultRules()), time.Minute)
	s.now = func() time.Time { return now }

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ActivitySnapshot{ActiveToday: 2, AtRisk: 1}, snap)

	s.refreshActivity()
	assert.Equal(t, float64(2), testutil.ToFloat64(monitoring.ActiveLearners))
	assert.Equal(t, float64(1), testutil.ToFloat64(monitoring.StreaksAtRisk))
}

func TestStartStop(t *testing.T) {
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	s := New(repository.NewUserRepository(db), gamification.NewRuleSet(gamification.DefaultRules()), 0)
	assert.Equal(t, 5*time.Minute, s.interval)
	require.NoError(t, s.Start())
	s.Stop()
}

func ptr(t time.Time) *time.Time { return &t }
