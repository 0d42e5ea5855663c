package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d, h int, loc *time.Location) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, loc)
}

func TestComputeStreak(t *testing.T) {
	now := day(2026, time.March, 10, 15, time.UTC)
	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name       string
		lastActive *time.Time
		current    int
		longest    int
		want       StreakResult
	}{
		{"new user", nil, 0, 0, StreakResult{Streak: 1, Longest: 1, Outcome: StreakReset}},
		{"same day earlier", ptr(day(2026, time.March, 10, 1, time.UTC)), 4, 6, StreakResult{Streak: 4, Longest: 6, Outcome: StreakHold}},
		{"same day later", ptr(day(2026, time.March, 10, 23, time.UTC)), 4, 4, StreakResult{Streak: 4, Longest: 4, Outcome: StreakHold}},
		{"yesterday", ptr(day(2026, time.March, 9, 22, time.UTC)), 4, 4, StreakResult{Streak: 5, Longest: 5, Outcome: StreakExtend}},
		{"yesterday below longest", ptr(day(2026, time.March, 9, 8, time.UTC)), 2, 9, StreakResult{Streak: 3, Longest: 9, Outcome: StreakExtend}},
		{"two days ago", ptr(day(2026, time.March, 8, 12, time.UTC)), 4, 4, StreakResult{Streak: 1, Longest: 4, Outcome: StreakReset}},
		{"five days ago", ptr(day(2026, time.March, 5, 12, time.UTC)), 3, 12, StreakResult{Streak: 1, Longest: 12, Outcome: StreakReset}},
		{"across month boundary", ptr(day(2026, time.February, 28, 12, time.UTC)), 1, 1, StreakResult{Streak: 1, Longest: 1, Outcome: StreakReset}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStreak(tt.lastActive, tt.current, tt.longest, now, time.UTC)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Longest, got.Streak)
		})
	}
}

func TestComputeStreak_MonthBoundaryExtends(t *testing.T) {
	last := day(2026, time.February, 28, 20, time.UTC)
	now := day(2026, time.March, 1, 6, time.UTC)

	got := ComputeStreak(&last, 10, 10, now, time.UTC)

	assert.Equal(t, StreakResult{Streak: 11, Longest: 11, Outcome: StreakExtend}, got)
}

func TestComputeStreak_UsesLocationDays(t *testing.T) {
	almaty := time.FixedZone("Asia/Almaty", 5*60*60)
	// 2026-03-09 10:00 and 2026-03-10 01:00 in Almaty are the same UTC day.
	last := day(2026, time.March, 9, 10, almaty)
	now := day(2026, time.March, 10, 1, almaty)

	assert.Equal(t, StreakExtend, ComputeStreak(&last, 1, 1, now, almaty).Outcome)
	assert.Equal(t, StreakHold, ComputeStreak(&last, 1, 1, now, time.UTC).Outcome)
}

func TestComputeStreak_IdempotentWithinDay(t *testing.T) {
	r := DefaultRules()
	last := day(2026, time.March, 9, 9, time.UTC)

	first := r.ComputeStreak(&last, 2, 2, day(2026, time.March, 10, 8, time.UTC))
	today := r.Today(day(2026, time.March, 10, 8, time.UTC))
	second := r.ComputeStreak(&today, first.Streak, first.Longest, day(2026, time.March, 10, 21, time.UTC))

	assert.Equal(t, 3, first.Streak)
	assert.Equal(t, first.Streak, second.Streak)
	assert.Equal(t, StreakHold, second.Outcome)
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("X", -3*60*60)
	got := StartOfDay(time.Date(2026, time.March, 10, 1, 30, 0, 0, time.UTC), loc)

	assert.Equal(t, time.Date(2026, time.March, 9, 0, 0, 0, 0, loc), got)
}
