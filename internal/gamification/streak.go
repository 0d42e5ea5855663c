package gamification

import "time"

// StreakOutcome names the transition applied to a streak.
type StreakOutcome string

const (
	StreakHold   StreakOutcome = "hold"
	StreakExtend StreakOutcome = "extend"
	StreakReset  StreakOutcome = "reset"
)

type StreakResult struct {
	Streak  int           `json:"streak"`
	Longest int           `json:"longest"`
	Outcome StreakOutcome `json:"outcome"`
}

// StartOfDay truncates t to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// ComputeStreak applies one study day to a streak. Days are compared as
// calendar dates in loc, so any number of completions on the same day hold.
func ComputeStreak(lastActive *time.Time, currentStreak, longestStreak int, now time.Time, loc *time.Location) StreakResult {
	today := StartOfDay(now, loc)

	res := StreakResult{Streak: 1, Outcome: StreakReset}
	if lastActive != nil {
		last := StartOfDay(*lastActive, loc)
		switch {
		case last.Equal(today):
			res = StreakResult{Streak: currentStreak, Outcome: StreakHold}
		case last.Equal(today.AddDate(0, 0, -1)):
			res = StreakResult{Streak: currentStreak + 1, Outcome: StreakExtend}
		}
	}

	res.Longest = longestStreak
	if res.Streak > res.Longest {
		res.Longest = res.Streak
	}
	return res
}

// ComputeStreak is ComputeStreak in the rules' timezone.
func (r Rules) ComputeStreak(lastActive *time.Time, currentStreak, longestStreak int, now time.Time) StreakResult {
	return ComputeStreak(lastActive, currentStreak, longestStreak, now, r.Location)
}

// Today returns midnight of now's calendar day in the rules' timezone.
func (r Rules) Today(now time.Time) time.Time {
	return StartOfDay(now, r.Location)
}
