package service

import (
	"context"
	"math"
	"sort"
	"time"

	"lingo_backend/internal/gamification"
	"lingo_backend/internal/model"
	"lingo_backend/internal/repository"
	"lingo_backend/internal/util"
	"lingo_backend/pkg/logger"

	"go.uber.org/zap"
)

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

type LevelStats struct {
	Overall  int                        `json:"overall"`
	Progress gamification.LevelProgress `json:"progress"`
}

type XPStats struct {
	Total                int `json:"total"`
	CurrentLevelXP       int `json:"currentLevelXP"`
	RequiredForNextLevel int `json:"requiredForNextLevel"`
	Percentage           int `json:"percentage"`
}

type SkillStats struct {
	Levels model.SkillSet `json:"levels"`
	XP     model.SkillSet `json:"xp"`
}

type StreakStats struct {
	Current        int        `json:"current"`
	Longest        int        `json:"longest"`
	LastActiveDate *time.Time `json:"lastActiveDate"`
}

// UserStats 统计查询结果，全部为派生数据
type UserStats struct {
	User           UserSummary           `json:"user"`
	Level          LevelStats            `json:"level"`
	XP             XPStats               `json:"xp"`
	Skills         SkillStats            `json:"skills"`
	Streaks        StreakStats           `json:"streaks"`
	Totals         model.ProgressTotals  `json:"totals"`
	RecentActivity []model.DailyActivity `json:"recentActivity"`
}

type StatsService struct {
	UserRepo     *repository.UserRepository
	ProgressRepo *repository.ProgressRepository
	StatsCache   *repository.StatsCache
	Rules        *gamification.RuleSet
	WindowDays   int
	Now          func() time.Time
}

func NewStatsService(
	userRepo *repository.UserRepository,
	progressRepo *repository.ProgressRepository,
	statsCache *repository.StatsCache,
	rules *gamification.RuleSet,
	windowDays int,
) *StatsService {
	if windowDays < 1 {
		windowDays = 7
	}
	return &StatsService{
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
		StatsCache:   statsCache,
		Rules:        rules,
		WindowDays:   windowDays,
		Now:          time.Now,
	}
}

// GetStats 只读汇总，优先读取缓存
func (s *StatsService) GetStats(ctx context.Context, userID string) (*UserStats, error) {
	var cached UserStats
	hit, err := s.StatsCache.Get(ctx, userID, &cached)
	if err != nil {
		logger.Log.Warn("Stats cache read failed", zap.String("user_id", userID), zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	rules := s.Rules.Load()
	since := s.WindowStart(rules)

	records, err := s.ProgressRepo.ListSince(ctx, userID, since)
	if err != nil {
		return nil, util.InternalError("failed to load progress", err)
	}
	sums, err := s.ProgressRepo.Sums(ctx, userID)
	if err != nil {
		return nil, util.InternalError("failed to load progress totals", err)
	}

	progress := rules.LevelProgress(user.TotalXP)
	stats := &UserStats{
		User: UserSummary{ID: user.ID, Name: user.Name, Email: user.Email, Image: user.Image},
		Level: LevelStats{
			Overall:  user.OverallLevel,
			Progress: progress,
		},
		XP: XPStats{
			Total:                user.TotalXP,
			CurrentLevelXP:       progress.CurrentXP,
			RequiredForNextLevel: progress.RequiredXP,
			Percentage:           progress.Percentage,
		},
		Skills: SkillStats{
			Levels: user.SkillLevels(),
			XP:     user.SkillXP(),
		},
		Streaks: StreakStats{
			Current:        user.CurrentStreak,
			Longest:        user.LongestStreak,
			LastActiveDate: user.LastActiveDate,
		},
		Totals:         AggregateTotals(sums),
		RecentActivity: AggregateDaily(records, rules.Location),
	}

	if err := s.StatsCache.Set(ctx, userID, stats); err != nil {
		logger.Log.Warn("Stats cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return stats, nil
}

// WindowStart 统计窗口起点：今天及之前 WindowDays-1 天
func (s *StatsService) WindowStart(rules gamification.Rules) time.Time {
	return rules.Today(s.Now()).AddDate(0, 0, -(s.WindowDays - 1))
}

// AggregateDaily 按日历日分桶，只输出有记录的日期，按日期升序
func AggregateDaily(records []model.UserProgress, loc *time.Location) []model.DailyActivity {
	type bucket struct {
		count       int
		xp          int
		accuracySum float64
	}

	buckets := make(map[string]*bucket)
	for _, r := range records {
		day := gamification.StartOfDay(r.CompletedAt, loc).Format(util.DateFormat)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.count++
		b.xp += r.XPEarned
		b.accuracySum += r.Accuracy
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]model.DailyActivity, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		out = append(out, model.DailyActivity{
			Date:               day,
			ExercisesCompleted: b.count,
			TotalXP:            b.xp,
			AvgAccuracy:        int(math.Round(b.accuracySum / float64(b.count))),
		})
	}
	return out
}

func AggregateTotals(sums model.ProgressSums) model.ProgressTotals {
	totals := model.ProgressTotals{
		ExercisesCompleted: int(sums.Count),
		TotalTimeSeconds:   int(sums.TimeSpentSum),
	}
	if sums.Count > 0 {
		totals.AverageAccuracy = int(math.Round(sums.AccuracySum / float64(sums.Count)))
	}
	return totals
}

// CoachingData 教练分析所需的数据，与统计接口同源
type CoachingData struct {
	Stats  *UserStats             `json:"stats"`
	ByType []model.SkillBreakdown `json:"byType"`
	Recent []model.RecentExercise `json:"recent"`
}

func (s *StatsService) CoachingData(ctx context.Context, userID string, recentLimit int) (*CoachingData, error) {
	stats, err := s.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	byType, err := s.ProgressRepo.BreakdownByType(ctx, userID)
	if err != nil {
		return nil, util.InternalError("failed to load progress breakdown", err)
	}
	recent, err := s.ProgressRepo.Recent(ctx, userID, recentLimit)
	if err != nil {
		return nil, util.InternalError("failed to load recent progress", err)
	}

	return &CoachingData{Stats: stats, ByType: byType, Recent: recent}, nil
}
