package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"lingo_backend/internal/gamification"
	"lingo_backend/internal/model"
	"lingo_backend/internal/repository"
	"lingo_backend/internal/util"
	"lingo_backend/pkg/logger"
	"lingo_backend/pkg/monitoring"
	"lingo_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type RecordProgressRequest struct {
	ExerciseID       string
	ExerciseType     model.ExerciseType
	Accuracy         float64
	TimeSpentSeconds int
	QuestionsTotal   int
	QuestionsCorrect int
}

// Validate 在任何读写之前检查请求
func (r RecordProgressRequest) Validate() error {
	if strings.TrimSpace(r.ExerciseID) == "" {
		return util.ValidationError("exerciseId is required")
	}
	if !r.ExerciseType.Valid() {
		return util.ValidationError("invalid exerciseType %q", r.ExerciseType)
	}
	if math.IsNaN(r.Accuracy) || r.Accuracy < util.AccuracyMin || r.Accuracy > util.AccuracyMax {
		return util.ValidationError("invalid accuracy: must be between %d and %d", util.AccuracyMin, util.AccuracyMax)
	}
	if r.TimeSpentSeconds < 0 {
		return util.ValidationError("timeSpentSeconds must not be negative")
	}
	if r.QuestionsTotal < 0 {
		return util.ValidationError("questionsTotal must not be negative")
	}
	if r.QuestionsCorrect < 0 || r.QuestionsCorrect > r.QuestionsTotal {
		return util.ValidationError("questionsCorrect must be between 0 and questionsTotal")
	}
	return nil
}

type RecordProgressResult struct {
	ProgressID  string                    `json:"progressId"`
	XPEarned    int                       `json:"xpEarned"`
	XPBreakdown gamification.Breakdown    `json:"xpBreakdown"`
	LeveledUp   bool                      `json:"leveledUp"`
	NewLevel    int                       `json:"newLevel"`
	OldLevel    int                       `json:"oldLevel"`
	NewTotalXP  int                       `json:"newTotalXP"`
	Skill       model.Skill               `json:"skill"`
	SkillLevels model.SkillSet            `json:"skillLevels"`
	Streak      gamification.StreakResult `json:"streak"`
}

type ProgressService struct {
	UserRepo     *repository.UserRepository
	ExerciseRepo *repository.ExerciseRepository
	StatsCache   *repository.StatsCache
	Rules        *gamification.RuleSet
	QueryTimeout time.Duration
	Now          func() time.Time
}

func NewProgressService(
	userRepo *repository.UserRepository,
	exerciseRepo *repository.ExerciseRepository,
	statsCache *repository.StatsCache,
	rules *gamification.RuleSet,
	queryTimeout time.Duration,
) *ProgressService {
	return &ProgressService{
		UserRepo:     userRepo,
		ExerciseRepo: exerciseRepo,
		StatsCache:   statsCache,
		Rules:        rules,
		QueryTimeout: queryTimeout,
		Now:          time.Now,
	}
}

// RecordProgress 记录一次练习完成：计算 XP、等级和连续天数，并在同一事务中更新用户和写入记录
func (s *ProgressService) RecordProgress(ctx context.Context, userID string, req RecordProgressRequest) (*RecordProgressResult, error) {
	if err := req.Validate(); err != nil {
		monitoring.ProgressFailures.WithLabelValues("validation").Inc()
		return nil, err
	}

	ctx, span := tracing.Tracer.Start(ctx, "progress.record")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("exercise.type", string(req.ExerciseType)),
	)

	if s.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.QueryTimeout)
		defer cancel()
	}

	exercise, err := s.ExerciseRepo.FindByID(ctx, req.ExerciseID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if exercise.Type != req.ExerciseType {
		return nil, s.fail(span, util.ValidationError("exercise %s is a %s exercise, not %s", exercise.ID, exercise.Type, req.ExerciseType))
	}

	rules := s.Rules.Load()
	now := s.Now()

	var result RecordProgressResult
	var record *model.UserProgress
	_, err = s.UserRepo.ApplyProgress(ctx, userID, func(user *model.User) (*model.UserProgress, error) {
		result = applyCompletion(rules, user, req.ExerciseType, req.Accuracy, req.TimeSpentSeconds, now)
		record = &model.UserProgress{
			ExerciseID:       exercise.ID,
			Accuracy:         req.Accuracy,
			TimeSpentSeconds: req.TimeSpentSeconds,
			XPEarned:         result.XPEarned,
			QuestionsTotal:   req.QuestionsTotal,
			QuestionsCorrect: req.QuestionsCorrect,
			CompletedAt:      now,
		}
		return record, nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}
	result.ProgressID = record.ID

	// 以下仅在提交成功后执行
	if err := s.StatsCache.Invalidate(context.WithoutCancel(ctx), userID); err != nil {
		logger.Log.Warn("Failed to invalidate stats cache", zap.String("user_id", userID), zap.Error(err))
	}

	monitoring.ProgressRecorded.WithLabelValues(string(req.ExerciseType)).Inc()
	monitoring.XPAwarded.WithLabelValues(string(result.Skill)).Add(float64(result.XPEarned))
	if result.LeveledUp {
		monitoring.LevelUps.Inc()
	}

	span.SetAttributes(
		attribute.Int("xp.earned", result.XPEarned),
		attribute.Bool("level.up", result.LeveledUp),
	)
	logger.Log.Info("Progress recorded",
		zap.String("user_id", userID),
		zap.String("exercise_id", exercise.ID),
		zap.String("exercise_type", string(req.ExerciseType)),
		zap.Float64("accuracy", req.Accuracy),
		zap.Int("xp_earned", result.XPEarned),
		zap.Int("total_xp", result.NewTotalXP),
		zap.Int("old_level", result.OldLevel),
		zap.Int("new_level", result.NewLevel),
		zap.Int("streak", result.Streak.Streak),
		zap.String("streak_outcome", string(result.Streak.Outcome)),
	)

	return &result, nil
}

// fail 按错误类别包装并计数；持久化失败不携带已计算的结果
func (s *ProgressService) fail(span trace.Span, err error) error {
	var appErr *util.AppError
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, util.ErrUserNotFound), errors.Is(err, util.ErrExerciseNotFound):
		err = util.NotFoundError(err)
	case errors.Is(err, util.ErrWriteConflict):
		err = util.ConflictError(err)
	default:
		err = util.InternalError("failed to record progress", err)
	}

	kind := util.KindOf(err)
	monitoring.ProgressFailures.WithLabelValues(string(kind)).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, string(kind))

	if kind == util.KindInternal {
		logger.Log.Error("Progress recording failed", zap.Error(err))
	}
	return err
}

// applyCompletion 在用户聚合上应用一次练习完成。等级与旧值取最大，调整规则不会让等级下降。
func applyCompletion(rules gamification.Rules, user *model.User, t model.ExerciseType, accuracy float64, timeSpentSeconds int, now time.Time) RecordProgressResult {
	oldLevel := user.OverallLevel

	breakdown := rules.CalculateXP(t, accuracy, timeSpentSeconds, user.CurrentStreak)

	skillXP := user.SkillXP().Plus(rules.CalculateSkillXP(t, breakdown.TotalXP))
	skillLevels := rules.CalculateSkillLevels(skillXP).AtLeast(user.SkillLevels())
	totalXP := user.TotalXP + breakdown.TotalXP
	overall := max(rules.CalculateOverallLevel(totalXP, skillLevels), oldLevel)

	streak := rules.ComputeStreak(user.LastActiveDate, user.CurrentStreak, user.LongestStreak, now)
	today := rules.Today(now)

	user.TotalXP = totalXP
	user.SetSkillXP(skillXP)
	user.SetSkillLevels(skillLevels)
	user.OverallLevel = overall
	user.CurrentStreak = streak.Streak
	user.LongestStreak = streak.Longest
	user.LastActiveDate = &today

	return RecordProgressResult{
		XPEarned:    breakdown.TotalXP,
		XPBreakdown: breakdown,
		LeveledUp:   overall > oldLevel,
		NewLevel:    overall,
		OldLevel:    oldLevel,
		NewTotalXP:  totalXP,
		Skill:       rules.SkillFor(t),
		SkillLevels: skillLevels,
		Streak:      streak,
	}
}
