package scheduler

import (
	"context"
	"time"

	"lingo_backend/internal/gamification"
	"lingo_backend/internal/repository"
	"lingo_backend/pkg/logger"
	"lingo_backend/pkg/monitoring"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Scheduler 定时刷新学习活跃度指标，只读，不修改用户状态
type Scheduler struct {
	scheduler *gocron.Scheduler
	userRepo  *repository.UserRepository
	rules     *gamification.RuleSet
	interval  time.Duration
	now       func() time.Time
}

func New(userRepo *repository.UserRepository, rules *gamification.RuleSet, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		userRepo:  userRepo,
		rules:     rules,
		interval:  interval,
		now:       time.Now,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.refreshActivity); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// ActivitySnapshot 今日已学习人数和昨日学习、今日尚未学习的人数
type ActivitySnapshot struct {
	ActiveToday int64
	AtRisk      int64
}

func (s *Scheduler) Snapshot(ctx context.Context) (ActivitySnapshot, error) {
	today := s.rules.Load().Today(s.now())

	active, err := s.userRepo.CountLastActiveOn(ctx, today)
	if err != nil {
		return ActivitySnapshot{}, err
	}
	atRisk, err := s.userRepo.CountLastActiveOn(ctx, today.AddDate(0, 0, -1))
	if err != nil {
		return ActivitySnapshot{}, err
	}
	return ActivitySnapshot{ActiveToday: active, AtRisk: atRisk}, nil
}

func (s *Scheduler) refreshActivity() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := s.Snapshot(ctx)
	if err != nil {
		logger.Log.Error("Failed to refresh activity metrics", zap.Error(err))
		return
	}

	monitoring.ActiveLearners.Set(float64(snap.ActiveToday))
	monitoring.StreaksAtRisk.Set(float64(snap.AtRisk))
	logger.Log.Debug("Activity metrics refreshed",
		zap.Int64("active_today", snap.ActiveToday),
		zap.Int64("at_risk", snap.AtRisk),
	)
}
