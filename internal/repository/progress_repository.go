package repository

import (
	"context"
	"time"

	"lingo_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// ListSince 返回用户在 since 之后完成的记录，按完成时间升序
func (r *ProgressRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]model.UserProgress, error) {
	var records []model.UserProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND completed_at >= ?", userID, since).
		Order("completed_at ASC").
		Find(&records).Error
	return records, err
}

func (r *ProgressRepository) Sums(ctx context.Context, userID string) (model.ProgressSums, error) {
	var sums model.ProgressSums
	err := r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Select("COUNT(*) AS count, COALESCE(SUM(time_spent_seconds), 0) AS time_spent_sum, COALESCE(SUM(accuracy), 0) AS accuracy_sum").
		Where("user_id = ?", userID).
		Scan(&sums).Error
	return sums, err
}

func (r *ProgressRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// BreakdownByType 按练习题型汇总正确率和 XP
func (r *ProgressRepository) BreakdownByType(ctx context.Context, userID string) ([]model.SkillBreakdown, error) {
	var rows []model.SkillBreakdown
	err := r.DB.WithContext(ctx).
		Table("user_progress AS p").
		Select("e.type AS type, COUNT(*) AS count, AVG(p.accuracy) AS avg_accuracy, MIN(p.accuracy) AS min_accuracy, COALESCE(SUM(p.xp_earned), 0) AS total_xp").
		Joins("JOIN exercises AS e ON e.id = p.exercise_id").
		Where("p.user_id = ?", userID).
		Group("e.type").
		Order("e.type").
		Scan(&rows).Error
	return rows, err
}

// Recent 最近完成的练习，带题目信息
func (r *ProgressRepository) Recent(ctx context.Context, userID string, limit int) ([]model.RecentExercise, error) {
	var rows []model.RecentExercise
	err := r.DB.WithContext(ctx).
		Table("user_progress AS p").
		Select("e.type AS type, e.title AS title, e.difficulty AS difficulty, p.accuracy AS accuracy, p.completed_at AS completed_at").
		Joins("JOIN exercises AS e ON e.id = p.exercise_id").
		Where("p.user_id = ?", userID).
		Order("p.completed_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// History 用户全部练习记录，按完成时间升序
func (r *ProgressRepository) History(ctx context.Context, userID string) ([]model.ProgressHistoryRow, error) {
	var rows []model.ProgressHistoryRow
	err := r.DB.WithContext(ctx).
		Table("user_progress AS p").
		Select("p.completed_at AS completed_at, e.type AS type, e.title AS title, e.difficulty AS difficulty, " +
			"p.accuracy AS accuracy, p.time_spent_seconds AS time_spent_seconds, p.xp_earned AS xp_earned, " +
			"p.questions_total AS questions_total, p.questions_correct AS questions_correct").
		Joins("JOIN exercises AS e ON e.id = p.exercise_id").
		Where("p.user_id = ?", userID).
		Order("p.completed_at ASC").
		Scan(&rows).Error
	return rows, err
}
