package repository

import (
	"context"
	"errors"

	"lingo_backend/internal/model"
	"lingo_backend/internal/util"

	"gorm.io/gorm"
)

type ExerciseRepository struct {
	DB *gorm.DB
}

func NewExerciseRepository(db *gorm.DB) *ExerciseRepository {
	return &ExerciseRepository{DB: db}
}

func (r *ExerciseRepository) Create(ctx context.Context, exercise *model.Exercise) error {
	return r.DB.WithContext(ctx).Create(exercise).Error
}

func (r *ExerciseRepository) FindByID(ctx context.Context, id string) (*model.Exercise, error) {
	var exercise model.Exercise
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&exercise).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrExerciseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

// ExerciseFilter 练习列表筛选条件，零值表示不限
type ExerciseFilter struct {
	Type       model.ExerciseType
	Difficulty model.Difficulty
	MaxLevel   int
}

// ListAvailable 返回用户当前等级可做的已启用练习
func (r *ExerciseRepository) ListAvailable(ctx context.Context, filter ExerciseFilter) ([]model.Exercise, error) {
	query := r.DB.WithContext(ctx).Where("is_active = ?", true)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.MaxLevel > 0 {
		query = query.Where("required_overall_level <= ?", filter.MaxLevel)
	}

	var exercises []model.Exercise
	err := query.Order("required_overall_level ASC, created_at ASC").Find(&exercises).Error
	return exercises, err
}

// RecentTitles 用户最近完成的某类练习标题，供生成时避免重复
func (r *ExerciseRepository) RecentTitles(ctx context.Context, userID string, t model.ExerciseType, limit int) ([]string, error) {
	var titles []string
	err := r.DB.WithContext(ctx).
		Table("user_progress AS p").
		Joins("JOIN exercises AS e ON e.id = p.exercise_id").
		Where("p.user_id = ? AND e.type = ?", userID, t).
		Order("p.completed_at DESC").
		Limit(limit).
		Pluck("e.title", &titles).Error
	return titles, err
}

// AvgAccuracy 用户最近若干次某类练习的平均正确率；没有记录时 ok 为 false
func (r *ExerciseRepository) AvgAccuracy(ctx context.Context, userID string, t model.ExerciseType, limit int) (avg float64, ok bool, err error) {
	var accuracies []float64
	err = r.DB.WithContext(ctx).
		Table("user_progress AS p").
		Joins("JOIN exercises AS e ON e.id = p.exercise_id").
		Where("p.user_id = ? AND e.type = ?", userID, t).
		Order("p.completed_at DESC").
		Limit(limit).
		Pluck("p.accuracy", &accuracies).Error
	if err != nil || len(accuracies) == 0 {
		return 0, false, err
	}

	var sum float64
	for _, a := range accuracies {
		sum += a
	}
	return sum / float64(len(accuracies)), true, nil
}
