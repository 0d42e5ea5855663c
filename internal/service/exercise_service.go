package service

import (
	"context"

	"lingo_backend/internal/model"
	"lingo_backend/internal/repository"
	"lingo_backend/internal/util"
)

type ExerciseService struct {
	ExerciseRepo *repository.ExerciseRepository
	UserRepo     *repository.UserRepository
}

func NewExerciseService(exerciseRepo *repository.ExerciseRepository, userRepo *repository.UserRepository) *ExerciseService {
	return &ExerciseService{
		ExerciseRepo: exerciseRepo,
		UserRepo:     userRepo,
	}
}

type ExerciseListQuery struct {
	Type       string
	Difficulty string
}

// ExerciseDetail 练习及其按题型解析后的内容
type ExerciseDetail struct {
	*model.Exercise
	Content *model.ExerciseContent `json:"content"`
}

// ListExercises 返回用户当前总等级可以解锁的练习
func (s *ExerciseService) ListExercises(ctx context.Context, userID string, q ExerciseListQuery) ([]model.Exercise, error) {
	filter := repository.ExerciseFilter{}
	if q.Type != "" {
		t, err := model.ParseExerciseType(q.Type)
		if err != nil {
			return nil, util.ValidationError("%s", err.Error())
		}
		filter.Type = t
	}
	if q.Difficulty != "" {
		d := model.Difficulty(q.Difficulty)
		if !d.Valid() {
			return nil, util.ValidationError("invalid difficulty %q", q.Difficulty)
		}
		filter.Difficulty = d
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	filter.MaxLevel = user.OverallLevel

	return s.ExerciseRepo.ListAvailable(ctx, filter)
}

func (s *ExerciseService) GetExercise(ctx context.Context, userID, exerciseID string) (*ExerciseDetail, error) {
	exercise, err := s.ExerciseRepo.FindByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if exercise.RequiredOverallLevel > user.OverallLevel {
		return nil, util.ForbiddenError(util.ErrLevelTooLow)
	}

	content, err := model.DecodeContent(exercise.Type, exercise.Content)
	if err != nil {
		return nil, util.InternalError("stored exercise content is malformed", err)
	}

	return &ExerciseDetail{Exercise: exercise, Content: content}, nil
}
