package service

import (
	"context"
	"testing"

	"lingo_backend/internal/model"
	"lingo_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExerciseService_ListGatedByLevel(t *testing.T) {
	env := newTestEnv(t)
	svc := NewExerciseService(env.exercises, env.users)
	user := env.createUser(t, "a@example.com")
	env.createExercise(t, model.ExerciseGrammar, 1)
	env.createExercise(t, model.ExerciseWriting, 3)

	list, err := svc.ListExercises(context.Background(), user.ID, ExerciseListQuery{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.ExerciseGrammar, list[0].Type)

	require.NoError(t, env.db.Model(user).Update("overall_level", 3).Error)
	list, err = svc.ListExercises(context.Background(), user.ID, ExerciseListQuery{Type: "writing"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.ExerciseWriting, list[0].Type)
}

func TestExerciseService_ListRejectsBadFilters(t *testing.T) {
	env := newTestEnv(t)
	svc := NewExerciseService(env.exercises, env.users)
	user := env.createUser(t, "a@example.com")

	_, err := svc.ListExercises(context.Background(), user.ID, ExerciseListQuery{Type: "poetry"})
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, err = svc.ListExercises(context.Background(), user.ID, ExerciseListQuery{Difficulty: "brutal"})
	assert.Equal(t, util.KindValidation, util.KindOf(err))
}

func TestExerciseService_GetExercise(t *testing.T) {
	env := newTestEnv(t)
	svc := NewExerciseService(env.exercises, env.users)
	user := env.createUser(t, "a@example.com")

	ex := &model.Exercise{
		Type:                 model.ExerciseVocabulary,
		Title:                "Negotiation",
		Difficulty:           model.DifficultyEasy,
		RequiredOverallLevel: 1,
		IsActive:             true,
		Content:              model.JSON(`{"cards":[{"id":"c1","word":"leverage","definition":"advantage","example":"We have leverage.","businessContext":"deals"}]}`),
	}
	require.NoError(t, env.exercises.Create(context.Background(), ex))

	detail, err := svc.GetExercise(context.Background(), user.ID, ex.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Content.Vocabulary)
	assert.Equal(t, "leverage", detail.Content.Vocabulary.Cards[0].Word)

	locked := env.createExercise(t, model.ExerciseWriting, 4)
	_, err = svc.GetExercise(context.Background(), user.ID, locked.ID)
	assert.Equal(t, util.KindForbidden, util.KindOf(err))
	assert.ErrorIs(t, err, util.ErrLevelTooLow)

	_, err = svc.GetExercise(context.Background(), user.ID, "missing")
	assert.ErrorIs(t, err, util.ErrExerciseNotFound)
}
