package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"lingo_backend/internal/llm"
	"lingo_backend/internal/model"
	"lingo_backend/internal/repository"
	"lingo_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const grammarJSON = `{"questions":[{"id":"q1","sentence":"She ___ the report yesterday.","options":["send","sent","sends","sending"],"correctAnswer":"sent","explanation":"Past simple for a finished action."}]}`

const coachJSON = `{
	"overallAssessment": "Solid start on grammar.",
	"strengths": [{"skill": "grammar", "insight": "Consistent 80% accuracy."}],
	"weaknesses": [{"skill": "writing", "insight": "No writing practice yet.", "priority": "high"}],
	"recommendations": [{"title": "Try an email", "description": "Write a short client email.", "exerciseType": "writing", "focusArea": "tone", "why": "Writing is untouched."}],
	"nextSession": {"suggestedTypes": ["writing", "vocabulary"], "suggestedDifficulty": "easy", "focus": "Professional tone"},
	"motivationalNote": "Keep the streak going!"
}`

func TestAdaptiveDifficulty(t *testing.T) {
	tests := []struct {
		avg  float64
		want model.Difficulty
	}{
		{0, model.DifficultyEasy},
		{59.9, model.DifficultyEasy},
		{60, model.DifficultyMedium},
		{79.9, model.DifficultyMedium},
		{80, model.DifficultyHard},
		{100, model.DifficultyHard},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AdaptiveDifficulty(tt.avg), "avg %v", tt.avg)
	}
}

func TestGenerate_SavesExercise(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(grammarJSON)})
	svc := NewExerciseGeneratorService(mock, env.exercises, env.users, 1000, 0)
	svc.Now = env.clock.Now

	res, err := svc.Generate(context.Background(), user.ID, "grammar")
	require.NoError(t, err)
	assert.Equal(t, model.DifficultyMedium, res.Difficulty)
	assert.Equal(t, "AI Grammar Practice 2026-03-10", res.Title)

	stored, err := env.exercises.FindByID(context.Background(), res.ExerciseID)
	require.NoError(t, err)
	assert.Equal(t, model.ExerciseGrammar, stored.Type)
	assert.True(t, stored.IsActive)
	require.NotNil(t, stored.CreatedByUserID)
	assert.Equal(t, user.ID, *stored.CreatedByUserID)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, "grammar-exercise", req.Schema.Name)
	assert.Contains(t, req.Messages[0].Content, "target difficulty: medium")
	assert.Contains(t, req.Messages[0].Content, "None yet")
}

func TestGenerate_AdaptsToHistory(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	ex := env.createExercise(t, model.ExerciseGrammar, 1)
	progress := env.progressService()
	for i := 0; i < 3; i++ {
		_, err := progress.RecordProgress(context.Background(), user.ID, grammarSubmission(ex.ID, 40))
		require.NoError(t, err)
	}

	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(grammarJSON)})
	svc := NewExerciseGeneratorService(mock, env.exercises, env.users, 1000, 0)

	res, err := svc.Generate(context.Background(), user.ID, "grammar")
	require.NoError(t, err)
	assert.Equal(t, model.DifficultyEasy, res.Difficulty)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "grammar drill")
}

func TestGenerate_Errors(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")

	mock := llm.NewMockProvider()
	svc := NewExerciseGeneratorService(mock, env.exercises, env.users, 1000, 0)

	_, err := svc.Generate(context.Background(), user.ID, "poetry")
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, err = svc.Generate(context.Background(), user.ID, "listening")
	assert.Equal(t, util.KindValidation, util.KindOf(err))
	assert.Zero(t, mock.CallCount())

	mock.AddResponse(llm.MockResponse{Err: errors.New("overloaded")})
	_, err = svc.Generate(context.Background(), user.ID, "grammar")
	assert.Equal(t, util.KindUpstream, util.KindOf(err))

	mock.AddResponse(llm.MockResponse{Content: json.RawMessage(`{"questions":"nope"}`)})
	_, err = svc.Generate(context.Background(), user.ID, "grammar")
	assert.Equal(t, util.KindUpstream, util.KindOf(err))

	list, err := env.exercises.ListAvailable(context.Background(), repository.ExerciseFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGenerate_UnavailableProvider(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	svc := NewExerciseGeneratorService(llm.Unavailable(errors.New("no key")), env.exercises, env.users, 1000, 0)

	_, err := svc.Generate(context.Background(), user.ID, "reading")
	assert.Equal(t, util.KindUpstream, util.KindOf(err))
}

func TestCoach_Analyze(t *testing.T) {
	env := newTestEnv(t)
	user, _ := seedScenario(t, env)
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(coachJSON)})
	svc := NewCoachService(mock, env.statsService(), 800, 0)
	svc.Now = env.clock.Now

	report, err := svc.Analyze(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Solid start on grammar.", report.Analysis.OverallAssessment)
	assert.Equal(t, "high", report.Analysis.Weaknesses[0].Priority)
	assert.Equal(t, []string{"writing", "vocabulary"}, report.Analysis.NextSession.SuggestedTypes)
	assert.Equal(t, 80, report.DataPoints.Stats.XP.Total)
	assert.Equal(t, env.clock.Now(), report.GeneratedAt)

	prompt := mock.Calls[0].Messages[0].Content
	assert.Contains(t, prompt, "Total XP: 80")
	assert.Contains(t, prompt, "Exercise history:")
	assert.NotContains(t, prompt, "brand new student")
}

func TestCoach_NewStudentPrompt(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "new@example.com")
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(coachJSON)})
	svc := NewCoachService(mock, env.statsService(), 800, 0)

	_, err := svc.Analyze(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "brand new student")
}

func TestCoach_UpstreamFailureLeavesStatsIntact(t *testing.T) {
	env := newTestEnv(t)
	user, _ := seedScenario(t, env)
	svc := NewCoachService(llm.NewMockProvider(llm.MockResponse{Err: errors.New("timeout")}), env.statsService(), 800, 0)

	_, err := svc.Analyze(context.Background(), user.ID)
	assert.Equal(t, util.KindUpstream, util.KindOf(err))

	_, err = NewCoachService(llm.NewMockProvider(), env.statsService(), 800, 0).Analyze(context.Background(), "ghost")
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	stats, err := env.statsService().GetStats(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, stats.XP.Total)
}
