package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"lingo_backend/internal/llm"
	"lingo_backend/internal/model"
	"lingo_backend/internal/repository"
	"lingo_backend/internal/util"
	"lingo_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	recentTitleLimit    = 30
	accuracySampleLimit = 20
	defaultAccuracy     = 70
)

type GeneratedExercise struct {
	ExerciseID string             `json:"exerciseId"`
	Type       model.ExerciseType `json:"type"`
	Difficulty model.Difficulty   `json:"difficulty"`
	Title      string             `json:"title"`
}

// ExerciseGeneratorService 调用文本模型为用户生成新练习
type ExerciseGeneratorService struct {
	Provider     llm.Provider
	ExerciseRepo *repository.ExerciseRepository
	UserRepo     *repository.UserRepository
	MaxTokens    int
	Timeout      time.Duration
	Now          func() time.Time
}

func NewExerciseGeneratorService(
	provider llm.Provider,
	exerciseRepo *repository.ExerciseRepository,
	userRepo *repository.UserRepository,
	maxTokens int,
	timeout time.Duration,
) *ExerciseGeneratorService {
	return &ExerciseGeneratorService{
		Provider:     provider,
		ExerciseRepo: exerciseRepo,
		UserRepo:     userRepo,
		MaxTokens:    maxTokens,
		Timeout:      timeout,
		Now:          time.Now,
	}
}

// AdaptiveDifficulty 正确率低于 60 为 easy，低于 80 为 medium，否则 hard
func AdaptiveDifficulty(avgAccuracy float64) model.Difficulty {
	switch {
	case avgAccuracy < 60:
		return model.DifficultyEasy
	case avgAccuracy < 80:
		return model.DifficultyMedium
	default:
		return model.DifficultyHard
	}
}

func (s *ExerciseGeneratorService) Generate(ctx context.Context, userID, exerciseType string) (*GeneratedExercise, error) {
	t, err := model.ParseExerciseType(exerciseType)
	if err != nil {
		return nil, util.ValidationError("%s", err.Error())
	}
	schema, ok := exerciseSchemas[t]
	if !ok {
		return nil, util.ValidationError("%s exercises cannot be generated", t)
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	titles, err := s.ExerciseRepo.RecentTitles(ctx, userID, t, recentTitleLimit)
	if err != nil {
		return nil, util.InternalError("failed to load recent exercises", err)
	}
	avg, ok, err := s.ExerciseRepo.AvgAccuracy(ctx, userID, t, accuracySampleLimit)
	if err != nil {
		return nil, util.InternalError("failed to load accuracy", err)
	}
	if !ok {
		avg = defaultAccuracy
	}
	difficulty := AdaptiveDifficulty(avg)

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	resp, err := s.Provider.Generate(llm.WithPurpose(ctx, "generate_exercise"), llm.Request{
		System:    "You are an expert Business English course creator. Return only JSON matching the requested schema.",
		Messages:  llm.UserMessage(buildGeneratePrompt(user, t, difficulty, math.Round(avg), titles)),
		Schema:    schema,
		MaxTokens: s.MaxTokens,
	})
	if err != nil {
		return nil, util.UpstreamError("failed to generate exercise", err)
	}

	content, err := model.DecodeContent(t, model.JSON(resp.Content))
	if err != nil {
		return nil, util.UpstreamError("generated exercise is malformed", err)
	}

	exercise := &model.Exercise{
		Type:                 t,
		Title:                generatedTitle(content, s.Now()),
		Description:          fmt.Sprintf("AI-generated %s %s exercise tailored to your level.", difficulty, t),
		Difficulty:           difficulty,
		EstimatedTimeSeconds: estimatedSeconds[t],
		RequiredOverallLevel: 1,
		IsActive:             true,
		Content:              model.JSON(resp.Content),
		CreatedByUserID:      &user.ID,
	}
	if err := s.ExerciseRepo.Create(ctx, exercise); err != nil {
		return nil, util.InternalError("failed to save generated exercise", err)
	}

	logger.Log.Info("Exercise generated",
		zap.String("user_id", userID),
		zap.String("exercise_id", exercise.ID),
		zap.String("type", string(t)),
		zap.String("difficulty", string(difficulty)),
	)

	return &GeneratedExercise{
		ExerciseID: exercise.ID,
		Type:       t,
		Difficulty: difficulty,
		Title:      exercise.Title,
	}, nil
}

func buildGeneratePrompt(user *model.User, t model.ExerciseType, d model.Difficulty, avg float64, titles []string) string {
	avoid := "None yet, this is the first exercise."
	if len(titles) > 0 {
		avoid = strings.Join(titles, ", ")
	}

	skillLevel := user.SkillLevels().Get(model.Skill(t))
	schema, _ := json.Marshal(exerciseSchemas[t].Definition)

	var b strings.Builder
	fmt.Fprintf(&b, "Generate ONE fresh %s exercise.\n\n", t)
	b.WriteString("STUDENT PROFILE:\n")
	fmt.Fprintf(&b, "- Overall level: %d | %s skill level: %d\n", user.OverallLevel, t, skillLevel)
	fmt.Fprintf(&b, "- Average accuracy: %.0f%% -> target difficulty: %s\n", avg, d)
	fmt.Fprintf(&b, "- %s\n\n", difficultyGuidance[d])
	b.WriteString("RECENTLY COMPLETED (DO NOT REPEAT THESE TOPICS):\n")
	b.WriteString(avoid)
	b.WriteString("\n\nREQUIREMENTS:\n")
	b.WriteString("- Topic must be different from the ones listed above\n")
	b.WriteString("- Business English focus: workplace, professional communication, corporate scenarios\n")
	b.WriteString("- correctAnswer must exactly match one of the options\n\n")
	b.WriteString("JSON schema:\n")
	b.Write(schema)
	return b.String()
}

func generatedTitle(content *model.ExerciseContent, now time.Time) string {
	switch {
	case content.Reading != nil && content.Reading.Passage.Title != "":
		return content.Reading.Passage.Title
	case content.Writing != nil && content.Writing.Prompt.Title != "":
		return content.Writing.Prompt.Title
	}
	name := string(content.Type)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("AI %s Practice %s", name, now.Format(util.DateFormat))
}
