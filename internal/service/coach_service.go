package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lingo_backend/internal/llm"
	"lingo_backend/internal/util"
)

const coachRecentLimit = 10

type SkillInsight struct {
	Skill    string `json:"skill"`
	Insight  string `json:"insight"`
	Priority string `json:"priority,omitempty"`
}

type Recommendation struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ExerciseType string `json:"exerciseType"`
	FocusArea    string `json:"focusArea"`
	Why          string `json:"why"`
}

type NextSession struct {
	SuggestedTypes      []string `json:"suggestedTypes"`
	SuggestedDifficulty string   `json:"suggestedDifficulty"`
	Focus               string   `json:"focus"`
}

// CoachAnalysis 文本模型返回的学习分析
type CoachAnalysis struct {
	OverallAssessment string           `json:"overallAssessment"`
	Strengths         []SkillInsight   `json:"strengths"`
	Weaknesses        []SkillInsight   `json:"weaknesses"`
	Recommendations   []Recommendation `json:"recommendations"`
	NextSession       NextSession      `json:"nextSession"`
	MotivationalNote  string           `json:"motivationalNote"`
}

type CoachReport struct {
	Analysis    CoachAnalysis `json:"analysis"`
	GeneratedAt time.Time     `json:"generatedAt"`
	DataPoints  *CoachingData `json:"dataPoints"`
}

var coachSchema = &llm.Schema{
	Name:        "coach-analysis",
	Description: "Short, data-driven coaching feedback for a UI card",
	Definition: object(map[string]any{
		"overallAssessment": str(),
		"strengths": array(object(map[string]any{
			"skill":   str(),
			"insight": str(),
		})),
		"weaknesses": array(object(map[string]any{
			"skill":    str(),
			"insight":  str(),
			"priority": strEnum("high", "medium", "low"),
		})),
		"recommendations": array(object(map[string]any{
			"title":        str(),
			"description":  str(),
			"exerciseType": strEnum("grammar", "vocabulary", "reading", "writing", "speaking"),
			"focusArea":    str(),
			"why":          str(),
		})),
		"nextSession": object(map[string]any{
			"suggestedTypes":      array(str()),
			"suggestedDifficulty": strEnum("easy", "medium", "hard"),
			"focus":               str(),
		}),
		"motivationalNote": str(),
	}),
}

// CoachService 基于统计数据生成学习建议；模型不可用不影响进度记录和统计
type CoachService struct {
	Provider  llm.Provider
	Stats     *StatsService
	MaxTokens int
	Timeout   time.Duration
	Now       func() time.Time
}

func NewCoachService(provider llm.Provider, stats *StatsService, maxTokens int, timeout time.Duration) *CoachService {
	return &CoachService{
		Provider:  provider,
		Stats:     stats,
		MaxTokens: maxTokens,
		Timeout:   timeout,
		Now:       time.Now,
	}
}

func (s *CoachService) Analyze(ctx context.Context, userID string) (*CoachReport, error) {
	data, err := s.Stats.CoachingData(ctx, userID, coachRecentLimit)
	if err != nil {
		return nil, err
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	resp, err := s.Provider.Generate(llm.WithPurpose(ctx, "coach"), llm.Request{
		System:    "You are an expert Business English coach. Respond with JSON only.",
		Messages:  llm.UserMessage(buildCoachPrompt(data)),
		Schema:    coachSchema,
		MaxTokens: s.MaxTokens,
	})
	if err != nil {
		return nil, util.UpstreamError("failed to generate analysis", err)
	}

	var analysis CoachAnalysis
	if err := json.Unmarshal(resp.Content, &analysis); err != nil {
		return nil, util.UpstreamError("analysis is malformed", err)
	}

	return &CoachReport{
		Analysis:    analysis,
		GeneratedAt: s.Now().UTC(),
		DataPoints:  data,
	}, nil
}

func buildCoachPrompt(data *CoachingData) string {
	stats := data.Stats
	skills, _ := json.Marshal(stats.Skills)

	var b strings.Builder
	b.WriteString("STUDENT DATA:\n")
	fmt.Fprintf(&b, "- Overall level: %d | Total XP: %d | Streak: %d days\n", stats.Level.Overall, stats.XP.Total, stats.Streaks.Current)
	fmt.Fprintf(&b, "- Skills: %s\n", skills)

	if len(data.ByType) == 0 {
		b.WriteString("- Exercise history: No exercises completed yet, this is a brand new student.\n")
		b.WriteString("- Last exercises: None yet.\n\n")
		b.WriteString("Give a welcoming onboarding analysis: suggest where to start, which skills to prioritise first for a Business English learner, and set encouraging expectations.\n")
	} else {
		byType, _ := json.Marshal(data.ByType)
		recent, _ := json.Marshal(data.Recent)
		fmt.Fprintf(&b, "- Exercise history: %s\n", byType)
		fmt.Fprintf(&b, "- Last %d exercises: %s\n\n", len(data.Recent), recent)
		b.WriteString("Analyse the data and give specific, data-driven feedback.\n")
	}

	b.WriteString("Keep values short: at most 2 strengths, 2 weaknesses and 2 recommendations. This is a UI card, not an essay.")
	return b.String()
}
