package database

import (
	"encoding/json"

	"lingo_backend/internal/model"

	"gorm.io/gorm"
)

// SeedExercises 练习表为空时写入每种题型的入门练习
func SeedExercises(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Exercise{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, e := range defaultExercises() {
		ex := e
		if err := db.Create(&ex).Error; err != nil {
			return err
		}
	}
	return nil
}

func mustJSON(v interface{}) model.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return model.JSON(b)
}

func defaultExercises() []model.Exercise {
	return []model.Exercise{
		{
			Type:                 model.ExerciseGrammar,
			Title:                "Present Perfect in Status Updates",
			Description:          "Choose the correct tense for common project updates.",
			Difficulty:           model.DifficultyEasy,
			EstimatedTimeSeconds: 300,
			RequiredOverallLevel: 1,
			IsActive:             true,
			Content: mustJSON(model.GrammarContent{Questions: []model.ChoiceQuestion{
				{
					ID:            "g1",
					Sentence:      "We ___ the report to the client already.",
					Options:       []string{"sent", "have sent", "are sending", "send"},
					CorrectAnswer: "have sent",
					Explanation:   "\"Already\" with a result in the present calls for the present perfect.",
				},
				{
					ID:            "g2",
					Sentence:      "She ___ in the marketing team since 2019.",
					Options:       []string{"works", "worked", "has worked", "is working"},
					CorrectAnswer: "has worked",
					Explanation:   "\"Since\" with an ongoing situation uses the present perfect.",
				},
			}}),
		},
		{
			Type:                 model.ExerciseVocabulary,
			Title:                "Meeting Vocabulary",
			Description:          "Words you will hear in every team meeting.",
			Difficulty:           model.DifficultyEasy,
			EstimatedTimeSeconds: 240,
			RequiredOverallLevel: 1,
			IsActive:             true,
			Content: mustJSON(model.VocabularyContent{Cards: []model.VocabularyCard{
				{ID: "v1", Word: "agenda", Definition: "a list of items to discuss", Example: "Let's stick to the agenda.", BusinessContext: "Shared before a meeting."},
				{ID: "v2", Word: "follow-up", Definition: "an action taken after a meeting", Example: "I'll send a follow-up email.", BusinessContext: "Used to confirm next steps."},
			}}),
		},
		{
			Type:                 model.ExerciseListening,
			Title:                "Voicemail from a Supplier",
			Description:          "Listen and answer questions about the message.",
			Difficulty:           model.DifficultyMedium,
			EstimatedTimeSeconds: 420,
			RequiredOverallLevel: 1,
			IsActive:             true,
			Content: mustJSON(model.ListeningContent{
				Transcript: "Hi, this is Dana from Northwind. The shipment will arrive on Thursday instead of Tuesday.",
				Questions: []model.ChoiceQuestion{
					{ID: "l1", Question: "When will the shipment arrive?", Options: []string{"Tuesday", "Wednesday", "Thursday"}, CorrectAnswer: "Thursday", Explanation: "The caller moves delivery to Thursday."},
				},
			}),
		},
		{
			Type:                 model.ExerciseSpeaking,
			Title:                "Introduce Yourself",
			Description:          "Record a short professional introduction.",
			Difficulty:           model.DifficultyEasy,
			EstimatedTimeSeconds: 180,
			RequiredOverallLevel: 1,
			IsActive:             true,
			Content: mustJSON(model.SpeakingContent{Prompt: model.SpeakingPrompt{
				ID:                 "s1",
				Question:           "Introduce yourself to a new colleague.",
				SampleAnswer:       "Hi, I'm Alex. I joined the finance team last month and I mostly work on budgeting.",
				Tips:               []string{"Mention your role", "Keep it under a minute"},
				MaxDurationSeconds: 60,
			}}),
		},
		{
			Type:                 model.ExerciseReading,
			Title:                "Company Announcement",
			Description:          "Read an internal announcement and answer questions.",
			Difficulty:           model.DifficultyMedium,
			EstimatedTimeSeconds: 480,
			RequiredOverallLevel: 2,
			IsActive:             true,
			Content: mustJSON(model.ReadingContent{
				Passage: model.ReadingPassage{
					Title:     "Office Move",
					Type:      "announcement",
					Content:   "Starting next Monday, the sales team will move to the third floor. Desks will be assigned on arrival.",
					WordCount: 19,
				},
				Questions: []model.ChoiceQuestion{
					{ID: "r1", Question: "Which team is moving?", Options: []string{"sales", "finance", "support"}, CorrectAnswer: "sales", Explanation: "The first sentence names the sales team."},
				},
			}),
		},
		{
			Type:                 model.ExerciseWriting,
			Title:                "Reschedule a Meeting",
			Description:          "Write a polite email moving a meeting.",
			Difficulty:           model.DifficultyHard,
			EstimatedTimeSeconds: 900,
			RequiredOverallLevel: 3,
			IsActive:             true,
			Content: mustJSON(model.WritingContent{Prompt: model.WritingPrompt{
				ID:             "w1",
				Title:          "Reschedule",
				Scenario:       "You need to move tomorrow's client meeting to next week.",
				Context:        "The client is a long-standing partner.",
				TargetAudience: "client",
				DesiredTone:    "polite and professional",
				WordCountMin:   80,
				WordCountMax:   150,
			}}),
		},
	}
}
