package service

import (
	"lingo_backend/internal/llm"
	"lingo_backend/internal/model"
)

func str() map[string]any { return map[string]any{"type": "string"} }
func integer() map[string]any { return map[string]any{"type": "integer"} }

func strEnum(values ...string) map[string]any {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return map[string]any{"type": "string", "enum": enum}
}

// object 所有属性必填且不允许额外属性，满足结构化输出的严格模式
func object(props map[string]any) map[string]any {
	required := make([]any, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func array(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func choiceQuestion(textField string, extra map[string]any) map[string]any {
	props := map[string]any{
		"id":            str(),
		textField:       str(),
		"options":       array(str()),
		"correctAnswer": str(),
		"explanation":   str(),
	}
	for k, v := range extra {
		props[k] = v
	}
	return object(props)
}

// exerciseSchemas 每种可生成题型的内容结构，与 model 中的内容类型一一对应
var exerciseSchemas = map[model.ExerciseType]*llm.Schema{
	model.ExerciseGrammar: {
		Name:        "grammar-exercise",
		Description: "Fill-in-the-blank grammar questions; the blank is written as ___",
		Definition: object(map[string]any{
			"questions": array(choiceQuestion("sentence", nil)),
		}),
	},
	model.ExerciseVocabulary: {
		Name:        "vocabulary-exercise",
		Description: "Vocabulary flash cards with workplace examples",
		Definition: object(map[string]any{
			"cards": array(object(map[string]any{
				"id":              str(),
				"word":            str(),
				"definition":      str(),
				"example":         str(),
				"businessContext": str(),
			})),
		}),
	},
	model.ExerciseReading: {
		Name:        "reading-exercise",
		Description: "A short business document followed by comprehension questions",
		Definition: object(map[string]any{
			"passage": object(map[string]any{
				"title":     str(),
				"type":      strEnum("email", "article", "report", "memo"),
				"content":   str(),
				"wordCount": integer(),
			}),
			"questions": array(choiceQuestion("question", map[string]any{
				"type": strEnum("multiple-choice", "true-false"),
			})),
		}),
	},
	model.ExerciseWriting: {
		Name:        "writing-exercise",
		Description: "A workplace writing task",
		Definition: object(map[string]any{
			"prompt": object(map[string]any{
				"id":             str(),
				"title":          str(),
				"scenario":       str(),
				"context":        strEnum("email", "presentation", "report", "meeting"),
				"targetAudience": strEnum("colleague", "manager", "client", "team"),
				"desiredTone":    strEnum("professional", "casual", "formal"),
				"wordCountMin":   integer(),
				"wordCountMax":   integer(),
			}),
		}),
	},
	model.ExerciseSpeaking: {
		Name:        "speaking-exercise",
		Description: "A spoken-answer prompt with a sample answer and tips",
		Definition: object(map[string]any{
			"prompt": object(map[string]any{
				"id":                 str(),
				"question":           str(),
				"sampleAnswer":       str(),
				"tips":               array(str()),
				"maxDurationSeconds": integer(),
			}),
		}),
	},
}

var difficultyGuidance = map[model.Difficulty]string{
	model.DifficultyEasy:   "Beginner level. Use simple, common vocabulary. Short sentences. Clear context.",
	model.DifficultyMedium: "Intermediate. Business terminology expected. Realistic scenarios.",
	model.DifficultyHard:   "Advanced. Complex grammar, nuanced vocabulary, multi-step scenarios.",
}

var estimatedSeconds = map[model.ExerciseType]int{
	model.ExerciseGrammar:    180,
	model.ExerciseVocabulary: 300,
	model.ExerciseReading:    360,
	model.ExerciseWriting:    720,
	model.ExerciseSpeaking:   300,
}
