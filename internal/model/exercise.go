package model

import "fmt"

type ExerciseType string

const (
	ExerciseGrammar    ExerciseType = "grammar"
	ExerciseVocabulary ExerciseType = "vocabulary"
	ExerciseListening  ExerciseType = "listening"
	ExerciseSpeaking   ExerciseType = "speaking"
	ExerciseReading    ExerciseType = "reading"
	ExerciseWriting    ExerciseType = "writing"
)

var ExerciseTypes = []ExerciseType{
	ExerciseGrammar,
	ExerciseVocabulary,
	ExerciseListening,
	ExerciseSpeaking,
	ExerciseReading,
	ExerciseWriting,
}

func (t ExerciseType) Valid() bool {
	for _, et := range ExerciseTypes {
		if t == et {
			return true
		}
	}
	return false
}

func ParseExerciseType(s string) (ExerciseType, error) {
	t := ExerciseType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown exercise type %q", s)
	}
	return t, nil
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Exercise 练习题描述，内容按题型存放为不透明 JSON
// swagger:model Exercise
type Exercise struct {
	UUIDBase
	Type                 ExerciseType `gorm:"size:20;index;not null" json:"type"`
	Title                string       `gorm:"size:200;not null" json:"title"`
	Description          string       `gorm:"type:text" json:"description"`
	Difficulty           Difficulty   `gorm:"size:10;not null" json:"difficulty"`
	EstimatedTimeSeconds int          `json:"estimatedTimeSeconds"`
	RequiredOverallLevel int          `gorm:"not null;default:1" json:"requiredOverallLevel"`
	IsActive             bool         `gorm:"index" json:"isActive"`
	Content              JSON         `json:"content"`
	CreatedByUserID      *string      `gorm:"type:varchar(36);index" json:"createdByUserId,omitempty"`
}

func (Exercise) TableName() string {
	return "exercises"
}
