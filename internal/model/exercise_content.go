package model

import (
	"encoding/json"
	"fmt"
)

// ExerciseContent is the typed view of Exercise.Content. Exactly one field is
// set, matching Type; the progress engine never looks inside.
type ExerciseContent struct {
	Type       ExerciseType       `json:"type"`
	Grammar    *GrammarContent    `json:"grammar,omitempty"`
	Vocabulary *VocabularyContent `json:"vocabulary,omitempty"`
	Listening  *ListeningContent  `json:"listening,omitempty"`
	Speaking   *SpeakingContent   `json:"speaking,omitempty"`
	Reading    *ReadingContent    `json:"reading,omitempty"`
	Writing    *WritingContent    `json:"writing,omitempty"`
}

type ChoiceQuestion struct {
	ID            string   `json:"id"`
	Sentence      string   `json:"sentence,omitempty"`
	Question      string   `json:"question,omitempty"`
	Type          string   `json:"type,omitempty"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type GrammarContent struct {
	Questions []ChoiceQuestion `json:"questions"`
}

type VocabularyCard struct {
	ID              string `json:"id"`
	Word            string `json:"word"`
	Definition      string `json:"definition"`
	Example         string `json:"example"`
	BusinessContext string `json:"businessContext"`
}

type VocabularyContent struct {
	Cards []VocabularyCard `json:"cards"`
}

type ListeningContent struct {
	AudioURL   string           `json:"audioUrl"`
	Transcript string           `json:"transcript"`
	Questions  []ChoiceQuestion `json:"questions"`
}

type SpeakingPrompt struct {
	ID                 string   `json:"id"`
	Question           string   `json:"question"`
	SampleAnswer       string   `json:"sampleAnswer"`
	Tips               []string `json:"tips"`
	MaxDurationSeconds int      `json:"maxDurationSeconds"`
}

type SpeakingContent struct {
	Prompt SpeakingPrompt `json:"prompt"`
}

type ReadingPassage struct {
	Title     string `json:"title"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	WordCount int    `json:"wordCount"`
}

type ReadingContent struct {
	Passage   ReadingPassage   `json:"passage"`
	Questions []ChoiceQuestion `json:"questions"`
}

type WritingPrompt struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Scenario       string `json:"scenario"`
	Context        string `json:"context"`
	TargetAudience string `json:"targetAudience"`
	DesiredTone    string `json:"desiredTone"`
	WordCountMin   int    `json:"wordCountMin"`
	WordCountMax   int    `json:"wordCountMax"`
}

type WritingContent struct {
	Prompt WritingPrompt `json:"prompt"`
}

// DecodeContent parses raw exercise content according to its type tag.
func DecodeContent(t ExerciseType, raw JSON) (*ExerciseContent, error) {
	out := &ExerciseContent{Type: t}
	if len(raw) == 0 {
		return out, nil
	}

	var target interface{}
	switch t {
	case ExerciseGrammar:
		out.Grammar = &GrammarContent{}
		target = out.Grammar
	case ExerciseVocabulary:
		out.Vocabulary = &VocabularyContent{}
		target = out.Vocabulary
	case ExerciseListening:
		out.Listening = &ListeningContent{}
		target = out.Listening
	case ExerciseSpeaking:
		out.Speaking = &SpeakingContent{}
		target = out.Speaking
	case ExerciseReading:
		out.Reading = &ReadingContent{}
		target = out.Reading
	case ExerciseWriting:
		out.Writing = &WritingContent{}
		target = out.Writing
	default:
		return nil, fmt.Errorf("unknown exercise type %q", t)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode %s content: %w", t, err)
	}
	return out, nil
}
