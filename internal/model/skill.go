package model

import "fmt"

// Skill is an independently leveled competency axis.
type Skill string

const (
	SkillGrammar    Skill = "grammar"
	SkillVocabulary Skill = "vocabulary"
	SkillListening  Skill = "listening"
	SkillSpeaking   Skill = "speaking"
	SkillReading    Skill = "reading"
	SkillWriting    Skill = "writing"
)

// Skills lists every skill in display order.
var Skills = []Skill{
	SkillGrammar,
	SkillVocabulary,
	SkillListening,
	SkillSpeaking,
	SkillReading,
	SkillWriting,
}

func ParseSkill(s string) (Skill, error) {
	for _, sk := range Skills {
		if string(sk) == s {
			return sk, nil
		}
	}
	return "", fmt.Errorf("unknown skill %q", s)
}

// SkillSet holds one integer per skill, used for both XP totals and levels.
type SkillSet struct {
	Grammar    int `json:"grammar"`
	Vocabulary int `json:"vocabulary"`
	Listening  int `json:"listening"`
	Speaking   int `json:"speaking"`
	Reading    int `json:"reading"`
	Writing    int `json:"writing"`
}

func (s SkillSet) Get(skill Skill) int {
	if p := s.field(skill); p != nil {
		return *p
	}
	return 0
}

func (s *SkillSet) Set(skill Skill, v int) {
	if p := s.field(skill); p != nil {
		*p = v
	}
}

func (s *SkillSet) Add(skill Skill, delta int) {
	if p := s.field(skill); p != nil {
		*p += delta
	}
}

// Plus returns the element-wise sum.
func (s SkillSet) Plus(o SkillSet) SkillSet {
	out := s
	for _, sk := range Skills {
		out.Add(sk, o.Get(sk))
	}
	return out
}

// AtLeast returns the element-wise maximum of s and floor.
func (s SkillSet) AtLeast(floor SkillSet) SkillSet {
	out := s
	for _, sk := range Skills {
		if floor.Get(sk) > out.Get(sk) {
			out.Set(sk, floor.Get(sk))
		}
	}
	return out
}

func (s SkillSet) Min() int {
	m := s.Get(Skills[0])
	for _, sk := range Skills[1:] {
		if v := s.Get(sk); v < m {
			m = v
		}
	}
	return m
}

func (s SkillSet) Sum() int {
	total := 0
	for _, sk := range Skills {
		total += s.Get(sk)
	}
	return total
}

func (s *SkillSet) field(skill Skill) *int {
	switch skill {
	case SkillGrammar:
		return &s.Grammar
	case SkillVocabulary:
		return &s.Vocabulary
	case SkillListening:
		return &s.Listening
	case SkillSpeaking:
		return &s.Speaking
	case SkillReading:
		return &s.Reading
	case SkillWriting:
		return &s.Writing
	}
	return nil
}
