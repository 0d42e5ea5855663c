package model

import (
	"time"
)

// swagger:model User
type User struct {
	UUIDBase
	Name     string `gorm:"size:100;not null" json:"name"`
	Email    string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:100;not null" json:"-"`
	Image    string `gorm:"size:255" json:"image"`

	TotalXP      int `gorm:"not null;default:0" json:"totalXP"`
	OverallLevel int `gorm:"not null;default:1" json:"overallLevel"`

	GrammarXP    int `gorm:"not null;default:0" json:"grammarXP"`
	VocabularyXP int `gorm:"not null;default:0" json:"vocabularyXP"`
	ListeningXP  int `gorm:"not null;default:0" json:"listeningXP"`
	SpeakingXP   int `gorm:"not null;default:0" json:"speakingXP"`
	ReadingXP    int `gorm:"not null;default:0" json:"readingXP"`
	WritingXP    int `gorm:"not null;default:0" json:"writingXP"`

	GrammarLevel    int `gorm:"not null;default:1" json:"grammarLevel"`
	VocabularyLevel int `gorm:"not null;default:1" json:"vocabularyLevel"`
	ListeningLevel  int `gorm:"not null;default:1" json:"listeningLevel"`
	SpeakingLevel   int `gorm:"not null;default:1" json:"speakingLevel"`
	ReadingLevel    int `gorm:"not null;default:1" json:"readingLevel"`
	WritingLevel    int `gorm:"not null;default:1" json:"writingLevel"`

	CurrentStreak  int        `gorm:"not null;default:0" json:"currentStreak"`
	LongestStreak  int        `gorm:"not null;default:0" json:"longestStreak"`
	LastActiveDate *time.Time `json:"lastActiveDate"`

	// Version 乐观锁版本号，每次进度写入递增
	Version int `gorm:"not null;default:0" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// NewUser 新账号：XP 为 0，所有等级为 1，没有连续学习记录
func NewUser(name, email, passwordHash string) *User {
	return &User{
		Name:            name,
		Email:           email,
		Password:        passwordHash,
		OverallLevel:    1,
		GrammarLevel:    1,
		VocabularyLevel: 1,
		ListeningLevel:  1,
		SpeakingLevel:   1,
		ReadingLevel:    1,
		WritingLevel:    1,
	}
}

func (u *User) SkillXP() SkillSet {
	return SkillSet{
		Grammar:    u.GrammarXP,
		Vocabulary: u.VocabularyXP,
		Listening:  u.ListeningXP,
		Speaking:   u.SpeakingXP,
		Reading:    u.ReadingXP,
		Writing:    u.WritingXP,
	}
}

func (u *User) SkillLevels() SkillSet {
	return SkillSet{
		Grammar:    u.GrammarLevel,
		Vocabulary: u.VocabularyLevel,
		Listening:  u.ListeningLevel,
		Speaking:   u.SpeakingLevel,
		Reading:    u.ReadingLevel,
		Writing:    u.WritingLevel,
	}
}

func (u *User) SetSkillXP(s SkillSet) {
	u.GrammarXP = s.Grammar
	u.VocabularyXP = s.Vocabulary
	u.ListeningXP = s.Listening
	u.SpeakingXP = s.Speaking
	u.ReadingXP = s.Reading
	u.WritingXP = s.Writing
}

func (u *User) SetSkillLevels(s SkillSet) {
	u.GrammarLevel = s.Grammar
	u.VocabularyLevel = s.Vocabulary
	u.ListeningLevel = s.Listening
	u.SpeakingLevel = s.Speaking
	u.ReadingLevel = s.Reading
	u.WritingLevel = s.Writing
}
