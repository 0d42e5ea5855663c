package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProgress 一次练习完成记录，只追加不修改
// swagger:model UserProgress
type UserProgress struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID           string    `gorm:"type:varchar(36);index;not null" json:"userId"`
	ExerciseID       string    `gorm:"type:varchar(36);index;not null" json:"exerciseId"`
	Accuracy         float64   `gorm:"not null" json:"accuracy"`
	TimeSpentSeconds int       `gorm:"not null" json:"timeSpentSeconds"`
	XPEarned         int       `gorm:"column:xp_earned;not null" json:"xpEarned"`
	QuestionsTotal   int       `json:"questionsTotal"`
	QuestionsCorrect int       `json:"questionsCorrect"`
	CompletedAt      time.Time `gorm:"not null;index" json:"completedAt"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

func (p *UserProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
