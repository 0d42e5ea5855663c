package model

import "time"

// DailyActivity 某一天的练习汇总
type DailyActivity struct {
	Date               string `json:"date"`
	ExercisesCompleted int    `json:"exercisesCompleted"`
	TotalXP            int    `json:"totalXP"`
	AvgAccuracy        int    `json:"avgAccuracy"`
}

// ProgressTotals 全部历史汇总
type ProgressTotals struct {
	ExercisesCompleted int `json:"exercisesCompleted"`
	TotalTimeSeconds   int `json:"totalTimeSeconds"`
	AverageAccuracy    int `json:"averageAccuracy"`
}

// SkillBreakdown 按题型汇总，供 AI 教练使用
type SkillBreakdown struct {
	Type        ExerciseType `json:"type"`
	Count       int          `json:"count"`
	AvgAccuracy float64      `json:"avgAccuracy"`
	MinAccuracy float64      `json:"minAccuracy"`
	TotalXP     int          `json:"totalXP"`
}

// RecentExercise 最近完成的练习
type RecentExercise struct {
	Type        ExerciseType `json:"type"`
	Title       string       `json:"title"`
	Difficulty  Difficulty   `json:"difficulty"`
	Accuracy    float64      `json:"accuracy"`
	CompletedAt time.Time    `json:"completedAt"`
}

// ProgressSums 全部历史记录的原始累计值
type ProgressSums struct {
	Count        int64   `json:"count"`
	TimeSpentSum int64   `json:"timeSpentSum"`
	AccuracySum  float64 `json:"accuracySum"`
}

// ProgressHistoryRow 导出用的练习记录行
type ProgressHistoryRow struct {
	CompletedAt      time.Time    `json:"completedAt"`
	Type             ExerciseType `json:"type"`
	Title            string       `json:"title"`
	Difficulty       Difficulty   `json:"difficulty"`
	Accuracy         float64      `json:"accuracy"`
	TimeSpentSeconds int          `json:"timeSpentSeconds"`
	XPEarned         int          `json:"xpEarned"`
	QuestionsTotal   int          `json:"questionsTotal"`
	QuestionsCorrect int          `json:"questionsCorrect"`
}
