package repository

import (
	"context"
	"errors"
	"time"

	"lingo_backend/internal/model"
	"lingo_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ProgressMutation 在已加锁的用户行上计算新状态，返回需要追加的练习记录
type ProgressMutation func(user *model.User) (*model.UserProgress, error)

// ApplyProgress 在一个事务内完成：行锁读取用户、计算、按版本号更新用户、写入练习记录。
// 任一步失败则整体回滚；版本号不匹配返回 util.ErrWriteConflict。
func (r *UserRepository) ApplyProgress(ctx context.Context, userID string, mutate ProgressMutation) (*model.User, error) {
	var updated model.User

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", userID).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUserNotFound
		}
		if err != nil {
			return err
		}

		prevVersion := user.Version
		record, err := mutate(&user)
		if err != nil {
			return err
		}
		user.Version = prevVersion + 1

		res := tx.Model(&model.User{}).
			Where("id = ? AND version = ?", user.ID, prevVersion).
			Updates(progressColumns(&user))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrWriteConflict
		}

		record.UserID = user.ID
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// progressColumns 进度写入涉及的全部列，使用 map 以便零值也被写入
func progressColumns(u *model.User) map[string]interface{} {
	return map[string]interface{}{
		"total_xp":         u.TotalXP,
		"overall_level":    u.OverallLevel,
		"grammar_xp":       u.GrammarXP,
		"vocabulary_xp":    u.VocabularyXP,
		"listening_xp":     u.ListeningXP,
		"speaking_xp":      u.SpeakingXP,
		"reading_xp":       u.ReadingXP,
		"writing_xp":       u.WritingXP,
		"grammar_level":    u.GrammarLevel,
		"vocabulary_level": u.VocabularyLevel,
		"listening_level":  u.ListeningLevel,
		"speaking_level":   u.SpeakingLevel,
		"reading_level":    u.ReadingLevel,
		"writing_level":    u.WritingLevel,
		"current_streak":   u.CurrentStreak,
		"longest_streak":   u.LongestStreak,
		"last_active_date": u.LastActiveDate,
		"version":          u.Version,
	}
}

// CountLastActiveOn 统计最后学习日为 day 的用户数
func (r *UserRepository) CountLastActiveOn(ctx context.Context, day time.Time) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("last_active_date >= ? AND last_active_date < ?", day, day.AddDate(0, 0, 1)).
		Count(&count).Error
	return count, err
}
