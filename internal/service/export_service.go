package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"lingo_backend/internal/gamification"
	"lingo_backend/internal/repository"
	"lingo_backend/internal/util"
	"lingo_backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	historySheet = "History"
	dailySheet   = "Daily"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var historyHeader = []interface{}{
	"Completed At", "Type", "Title", "Difficulty", "Accuracy", "Time (s)", "XP", "Questions", "Correct",
}

var dailyHeader = []interface{}{"Date", "Exercises", "XP", "Avg Accuracy"}

// ExportService 导出练习记录为 Excel 文件
type ExportService struct {
	ProgressRepo *repository.ProgressRepository
	Rules        *gamification.RuleSet
	Storage      *StorageService
	now          func() time.Time
}

func NewExportService(progressRepo *repository.ProgressRepository, rules *gamification.RuleSet, storage *StorageService) *ExportService {
	return &ExportService{ProgressRepo: progressRepo, Rules: rules, Storage: storage, now: time.Now}
}

// ExportArchive 已归档导出文件的位置
type ExportArchive struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Size      int       `json:"size"`
	Backend   string    `json:"backend"`
	CreatedAt time.Time `json:"createdAt"`
}

// Filename 下载文件名，按用户时区的日期命名
func (s *ExportService) Filename() string {
	return fmt.Sprintf("progress-%s.xlsx", s.now().In(s.Rules.Load().Location).Format("20060102"))
}

// ArchiveProgress 生成导出文件并上传到存储后端
func (s *ExportService) ArchiveProgress(ctx context.Context, userID string) (*ExportArchive, error) {
	data, err := s.ExportProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	key := fmt.Sprintf("exports/%s/%s-%s", userID, uuid.NewString(), s.Filename())
	u, err := s.Storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), XLSXContentType)
	if err != nil {
		return nil, util.UpstreamError("failed to archive export", err)
	}

	logger.Log.Info("Progress export archived",
		zap.String("user_id", userID),
		zap.String("key", key),
		zap.String("backend", s.Storage.Provider.Name()),
		zap.Int("bytes", len(data)),
	)
	return &ExportArchive{
		Key:       key,
		URL:       u,
		Size:      len(data),
		Backend:   s.Storage.Provider.Name(),
		CreatedAt: now.UTC(),
	}, nil
}

// ExportProgress 生成包含明细和按日汇总两个工作表的 xlsx
func (s *ExportService) ExportProgress(ctx context.Context, userID string) ([]byte, error) {
	rows, err := s.ProgressRepo.History(ctx, userID)
	if err != nil {
		return nil, util.InternalError("failed to load progress history", err)
	}
	records, err := s.ProgressRepo.ListSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, util.InternalError("failed to load progress history", err)
	}

	loc := s.Rules.Load().Location

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(historySheet, "A1", &historyHeader); err != nil {
		return nil, err
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			r.CompletedAt.In(loc).Format(util.TimeFormat),
			string(r.Type),
			r.Title,
			string(r.Difficulty),
			r.Accuracy,
			r.TimeSpentSeconds,
			r.XPEarned,
			r.QuestionsTotal,
			r.QuestionsCorrect,
		}
		if err := f.SetSheetRow(historySheet, cell, &values); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(dailySheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(dailySheet, "A1", &dailyHeader); err != nil {
		return nil, err
	}
	for i, d := range AggregateDaily(records, loc) {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{d.Date, d.ExercisesCompleted, d.TotalXP, d.AvgAccuracy}
		if err := f.SetSheetRow(dailySheet, cell, &values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
