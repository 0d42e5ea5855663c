package controller

import (
	"fmt"
	"net/http"

	"lingo_backend/internal/model"
	"lingo_backend/internal/service"
	"lingo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
	StatsService    *service.StatsService
	ExportService   *service.ExportService
}

func NewProgressController(progressService *service.ProgressService, statsService *service.StatsService, exportService *service.ExportService) *ProgressController {
	return &ProgressController{
		ProgressService: progressService,
		StatsService:    statsService,
		ExportService:   exportService,
	}
}

// RecordProgressPayload 练习完成上报；accuracy 使用指针以区分缺失和 0
// swagger:model RecordProgressPayload
type RecordProgressPayload struct {
	ExerciseID       string   `json:"exerciseId" binding:"required"`
	ExerciseType     string   `json:"exerciseType" binding:"required"`
	Accuracy         *float64 `json:"accuracy" binding:"required"`
	TimeSpentSeconds int      `json:"timeSpentSeconds"`
	QuestionsTotal   int      `json:"questionsTotal"`
	QuestionsCorrect int      `json:"questionsCorrect"`
}

// RecordProgress godoc
// @Summary 记录练习完成
// @Description 计算 XP、技能等级、总等级和连续学习天数，并写入练习记录
// @Tags 进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body RecordProgressPayload true "练习结果"
// @Success 200 {object} util.Response{data=service.RecordProgressResult}
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "用户或练习不存在"
// @Failure 409 {object} util.Response "并发写入冲突"
// @Router /api/progress/record [post]
func (c *ProgressController) RecordProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var payload RecordProgressPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressService.RecordProgress(ctx.Request.Context(), claims.UserID, service.RecordProgressRequest{
		ExerciseID:       payload.ExerciseID,
		ExerciseType:     model.ExerciseType(payload.ExerciseType),
		Accuracy:         *payload.Accuracy,
		TimeSpentSeconds: payload.TimeSpentSeconds,
		QuestionsTotal:   payload.QuestionsTotal,
		QuestionsCorrect: payload.QuestionsCorrect,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// GetStats godoc
// @Summary 我的学习统计
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserStats}
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/me/stats [get]
func (c *ProgressController) GetStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.StatsService.GetStats(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// ExportProgress godoc
// @Summary 导出练习记录
// @Tags 进度
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Success 200 {file} file
// @Router /api/me/progress/export [get]
func (c *ProgressController) ExportProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	data, err := c.ExportService.ExportProgress(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.ExportService.Filename()))
	ctx.Data(http.StatusOK, service.XLSXContentType, data)
}

// ArchiveProgress godoc
// @Summary 归档练习记录导出
// @Description 生成 xlsx 并上传到存储后端，返回下载地址
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ExportArchive}
// @Failure 502 {object} util.Response "存储后端不可用"
// @Router /api/me/progress/export/archive [post]
func (c *ProgressController) ArchiveProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	archive, err := c.ExportService.ArchiveProgress(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, archive)
}
