package controller

import (
	"lingo_backend/internal/service"
	"lingo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AIController struct {
	CoachService     *service.CoachService
	GeneratorService *service.ExerciseGeneratorService
}

func NewAIController(coachService *service.CoachService, generatorService *service.ExerciseGeneratorService) *AIController {
	return &AIController{
		CoachService:     coachService,
		GeneratorService: generatorService,
	}
}

// GenerateExerciseRequest swagger:model GenerateExerciseRequest
type GenerateExerciseRequest struct {
	Type string `json:"type" binding:"required"`
}

// GenerateExercise godoc
// @Summary AI 生成练习
// @Description 按最近正确率自适应难度，生成后保存并返回练习ID
// @Tags AI
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body GenerateExerciseRequest true "题型"
// @Success 200 {object} util.Response{data=service.GeneratedExercise}
// @Failure 400 {object} util.Response "题型无效"
// @Failure 502 {object} util.Response "模型调用失败"
// @Router /api/ai/generate-exercise [post]
func (c *AIController) GenerateExercise(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GenerateExerciseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.GeneratorService.Generate(ctx.Request.Context(), claims.UserID, req.Type)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// Coach godoc
// @Summary AI 学习教练
// @Description 基于统计数据生成学习建议
// @Tags AI
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.CoachReport}
// @Failure 502 {object} util.Response "模型调用失败"
// @Router /api/ai/coach [get]
func (c *AIController) Coach(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	report, err := c.CoachService.Analyze(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, report)
}
