package controller

import (
	"lingo_backend/internal/service"
	"lingo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExerciseController struct {
	ExerciseService *service.ExerciseService
}

func NewExerciseController(exerciseService *service.ExerciseService) *ExerciseController {
	return &ExerciseController{ExerciseService: exerciseService}
}

// ListExercises godoc
// @Summary 可做的练习列表
// @Description 只返回当前总等级已解锁的练习
// @Tags 练习
// @Produce json
// @Security ApiKeyAuth
// @Param type query string false "题型"
// @Param difficulty query string false "难度"
// @Success 200 {object} util.Response{data=[]model.Exercise}
// @Router /api/exercises [get]
func (c *ExerciseController) ListExercises(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	exercises, err := c.ExerciseService.ListExercises(ctx.Request.Context(), claims.UserID, service.ExerciseListQuery{
		Type:       ctx.Query("type"),
		Difficulty: ctx.Query("difficulty"),
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, exercises)
}

// GetExercise godoc
// @Summary 练习详情
// @Tags 练习
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "练习ID"
// @Success 200 {object} util.Response{data=service.ExerciseDetail}
// @Failure 403 {object} util.Response "等级不足"
// @Failure 404 {object} util.Response "练习不存在"
// @Router /api/exercises/{id} [get]
func (c *ExerciseController) GetExercise(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.ExerciseService.GetExercise(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}
