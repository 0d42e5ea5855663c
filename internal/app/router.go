package app

import (
	"lingo_backend/internal/config"
	"lingo_backend/internal/middleware"
	"lingo_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerAIRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	// 进度与统计
	rg.POST("/progress/record", c.progress.RecordProgress)
	rg.GET("/me/stats", c.progress.GetStats)
	rg.GET("/me/progress/export", c.progress.ExportProgress)
	rg.POST("/me/progress/export/archive", c.progress.ArchiveProgress)

	// 练习
	rg.GET("/exercises", c.exercise.ListExercises)
	rg.GET("/exercises/:id", c.exercise.GetExercise)
}

func (a *App) registerAIRoutes(rg *gin.RouterGroup, c *controllers) {
	ai := rg.Group("/ai")
	{
		ai.POST("/generate-exercise", c.ai.GenerateExercise)
		ai.GET("/coach", c.ai.Coach)
	}
}
