package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"lingo_backend/internal/config"
	"lingo_backend/internal/controller"
	"lingo_backend/internal/gamification"
	"lingo_backend/internal/llm"
	"lingo_backend/internal/repository"
	"lingo_backend/internal/scheduler"
	"lingo_backend/internal/service"
	"lingo_backend/pkg/configwatcher"
	"lingo_backend/pkg/database"
	"lingo_backend/pkg/logger"
	"lingo_backend/pkg/monitoring"
	"lingo_backend/pkg/security"
	"lingo_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Rules           *gamification.RuleSet
	scheduler       *scheduler.Scheduler
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	exercise   *repository.ExerciseRepository
	progress   *repository.ProgressRepository
	statsCache *repository.StatsCache
}

type services struct {
	auth      *service.AuthService
	progress  *service.ProgressService
	stats     *service.StatsService
	exercise  *service.ExerciseService
	generator *service.ExerciseGeneratorService
	coach     *service.CoachService
	export    *service.ExportService
}

type controllers struct {
	auth     *controller.AuthController
	progress *controller.ProgressController
	exercise *controller.ExerciseController
	ai       *controller.AIController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) reloadConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

// reloadRules 热更新 XP 和等级参数，无效配置保留旧规则
func (a *App) reloadRules(cfg *config.Config) {
	rules, err := gamification.RulesFromConfig(cfg.Gamification)
	if err != nil {
		logger.Log.Error("Ignoring invalid gamification config", zap.Error(err))
		return
	}
	a.Rules.Store(rules)
	logger.Log.Info("Gamification rules reloaded")
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		exercise:   repository.NewExerciseRepository(db),
		progress:   repository.NewProgressRepository(db),
		statsCache: repository.NewStatsCache(rdb, cfg.Stats.CacheTTL),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, provider llm.Provider) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.progress = service.NewProgressService(repos.user, repos.exercise, repos.statsCache, a.Rules, cfg.Database.QueryTimeout)
	s.stats = service.NewStatsService(repos.user, repos.progress, repos.statsCache, a.Rules, cfg.Stats.WindowDays)
	s.exercise = service.NewExerciseService(repos.exercise, repos.user)
	s.generator = service.NewExerciseGeneratorService(provider, repos.exercise, repos.user, cfg.AI.MaxTokens, cfg.AI.Timeout)
	s.coach = service.NewCoachService(provider, s.stats, cfg.AI.MaxTokens, cfg.AI.Timeout)
	s.export = service.NewExportService(repos.progress, a.Rules, service.NewStorageService(&cfg.Storage))

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		progress: controller.NewProgressController(s.progress, s.stats, s.export),
		exercise: controller.NewExerciseController(s.exercise),
		ai:       controller.NewAIController(s.coach, s.generator),
		health:   controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute, "/metrics", "/api/health"))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(repos *repositories, cfg *config.Config) {
	if !cfg.Scheduler.Enabled {
		return
	}
	a.scheduler = scheduler.New(repos.user, a.Rules, time.Duration(cfg.Scheduler.IntervalMinutes)*time.Minute)
	if err := a.scheduler.Start(); err != nil {
		logger.Log.Error("Failed to start scheduler", zap.Error(err))
		a.scheduler = nil
	}
}

func newProvider(cfg config.AIConfig) llm.Provider {
	provider, err := llm.NewProvider(context.Background(), cfg)
	if err != nil {
		logger.Log.Warn("AI provider unavailable, AI endpoints will fail", zap.Error(err))
		return llm.Unavailable(err)
	}
	logger.Log.Info("AI provider initialized",
		zap.String("provider", cfg.Provider),
		zap.String("model", provider.ModelID()),
	)
	return provider
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	rules, err := gamification.RulesFromConfig(cfg.Gamification)
	if err != nil {
		logger.Log.Fatal("Invalid gamification config", zap.Error(err))
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Rules:  gamification.NewRuleSet(rules),
	}

	if cfg.MigrateOnly {
		return app
	}

	// 缓存是可选的，不可用时统计直接查库
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, stats cache disabled", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("lingo-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg, newProvider(cfg.AI))
	controllers := app.initControllers(services)

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if services.export.Storage.Provider.Name() == service.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(app.reloadRules)
	app.startBackgroundTasks(repos, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		if err := configwatcher.WatchConfig(watchCtx, filepath.Clean(configFile), a.reloadConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
