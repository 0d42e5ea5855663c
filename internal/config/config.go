package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Tracing      TracingConfig `mapstructure:"tracing"`
	Redis        RedisConfig
	AI           AIConfig
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Stats        StatsConfig        `mapstructure:"stats"`
	Gamification GamificationConfig `mapstructure:"gamification"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Storage      StorageConfig      `mapstructure:"storage"`

	// 运行时标志，通过命令行参数设置
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// AIConfig selects the provider used by the coach and the exercise generator.
type AIConfig struct {
	Provider        string        `mapstructure:"provider"`
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	AnthropicModel  string        `mapstructure:"anthropic_model"`
	GeminiAPIKey    string        `mapstructure:"gemini_api_key"`
	GeminiModel     string        `mapstructure:"gemini_model"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	Charset      string
	ParseTime    bool
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// StorageConfig 导出归档的存储后端：local、minio 或 oss
type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type StatsConfig struct {
	WindowDays int           `mapstructure:"window_days"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

type SchedulerConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
}

// GamificationConfig holds the product-tuning parameters of the XP and level rules.
type GamificationConfig struct {
	Timezone string         `mapstructure:"timezone"`
	XP       XPConfig       `mapstructure:"xp"`
	Level    LevelConfig    `mapstructure:"level"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

type XPConfig struct {
	Base                  map[string]int `mapstructure:"base"`
	SpeedTargetSeconds    map[string]int `mapstructure:"speed_target_seconds"`
	AccuracyBonusRatio    float64        `mapstructure:"accuracy_bonus_ratio"`
	SpeedBonusMax         int            `mapstructure:"speed_bonus_max"`
	SpeedBonusMinAccuracy float64        `mapstructure:"speed_bonus_min_accuracy"`
	StreakBonusPerDay     int            `mapstructure:"streak_bonus_per_day"`
	StreakBonusCapDays    int            `mapstructure:"streak_bonus_cap_days"`
}

type LevelConfig struct {
	SkillBaseXP     int `mapstructure:"skill_base_xp"`
	MaxSkillLevel   int `mapstructure:"max_skill_level"`
	OverallBaseXP   int `mapstructure:"overall_base_xp"`
	MaxOverallLevel int `mapstructure:"max_overall_level"`
	BalanceWeight   int `mapstructure:"balance_weight"`
}

type DefaultsConfig struct {
	FallbackSkill string `mapstructure:"fallback_skill"`
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("database.charset", "utf8mb4")
	viper.SetDefault("database.parsetime", true)
	viper.SetDefault("database.query_timeout", 5*time.Second)
	viper.SetDefault("jwt.expire_hours", 72)
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.max_tokens", 1500)
	viper.SetDefault("ai.timeout", 60*time.Second)
	viper.SetDefault("ai.max_attempts", 3)
	viper.SetDefault("ai.anthropic_model", "claude-haiku")
	viper.SetDefault("ai.gemini_model", "gemini-flash")
	viper.SetDefault("rate_limit.max_requests", 600)
	viper.SetDefault("rate_limit.window_minutes", 1)
	viper.SetDefault("stats.window_days", 7)
	viper.SetDefault("stats.cache_ttl", 5*time.Minute)
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.interval_minutes", 5)
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local_path", "uploads")
	viper.SetDefault("gamification.timezone", "UTC")
	viper.SetDefault("gamification.defaults.fallback_skill", "grammar")
}

func LoadConfig(path string) (*Config, error) {
	v := viper.GetViper()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LINGO")
	v.AutomaticEnv()

	setDefaults()

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// AI
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.api_key", "AI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")
	v.BindEnv("ai.anthropic_api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("ai.gemini_api_key", "GEMINI_API_KEY")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if _, err := time.LoadLocation(cfg.Gamification.Timezone); err != nil {
		return nil, fmt.Errorf("invalid gamification timezone %q: %w", cfg.Gamification.Timezone, err)
	}

	return &cfg, nil
}
