package llm

import (
	"context"
	"fmt"
	"time"

	"lingo_backend/internal/config"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// NewProvider 按配置创建 Provider，外层依次包裹重试和日志
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider)
	return WithRetry(logged, RetryConfig{
		MaxAttempts: cfg.MaxAttempts,
		InitialWait: time.Second,
		MaxWait:     10 * time.Second,
		Multiplier:  2.0,
	}), nil
}

// resolveModel 将友好名称映射为具体模型 ID，未知名称原样使用
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}

// Unavailable 返回一个始终失败的 Provider，用于模型未配置时让 AI 接口返回错误而不影响启动
func Unavailable(cause error) Provider {
	return unavailableProvider{cause: cause}
}

type unavailableProvider struct {
	cause error
}

func (p unavailableProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	return nil, &ErrProviderUnavailable{Err: p.cause}
}

func (p unavailableProvider) ModelID() string { return "unavailable" }
