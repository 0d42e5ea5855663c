package llm

import (
	"context"
	"time"

	"lingo_backend/pkg/logger"
	"lingo_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// LoggingProvider 记录每次调用的耗时、用量和结果
type LoggingProvider struct {
	inner    Provider
	provider string
}

func WithLogging(p Provider, provider string) Provider {
	return &LoggingProvider{inner: p, provider: provider}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	fields := []zap.Field{
		zap.String("provider", l.provider),
		zap.String("model", l.inner.ModelID()),
		zap.String("purpose", purpose),
		zap.Duration("latency", time.Since(start)),
	}
	if resp != nil {
		fields = append(fields,
			zap.Int("input_tokens", resp.Usage.InputTokens),
			zap.Int("output_tokens", resp.Usage.OutputTokens),
		)
	}

	status := "ok"
	if err != nil {
		status = "error"
		logger.Log.Warn("Model request failed", append(fields, zap.Error(err))...)
	} else {
		logger.Log.Info("Model request completed", fields...)
	}
	monitoring.LLMRequests.WithLabelValues(l.provider, purpose, status).Inc()

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
