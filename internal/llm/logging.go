package llm

import (
	"context"
	"log/slog"
	"time"
)

// LoggingProvider is a decorator that writes one structured log line per
// completion request. Prompt and completion text are not logged.
type LoggingProvider struct {
	inner    Provider
	provider string
	logger   *slog.Logger
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, providerName string, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{inner: p, provider: providerName, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	attrs := []any{
		"provider", l.provider,
		"model", l.inner.ModelID(),
		"latency_ms", time.Since(start).Milliseconds(),
		"success", err == nil,
		"system_chars", len(req.System),
		"messages", len(req.Messages),
	}

	if resp != nil {
		attrs = append(attrs,
			"served_model", resp.Model,
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens,
			"stop_reason", resp.StopReason,
		)
	}

	if err != nil {
		attrs = append(attrs, "error", err.Error())
		l.logger.WarnContext(ctx, "LLM request failed", attrs...)
		return nil, err
	}

	l.logger.InfoContext(ctx, "LLM request completed", attrs...)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
