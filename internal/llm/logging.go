package llm

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/abhisek/kidquest/internal/store"
)

// LoggingProvider records every request as an llm_request event and logs
// it. Recording failures never fail the request.
type LoggingProvider struct {
	inner  Provider
	repo   store.EventRepo
	logger hclog.Logger
	now    func() time.Time
}

// WithLogging wraps p. A nil repo only logs.
func WithLogging(p Provider, repo store.EventRepo, logger hclog.Logger) Provider {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &LoggingProvider{inner: p, repo: repo, logger: logger, now: time.Now}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := l.now()
	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:  l.inner.Name(),
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: l.now().Sub(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		l.logger.Warn("LLM request failed", "provider", data.Provider, "model", data.Model, "purpose", data.Purpose, "error", err)
	} else {
		l.logger.Debug("LLM request", "provider", data.Provider, "model", data.Model, "purpose", data.Purpose,
			"input_tokens", data.InputTokens, "output_tokens", data.OutputTokens, "latency_ms", data.LatencyMs)
	}

	if l.repo != nil {
		// Recording must survive the caller's deadline expiring mid-request.
		if logErr := l.repo.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
			l.logger.Warn("failed to record LLM request", "error", logErr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) Name() string    { return l.inner.Name() }
func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }
