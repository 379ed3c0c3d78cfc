package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/abhisek/kidquest/internal/llm"

// TracingProvider opens an "llm.generate" span around each request.
type TracingProvider struct {
	inner  Provider
	tracer trace.Tracer
}

// WithTracing wraps p using the global tracer provider.
func WithTracing(p Provider) Provider {
	return &TracingProvider{inner: p, tracer: otel.Tracer(tracerName)}
}

func (t *TracingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attrs := []attribute.KeyValue{
		attribute.String("llm.provider", t.inner.Name()),
		attribute.String("llm.model", t.inner.ModelID()),
		attribute.String("llm.purpose", PurposeFrom(ctx)),
	}
	if req.Schema != nil {
		attrs = append(attrs, attribute.String("llm.schema", req.Schema.Name))
	}
	ctx, span := t.tracer.Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
	defer span.End()

	resp, err := t.inner.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate")
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("llm.input_tokens", resp.Usage.InputTokens),
		attribute.Int("llm.output_tokens", resp.Usage.OutputTokens),
		attribute.String("llm.stop_reason", resp.StopReason),
	)
	return resp, nil
}

func (t *TracingProvider) Name() string    { return t.inner.Name() }
func (t *TracingProvider) ModelID() string { return t.inner.ModelID() }
