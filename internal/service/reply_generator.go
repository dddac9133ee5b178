package service

import (
	"context"
	"time"

	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/metrics"
	"support-chat-be/pkg/llm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	SystemInstruction = "You're a helpful assistant."
	PlaceholderReply  = "AI is not configured yet. Please set GROQ_API_KEY."
)

// IReplyGenerator produces the assistant's answer to one user message.
type IReplyGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type replyGenerator struct {
	provider llm.LLMProvider
	options  []llm.Option
	logger   logger.ILogger
	tracer   trace.Tracer
}

// NewReplyGenerator wraps provider. A nil provider means no credential was
// configured and every call answers with PlaceholderReply. options are sent
// with every request.
func NewReplyGenerator(provider llm.LLMProvider, log logger.ILogger, options ...llm.Option) IReplyGenerator {
	return &replyGenerator{
		provider: provider,
		options:  options,
		logger:   log,
		tracer:   otel.Tracer("support-chat-be/reply"),
	}
}

func (g *replyGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.provider == nil {
		metrics.ReplyDuration.WithLabelValues(metrics.OutcomeUnconfigured).Observe(0)
		return PlaceholderReply, nil
	}

	ctx, span := g.tracer.Start(ctx, "reply.generate")
	defer span.End()
	span.SetAttributes(attribute.Int("prompt.length", len(prompt)))

	start := time.Now()
	reply, err := g.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: SystemInstruction},
		{Role: llm.RoleUser, Content: prompt},
	}, g.options...)
	elapsed := time.Since(start)

	if err != nil {
		metrics.ReplyDuration.WithLabelValues(metrics.OutcomeError).Observe(elapsed.Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, "reply generation failed")
		return "", err
	}

	metrics.ReplyDuration.WithLabelValues(metrics.OutcomeOK).Observe(elapsed.Seconds())
	span.SetAttributes(attribute.Int("reply.length", len(reply)))
	g.logger.Debug("REPLY", "Reply generated", map[string]interface{}{
		"duration_ms": elapsed.Milliseconds(),
	})
	return reply, nil
}
