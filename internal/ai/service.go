package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"folio/internal/config"
	"folio/internal/errors"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// SessionPrefix starts every per-call session identifier
const SessionPrefix = "resume-builder-"

// Gateway makes single, stateless text-generation calls for one pipeline.
// A Gateway without a provider reports AI_UNAVAILABLE on every call.
type Gateway struct {
	provider      Provider
	breaker       *CircuitBreaker
	operation     string
	model         string
	timeout       time.Duration
	defaultSystem string
	metrics       MetricsRecorder
	logger        *errors.Logger
}

// GatewayOption customizes a Gateway
type GatewayOption func(*Gateway)

// WithMetrics attaches a recorder that is told about every upstream call
func WithMetrics(recorder MetricsRecorder) GatewayOption {
	return func(g *Gateway) {
		g.metrics = recorder
	}
}

// WithProvider replaces the provider built from configuration
func WithProvider(provider Provider) GatewayOption {
	return func(g *Gateway) {
		g.provider = provider
	}
}

// NewGateway creates a gateway for the given operation.
// No provider is created when the API key is empty; calls then fail with AI_UNAVAILABLE.
func NewGateway(ctx context.Context, cfg *config.OperationAIConfig, operation string, logger *errors.Logger, opts ...GatewayOption) (*Gateway, error) {
	g := &Gateway{
		breaker:       NewCircuitBreaker(operation, cfg, logger),
		operation:     operation,
		model:         cfg.Model,
		defaultSystem: cfg.SystemInstruction,
		logger:        logger,
	}
	if cfg.Timeout != nil {
		g.timeout = *cfg.Timeout
	}
	if g.defaultSystem == "" {
		g.defaultSystem = config.DefaultSystemInstruction
	}
	for _, opt := range opts {
		opt(g)
	}

	logger.Debug("Initializing AI gateway",
		"operation", operation,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"timeout", g.timeout,
		"circuit_breaker", cfg.CircuitBreaker.Enabled)

	if g.provider != nil || cfg.APIKey == "" {
		if g.provider == nil {
			logger.Warn("AI API key not configured, AI endpoints will report unavailable", "operation", operation)
		}
		return g, nil
	}

	switch cfg.Provider {
	case "gemini":
		provider, err := NewGeminiProvider(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		g.provider = provider
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	return g, nil
}

// Available reports whether a provider is configured
func (g *Gateway) Available() bool {
	return g != nil && g.provider != nil
}

// Generate sends prompt upstream exactly once and returns the raw reply text.
// An empty systemInstruction falls back to the configured default.
func (g *Gateway) Generate(ctx context.Context, prompt, systemInstruction string) (string, error) {
	if !g.Available() {
		return "", errors.NewConfigError(errors.ErrCodeAIUnavailable, "AI service not configured", nil)
	}
	if systemInstruction == "" {
		systemInstruction = g.defaultSystem
	}
	sessionID := SessionPrefix + uuid.NewString()

	ctx, span := otel.Tracer("folio.ai").Start(ctx, "ai.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.operation", g.operation),
		attribute.String("ai.model", g.model),
		attribute.String("ai.session_id", sessionID),
	)

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	g.logger.Debug("Calling AI provider",
		"operation", g.operation,
		"session_id", sessionID,
		"prompt_length", len(prompt))

	start := time.Now()
	resp, err := g.breaker.Execute(func() (*Response, error) {
		return g.provider.Generate(callCtx, Request{
			SessionID:         sessionID,
			Prompt:            prompt,
			SystemInstruction: systemInstruction,
		})
	})
	duration := time.Since(start)
	g.record(ctx, duration, resp, err)

	if err != nil {
		reason := classifyError(err)
		appErr := errors.NewAIError(errors.ErrCodeAIServiceFailed, fmt.Sprintf("AI service error: %v", err), err).
			WithContext("operation", g.operation).
			WithContext("session_id", sessionID).
			WithContext("reason", reason)

		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		g.logger.LogError(appErr, "AI generation failed", "duration_ms", duration.Milliseconds())
		return "", appErr
	}

	span.SetAttributes(attribute.Int("output.length", len(resp.Text)))
	g.logger.Debug("AI provider replied",
		"operation", g.operation,
		"session_id", sessionID,
		"duration_ms", duration.Milliseconds(),
		"response_length", len(resp.Text))

	return resp.Text, nil
}

func (g *Gateway) record(ctx context.Context, duration time.Duration, resp *Response, err error) {
	if g.metrics == nil {
		return
	}
	var input, output int64
	if resp != nil && resp.Usage != nil {
		input, output = resp.Usage.InputTokens, resp.Usage.OutputTokens
	}
	g.metrics.RecordAICall(ctx, g.operation, g.model, duration, input, output, err)
}

// GetModelInfo returns information about the AI model for health checks
func (g *Gateway) GetModelInfo(ctx context.Context) *ModelInfo {
	if !g.Available() {
		return &ModelInfo{Name: g.model, Error: "AI service not configured"}
	}
	return g.provider.GetModelInfo(ctx)
}

// Stats reports availability and circuit breaker state
func (g *Gateway) Stats() map[string]any {
	return map[string]any{
		"operation":       g.operation,
		"model":           g.model,
		"available":       g.Available(),
		"circuit_breaker": g.breaker.GetStats(),
		"healthy":         g.breaker.IsHealthy(),
	}
}

// Close releases the provider
func (g *Gateway) Close() error {
	if !g.Available() {
		return nil
	}
	return g.provider.Close()
}

// classifyError names the failure category for logs and traces
func classifyError(err error) string {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case stderrors.Is(err, context.Canceled):
		return "canceled"
	case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	}

	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		return statusReason(genaiErr.Code)
	}
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return statusReason(apiErr.Code)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}

	return "unknown"
}

func statusReason(code int) string {
	switch {
	case code == http.StatusTooManyRequests:
		return "rate_limited"
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return "auth"
	case code >= http.StatusInternalServerError:
		return "upstream_unavailable"
	default:
		return "upstream_rejected"
	}
}
