package ai

import (
	"context"
	"fmt"
	"time"

	"folio/internal/config"
	"folio/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

const modelCheckTimeout = 10 * time.Second

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	client *genai.Client
	config *config.OperationAIConfig
	logger *errors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(ctx context.Context, cfg *config.OperationAIConfig, logger *errors.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// Generate sends a single GenerateContent request
func (g *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	tracer := otel.Tracer("folio.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.generate_content")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.String("ai.session_id", req.SessionID),
		attribute.Int("input.prompt_length", len(req.Prompt)),
	)

	genaiConfig := &genai.GenerateContentConfig{}
	if g.config.Temperature != nil && *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}
	if req.SystemInstruction != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(req.Prompt), genaiConfig)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, err
	}
	if result == nil {
		err := fmt.Errorf("empty response from model %s", g.config.Model)
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, err
	}

	response := &Response{
		Text:  result.Text(),
		Usage: extractTokenUsage(result),
	}

	if response.Usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", response.Usage.InputTokens),
			attribute.Int64("ai.tokens.output", response.Usage.OutputTokens),
			attribute.Int64("ai.tokens.total", response.Usage.TotalTokens),
		)
	}
	span.SetAttributes(
		attribute.Int("output.length", len(response.Text)),
		attribute.Bool("success", true),
	)

	return response, nil
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// Close releases provider resources
func (g *GeminiProvider) Close() error {
	return nil
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
