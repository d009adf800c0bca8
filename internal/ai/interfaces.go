package ai

import (
	"context"
	"time"
)

// Provider performs a single text-generation call against an upstream model.
// Implementations must not retry and must not keep conversation state.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// Request is one prompt plus the instruction framing it
type Request struct {
	SessionID         string
	Prompt            string
	SystemInstruction string
}

// Response carries the raw model text
type Response struct {
	Text  string
	Usage *TokenUsage
}

// TokenUsage holds token counts reported by the upstream
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// MetricsRecorder receives one record per upstream call
type MetricsRecorder interface {
	RecordAICall(ctx context.Context, operation, model string, duration time.Duration, inputTokens, outputTokens int64, err error)
}
