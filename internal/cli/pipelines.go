package cli

import (
	"context"
	"fmt"

	"folio/internal/ai"
	"folio/internal/config"
	"folio/internal/errors"
	"folio/internal/observability"
	"folio/internal/resume"
)

// pipelines holds one AI gateway per operation and the pipelines built on them
type pipelines struct {
	analyzer  *resume.Analyzer
	optimizer *resume.Optimizer
	gateways  []*ai.Gateway
	logger    *errors.Logger
}

// newPipelines creates the analyze and optimize gateways from their operation
// settings; om may be nil when observability is not set up
func newPipelines(ctx context.Context, cfg *config.Config, om *observability.Manager, logger *errors.Logger) (*pipelines, error) {
	prompts, err := resume.NewPrompts(cfg.Prompts)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	analyzeCfg := cfg.GetAnalyzeConfig()
	analyzeGateway, err := ai.NewGateway(ctx, &analyzeCfg, "analyze", logger, ai.WithMetrics(om))
	if err != nil {
		return nil, fmt.Errorf("failed to create AI gateway: %w", err)
	}

	optimizeCfg := cfg.GetOptimizeConfig()
	optimizeGateway, err := ai.NewGateway(ctx, &optimizeCfg, "optimize", logger, ai.WithMetrics(om))
	if err != nil {
		_ = analyzeGateway.Close()
		return nil, fmt.Errorf("failed to create AI gateway: %w", err)
	}

	opts := []resume.Option{resume.WithPrompts(prompts), resume.WithOutcomeRecorder(om)}
	return &pipelines{
		analyzer:  resume.NewAnalyzer(analyzeGateway, logger, opts...),
		optimizer: resume.NewOptimizer(optimizeGateway, logger, opts...),
		gateways:  []*ai.Gateway{analyzeGateway, optimizeGateway},
		logger:    logger,
	}, nil
}

func (p *pipelines) Close() {
	for _, g := range p.gateways {
		if err := g.Close(); err != nil {
			p.logger.LogError(err, "Failed to close AI gateway")
		}
	}
}
