package resume

import (
	"context"
	"io"
	"log/slog"

	"folio/internal/errors"
)

// Outcome carries a pipeline result. Degraded marks a soft failure that was
// folded into a default value; Reason names it.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

func okOutcome[T any](value T) Outcome[T] {
	return Outcome[T]{Value: value}
}

func degraded[T any](value T, reason string) Outcome[T] {
	return Outcome[T]{Value: value, Degraded: true, Reason: reason}
}

// Generator is the single upstream call the pipelines depend on
type Generator interface {
	Generate(ctx context.Context, prompt, systemInstruction string) (string, error)
}

// OutcomeRecorder counts degraded pipeline results
type OutcomeRecorder interface {
	RecordDegraded(ctx context.Context, operation, reason string)
}

// Option configures a pipeline
type Option func(*pipeline)

// WithPrompts replaces the built-in prompt templates
func WithPrompts(prompts *Prompts) Option {
	return func(p *pipeline) {
		if prompts != nil {
			p.prompts = prompts
		}
	}
}

// WithOutcomeRecorder attaches a recorder for degraded results
func WithOutcomeRecorder(recorder OutcomeRecorder) Option {
	return func(p *pipeline) {
		p.recorder = recorder
	}
}

type pipeline struct {
	gen      Generator
	prompts  *Prompts
	recorder OutcomeRecorder
	logger   *errors.Logger
}

func newPipeline(gen Generator, logger *errors.Logger, opts []Option) pipeline {
	p := pipeline{gen: gen, logger: logger}
	for _, opt := range opts {
		opt(&p)
	}
	if p.prompts == nil {
		p.prompts = DefaultPrompts()
	}
	if p.logger == nil {
		p.logger = errors.NewLoggerTo(io.Discard, slog.LevelError)
	}
	return p
}

func (p *pipeline) noteDegraded(ctx context.Context, operation, reason string, args ...any) {
	p.logger.Warn("Degraded "+operation+" result", append([]any{"reason", reason}, args...)...)
	if p.recorder != nil {
		p.recorder.RecordDegraded(ctx, operation, reason)
	}
}
