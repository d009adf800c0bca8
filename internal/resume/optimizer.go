package resume

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"folio/internal/errors"
	"folio/internal/types"
)

const (
	ReasonRescoreFailed   = "rescore_failed"
	ReasonRescoreNoDigits = "rescore_no_digits"
)

var digitRun = regexp.MustCompile(`\d+`)

// Optimizer rewrites a resume, drafts a cover letter and re-scores the rewrite
type Optimizer struct {
	pipeline
}

func NewOptimizer(gen Generator, logger *errors.Logger, opts ...Option) *Optimizer {
	return &Optimizer{pipeline: newPipeline(gen, logger, opts)}
}

// Optimize runs rewrite, cover letter and re-score in that order.
// The first two are mandatory; a failed re-score leaves NewMatchScore nil and marks the outcome degraded.
func (o *Optimizer) Optimize(ctx context.Context, resumeText, jobDescription, tone string) (Outcome[types.OptimizationResult], error) {
	var none Outcome[types.OptimizationResult]
	selected := ParseTone(tone)

	rewritePrompt, err := o.prompts.Rewrite(resumeText, jobDescription, selected)
	if err != nil {
		return none, errors.NewInternalError(errors.ErrCodeInvalidConfig, "failed to build rewrite prompt", err)
	}
	optimized, err := o.gen.Generate(ctx, rewritePrompt, "")
	if err != nil {
		return none, err
	}
	optimized = strings.TrimSpace(optimized)

	letterPrompt, err := o.prompts.CoverLetter(resumeText, jobDescription, selected)
	if err != nil {
		return none, errors.NewInternalError(errors.ErrCodeInvalidConfig, "failed to build cover letter prompt", err)
	}
	letter, err := o.gen.Generate(ctx, letterPrompt, "")
	if err != nil {
		return none, err
	}

	result := types.OptimizationResult{
		OptimizedResume: optimized,
		CoverLetter:     strings.TrimSpace(letter),
	}

	score, reason := o.rescore(ctx, optimized, jobDescription)
	if reason != "" {
		o.noteDegraded(ctx, "optimize", reason, "tone", string(selected))
		return degraded(result, reason), nil
	}
	result.NewMatchScore = &score

	o.logger.Debug("Optimization complete",
		"tone", string(selected),
		"new_match_score", score,
		"resume_length", len(result.OptimizedResume))
	return okOutcome(result), nil
}

// rescore returns a non-empty reason when no score could be obtained
func (o *Optimizer) rescore(ctx context.Context, optimized, jobDescription string) (int, string) {
	prompt, err := o.prompts.Rescore(optimized, jobDescription)
	if err != nil {
		o.logger.LogError(err, "Failed to build rescore prompt")
		return 0, ReasonRescoreFailed
	}

	reply, err := o.gen.Generate(ctx, prompt, "")
	if err != nil {
		o.logger.LogError(err, "Rescore call failed")
		return 0, ReasonRescoreFailed
	}

	score, ok := parseScore(reply)
	if !ok {
		return 0, ReasonRescoreNoDigits
	}
	return score, ""
}

// parseScore takes the first run of digits in reply and clamps it to [0,100]
func parseScore(reply string) (int, bool) {
	digits := digitRun.FindString(reply)
	if digits == "" {
		return 0, false
	}
	digits = strings.TrimLeft(digits, "0")
	if len(digits) > 3 {
		return 100, true
	}
	value, _ := strconv.Atoi(digits)
	return clampScore(float64(value)), true
}
