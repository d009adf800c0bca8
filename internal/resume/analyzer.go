package resume

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"folio/internal/errors"
	"folio/internal/types"
)

const (
	DefaultMatchScore   = 50
	MaxMissingKeywords  = 10
	unableToAnalyzeText = "Unable to analyze - please try again"

	ReasonInvalidJSON = "invalid_json"
)

// Analyzer scores a resume against a job description
type Analyzer struct {
	pipeline
}

func NewAnalyzer(gen Generator, logger *errors.Logger, opts ...Option) *Analyzer {
	return &Analyzer{pipeline: newPipeline(gen, logger, opts)}
}

// Analyze asks the upstream for a match score and missing keywords.
// Only upstream failures are returned as errors; an unreadable reply yields
// the default result with Degraded set.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobDescription string) (Outcome[types.MatchResult], error) {
	prompt, err := a.prompts.Analysis(resumeText, jobDescription)
	if err != nil {
		return Outcome[types.MatchResult]{}, errors.NewInternalError(errors.ErrCodeInvalidConfig, "failed to build analysis prompt", err)
	}

	reply, err := a.gen.Generate(ctx, prompt, AnalysisSystemInstruction)
	if err != nil {
		return Outcome[types.MatchResult]{}, err
	}

	result, ok := decodeMatchResult(reply)
	if !ok {
		a.noteDegraded(ctx, "analyze", ReasonInvalidJSON, "reply_length", len(reply))
		return degraded(types.MatchResult{
			MatchScore:      DefaultMatchScore,
			MissingKeywords: []string{unableToAnalyzeText},
		}, ReasonInvalidJSON), nil
	}

	a.logger.Debug("Analysis complete",
		"match_score", result.MatchScore,
		"missing_keywords", len(result.MissingKeywords))
	return okOutcome(result), nil
}

func decodeMatchResult(reply string) (types.MatchResult, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(stripCodeFences(reply)), &raw); err != nil || raw == nil {
		return types.MatchResult{}, false
	}
	return types.MatchResult{
		MatchScore:      coerceScore(raw["matchScore"]),
		MissingKeywords: coerceKeywords(raw["missingKeywords"]),
	}, true
}

// stripCodeFences removes a markdown fence and its optional json tag
func stripCodeFences(reply string) string {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		parts := strings.Split(text, "```")
		text = parts[1]
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSpace(text)
	}
	return text
}

func coerceScore(value any) int {
	var score float64
	switch v := value.(type) {
	case float64:
		score = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(parsed) {
			return DefaultMatchScore
		}
		score = parsed
	default:
		return DefaultMatchScore
	}
	return clampScore(math.Trunc(score))
}

func clampScore(score float64) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return int(score)
	}
}

func coerceKeywords(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return []string{}
	}
	keywords := make([]string, 0, min(len(items), MaxMissingKeywords))
	for _, item := range items {
		if len(keywords) == MaxMissingKeywords {
			break
		}
		if s, ok := item.(string); ok {
			keywords = append(keywords, s)
		}
	}
	return keywords
}
