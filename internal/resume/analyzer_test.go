package resume

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"folio/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generateCall struct {
	prompt string
	system string
}

// scriptedGenerator replies with one entry per call, in order
type scriptedGenerator struct {
	replies []string
	errs    []error
	calls   []generateCall
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt, systemInstruction string) (string, error) {
	i := len(g.calls)
	g.calls = append(g.calls, generateCall{prompt: prompt, system: systemInstruction})
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return "", nil
}

type countingRecorder struct {
	mu      sync.Mutex
	reasons []string
}

func (r *countingRecorder) RecordDegraded(ctx context.Context, operation, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, operation+":"+reason)
}

func TestAnalyzeCoercion(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		score    int
		keywords []string
	}{
		{"plain json", `{"matchScore": 72, "missingKeywords": ["Go", "gRPC"]}`, 72, []string{"Go", "gRPC"}},
		{"fenced json", "```json\n{\"matchScore\": 64.9, \"missingKeywords\": []}\n```", 64, []string{}},
		{"bare fence", "  ```\n{\"matchScore\": 10}\n```  ", 10, []string{}},
		{"negative", `{"matchScore": -5, "missingKeywords": ["a"]}`, 0, []string{"a"}},
		{"too large", `{"matchScore": 500}`, 100, []string{}},
		{"non numeric string", `{"matchScore": "abc"}`, 50, []string{}},
		{"numeric string", `{"matchScore": "81.7"}`, 81, []string{}},
		{"omitted", `{"missingKeywords": ["x"]}`, 50, []string{"x"}},
		{"null score", `{"matchScore": null}`, 50, []string{}},
		{"bool score", `{"matchScore": true}`, 50, []string{}},
		{"mixed keywords", `{"matchScore": 5, "missingKeywords": ["a", 3, null, "b"]}`, 5, []string{"a", "b"}},
		{"keywords not a list", `{"matchScore": 5, "missingKeywords": "a, b"}`, 5, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &scriptedGenerator{replies: []string{tt.reply}}
			out, err := NewAnalyzer(gen, nil).Analyze(context.Background(), "resume", "jd")
			require.NoError(t, err)

			assert.False(t, out.Degraded)
			assert.Equal(t, tt.score, out.Value.MatchScore)
			assert.Equal(t, tt.keywords, out.Value.MissingKeywords)
		})
	}
}

func TestAnalyzeKeywordLimit(t *testing.T) {
	keywords := make([]string, 15)
	for i := range keywords {
		keywords[i] = fmt.Sprintf("%q", fmt.Sprintf("k%d", i))
	}
	reply := `{"matchScore": 40, "missingKeywords": [` + strings.Join(keywords, ",") + `]}`

	out, err := NewAnalyzer(&scriptedGenerator{replies: []string{reply}}, nil).Analyze(context.Background(), "r", "j")
	require.NoError(t, err)
	assert.Len(t, out.Value.MissingKeywords, MaxMissingKeywords)
	assert.Equal(t, "k9", out.Value.MissingKeywords[9])
}

func TestAnalyzeUnreadableReply(t *testing.T) {
	for _, reply := range []string{"I think the score is 70", "", "[1,2]", "null", `{"matchScore": 5} trailing`} {
		t.Run(reply, func(t *testing.T) {
			recorder := &countingRecorder{}
			gen := &scriptedGenerator{replies: []string{reply}}

			out, err := NewAnalyzer(gen, nil, WithOutcomeRecorder(recorder)).Analyze(context.Background(), "r", "j")
			require.NoError(t, err)

			assert.True(t, out.Degraded)
			assert.Equal(t, ReasonInvalidJSON, out.Reason)
			assert.Equal(t, 50, out.Value.MatchScore)
			assert.Equal(t, []string{"Unable to analyze - please try again"}, out.Value.MissingKeywords)
			assert.Equal(t, []string{"analyze:invalid_json"}, recorder.reasons)
		})
	}
}

func TestAnalyzePromptAndSystem(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{`{"matchScore": 1}`}}
	_, err := NewAnalyzer(gen, nil).Analyze(context.Background(), "MY RESUME", "MY JD")
	require.NoError(t, err)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, AnalysisSystemInstruction, gen.calls[0].system)
	assert.Contains(t, gen.calls[0].prompt, "MY RESUME")
	assert.Contains(t, gen.calls[0].prompt, "MY JD")
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	upstream := errors.NewAIError(errors.ErrCodeAIServiceFailed, "AI service error: boom", nil)
	gen := &scriptedGenerator{errs: []error{upstream}}

	_, err := NewAnalyzer(gen, nil).Analyze(context.Background(), "r", "j")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAIServiceFailed))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("  {\"a\":1}  "))
	assert.Equal(t, "", stripCodeFences("```"))
}
