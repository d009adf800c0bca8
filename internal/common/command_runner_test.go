package common

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"folio/internal/errors"
	"folio/internal/resume"
	"folio/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *errors.Logger {
	return errors.NewLoggerTo(io.Discard, slog.LevelError)
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

type pair struct{ resume, job string }

func pairInput(contents []string) (pair, error) {
	return pair{contents[0], contents[1]}, nil
}

func TestRunCommandWritesFormattedOutput(t *testing.T) {
	resumeFile := writeInput(t, "resume.txt", "Jane Doe\njane@corp.com")
	jobFile := writeInput(t, "job.md", "Needs SQL")
	outFile := filepath.Join(t.TempDir(), "out", "match.md")

	var seen pair
	err := RunCommand(context.Background(), quietLogger(), NewFileProcessor(0, quietLogger()),
		CommandConfig{OutputFile: outFile, OutputFormat: "markdown"},
		[]string{resumeFile, jobFile},
		pairInput,
		func(ctx context.Context, in pair) (resume.Outcome[types.MatchResult], error) {
			seen = in
			return resume.Outcome[types.MatchResult]{
				Value:    types.MatchResult{MatchScore: 50, MissingKeywords: []string{"Unable to analyze - please try again"}},
				Degraded: true,
				Reason:   "unreadable_reply",
			}, nil
		},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, pair{"Jane Doe\njane@corp.com", "Needs SQL"}, seen)

	written, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(written), "**Match Score:** 50/100")
}

func TestRunCommandStopsOnErrors(t *testing.T) {
	jobFile := writeInput(t, "job.txt", "Needs SQL")
	called := false
	operation := func(ctx context.Context, in pair) (resume.Outcome[types.MatchResult], error) {
		called = true
		return resume.Outcome[types.MatchResult]{}, nil
	}

	err := RunCommand(context.Background(), quietLogger(), NewFileProcessor(0, quietLogger()),
		CommandConfig{OutputFormat: "json"},
		[]string{filepath.Join(t.TempDir(), "missing.txt"), jobFile},
		pairInput, operation, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "INVALID_INPUT_FILE"))
	assert.False(t, called)

	upstream := errors.NewAIError(errors.ErrCodeAIServiceFailed, "boom", nil)
	err = RunCommand(context.Background(), quietLogger(), NewFileProcessor(0, quietLogger()),
		CommandConfig{OutputFormat: "json"},
		[]string{jobFile, jobFile},
		pairInput,
		func(ctx context.Context, in pair) (resume.Outcome[types.MatchResult], error) {
			return resume.Outcome[types.MatchResult]{}, upstream
		}, nil)
	assert.ErrorIs(t, err, upstream)
}

func TestReadDocumentRejectsOversizedFiles(t *testing.T) {
	file := writeInput(t, "resume.txt", "0123456789")

	_, err := NewFileProcessor(5, quietLogger()).ReadDocument(file)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))

	text, err := NewFileProcessor(10, quietLogger()).ReadDocument(file)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", text)
}

func TestReadDocumentExtractsByExtension(t *testing.T) {
	file := writeInput(t, "resume.pdf", "not a pdf")

	_, err := NewFileProcessor(0, quietLogger()).ReadDocument(file)
	assert.True(t, errors.HasCode(err, errors.ErrCodeExtractionFailed))
}

func TestOutputHandlerStdout(t *testing.T) {
	var buf bytes.Buffer
	handler := NewOutputHandler(NewFileProcessor(0, quietLogger()), quietLogger())
	handler.stdout = &buf

	require.NoError(t, handler.HandleOutput(types.MatchResult{MatchScore: 90}, CommandConfig{OutputFormat: "text"}))
	assert.Contains(t, buf.String(), "Match Score: 90/100")

	err := handler.HandleOutput(types.MatchResult{}, CommandConfig{OutputFormat: "xml"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}
