package cli

import (
	"context"
	"fmt"

	"folio/internal/common"
	"folio/internal/resume"
	"folio/internal/types"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Extract text from a resume and guess its structure",
	Long: `Extract the text of a PDF, DOCX or plain text resume and run the heuristic
parser over it. Use --text-only to print the extracted text alone.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: prepareOutput,
	RunE:    runParse,
}

var textOnly bool

func init() {
	parseCmd.Flags().BoolVar(&textOnly, "text-only", false, "Skip the heuristic parse")
}

func runParse(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	createInput := func(contents []string) (string, error) {
		if len(contents) != 1 {
			return "", fmt.Errorf("expected 1 file content, got %d", len(contents))
		}
		return contents[0], nil
	}

	return common.RunCommand(
		cmd.Context(),
		logger,
		newFileProcessor(cmd),
		outputConfig,
		args,
		createInput,
		func(ctx context.Context, text string) (resume.Outcome[types.ParseResult], error) {
			return resume.Outcome[types.ParseResult]{Value: parseResult(text, !textOnly)}, nil
		},
		func(text string, cfg common.CommandConfig) {
			logger.Info("Parsing resume", "file", args[0], "characters", len(text))
		},
	)
}

func parseResult(text string, structured bool) types.ParseResult {
	result := types.ParseResult{Text: text}
	if structured {
		doc := resume.Parse(text)
		result.Parsed = &doc
	}
	return result
}
