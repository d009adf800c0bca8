package cli

import (
	"context"
	"fmt"

	"folio/internal/common"
	"folio/internal/resume"
	"folio/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze --resume FILE --job FILE",
	Short: "Score a resume against a job description",
	Long: `Score how well a resume matches a job description, ATS style, and list up to
ten keywords the resume is missing. The resume may be a PDF, a DOCX or a plain
text file; the job description is read as text.

When the model reply cannot be read the default score of 50 is printed and a
warning is logged.`,
	Args:    cobra.NoArgs,
	PreRunE: prepareOutput,
	RunE:    runAnalyze,
}

var analyzeFiles struct {
	resume string
	job    string
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFiles.resume, "resume", "r", "", "Resume file (.pdf, .docx or text)")
	analyzeCmd.Flags().StringVarP(&analyzeFiles.job, "job", "j", "", "Job description file")
	_ = analyzeCmd.MarkFlagRequired("resume")
	_ = analyzeCmd.MarkFlagRequired("job")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	p, err := newPipelines(cmd.Context(), cfg, nil, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	logDetails := func(input types.AnalyzeRequest, cfg common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"resume_chars", len(input.ResumeText),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	analyze := func(ctx context.Context, input types.AnalyzeRequest) (resume.Outcome[types.MatchResult], error) {
		return p.analyzer.Analyze(ctx, input.ResumeText, input.JobDescription)
	}

	err = common.RunCommand(
		cmd.Context(),
		logger,
		newFileProcessor(cmd),
		outputConfig,
		[]string{analyzeFiles.resume, analyzeFiles.job},
		analyzeInput,
		analyze,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}

func analyzeInput(contents []string) (types.AnalyzeRequest, error) {
	if len(contents) != 2 {
		return types.AnalyzeRequest{}, fmt.Errorf("expected 2 file contents, got %d", len(contents))
	}
	req := types.AnalyzeRequest{ResumeText: contents[0], JobDescription: contents[1]}
	return req, types.Validate(req)
}
