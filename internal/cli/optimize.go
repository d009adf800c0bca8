package cli

import (
	"context"
	"fmt"

	"folio/internal/common"
	"folio/internal/resume"
	"folio/internal/types"

	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize --resume FILE --job FILE [--tone TONE]",
	Short: "Rewrite a resume and draft a cover letter for a job description",
	Long: `Rewrite a resume for a job description, draft a matching cover letter and
re-score the rewritten resume. Tones: executive, disruptor or human; any
other value uses executive.

The new match score is omitted when re-scoring fails.`,
	Args:    cobra.NoArgs,
	PreRunE: prepareOutput,
	RunE:    runOptimize,
}

var optimizeFlags struct {
	resume string
	job    string
	tone   string
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeFlags.resume, "resume", "r", "", "Resume file (.pdf, .docx or text)")
	optimizeCmd.Flags().StringVarP(&optimizeFlags.job, "job", "j", "", "Job description file")
	optimizeCmd.Flags().StringVarP(&optimizeFlags.tone, "tone", "t", string(resume.ToneExecutive), "Writing tone: executive, disruptor or human")
	_ = optimizeCmd.MarkFlagRequired("resume")
	_ = optimizeCmd.MarkFlagRequired("job")

	_ = optimizeCmd.RegisterFlagCompletionFunc("tone", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			string(resume.ToneExecutive),
			string(resume.ToneDisruptor),
			string(resume.ToneHuman),
		}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	p, err := newPipelines(cmd.Context(), cfg, nil, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	createInput := func(contents []string) (types.OptimizeRequest, error) {
		if len(contents) != 2 {
			return types.OptimizeRequest{}, fmt.Errorf("expected 2 file contents, got %d", len(contents))
		}
		req := types.OptimizeRequest{
			ResumeText:     contents[0],
			JobDescription: contents[1],
			Tone:           optimizeFlags.tone,
		}
		return req, types.Validate(req)
	}

	logDetails := func(input types.OptimizeRequest, cfg common.CommandConfig) {
		logger.Info("Starting resume optimization",
			"resume_chars", len(input.ResumeText),
			"job_chars", len(input.JobDescription),
			"tone", string(resume.ParseTone(input.Tone)),
			"output_format", cfg.OutputFormat)
	}

	optimize := func(ctx context.Context, input types.OptimizeRequest) (resume.Outcome[types.OptimizationResult], error) {
		return p.optimizer.Optimize(ctx, input.ResumeText, input.JobDescription, input.Tone)
	}

	err = common.RunCommand(
		cmd.Context(),
		logger,
		newFileProcessor(cmd),
		outputConfig,
		[]string{optimizeFlags.resume, optimizeFlags.job},
		createInput,
		optimize,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to optimize resume: %w", err)
	}
	logger.Info("Resume optimization completed successfully")
	return nil
}
