package cli

import (
	"context"

	"folio/internal/common"
	"folio/internal/config"
	"folio/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// outputConfig is filled from the persistent --format and --output flags
var outputConfig common.CommandConfig

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Portfolio backend with an AI resume builder",
	Long: `Folio serves a personal portfolio API: a blog, a contact form that emails
the owner, and a resume builder that extracts text from PDF or DOCX files,
scores a resume against a job description and rewrites it with a cover letter.

The resume commands are also available offline from the command line.`,
	SilenceUsage: true,
}

// Execute runs the root command with cfg and logger available to every subcommand
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Execute always sets it
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Execute always sets it
}

// prepareOutput applies the default format and validates it; used as PreRunE by commands that print results
func prepareOutput(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	if outputConfig.OutputFormat == "" {
		outputConfig.OutputFormat = cfg.App.DefaultFormat
	}
	return common.ValidateOutputFormat(outputConfig.OutputFormat, cfg.App.SupportedFormats)
}

// newFileProcessor returns a processor bounded by the configured maximum file size
func newFileProcessor(cmd *cobra.Command) *common.FileProcessor {
	cfg := getConfigFromContext(cmd.Context())
	return common.NewFileProcessor(cfg.App.MaxFileSize, getLoggerFromContext(cmd.Context()))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.PersistentFlags().StringVar(&outputConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(versionCmd)
}
