package common

import (
	"context"
	"fmt"

	"folio/internal/errors"
	"folio/internal/resume"
)

// CreateInputFunc builds the operation input from the text of the command's files.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc logs the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc runs one pipeline step. A degraded outcome is still printed.
type OperationFunc[Input, Output any] func(context.Context, Input) (resume.Outcome[Output], error)

// RunCommand reads the files, runs the operation and writes the formatted result.
func RunCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	files *FileProcessor,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	outputHandler := NewOutputHandler(files, logger)

	// Fail on a bad output path before spending an upstream call
	if err := files.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return err
	}

	contents, err := files.ValidateAndReadDocuments(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	outcome, err := operation(ctx, input)
	if err != nil {
		return err
	}
	if outcome.Degraded {
		logger.Warn("Result fell back to defaults", "reason", outcome.Reason)
	}

	return outputHandler.HandleOutput(outcome.Value, cmdConfig)
}
