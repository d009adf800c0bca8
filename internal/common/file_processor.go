package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"folio/internal/errors"
	"folio/internal/extract"
	"folio/internal/utils"
)

// FileProcessor reads command inputs and writes command outputs
type FileProcessor struct {
	extractor   *extract.Extractor
	maxFileSize int64
	logger      *errors.Logger
}

// NewFileProcessor creates a new file processor; maxFileSize <= 0 disables the size check
func NewFileProcessor(maxFileSize int64, logger *errors.Logger) *FileProcessor {
	return &FileProcessor{
		extractor:   extract.New(logger),
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	data, err := fp.readBytes(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadDocument returns the text of filename, extracting it first when the file is a PDF or DOCX
func (fp *FileProcessor) ReadDocument(filename string) (string, error) {
	if !utils.IsDocumentFile(filename) {
		return fp.ReadFile(filename)
	}

	data, err := fp.readBytes(filename)
	if err != nil {
		return "", err
	}
	return fp.extractor.Extract(filepath.Base(filename), data)
}

// ValidateAndReadDocuments validates each file and returns its text
func (fp *FileProcessor) ValidateAndReadDocuments(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		if err := utils.ValidateInputFile(filename); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}

		if utils.KindOf(filename) == utils.KindUnknown {
			fp.logger.Warn("File may not be a text file, reading it as plain text", "filename", filename)
		}

		content, err := fp.ReadDocument(filename)
		if err != nil {
			return nil, err
		}
		contents[i] = content
	}

	return contents, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}

func (fp *FileProcessor) readBytes(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	var reader io.Reader = file
	if fp.maxFileSize > 0 {
		reader = io.LimitReader(file, fp.maxFileSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	if fp.maxFileSize > 0 && int64(len(data)) > fp.maxFileSize {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("File %s exceeds the %s limit", filename, utils.FormatFileSize(fp.maxFileSize)), nil)
	}
	return data, nil
}
