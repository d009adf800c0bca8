// Package extract turns uploaded resume documents into plain text.
package extract

import (
	"fmt"

	"folio/internal/errors"
	"folio/internal/utils"
)

// Format identifies a supported document container
type Format string

const (
	FormatPDF  Format = "PDF"
	FormatDOCX Format = "DOCX"
)

// UnsupportedTypeMessage is returned for uploads that are neither PDF nor DOCX
const UnsupportedTypeMessage = "Unsupported file type. Please upload PDF or DOCX."

// DetectFormat decides the document format from the file extension, case-insensitively
func DetectFormat(filename string) (Format, error) {
	switch utils.GetFileExtension(filename) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedFileType, UnsupportedTypeMessage, nil).
			WithContext("filename", filename)
	}
}

// Extractor converts PDF and DOCX payloads to trimmed plain text
type Extractor struct {
	logger *errors.Logger
}

// New creates an Extractor
func New(logger *errors.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract detects the format of filename and returns the text of data.
// Any failure inside the format reader, including a panic, becomes a single
// EXTRACTION_FAILED error naming the format.
func (e *Extractor) Extract(filename string, data []byte) (string, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = guard(format, func() (string, error) { return PDFText(data) })
	case FormatDOCX:
		text, err = guard(format, func() (string, error) { return DOCXText(data) })
	}
	if err != nil {
		if e.logger != nil {
			e.logger.LogError(err, "Document extraction failed", "filename", filename, "size", len(data))
		}
		return "", err
	}

	if e.logger != nil {
		e.logger.Debug("Document extracted",
			"filename", filename,
			"format", string(format),
			"size", utils.FormatFileSize(int64(len(data))),
			"characters", len(text))
	}
	return text, nil
}

// guard runs fn and folds both errors and panics into an extraction error
func guard(format Format, fn func() (string, error)) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = extractionError(format, fmt.Errorf("reader panic: %v", r))
		}
	}()

	text, err = fn()
	if err != nil {
		return "", extractionError(format, err)
	}
	return text, nil
}

func extractionError(format Format, cause error) *errors.AppError {
	return errors.NewValidationError(errors.ErrCodeExtractionFailed,
		fmt.Sprintf("Failed to extract text from %s", format), cause).
		WithContext("format", string(format))
}
