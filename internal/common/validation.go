package common

import (
	"fmt"
	"slices"

	"folio/internal/errors"
)

// ValidateOutputFormat checks format against the configured formats; an empty list allows any
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}

	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format '%s'. Supported formats: %v", format, supportedFormats), nil)
}

// GetSupportedFormats returns a copy of the configured formats for shell completion
func GetSupportedFormats(supportedFormats []string) []string {
	return slices.Clone(supportedFormats)
}
