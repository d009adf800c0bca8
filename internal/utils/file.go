package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileKind groups input files by how their text is obtained
type FileKind int

const (
	KindUnknown FileKind = iota
	KindText
	KindDocument
)

var kindsByExtension = map[string]FileKind{
	".txt":      KindText,
	".text":     KindText,
	".md":       KindText,
	".markdown": KindText,
	".pdf":      KindDocument,
	".docx":     KindDocument,
}

// KindOf classifies filename by extension
func KindOf(filename string) FileKind {
	return kindsByExtension[GetFileExtension(filename)]
}

// ValidateInputFile checks that filename names a readable regular file
func ValidateInputFile(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("file does not exist: %s", filename)
	case err != nil:
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	case info.IsDir():
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	return f.Close()
}

// ValidateOutputFile makes sure the parent directory of filename exists.
// An empty name means stdout.
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}
	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// GetFileExtension returns the lowercased extension including the dot
func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func IsTextFile(filename string) bool {
	return KindOf(filename) == KindText
}

// IsDocumentFile reports whether the file is a PDF or DOCX container
func IsDocumentFile(filename string) bool {
	return KindOf(filename) == KindDocument
}

// FormatFileSize renders size with a binary unit, e.g. "10.0 MB"
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	value := float64(size)
	suffix := 0
	for value >= unit*unit && suffix < len("KMGTPE")-1 {
		value /= unit
		suffix++
	}
	return fmt.Sprintf("%.1f %cB", value/unit, "KMGTPE"[suffix])
}
