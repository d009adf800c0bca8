package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// PromptConfig names optional files overriding the built-in prompt templates.
// Each file is a text/template receiving the same fields as the built-in prompt.
type PromptConfig struct {
	AnalysisFile    string `mapstructure:"analysisFile"`
	RewriteFile     string `mapstructure:"rewriteFile"`
	CoverLetterFile string `mapstructure:"coverLetterFile"`
	RescoreFile     string `mapstructure:"rescoreFile"`
}

// LoadedPrompts holds prompt template overrides; empty fields use the built-in template
type LoadedPrompts struct {
	Analysis    string
	Rewrite     string
	CoverLetter string
	Rescore     string
}

// loadPromptsFromFiles reads every configured prompt file.
// All missing files are reported together before any content is read.
func loadPromptsFromFiles(prompts PromptConfig) (LoadedPrompts, error) {
	var loaded LoadedPrompts

	if err := validatePromptFiles(prompts); err != nil {
		return loaded, err
	}

	targets := []struct {
		path      string
		operation string
		target    *string
	}{
		{prompts.AnalysisFile, "analysis", &loaded.Analysis},
		{prompts.RewriteFile, "rewrite", &loaded.Rewrite},
		{prompts.CoverLetterFile, "coverLetter", &loaded.CoverLetter},
		{prompts.RescoreFile, "rescore", &loaded.Rescore},
	}

	for _, t := range targets {
		if t.path == "" {
			continue
		}
		content, err := loadPromptFromFile(t.path, t.operation)
		if err != nil {
			return LoadedPrompts{}, err
		}
		*t.target = content
	}

	return loaded, nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", operation, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s prompt from file: %s (%d characters)",
		operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func validatePromptFiles(prompts PromptConfig) error {
	var validationErrors []string

	validateFile := func(filePath, operation string) {
		if filePath == "" {
			return
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s prompt: %s", operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s prompt file not found: %s", operation, absPath))
		}
	}

	validateFile(prompts.AnalysisFile, "analysis")
	validateFile(prompts.RewriteFile, "rewrite")
	validateFile(prompts.CoverLetterFile, "coverLetter")
	validateFile(prompts.RescoreFile, "rescore")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}
