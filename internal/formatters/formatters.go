package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"folio/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// GlobalRegistry holds the default formatters
var GlobalRegistry = NewFormatterRegistry()

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ParseResult", &ParseTextFormatter{})
	registry.RegisterFormatter("markdown", "ParseResult", &ParseMarkdownFormatter{})
	registry.RegisterFormatter("text", "MatchResult", &MatchTextFormatter{})
	registry.RegisterFormatter("markdown", "MatchResult", &MatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "OptimizationResult", &OptimizationTextFormatter{})
	registry.RegisterFormatter("markdown", "OptimizationResult", &OptimizationMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ParseResult:
		return "ParseResult"
	case types.MatchResult:
		return "MatchResult"
	case types.OptimizationResult:
		return "OptimizationResult"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ParseTextFormatter prints the extracted text followed by the guessed structure
type ParseTextFormatter struct{}

func (ptf *ParseTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ParseResult)
	if !ok {
		return "", fmt.Errorf("expected ParseResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== EXTRACTED TEXT ===\n\n")
	output.WriteString(result.Text)
	output.WriteString("\n\n")

	if doc := result.Parsed; doc != nil {
		output.WriteString("=== PARSED RESUME ===\n")
		fmt.Fprintf(&output, "Name: %s\n", doc.FullName)
		fmt.Fprintf(&output, "Contact: %s\n", doc.Contact)
		fmt.Fprintf(&output, "Summary: %s\n\n", doc.Summary)
		writeTextList(&output, "Experience", doc.Experience)
		writeTextList(&output, "Education", doc.Education)
		writeTextList(&output, "Skills", doc.Skills)
	}

	return output.String(), nil
}

func (ptf *ParseTextFormatter) SupportedType() string {
	return "ParseResult"
}

// ParseMarkdownFormatter renders a parsed resume as markdown
type ParseMarkdownFormatter struct{}

func (pmf *ParseMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ParseResult)
	if !ok {
		return "", fmt.Errorf("expected ParseResult, got %T", data)
	}

	var output strings.Builder

	if doc := result.Parsed; doc != nil {
		name := doc.FullName
		if name == "" {
			name = "Parsed Resume"
		}
		fmt.Fprintf(&output, "# %s\n\n", name)
		if doc.Contact != "" {
			fmt.Fprintf(&output, "**Contact:** %s\n\n", doc.Contact)
		}
		if doc.Summary != "" {
			output.WriteString("## Summary\n\n")
			output.WriteString(doc.Summary)
			output.WriteString("\n\n")
		}
		writeMarkdownList(&output, "Experience", doc.Experience)
		writeMarkdownList(&output, "Education", doc.Education)
		writeMarkdownList(&output, "Skills", doc.Skills)
	}

	output.WriteString("## Extracted Text\n\n```\n")
	output.WriteString(result.Text)
	output.WriteString("\n```\n")

	return output.String(), nil
}

func (pmf *ParseMarkdownFormatter) SupportedType() string {
	return "ParseResult"
}

// MatchTextFormatter handles text formatting for match results
type MatchTextFormatter struct{}

func (mtf *MatchTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchResult)
	if !ok {
		return "", fmt.Errorf("expected MatchResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RESUME MATCH ANALYSIS ===\n\n")
	fmt.Fprintf(&output, "Match Score: %d/100\n\n", result.MatchScore)
	if len(result.MissingKeywords) > 0 {
		writeTextList(&output, "Missing Keywords", result.MissingKeywords)
	} else {
		output.WriteString("No missing keywords.\n")
	}

	return output.String(), nil
}

func (mtf *MatchTextFormatter) SupportedType() string {
	return "MatchResult"
}

// MatchMarkdownFormatter handles markdown formatting for match results
type MatchMarkdownFormatter struct{}

func (mmf *MatchMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchResult)
	if !ok {
		return "", fmt.Errorf("expected MatchResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Match Analysis\n\n")
	fmt.Fprintf(&output, "**Match Score:** %d/100\n\n", result.MatchScore)
	if len(result.MissingKeywords) > 0 {
		writeMarkdownList(&output, "Missing Keywords", result.MissingKeywords)
	} else {
		output.WriteString("## No Missing Keywords\n\nThe resume covers the key terms of the job description.\n")
	}

	return output.String(), nil
}

func (mmf *MatchMarkdownFormatter) SupportedType() string {
	return "MatchResult"
}

// OptimizationTextFormatter handles text formatting for optimization results
type OptimizationTextFormatter struct{}

func (otf *OptimizationTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.OptimizationResult)
	if !ok {
		return "", fmt.Errorf("expected OptimizationResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== OPTIMIZED RESUME ===\n\n")
	output.WriteString(result.OptimizedResume)
	output.WriteString("\n\n")

	output.WriteString("=== COVER LETTER ===\n\n")
	output.WriteString(result.CoverLetter)
	output.WriteString("\n\n")

	output.WriteString("=== NEW MATCH SCORE ===\n")
	output.WriteString(scoreText(result.NewMatchScore))
	output.WriteString("\n")

	return output.String(), nil
}

func (otf *OptimizationTextFormatter) SupportedType() string {
	return "OptimizationResult"
}

// OptimizationMarkdownFormatter handles markdown formatting for optimization results
type OptimizationMarkdownFormatter struct{}

func (omf *OptimizationMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.OptimizationResult)
	if !ok {
		return "", fmt.Errorf("expected OptimizationResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Optimized Resume\n\n")
	output.WriteString(result.OptimizedResume)
	output.WriteString("\n\n")

	output.WriteString("## Cover Letter\n\n")
	output.WriteString(result.CoverLetter)
	output.WriteString("\n\n")

	fmt.Fprintf(&output, "**New Match Score:** %s\n", scoreText(result.NewMatchScore))

	return output.String(), nil
}

func (omf *OptimizationMarkdownFormatter) SupportedType() string {
	return "OptimizationResult"
}

func scoreText(score *int) string {
	if score == nil {
		return "unavailable"
	}
	return fmt.Sprintf("%d/100", *score)
}

func writeTextList(output *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(output, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(output, "- %s\n", item)
	}
	output.WriteString("\n")
}

func writeMarkdownList(output *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(output, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(output, "- %s\n", item)
	}
	output.WriteString("\n")
}
