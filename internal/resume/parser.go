package resume

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"folio/internal/types"
)

// Parser thresholds
const (
	NameScanLines      = 5
	MaxNameLength      = 50
	MaxSkillLines      = 9
	MaxSkillLineLength = 100

	// nameDigitWindow is how many leading characters of a name candidate must be digit-free
	nameDigitWindow = 5
)

var (
	emailPattern  = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	skillKeywords = []string{"skills", "technologies", "tools", "proficiencies"}
)

// Parse guesses a name, a contact email and a skills block from raw resume text.
// It never fails; fields it cannot find stay empty.
func Parse(text string) types.ResumeDocument {
	doc := types.ResumeDocument{
		Experience: []string{},
		Education:  []string{},
		Skills:     []string{},
	}

	lines := strings.Split(text, "\n")

	doc.FullName = findName(lines)
	doc.Contact = emailPattern.FindString(text)
	if skills := findSkills(lines); skills != nil {
		doc.Skills = skills
	}

	return doc
}

func findName(lines []string) string {
	for i, line := range lines {
		if i >= NameScanLines {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" || utf8.RuneCountInString(line) >= MaxNameLength {
			continue
		}
		if !hasDigit(firstRunes(line, nameDigitWindow)) {
			return line
		}
	}
	return ""
}

// findSkills returns the lines following the first skills heading, or nil when there is none
func findSkills(lines []string) []string {
	for i, line := range lines {
		if !containsSkillKeyword(line) {
			continue
		}

		skills := []string{}
		for j := i + 1; j < len(lines) && j <= i+MaxSkillLines; j++ {
			candidate := strings.TrimSpace(lines[j])
			if candidate == "" || utf8.RuneCountInString(candidate) >= MaxSkillLineLength {
				break
			}
			skills = append(skills, candidate)
		}
		return skills
	}
	return nil
}

func containsSkillKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, keyword := range skillKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func firstRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

func hasDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}
