package resume

import (
	"bytes"
	"fmt"
	"text/template"

	"folio/internal/config"
)

// AnalysisSystemInstruction frames the scoring call
const AnalysisSystemInstruction = "You are an ATS (Applicant Tracking System) expert. Analyze resumes objectively and provide accurate match scores. Always respond with valid JSON only."

const analysisPrompt = `Analyze this resume against the job description and provide:
1. A match score from 0-100 based on keyword density and skill alignment
2. A list of top 10 missing high-priority keywords/skills from the JD that are NOT in the resume

RESUME:
{{.Resume}}

JOB DESCRIPTION:
{{.JobDescription}}

Respond in this exact JSON format only, no other text:
{
    "matchScore": <number between 0-100>,
    "missingKeywords": ["keyword1", "keyword2", ...]
}
`

const rewritePrompt = `You are an expert resume writer. Rewrite this resume to be optimized for the given job description.

CRITICAL RULES:
1. For EVERY bullet point, include quantifiable metrics. If the original doesn't have numbers, add placeholders like [X%], [Y amount], [$Z], [N employees]
2. Apply the AIDA framework (Attention, Interest, Desire, Action) to the summary section
3. Incorporate missing keywords from the job description naturally
4. Keep the same structure but enhance the content

TONE STYLE:
{{.ToneGuide}}

ORIGINAL RESUME:
{{.Resume}}

TARGET JOB DESCRIPTION:
{{.JobDescription}}

Provide the optimized resume as clean, formatted text. Use proper sections (SUMMARY, EXPERIENCE, EDUCATION, SKILLS, etc.)
Do NOT include any explanations or notes - just the optimized resume content.`

const coverLetterPrompt = `Generate a professional 3-paragraph cover letter based on this resume and job description.

STRUCTURE:
Paragraph 1 (HOOK): Open with attention-grabbing statement + job title being applied for
Paragraph 2 (CONNECTION): Connect 2-3 specific JD requirements with matching resume achievements
Paragraph 3 (CTA): Express enthusiasm + clear call to action

TONE STYLE:
{{.ToneGuide}}

RESUME:
{{.Resume}}

JOB DESCRIPTION:
{{.JobDescription}}

Write ONLY the cover letter content, starting with "Dear Hiring Manager," and ending with a professional sign-off.
Do NOT include any explanations or notes - just the cover letter.`

const rescorePrompt = `Calculate a match score (0-100) for this optimized resume against the job description.
Consider keyword density, skill alignment, and experience relevance.

OPTIMIZED RESUME:
{{.Resume}}

JOB DESCRIPTION:
{{.JobDescription}}

Respond with ONLY a single number between 0 and 100, nothing else.`

// PromptData is the value every prompt template is executed with
type PromptData struct {
	Resume         string
	JobDescription string
	ToneGuide      string
}

// Prompts renders the four pipeline prompts
type Prompts struct {
	analysis    *template.Template
	rewrite     *template.Template
	coverLetter *template.Template
	rescore     *template.Template
}

// NewPrompts parses the built-in templates, replacing any that have a non-empty override
func NewPrompts(overrides config.LoadedPrompts) (*Prompts, error) {
	p := &Prompts{}
	sources := []struct {
		name     string
		builtin  string
		override string
		target   **template.Template
	}{
		{"analysis", analysisPrompt, overrides.Analysis, &p.analysis},
		{"rewrite", rewritePrompt, overrides.Rewrite, &p.rewrite},
		{"coverLetter", coverLetterPrompt, overrides.CoverLetter, &p.coverLetter},
		{"rescore", rescorePrompt, overrides.Rescore, &p.rescore},
	}

	for _, s := range sources {
		text := s.builtin
		if s.override != "" {
			text = s.override
		}
		tmpl, err := template.New(s.name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("invalid %s prompt template: %w", s.name, err)
		}
		*s.target = tmpl
	}
	return p, nil
}

// DefaultPrompts returns the built-in prompts
func DefaultPrompts() *Prompts {
	p, err := NewPrompts(config.LoadedPrompts{})
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Prompts) Analysis(resume, jobDescription string) (string, error) {
	return render(p.analysis, PromptData{Resume: resume, JobDescription: jobDescription})
}

func (p *Prompts) Rewrite(resume, jobDescription string, tone Tone) (string, error) {
	return render(p.rewrite, PromptData{Resume: resume, JobDescription: jobDescription, ToneGuide: tone.Guide()})
}

func (p *Prompts) CoverLetter(resume, jobDescription string, tone Tone) (string, error) {
	return render(p.coverLetter, PromptData{Resume: resume, JobDescription: jobDescription, ToneGuide: tone.Guide()})
}

func (p *Prompts) Rescore(optimizedResume, jobDescription string) (string, error) {
	return render(p.rescore, PromptData{Resume: optimizedResume, JobDescription: jobDescription})
}

func render(tmpl *template.Template, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
