package types

// ResumeDocument is the heuristic structure guessed from raw resume text.
type ResumeDocument struct {
	FullName   string   `json:"fullName"`
	Contact    string   `json:"contact"`
	Summary    string   `json:"summary"`
	Experience []string `json:"experience"`
	Education  []string `json:"education"`
	Skills     []string `json:"skills"`
}

// ParseResult is returned by the document upload endpoint
type ParseResult struct {
	Text   string          `json:"text"`
	Parsed *ResumeDocument `json:"parsed,omitempty"`
}

// AnalyzeRequest represents the input for scoring a resume against a job description
type AnalyzeRequest struct {
	ResumeText     string          `json:"resumeText" validate:"required"`
	ResumeParsed   *ResumeDocument `json:"resumeParsed,omitempty"`
	JobDescription string          `json:"jobDescription" validate:"required"`
}

// MatchResult represents the ATS-style match score and the keywords the resume lacks
type MatchResult struct {
	MatchScore      int      `json:"matchScore"`
	MissingKeywords []string `json:"missingKeywords"`
}

// OptimizeRequest represents the input for rewriting a resume and drafting a cover letter
type OptimizeRequest struct {
	ResumeText     string          `json:"resumeText" validate:"required"`
	ResumeParsed   *ResumeDocument `json:"resumeParsed,omitempty"`
	JobDescription string          `json:"jobDescription" validate:"required"`
	Tone           string          `json:"tone,omitempty"`
}

// OptimizationResult represents the rewritten resume, cover letter and the optional re-score.
// NewMatchScore is nil when re-scoring failed or produced no number.
type OptimizationResult struct {
	OptimizedResume string `json:"optimizedResume"`
	CoverLetter     string `json:"coverLetter"`
	NewMatchScore   *int   `json:"newMatchScore"`
}
