package server

import (
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"folio/internal/errors"
	"folio/internal/observability"
	"folio/internal/resume"
	"folio/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// multipartMemory is how much of an upload is buffered in memory before spilling to disk
const multipartMemory = 8 << 20

const tracerName = "folio.api"

// parseHandler extracts text from an uploaded PDF or DOCX; type "resume" adds the parsed fields
func (s *Server) parseHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.deps.Observability.Tracer(tracerName).Start(r.Context(), "api.resume.parse")
	defer span.End()

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if !stderrors.As(err, &maxBytesErr) {
			err = errors.NewValidationError(errors.ErrCodeMissingField, "multipart form with file and type is required", err)
		}
		failSpan(span, err)
		s.writeError(w, r, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	docType := r.FormValue("type")
	file, header, err := r.FormFile("file")
	switch {
	case err != nil:
		err = errors.NewValidationError(errors.ErrCodeMissingField, "validation error: file is required", err)
	case strings.TrimSpace(docType) == "":
		err = errors.NewValidationError(errors.ErrCodeMissingField, "validation error: type is required", nil)
	}
	if err != nil {
		failSpan(span, err)
		s.writeError(w, r, err)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		err = errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to parse file", err)
		failSpan(span, err)
		s.writeError(w, r, err)
		return
	}

	span.SetAttributes(
		attribute.String("document.name", header.Filename),
		attribute.Int("document.size", len(data)),
		attribute.String("document.type", docType),
	)

	text, err := s.deps.Extractor.Extract(header.Filename, data)
	if err != nil {
		failSpan(span, err)
		s.deps.Observability.RecordEvent(ctx, observability.EventResumeParsed, false)
		s.writeError(w, r, err)
		return
	}

	result := types.ParseResult{Text: text}
	if docType == "resume" {
		parsed := resume.Parse(text)
		result.Parsed = &parsed
	}

	s.deps.Observability.RecordEvent(ctx, observability.EventResumeParsed, true, attribute.String("type", docType))
	writeJSON(w, http.StatusOK, result)
}

// analyzeHandler scores a resume against a job description
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.deps.Observability.Tracer(tracerName).Start(r.Context(), "api.resume.analyze")
	defer span.End()

	var req types.AnalyzeRequest
	if err := s.decodeValid(r, &req); err != nil {
		failSpan(span, err)
		s.writeError(w, r, err)
		return
	}

	span.SetAttributes(
		attribute.Int("request.resume_length", len(req.ResumeText)),
		attribute.Int("request.job_length", len(req.JobDescription)),
	)

	outcome, err := s.deps.Analyzer.Analyze(ctx, req.ResumeText, req.JobDescription)
	if err != nil {
		failSpan(span, err)
		s.deps.Observability.RecordEvent(ctx, observability.EventResumeAnalyzed, false)
		s.writeError(w, r, err)
		return
	}

	span.SetAttributes(
		attribute.Int("result.match_score", outcome.Value.MatchScore),
		attribute.Bool("result.degraded", outcome.Degraded),
	)
	s.deps.Observability.RecordEvent(ctx, observability.EventResumeAnalyzed, true, attribute.Bool("degraded", outcome.Degraded))
	writeJSON(w, http.StatusOK, outcome.Value)
}

// optimizeHandler rewrites the resume, drafts a cover letter and re-scores the rewrite
func (s *Server) optimizeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.deps.Observability.Tracer(tracerName).Start(r.Context(), "api.resume.optimize")
	defer span.End()

	var req types.OptimizeRequest
	if err := s.decodeValid(r, &req); err != nil {
		failSpan(span, err)
		s.writeError(w, r, err)
		return
	}

	tone := resume.ParseTone(req.Tone)
	span.SetAttributes(
		attribute.Int("request.resume_length", len(req.ResumeText)),
		attribute.Int("request.job_length", len(req.JobDescription)),
		attribute.String("request.tone", string(tone)),
	)

	outcome, err := s.deps.Optimizer.Optimize(ctx, req.ResumeText, req.JobDescription, req.Tone)
	if err != nil {
		failSpan(span, err)
		s.deps.Observability.RecordEvent(ctx, observability.EventResumeOptimized, false)
		s.writeError(w, r, err)
		return
	}

	span.SetAttributes(attribute.Bool("result.degraded", outcome.Degraded))
	s.deps.Observability.RecordEvent(ctx, observability.EventResumeOptimized, true,
		attribute.String("tone", string(tone)),
		attribute.Bool("degraded", outcome.Degraded))
	writeJSON(w, http.StatusOK, outcome.Value)
}

// decodeValid parses a JSON body and checks its validate tags
func (s *Server) decodeValid(r *http.Request, v any) error {
	if err := parseJSONRequest(r, v); err != nil {
		return err
	}
	return types.Validate(v)
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if appErr, ok := errors.AsAppError(err); ok {
		span.SetAttributes(attribute.String("error.type", string(appErr.Type)))
	}
}
