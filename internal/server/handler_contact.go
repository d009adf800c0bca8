package server

import (
	"net/http"

	"folio/internal/observability"
	"folio/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// submitContactHandler stores a contact form message; mail problems never fail the request
func (s *Server) submitContactHandler(w http.ResponseWriter, r *http.Request) {
	var in types.ContactSubmissionCreate
	if err := parseJSONRequest(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	submission, err := s.deps.Contacts.Submit(r.Context(), in)
	if err != nil {
		s.deps.Observability.RecordEvent(r.Context(), observability.EventContactSubmitted, false)
		s.writeError(w, r, err)
		return
	}

	s.deps.Observability.RecordEvent(r.Context(), observability.EventContactSubmitted, true,
		attribute.String("status", submission.Status))
	writeJSON(w, http.StatusOK, types.ContactResponse{
		Success: true,
		Message: "Thank you for your message! I'll get back to you soon.",
		ID:      submission.ID,
	})
}

func (s *Server) listContactsHandler(w http.ResponseWriter, r *http.Request) {
	submissions, err := s.deps.Contacts.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submissions)
}
