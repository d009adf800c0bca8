package server

import (
	"net/http"

	"folio/internal/observability"
	"folio/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

func (s *Server) listBlogsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := s.deps.Blogs.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	post, err := s.deps.Blogs.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var in types.BlogPostCreate
	if err := parseJSONRequest(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	post, err := s.deps.Blogs.Create(r.Context(), in)
	s.recordBlogMutation(r, "create", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.BlogResponse{
		Success: true,
		Message: "Blog post created successfully",
		Blog:    &post,
	})
}

func (s *Server) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	var in types.BlogPostUpdate
	if err := parseJSONRequest(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	post, err := s.deps.Blogs.Update(r.Context(), r.PathValue("id"), in)
	s.recordBlogMutation(r, "update", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.BlogResponse{
		Success: true,
		Message: "Blog post updated successfully",
		Blog:    &post,
	})
}

func (s *Server) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Blogs.Delete(r.Context(), r.PathValue("id"))
	s.recordBlogMutation(r, "delete", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.BlogResponse{
		Success: true,
		Message: "Blog post deleted successfully",
	})
}

func (s *Server) recordBlogMutation(r *http.Request, action string, err error) {
	s.deps.Observability.RecordEvent(r.Context(), observability.EventBlogMutated, err == nil,
		attribute.String("action", action))
}
