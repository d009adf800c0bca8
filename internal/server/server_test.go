package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"folio/internal/config"
	"folio/internal/errors"
	"folio/internal/extract"
	"folio/internal/portfolio"
	"folio/internal/resume"
	"folio/internal/store"
	"folio/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queuedGenerator replies from a fixed queue and fails once it is exhausted
type queuedGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
}

func (g *queuedGenerator) Generate(ctx context.Context, prompt, systemInstruction string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", nil
	}
	reply := g.replies[0]
	g.replies = g.replies[1:]
	return reply, nil
}

type failingNotifier struct{}

func (failingNotifier) NotifyOwner(ctx context.Context, s types.ContactSubmission) error {
	return errors.NewNetworkError(errors.ErrCodeMailFailed, "smtp down", nil)
}

func (failingNotifier) Confirm(ctx context.Context, s types.ContactSubmission) bool { return false }

type testServer struct {
	*Server
	store   *store.Memory
	handler http.Handler
}

func quietLogger() *errors.Logger {
	return errors.NewLoggerTo(io.Discard, slog.LevelError)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           "0",
			MaxUploadBytes: 1 << 20,
			CORSOrigins:    []string{"*"},
		},
	}
}

func newTestServer(t *testing.T, gen resume.Generator, mutate func(*config.Config)) *testServer {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}
	logger := quietLogger()
	mem := store.NewMemory()
	if gen == nil {
		gen = &queuedGenerator{}
	}

	srv := NewServer(cfg, "test", Deps{
		Extractor: extract.New(logger),
		Analyzer:  resume.NewAnalyzer(gen, logger),
		Optimizer: resume.NewOptimizer(gen, logger),
		Blogs:     portfolio.NewBlogService(mem, logger),
		Contacts:  portfolio.NewContactService(mem, failingNotifier{}, logger),
		Store:     mem,
	}, logger)
	t.Cleanup(srv.stopBackground)

	return &testServer{Server: srv, store: mem, handler: srv.Handler()}
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestInformationalEndpoints(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Resume Builder API is running", decode[MessageResponse](t, rec).Message)

	rec = ts.do(t, http.MethodGet, "/api/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello World", decode[MessageResponse](t, rec).Message)

	rec = ts.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "healthy", "service": "resume-builder"}, decode[map[string]any](t, rec))

	rec = ts.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.Equal(t, "test", stats["version"])
	assert.Equal(t, map[string]any{"driver": "memory"}, stats["store"])

	rec = ts.do(t, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	t.Run("scores the resume", func(t *testing.T) {
		gen := &queuedGenerator{replies: []string{"```json\n{\"matchScore\": 140, \"missingKeywords\": [\"Kubernetes\"]}\n```"}}
		ts := newTestServer(t, gen, nil)

		rec := ts.do(t, http.MethodPost, "/api/resume-builder/analyze",
			`{"resumeText":"Jane Doe, SQL analyst","jobDescription":"Data engineer"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		result := decode[types.MatchResult](t, rec)
		assert.Equal(t, 100, result.MatchScore)
		assert.Equal(t, []string{"Kubernetes"}, result.MissingKeywords)
	})

	t.Run("unreadable reply falls back to the default", func(t *testing.T) {
		ts := newTestServer(t, &queuedGenerator{replies: []string{"I think it's a 7/10"}}, nil)

		rec := ts.do(t, http.MethodPost, "/api/resume-builder/analyze",
			`{"resumeText":"r","jobDescription":"j"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		result := decode[types.MatchResult](t, rec)
		assert.Equal(t, 50, result.MatchScore)
		assert.Equal(t, []string{"Unable to analyze - please try again"}, result.MissingKeywords)
	})

	t.Run("missing job description", func(t *testing.T) {
		gen := &queuedGenerator{}
		ts := newTestServer(t, gen, nil)

		rec := ts.do(t, http.MethodPost, "/api/resume-builder/analyze", `{"resumeText":"r"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode[ErrorResponse](t, rec).Message, "jobDescription")
		assert.Zero(t, gen.calls, "no upstream call for invalid input")
	})

	t.Run("malformed json", func(t *testing.T) {
		ts := newTestServer(t, nil, nil)
		rec := ts.do(t, http.MethodPost, "/api/resume-builder/analyze", `{"resumeText":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream unavailable", func(t *testing.T) {
		gen := &queuedGenerator{err: errors.NewConfigError(errors.ErrCodeAIUnavailable, "AI service not configured", nil)}
		ts := newTestServer(t, gen, nil)

		rec := ts.do(t, http.MethodPost, "/api/resume-builder/analyze", `{"resumeText":"r","jobDescription":"j"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decode[ErrorResponse](t, rec)
		assert.Equal(t, errors.ErrCodeAIUnavailable, body.Error)
		assert.Equal(t, "AI service not configured", body.Message)
	})
}

func TestOptimizeEndpoint(t *testing.T) {
	t.Run("empty rescore leaves the score absent", func(t *testing.T) {
		gen := &queuedGenerator{replies: []string{"  Optimized resume  ", "Dear Hiring Manager,\n...\nSincerely", ""}}
		ts := newTestServer(t, gen, nil)

		rec := ts.do(t, http.MethodPost, "/api/resume-builder/optimize",
			`{"resumeText":"r","jobDescription":"j","tone":"friendly"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := decode[map[string]any](t, rec)
		assert.Equal(t, "Optimized resume", body["optimizedResume"])
		assert.Equal(t, "Dear Hiring Manager,\n...\nSincerely", body["coverLetter"])
		assert.Contains(t, body, "newMatchScore")
		assert.Nil(t, body["newMatchScore"])
	})

	t.Run("rescore parsed", func(t *testing.T) {
		gen := &queuedGenerator{replies: []string{"resume", "letter", "Score: 88"}}
		ts := newTestServer(t, gen, nil)

		rec := ts.do(t, http.MethodPost, "/api/resume-builder/optimize",
			`{"resumeText":"r","jobDescription":"j","tone":"disruptor"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		result := decode[types.OptimizationResult](t, rec)
		require.NotNil(t, result.NewMatchScore)
		assert.Equal(t, 88, *result.NewMatchScore)
	})

	t.Run("rewrite failure fails the request", func(t *testing.T) {
		gen := &queuedGenerator{err: errors.NewAIError(errors.ErrCodeAIServiceFailed, "AI service error: boom", nil)}
		ts := newTestServer(t, gen, nil)

		rec := ts.do(t, http.MethodPost, "/api/resume-builder/optimize", `{"resumeText":"r","jobDescription":"j"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, 1, gen.calls)
	})
}

func multipartUpload(t *testing.T, filename string, data []byte, docType string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	if docType != "" {
		require.NoError(t, mw.WriteField("type", docType))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func docxWithParagraphs(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"word/document.xml": fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s<w:sectPr/></w:body></w:document>`, body.String()),
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseEndpoint(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	upload := func(filename string, data []byte, docType string) *httptest.ResponseRecorder {
		body, contentType := multipartUpload(t, filename, data, docType)
		req := httptest.NewRequest(http.MethodPost, "/api/resume-builder/parse", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("docx resume is parsed", func(t *testing.T) {
		data := docxWithParagraphs(t, "Jane Doe", "jane@corp.com", "SKILLS: SQL, Python")
		rec := upload("Resume.DOCX", data, "resume")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		result := decode[types.ParseResult](t, rec)
		assert.Equal(t, "Jane Doe\njane@corp.com\nSKILLS: SQL, Python", result.Text)
		require.NotNil(t, result.Parsed)
		assert.Equal(t, "Jane Doe", result.Parsed.FullName)
		assert.Equal(t, "jane@corp.com", result.Parsed.Contact)
		assert.Empty(t, result.Parsed.Skills)
	})

	t.Run("job description is not parsed", func(t *testing.T) {
		rec := upload("jd.docx", docxWithParagraphs(t, "Data engineer"), "job")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, decode[types.ParseResult](t, rec).Parsed)
	})

	t.Run("unsupported type", func(t *testing.T) {
		rec := upload("resume.txt", []byte("plain"), "resume")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, extract.UnsupportedTypeMessage, decode[ErrorResponse](t, rec).Message)
	})

	t.Run("corrupt document", func(t *testing.T) {
		rec := upload("resume.pdf", []byte("not a pdf"), "resume")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, errors.ErrCodeExtractionFailed, decode[ErrorResponse](t, rec).Error)
	})

	t.Run("missing file", func(t *testing.T) {
		rec := upload("", nil, "resume")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("missing type", func(t *testing.T) {
		rec := upload("resume.docx", docxWithParagraphs(t, "x"), "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

const longContent = "Go makes it straightforward to build small, dependable services. This post walks through the pieces we used."

func TestBlogEndpoints(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	create := func(slug, status string) *httptest.ResponseRecorder {
		return ts.do(t, http.MethodPost, "/api/blogs", fmt.Sprintf(
			`{"title":"Post %s","slug":"%s","content":%q,"status":"%s"}`, slug, slug, longContent, status))
	}

	rec := create("first", "published")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[types.BlogResponse](t, rec)
	require.True(t, created.Success)
	require.NotNil(t, created.Blog)
	assert.Equal(t, types.DefaultBlogAuthor, created.Blog.Author)

	require.Equal(t, http.StatusOK, create("draft-one", "draft").Code)

	rec = create("first", "published")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Blog post with this slug already exists", decode[ErrorResponse](t, rec).Message)

	rec = ts.do(t, http.MethodPost, "/api/blogs", `{"title":"Short","slug":"short","content":"too short"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/blogs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]types.BlogPost](t, rec), 1)

	rec = ts.do(t, http.MethodGet, "/api/blogs?status=all", "")
	assert.Len(t, decode[[]types.BlogPost](t, rec), 2)

	rec = ts.do(t, http.MethodGet, "/api/blogs?status=draft", "")
	drafts := decode[[]types.BlogPost](t, rec)
	require.Len(t, drafts, 1)
	assert.Equal(t, "draft-one", drafts[0].Slug)

	rec = ts.do(t, http.MethodGet, "/api/blogs?status=archived", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/blogs/first", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.Blog.ID, decode[types.BlogPost](t, rec).ID)

	rec = ts.do(t, http.MethodGet, "/api/blogs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Blog post not found", decode[ErrorResponse](t, rec).Message)

	rec = ts.do(t, http.MethodPut, "/api/blogs/"+created.Blog.ID, `{"title":"Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Renamed", decode[types.BlogResponse](t, rec).Blog.Title)

	rec = ts.do(t, http.MethodPut, "/api/blogs/"+created.Blog.ID, `{"slug":"draft-one"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/blogs/unknown", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/blogs/"+created.Blog.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[types.BlogResponse](t, rec).Success)

	rec = ts.do(t, http.MethodDelete, "/api/blogs/"+created.Blog.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactEndpoints(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodPost, "/api/contact",
		`{"name":" Ada ","email":"ada@example.com","message":"I would like to talk about a role."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[types.ContactResponse](t, rec)
	assert.True(t, resp.Success)
	require.NotEmpty(t, resp.ID)

	rec = ts.do(t, http.MethodGet, "/api/contact", "")
	require.Equal(t, http.StatusOK, rec.Code)
	submissions := decode[[]types.ContactSubmission](t, rec)
	require.Len(t, submissions, 1)
	assert.Equal(t, "Ada", submissions[0].Name)
	assert.Equal(t, types.ContactStatusEmailFailed, submissions[0].Status, "stored even though mail failed")

	tests := []struct {
		name string
		body string
		code int
	}{
		{"empty name", `{"name":"","email":"a@example.com","message":"This is a valid message"}`, http.StatusUnprocessableEntity},
		{"bad email", `{"name":"A","email":"invalid-email","message":"This is a valid message"}`, http.StatusUnprocessableEntity},
		{"short message", `{"name":"A","email":"a@example.com","message":"Short"}`, http.StatusUnprocessableEntity},
		{"malformed json", `{"name":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ts.do(t, http.MethodPost, "/api/contact", tt.body).Code)
		})
	}
}

func TestAdminRoutesRequireAPIKey(t *testing.T) {
	ts := newTestServer(t, nil, func(c *config.Config) {
		c.Server.APIKeys = []string{"secret-key-123"}
	})

	rec := ts.do(t, http.MethodGet, "/api/contact", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing API key", decode[ErrorResponse](t, rec).Error)

	rec = ts.do(t, http.MethodGet, "/api/contact", "", "X-API-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/contact", "", "Authorization", "Bearer secret-key-123")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/blogs/any", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Public routes stay open
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/blogs", "").Code)

	ts.keys.replace([]string{"rotated"})
	rec = ts.do(t, http.MethodGet, "/api/contact", "", "X-API-Key", "rotated")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestSizeLimit(t *testing.T) {
	ts := newTestServer(t, nil, func(c *config.Config) { c.Server.MaxUploadBytes = 64 })

	body := fmt.Sprintf(`{"resumeText":%q,"jobDescription":"j"}`, strings.Repeat("x", 200))
	rec := ts.do(t, http.MethodPost, "/api/resume-builder/analyze", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCORS(t *testing.T) {
	t.Run("wildcard echoes the origin", func(t *testing.T) {
		ts := newTestServer(t, nil, nil)
		rec := ts.do(t, http.MethodOptions, "/api/contact", "",
			"Origin", "https://site.example",
			"Access-Control-Request-Method", "POST",
			"Access-Control-Request-Headers", "content-type")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://site.example", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("unlisted origin gets no headers", func(t *testing.T) {
		ts := newTestServer(t, nil, func(c *config.Config) {
			c.Server.CORSOrigins = []string{"https://allowed.example"}
		})
		rec := ts.do(t, http.MethodGet, "/api/blogs", "", "Origin", "https://other.example")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

		rec = ts.do(t, http.MethodGet, "/api/blogs", "", "Origin", "https://allowed.example")
		assert.Equal(t, "https://allowed.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"field validation", errors.NewValidationError(errors.ErrCodeInvalidRequest, "m", nil), http.StatusUnprocessableEntity},
		{"missing field", errors.NewValidationError(errors.ErrCodeMissingField, "m", nil), http.StatusUnprocessableEntity},
		{"extraction", errors.NewValidationError(errors.ErrCodeExtractionFailed, "m", nil), http.StatusBadRequest},
		{"unsupported", errors.NewValidationError(errors.ErrCodeUnsupportedFileType, "m", nil), http.StatusBadRequest},
		{"not found", errors.NewNotFoundError(errors.ErrCodeNotFound, "m"), http.StatusNotFound},
		{"duplicate slug", errors.NewConflictError(errors.ErrCodeDuplicateSlug, "m"), http.StatusBadRequest},
		{"ai", errors.NewAIError(errors.ErrCodeAIServiceFailed, "m", nil), http.StatusInternalServerError},
		{"store", errors.NewIOError(errors.ErrCodeStoreFailed, "m", nil), http.StatusInternalServerError},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
