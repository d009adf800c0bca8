package types

import (
	"strings"
	"testing"
	"time"

	"folio/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBlogCreate() BlogPostCreate {
	return BlogPostCreate{
		Title:    "Why SEO Isn't Dead",
		Slug:     "why-seo-isnt-dead",
		Content:  strings.Repeat("a", 120),
		Excerpt:  "Short excerpt",
		ReadTime: "5 min read",
		Tags:     []string{"SEO"},
	}
}

func TestValidateContactSubmission(t *testing.T) {
	tests := []struct {
		name      string
		input     ContactSubmissionCreate
		expectErr string
	}{
		{
			name:  "valid submission",
			input: ContactSubmissionCreate{Name: "Test User", Email: "test@example.com", Message: "This is a valid message"},
		},
		{
			name:      "empty name",
			input:     ContactSubmissionCreate{Name: "", Email: "test@example.com", Message: "This is a valid message"},
			expectErr: "validation error: name is required",
		},
		{
			name:      "invalid email",
			input:     ContactSubmissionCreate{Name: "Test User", Email: "invalid-email", Message: "This is a valid message"},
			expectErr: "validation error: email must be a valid email address",
		},
		{
			name:      "short message",
			input:     ContactSubmissionCreate{Name: "Test User", Email: "test@example.com", Message: "Short"},
			expectErr: "validation error: message must be at least 10 characters",
		},
		{
			name:      "long name",
			input:     ContactSubmissionCreate{Name: strings.Repeat("n", 101), Email: "test@example.com", Message: "This is a valid message"},
			expectErr: "validation error: name must be at most 100 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
			assert.Equal(t, tt.expectErr, appErr.Message)
		})
	}
}

func TestValidateBlogCreate(t *testing.T) {
	assert.NoError(t, Validate(validBlogCreate()))

	short := validBlogCreate()
	short.Content = "too short"
	assert.Error(t, Validate(short))

	badStatus := validBlogCreate()
	badStatus.Status = "archived"
	assert.Error(t, Validate(badStatus))

	longReadTime := validBlogCreate()
	longReadTime.ReadTime = strings.Repeat("x", 21)
	assert.Error(t, Validate(longReadTime))
}

func TestValidateBlogUpdate(t *testing.T) {
	empty := ""
	assert.Error(t, Validate(BlogPostUpdate{Title: &empty}), "empty title must be rejected when present")

	title := "New title"
	assert.NoError(t, Validate(BlogPostUpdate{Title: &title}))
	assert.NoError(t, Validate(BlogPostUpdate{}))
}

func TestValidateAnalyzeRequest(t *testing.T) {
	err := Validate(AnalyzeRequest{ResumeText: "resume"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jobDescription is required")
}

func TestNewBlogPostDefaults(t *testing.T) {
	now := time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC)
	in := validBlogCreate()
	in.Tags = nil

	post := NewBlogPost("id-1", in, now)

	assert.Equal(t, DefaultBlogAuthor, post.Author)
	assert.Equal(t, BlogStatusPublished, post.Status)
	assert.Equal(t, now, post.PublishedDate)
	assert.Equal(t, now, post.CreatedAt)
	assert.NotNil(t, post.Tags)
}

func TestBlogPostUpdateApply(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	post := NewBlogPost("id-1", validBlogCreate(), created)

	status := BlogStatusDraft
	tags := []string{"AI", "GEO"}
	update := BlogPostUpdate{Status: &status, Tags: &tags}
	assert.False(t, update.IsEmpty())

	later := created.Add(time.Hour)
	update.Apply(&post, later)

	assert.Equal(t, BlogStatusDraft, post.Status)
	assert.Equal(t, tags, post.Tags)
	assert.Equal(t, "Why SEO Isn't Dead", post.Title)
	assert.Equal(t, later, post.UpdatedAt)
	assert.Equal(t, created, post.CreatedAt)
	assert.True(t, BlogPostUpdate{}.IsEmpty())
}
