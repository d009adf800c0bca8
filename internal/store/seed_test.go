package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"folio/internal/errors"
	"folio/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *errors.Logger {
	return errors.NewLoggerTo(io.Discard, slog.LevelError)
}

func seedJSON() string {
	content := strings.Repeat("Seed content. ", 10)
	return `[
		{"id": "1", "slug": "why-seo-isnt-dead", "title": "Why SEO Isn't Dead", "content": "` + content + `",
		 "published_date": "2025-09-24T00:00:00", "read_time": "5 min read", "tags": ["SEO"], "status": "published"},
		{"slug": "gemini-marketing", "title": "Gemini Marketing", "content": "` + content + `",
		 "published_date": "2025-10-01"}
	]`
}

func TestReadSeed(t *testing.T) {
	posts, err := ReadSeed(strings.NewReader(seedJSON()))
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "why-seo-isnt-dead", posts[0].Slug)

	_, err = ReadSeed(strings.NewReader("{not json"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}

func TestSeedSkipsExistingSlugs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 2, 12, 0, 0, 0, time.UTC)
	posts, err := ReadSeed(strings.NewReader(seedJSON()))
	require.NoError(t, err)

	m := NewMemory()
	report, err := Seed(ctx, m, posts, now, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Read: 2, Inserted: 2, Skipped: 0, Total: 2}, report)

	first, err := m.FindBySlug(ctx, "why-seo-isnt-dead")
	require.NoError(t, err)
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC), first.PublishedDate)
	assert.Equal(t, types.DefaultBlogAuthor, first.Author)
	assert.Equal(t, now, first.CreatedAt)

	second, err := m.FindBySlug(ctx, "gemini-marketing")
	require.NoError(t, err)
	assert.NotEmpty(t, second.ID)
	assert.Equal(t, types.BlogStatusPublished, second.Status)

	report, err = Seed(ctx, m, posts, now, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Read: 2, Inserted: 0, Skipped: 2, Total: 2}, report)
}

func TestSeedBundledPosts(t *testing.T) {
	f, err := os.Open("../../data/blog_seed.json")
	require.NoError(t, err)
	defer f.Close()

	posts, err := ReadSeed(f)
	require.NoError(t, err)

	m := NewMemory()
	report, err := Seed(context.Background(), m, posts, time.Now(), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Read: 3, Inserted: 3, Total: 3}, report)

	published, err := m.List(context.Background(), types.BlogStatusPublished)
	require.NoError(t, err)
	require.Len(t, published, 3)
	assert.Equal(t, "ai-personal-moat-custom-tools", published[0].Slug)
}

func TestSeedRejectsInvalidPosts(t *testing.T) {
	ctx := context.Background()

	_, err := Seed(ctx, NewMemory(), []SeedPost{{Slug: "short", Title: "Short", Content: "too short"}}, time.Now(), quietLogger())
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, "short", appErr.Context["slug"])

	_, err = Seed(ctx, NewMemory(), []SeedPost{{Slug: "bad-date", PublishedDate: "24/09/2025"}}, time.Now(), quietLogger())
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}

func TestParseSeedDate(t *testing.T) {
	for _, value := range []string{"2025-09-24T00:00:00Z", "2025-09-24T00:00:00", "2025-09-24"} {
		got, err := parseSeedDate(value)
		require.NoError(t, err, value)
		assert.Equal(t, time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC), got)
	}
}

func TestSeedReportSeparatesFileAndStoreCounts(t *testing.T) {
	ctx := context.Background()
	content := strings.Repeat("Seed content. ", 10)
	m := NewMemory()
	_, err := Seed(ctx, m, []SeedPost{{Slug: "existing-post", Title: "Existing", Content: content}}, time.Now(), quietLogger())
	require.NoError(t, err)

	report, err := Seed(ctx, m, []SeedPost{
		{Slug: "existing-post", Title: "Existing", Content: content},
		{Slug: "new-post", Title: "New", Content: content},
		{Slug: "new-post", Title: "New again", Content: content},
	}, time.Now(), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Read: 3, Inserted: 1, Skipped: 2, Total: 2}, report)
}
