package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"folio/internal/errors"
	"folio/internal/types"

	"github.com/google/uuid"
)

var seedDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// SeedPost is one entry of a seed file. PublishedDate accepts RFC 3339,
// a timezone-less timestamp (read as UTC) or a bare date.
type SeedPost struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	Author        string   `json:"author"`
	PublishedDate string   `json:"published_date"`
	ReadTime      string   `json:"read_time"`
	Tags          []string `json:"tags"`
	Thumbnail     *string  `json:"thumbnail"`
	Status        string   `json:"status"`
}

// SeedReport summarizes a seeding run. Read counts the seed entries,
// Total the posts in the store afterwards.
type SeedReport struct {
	Read     int
	Inserted int
	Skipped  int
	Total    int
}

// ReadSeed decodes a JSON array of seed posts
func ReadSeed(r io.Reader) ([]SeedPost, error) {
	var posts []SeedPost
	if err := json.NewDecoder(r).Decode(&posts); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "invalid seed file", err)
	}
	return posts, nil
}

// Seed inserts every post whose slug is not stored yet.
// Existing slugs are skipped, not updated.
func Seed(ctx context.Context, blogs BlogStore, posts []SeedPost, now time.Time, logger *errors.Logger) (SeedReport, error) {
	report := SeedReport{Read: len(posts)}

	for _, seed := range posts {
		post, err := seed.toBlogPost(now)
		if err != nil {
			return report, err
		}

		_, err = blogs.FindBySlug(ctx, post.Slug)
		switch {
		case err == nil:
			logger.Warn("Blog post already exists, skipping", "slug", post.Slug)
			report.Skipped++
			continue
		case !errors.HasCode(err, errors.ErrCodeNotFound):
			return report, err
		}

		if err := blogs.Insert(ctx, post); err != nil {
			if errors.HasCode(err, errors.ErrCodeDuplicateSlug) {
				report.Skipped++
				continue
			}
			return report, err
		}
		logger.Info("Seeded blog post", "slug", post.Slug, "title", post.Title)
		report.Inserted++
	}

	all, err := blogs.List(ctx, types.BlogStatusAll)
	if err != nil {
		return report, err
	}
	report.Total = len(all)
	return report, nil
}

func (s SeedPost) toBlogPost(now time.Time) (types.BlogPost, error) {
	create := types.BlogPostCreate{
		Title:     s.Title,
		Slug:      s.Slug,
		Content:   s.Content,
		Excerpt:   s.Excerpt,
		Author:    s.Author,
		ReadTime:  s.ReadTime,
		Tags:      s.Tags,
		Thumbnail: s.Thumbnail,
		Status:    s.Status,
	}
	if s.PublishedDate != "" {
		published, err := parseSeedDate(s.PublishedDate)
		if err != nil {
			return types.BlogPost{}, errors.NewValidationError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("invalid published_date for %q", s.Slug), err)
		}
		create.PublishedDate = &published
	}
	if err := types.Validate(create); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			appErr.WithContext("slug", s.Slug)
		}
		return types.BlogPost{}, err
	}

	id := s.ID
	if id == "" {
		id = uuid.NewString()
	}
	return types.NewBlogPost(id, create, now.UTC()), nil
}

func parseSeedDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range seedDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
