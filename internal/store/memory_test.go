package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"folio/internal/errors"
	"folio/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC)

func samplePost(id, slug, status string, published time.Time) types.BlogPost {
	return types.BlogPost{
		ID:            id,
		Title:         "Title " + slug,
		Slug:          slug,
		Content:       strings.Repeat("c", 120),
		Author:        types.DefaultBlogAuthor,
		PublishedDate: published,
		Tags:          []string{"go"},
		Status:        status,
		CreatedAt:     base,
		UpdatedAt:     base,
	}
}

// runBlogStoreTests exercises the BlogStore contract against any implementation
func runBlogStoreTests(t *testing.T, s BlogStore) {
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, samplePost("a", "first", types.BlogStatusPublished, base)))
	require.NoError(t, s.Insert(ctx, samplePost("b", "second", types.BlogStatusDraft, base.Add(time.Hour))))
	require.NoError(t, s.Insert(ctx, samplePost("c", "third", types.BlogStatusPublished, base.Add(2*time.Hour))))

	t.Run("duplicate slug", func(t *testing.T) {
		err := s.Insert(ctx, samplePost("d", "first", types.BlogStatusPublished, base))
		assert.True(t, errors.HasCode(err, errors.ErrCodeDuplicateSlug))
	})

	t.Run("status filter and order", func(t *testing.T) {
		published, err := s.List(ctx, types.BlogStatusPublished)
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "first"}, slugs(published))

		drafts, err := s.List(ctx, types.BlogStatusDraft)
		require.NoError(t, err)
		assert.Equal(t, []string{"second"}, slugs(drafts))

		all, err := s.List(ctx, types.BlogStatusAll)
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second", "first"}, slugs(all))
	})

	t.Run("find", func(t *testing.T) {
		post, err := s.FindBySlug(ctx, "second")
		require.NoError(t, err)
		assert.Equal(t, "b", post.ID)

		post, err = s.FindByID(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, "third", post.Slug)
		assert.Equal(t, []string{"go"}, post.Tags)

		_, err = s.FindBySlug(ctx, "missing")
		assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
	})

	t.Run("update", func(t *testing.T) {
		post, err := s.FindByID(ctx, "a")
		require.NoError(t, err)

		post.Slug = "third"
		err = s.Update(ctx, post)
		assert.True(t, errors.HasCode(err, errors.ErrCodeDuplicateSlug))

		post.Slug = "first-renamed"
		post.Title = "Renamed"
		require.NoError(t, s.Update(ctx, post))

		got, err := s.FindBySlug(ctx, "first-renamed")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)

		missing := samplePost("zzz", "ghost", types.BlogStatusDraft, base)
		assert.True(t, errors.HasCode(s.Update(ctx, missing), errors.ErrCodeNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "b"))
		assert.True(t, errors.HasCode(s.Delete(ctx, "b"), errors.ErrCodeNotFound))

		_, err := s.FindByID(ctx, "b")
		assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
	})
}

func runContactStoreTests(t *testing.T, s ContactStore) {
	ctx := context.Background()

	older := types.ContactSubmission{ID: "c1", Name: "Ann", Email: "ann@example.com", Message: "hello there", SubmittedAt: base, Status: types.ContactStatusPending}
	newer := types.ContactSubmission{ID: "c2", Name: "Bob", Email: "bob@example.com", Message: "hello again", SubmittedAt: base.Add(time.Minute), Status: types.ContactStatusPending}
	require.NoError(t, s.InsertContact(ctx, older))
	require.NoError(t, s.InsertContact(ctx, newer))

	require.NoError(t, s.UpdateContactStatus(ctx, "c1", types.ContactStatusNotified))
	assert.True(t, errors.HasCode(s.UpdateContactStatus(ctx, "nope", types.ContactStatusNotified), errors.ErrCodeNotFound))

	list, err := s.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)
	assert.Equal(t, types.ContactStatusNotified, list[1].Status)
}

func slugs(posts []types.BlogPost) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

func TestMemoryBlogStore(t *testing.T) {
	runBlogStoreTests(t, NewMemory())
}

func TestMemoryContactStore(t *testing.T) {
	runContactStoreTests(t, NewMemory())
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Insert(ctx, samplePost("a", "first", types.BlogStatusPublished, base)))

	post, err := m.FindByID(ctx, "a")
	require.NoError(t, err)
	post.Tags[0] = "mutated"

	again, err := m.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, again.Tags)
}

func TestMemoryEmptyLists(t *testing.T) {
	m := NewMemory()
	posts, err := m.List(context.Background(), types.BlogStatusPublished)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	contacts, err := m.ListContacts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, contacts)
}

func TestMemoryListOrdersTiesByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, id := range []string{"c", "a", "d", "b"} {
		require.NoError(t, m.Insert(ctx, samplePost(id, "post-"+id, types.BlogStatusPublished, base)))
	}
	require.NoError(t, m.Insert(ctx, samplePost("z", "newest", types.BlogStatusPublished, base.Add(time.Hour))))

	for range 5 {
		posts, err := m.List(ctx, types.BlogStatusAll)
		require.NoError(t, err)
		assert.Equal(t, []string{"newest", "post-a", "post-b", "post-c", "post-d"}, slugs(posts))
	}

	for _, id := range []string{"y", "x"} {
		require.NoError(t, m.InsertContact(ctx, types.ContactSubmission{ID: id, SubmittedAt: base}))
	}
	contacts, err := m.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "x", contacts[0].ID)
}
