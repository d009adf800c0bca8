package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"folio/internal/types"
)

// Memory keeps everything in process; used for development and tests
type Memory struct {
	mu       sync.RWMutex
	posts    map[string]types.BlogPost
	contacts map[string]types.ContactSubmission
}

func NewMemory() *Memory {
	return &Memory{
		posts:    make(map[string]types.BlogPost),
		contacts: make(map[string]types.ContactSubmission),
	}
}

func (m *Memory) Driver() string { return DriverMemory }

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() {}

func (m *Memory) FindBySlug(ctx context.Context, slug string) (types.BlogPost, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, post := range m.posts {
		if post.Slug == slug {
			return clonePost(post), nil
		}
	}
	return types.BlogPost{}, blogNotFound()
}

func (m *Memory) FindByID(ctx context.Context, id string) (types.BlogPost, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	post, ok := m.posts[id]
	if !ok {
		return types.BlogPost{}, blogNotFound()
	}
	return clonePost(post), nil
}

func (m *Memory) Insert(ctx context.Context, post types.BlogPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(post.Slug, "") {
		return duplicateSlug(post.Slug)
	}
	m.posts[post.ID] = clonePost(post)
	return nil
}

func (m *Memory) Update(ctx context.Context, post types.BlogPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[post.ID]; !ok {
		return blogNotFound()
	}
	if m.slugTaken(post.Slug, post.ID) {
		return duplicateSlug(post.Slug)
	}
	m.posts[post.ID] = clonePost(post)
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return blogNotFound()
	}
	delete(m.posts, id)
	return nil
}

func (m *Memory) List(ctx context.Context, status string) ([]types.BlogPost, error) {
	m.mu.RLock()
	posts := make([]types.BlogPost, 0, len(m.posts))
	for _, post := range m.posts {
		if matchesStatus(post, status) {
			posts = append(posts, clonePost(post))
		}
	}
	m.mu.RUnlock()

	slices.SortStableFunc(posts, func(a, b types.BlogPost) int {
		if c := b.PublishedDate.Compare(a.PublishedDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return posts, nil
}

func (m *Memory) InsertContact(ctx context.Context, submission types.ContactSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts[submission.ID] = submission
	return nil
}

func (m *Memory) UpdateContactStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	submission, ok := m.contacts[id]
	if !ok {
		return contactNotFound()
	}
	submission.Status = status
	m.contacts[id] = submission
	return nil
}

func (m *Memory) ListContacts(ctx context.Context) ([]types.ContactSubmission, error) {
	m.mu.RLock()
	submissions := make([]types.ContactSubmission, 0, len(m.contacts))
	for _, s := range m.contacts {
		submissions = append(submissions, s)
	}
	m.mu.RUnlock()

	slices.SortStableFunc(submissions, func(a, b types.ContactSubmission) int {
		if c := b.SubmittedAt.Compare(a.SubmittedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return submissions, nil
}

// slugTaken reports whether a post other than exceptID uses slug. Caller holds the lock.
func (m *Memory) slugTaken(slug, exceptID string) bool {
	for id, post := range m.posts {
		if post.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func clonePost(post types.BlogPost) types.BlogPost {
	post.Tags = slices.Clone(post.Tags)
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Thumbnail != nil {
		thumb := *post.Thumbnail
		post.Thumbnail = &thumb
	}
	return post
}
